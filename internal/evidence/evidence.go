// Package evidence models the structured findings the analysis
// service attaches to its answers: one compartment per topic, each
// holding a decision, its justification, and the cited clauses.
package evidence

import (
	"sort"
	"strings"
)

// Clause is one cited passage from an uploaded document.
type Clause struct {
	ClauseID       string `json:"clause_id"`
	SourceDocument string `json:"source_document"`
	ClauseText     string `json:"clause_text"`
}

// Compartment is the finding for a single topic. The topic string is
// also the compartment's identity within a session's index.
type Compartment struct {
	Topic         string   `json:"topic"`
	Decision      string   `json:"decision"`
	Justification string   `json:"justification"`
	Calculation   string   `json:"calculation,omitempty"`
	Clauses       []Clause `json:"clauses"`
}

// Index maps topic to compartment.
type Index map[string]Compartment

// Upsert returns a new index with comp stored under its topic. The
// previous compartment for that topic, if any, is replaced wholesale;
// sub-fields are never merged. The input index is left untouched.
func Upsert(index Index, comp Compartment) Index {
	next := make(Index, len(index)+1)
	for topic, existing := range index {
		next[topic] = existing
	}
	next[comp.Topic] = comp
	return next
}

// SortedTopics returns the index's topics in lexical order so
// renderers walk the map deterministically.
func SortedTopics(index Index) []string {
	topics := make([]string, 0, len(index))
	for topic := range index {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Status is the coarse classification derived from a decision label.
type Status int

const (
	StatusUnknown Status = iota
	StatusApproved
	StatusDenied
	StatusNeedsInfo
)

// Classify maps a free-form decision string onto a Status using the
// same substring rules the upstream client applied to its icons.
func Classify(decision string) Status {
	d := strings.ToLower(decision)
	switch {
	case strings.Contains(d, "approved"):
		return StatusApproved
	case strings.Contains(d, "denied"):
		return StatusDenied
	case strings.Contains(d, "information"):
		return StatusNeedsInfo
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusDenied:
		return "denied"
	case StatusNeedsInfo:
		return "needs information"
	default:
		return "unknown"
	}
}
