package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"claimdesk/internal/chat"
	"claimdesk/internal/evidence"
)

// QueryResponse is the structured answer to one question. Optional
// fields are pointers: nil means the service omitted (or nulled) the
// field, which is distinct from a present-but-empty value. Evidence
// is non-nil iff the response carried both a topic and a supporting
// clause list; an empty clause list still counts as present.
type QueryResponse struct {
	Answer   string
	Decision *string
	NewTitle *string
	Evidence *evidence.Compartment
}

type clauseWire struct {
	ClauseID       string `json:"clause_id"`
	SourceDocument string `json:"source_document"`
	ClauseText     string `json:"clause_text"`
}

type queryWire struct {
	ConversationalAnswer   string       `json:"conversational_answer"`
	Decision               *string      `json:"decision"`
	NewChatTitle           *string      `json:"new_chat_title"`
	Topic                  *string      `json:"topic"`
	Justification          *string      `json:"justification"`
	CalculationExplanation *string      `json:"calculation_explanation"`
	SupportingClauses      []clauseWire `json:"supporting_clauses"`
}

// Query submits a question for a session. The history is the
// conversation as it stood before the question was appended; the
// question itself travels in the query field. The call has no timeout
// beyond the transport default.
func (c *Client) Query(ctx context.Context, sessionID, question string, history []chat.Message) (QueryResponse, error) {
	historyJSON, err := chat.MarshalHistory(history)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("marshal message history: %w", err)
	}

	form := url.Values{}
	form.Set("query", question)
	form.Set("messages_json", historyJSON)
	form.Set("chat_id", sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/query",
		strings.NewReader(form.Encode()))
	if err != nil {
		return QueryResponse{}, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return QueryResponse{}, &TransportError{Kind: KindTimeout, Message: "The request timed out."}
		}
		return QueryResponse{}, &TransportError{Kind: KindNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readDetail(resp.Body)
		if detail == "" {
			detail = fmt.Sprintf("query failed with status %d", resp.StatusCode)
		}
		kind := KindServerError
		if resp.StatusCode == http.StatusRequestEntityTooLarge {
			kind = KindPayloadTooLarge
		}
		return QueryResponse{}, &TransportError{Kind: kind, Message: detail}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return QueryResponse{}, &TransportError{Kind: KindNetworkError, Message: err.Error()}
	}
	var wire queryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return QueryResponse{}, &TransportError{Kind: KindServerError, Message: "Server returned an unreadable query response."}
	}
	return fromWire(wire), nil
}

func fromWire(wire queryWire) QueryResponse {
	out := QueryResponse{
		Answer:   wire.ConversationalAnswer,
		Decision: wire.Decision,
		NewTitle: wire.NewChatTitle,
	}
	if wire.Topic != nil && wire.SupportingClauses != nil {
		comp := evidence.Compartment{
			Topic:   *wire.Topic,
			Clauses: make([]evidence.Clause, 0, len(wire.SupportingClauses)),
		}
		if wire.Decision != nil {
			comp.Decision = *wire.Decision
		}
		if wire.Justification != nil {
			comp.Justification = *wire.Justification
		}
		if wire.CalculationExplanation != nil {
			comp.Calculation = *wire.CalculationExplanation
		}
		for _, cl := range wire.SupportingClauses {
			comp.Clauses = append(comp.Clauses, evidence.Clause{
				ClauseID:       cl.ClauseID,
				SourceDocument: cl.SourceDocument,
				ClauseText:     cl.ClauseText,
			})
		}
		out.Evidence = &comp
	}
	return out
}
