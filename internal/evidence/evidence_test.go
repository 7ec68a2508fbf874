package evidence

import "testing"

func TestUpsertReplacesWholeCompartment(t *testing.T) {
	first := Compartment{
		Topic:         "Knee Surgery",
		Decision:      "Approved",
		Justification: "Covered under clause 4.2.",
		Calculation:   "80% of billed amount",
		Clauses:       []Clause{{ClauseID: "4.2", SourceDocument: "policy.pdf", ClauseText: "Surgical procedures are covered."}},
	}
	second := Compartment{
		Topic:         "Knee Surgery",
		Decision:      "Denied",
		Justification: "Waiting period not met.",
		Clauses:       []Clause{{ClauseID: "7.1", SourceDocument: "policy.pdf", ClauseText: "A 24 month waiting period applies."}},
	}

	index := Upsert(Index(nil), first)
	index = Upsert(index, second)

	if len(index) != 1 {
		t.Fatalf("index size=%d, want 1", len(index))
	}
	got := index["Knee Surgery"]
	if got.Decision != "Denied" {
		t.Fatalf("Decision=%q, want Denied", got.Decision)
	}
	if got.Calculation != "" {
		t.Fatalf("Calculation=%q, want replaced with empty", got.Calculation)
	}
	if len(got.Clauses) != 1 || got.Clauses[0].ClauseID != "7.1" {
		t.Fatalf("Clauses unexpected: %+v", got.Clauses)
	}
}

func TestUpsertDoesNotMutateInput(t *testing.T) {
	original := Upsert(nil, Compartment{Topic: "A", Decision: "Approved"})
	_ = Upsert(original, Compartment{Topic: "A", Decision: "Denied"})
	_ = Upsert(original, Compartment{Topic: "B"})

	if len(original) != 1 {
		t.Fatalf("input index grew: %+v", original)
	}
	if original["A"].Decision != "Approved" {
		t.Fatalf("input index mutated: %+v", original["A"])
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		decision string
		want     Status
	}{
		{"Approved", StatusApproved},
		{"claim approved with copay", StatusApproved},
		{"DENIED", StatusDenied},
		{"More Information Required", StatusNeedsInfo},
		{"", StatusUnknown},
		{"pending review", StatusUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.decision); got != tc.want {
			t.Fatalf("Classify(%q)=%v, want %v", tc.decision, got, tc.want)
		}
	}
}
