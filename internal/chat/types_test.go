package chat

import (
	"strings"
	"testing"
)

func TestMarshalHistoryWireRoles(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, Content: "Hello! Please upload your policy documents to get started."},
		{Role: RoleUser, Content: "Is my knee surgery covered?"},
		{Role: RoleAssistant, Content: "Yes.", Decision: "Approved"},
	}

	data, err := MarshalHistory(history)
	if err != nil {
		t.Fatalf("MarshalHistory: %v", err)
	}
	if strings.Contains(data, `"assistant"`) {
		t.Fatalf("wire history leaked internal role: %s", data)
	}
	if !strings.Contains(data, `"role":"ai"`) {
		t.Fatalf("wire history missing ai role: %s", data)
	}
	if !strings.Contains(data, `"decision":"Approved"`) {
		t.Fatalf("wire history dropped decision: %s", data)
	}

	back, err := UnmarshalHistory([]byte(data))
	if err != nil {
		t.Fatalf("UnmarshalHistory: %v", err)
	}
	if len(back) != 3 {
		t.Fatalf("round trip count=%d, want 3", len(back))
	}
	if back[0].Role != RoleAssistant || back[1].Role != RoleUser {
		t.Fatalf("round trip roles unexpected: %+v", back)
	}
}

func TestMarshalHistoryEmpty(t *testing.T) {
	data, err := MarshalHistory(nil)
	if err != nil {
		t.Fatalf("MarshalHistory: %v", err)
	}
	if data != "[]" {
		t.Fatalf("empty history=%q, want []", data)
	}
}
