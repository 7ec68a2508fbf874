package chat

import "encoding/json"

// Roles used in a conversation. The remote service and the upstream
// persisted format call the assistant role "ai"; the wire mapping
// lives in WireRole / roleFromWire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	wireRoleAssistant = "ai"
)

// Message is one entry in a session's conversation. Decision is only
// ever set on assistant messages and carries the service's
// classification label (e.g. "Approved", "Denied").
type Message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Decision string `json:"decision,omitempty"`
}

// WireRole maps an internal role onto the service's wire vocabulary.
func WireRole(role string) string {
	if role == RoleAssistant {
		return wireRoleAssistant
	}
	return role
}

func roleFromWire(role string) string {
	if role == wireRoleAssistant {
		return RoleAssistant
	}
	return role
}

type wireMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Decision string `json:"decision,omitempty"`
}

// MarshalHistory serializes a message history the way the query
// endpoint expects it in the messages_json form field.
func MarshalHistory(messages []Message) (string, error) {
	wire := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wire = append(wire, wireMessage{
			Role:     WireRole(msg.Role),
			Content:  msg.Content,
			Decision: msg.Decision,
		})
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalHistory parses a wire-format history back into internal
// messages. Used when importing state written by older clients.
func UnmarshalHistory(data []byte) ([]Message, error) {
	var wire []wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(wire))
	for _, msg := range wire {
		messages = append(messages, Message{
			Role:     roleFromWire(msg.Role),
			Content:  msg.Content,
			Decision: msg.Decision,
		})
	}
	return messages, nil
}
