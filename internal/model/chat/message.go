package chat

import "time"

// Message roles persisted in conversation history. Tool-call and tool-result
// turns produced inside the advisor loop are never persisted; only the user
// utterance and the final assistant reply are.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted turn of a conversation, append-only and ordered
// by creation time.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
