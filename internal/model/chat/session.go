package chat

import "time"

// Session captures one ongoing conversation. StudentID is bound once the
// advisor registers a student on the session's behalf.
type Session struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
