package models

import "time"

const (
	ChatRoleUser = "user"
	ChatRoleBot  = "bot"
)

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is one frame sent by the widget over the socket.
type ChatRequest struct {
	Message string `json:"message"`
	Summary string `json:"summary,omitempty"`
}

type ChatReply struct {
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

type SummarizeRequest struct {
	PreviousSummary string        `json:"previous_summary"`
	Messages        []ChatMessage `json:"messages" binding:"required"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}
