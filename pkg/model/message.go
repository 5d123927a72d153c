package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageID string

// NewMessageID generates a new unique MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one persisted chat turn
type Message struct {
	ID        MessageID `json:"id" firestore:"id"`
	UserID    UserID    `json:"user_id" firestore:"user_id"`
	Role      Role      `json:"role" firestore:"role"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}
