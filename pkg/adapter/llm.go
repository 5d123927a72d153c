package adapter

import (
	"context"
	"fmt"

	"github.com/fa-friend/fa/pkg/model"
)

// ChatInput is one model call: a system prompt, prior turns (oldest first)
// and the new user message.
type ChatInput struct {
	System  string
	History []*model.Message
	Message string
}

// LLM is the model gateway used for replies that no template covers
type LLM interface {
	Chat(ctx context.Context, input ChatInput) (string, error)
}

// GatewayError reports that the model provider could not produce a reply.
// Status is the HTTP status when the provider answered, otherwise 0.
type GatewayError struct {
	Provider string
	Status   int
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s gateway failed with status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s gateway failed: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// trimLeadingAssistant drops assistant turns before the first user turn.
// Providers require the conversation to start with the user.
func trimLeadingAssistant(history []*model.Message) []*model.Message {
	for i, msg := range history {
		if msg.Role == model.RoleUser {
			return history[i:]
		}
	}
	return nil
}
