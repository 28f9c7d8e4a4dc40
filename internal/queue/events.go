package queue

import (
	"time"

	"landestate/internal/domain"
)

// Event types
const (
	EventPasswordResetRequested = "password_reset_requested"
	EventMessageSent            = "message_sent"
)

// Event is the envelope written to the notifications topic
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// PasswordReset is the payload of a password_reset_requested event
type PasswordReset struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ResetURL  string    `json:"resetUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MessageSent is the payload of a message_sent event
type MessageSent struct {
	MessageID      uint               `json:"messageId"`
	ConversationID uint               `json:"conversationId"`
	Sender         domain.Participant `json:"sender"`
	Receiver       domain.Participant `json:"receiver"`
}

// NewEvent stamps a payload with its type and the current time
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}
