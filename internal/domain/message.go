package domain

import "time"

// Message Model
type Message struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                 // Primary key
	ConversationID uint            `gorm:"index;not null" json:"conversationId"` // Parent conversation
	SenderKind     ParticipantKind `gorm:"size:16;not null;index:idx_message_sender" json:"senderType"`
	SenderID       uint            `gorm:"not null;index:idx_message_sender" json:"senderId"`
	ReceiverKind   ParticipantKind `gorm:"size:16;not null;index:idx_message_receiver" json:"receiverType"`
	ReceiverID     uint            `gorm:"not null;index:idx_message_receiver" json:"receiverId"`
	Content        string          `gorm:"type:text;not null" json:"content"` // Message body
	IsRead         bool            `gorm:"not null;default:false" json:"isRead"`
	ReadAt         *time.Time      `json:"readAt"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (m *Message) Sender() Participant {
	return Participant{Kind: m.SenderKind, ID: m.SenderID}
}

func (m *Message) Receiver() Participant {
	return Participant{Kind: m.ReceiverKind, ID: m.ReceiverID}
}
