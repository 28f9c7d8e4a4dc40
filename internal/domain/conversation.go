package domain

import "time"

// Conversation Model: one row per unordered pair of participants.
// The pair is stored in canonical order (see OrderedPair) under a unique index.
type Conversation struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ParticipantAKind ParticipantKind `gorm:"column:participant_a_kind;size:16;not null;uniqueIndex:idx_conversation_pair,priority:1" json:"-"`
	ParticipantAID   uint            `gorm:"column:participant_a_id;not null;uniqueIndex:idx_conversation_pair,priority:2" json:"-"`
	ParticipantBKind ParticipantKind `gorm:"column:participant_b_kind;size:16;not null;uniqueIndex:idx_conversation_pair,priority:3" json:"-"`
	ParticipantBID   uint            `gorm:"column:participant_b_id;not null;uniqueIndex:idx_conversation_pair,priority:4" json:"-"`
	LastMessageAt    *time.Time      `json:"lastMessageAt"`
	Messages         []Message       `gorm:"constraint:OnDelete:CASCADE;" json:"messages,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewConversation builds an unsaved conversation for the pair in canonical order.
func NewConversation(a, b Participant) Conversation {
	first, second := OrderedPair(a, b)
	return Conversation{
		ParticipantAKind: first.Kind,
		ParticipantAID:   first.ID,
		ParticipantBKind: second.Kind,
		ParticipantBID:   second.ID,
	}
}

func (c *Conversation) ParticipantA() Participant {
	return Participant{Kind: c.ParticipantAKind, ID: c.ParticipantAID}
}

func (c *Conversation) ParticipantB() Participant {
	return Participant{Kind: c.ParticipantBKind, ID: c.ParticipantBID}
}

// Includes reports whether p is one of the two participants.
func (c *Conversation) Includes(p Participant) bool {
	return c.ParticipantA() == p || c.ParticipantB() == p
}

// Counterpart returns the participant on the other side of p.
func (c *Conversation) Counterpart(p Participant) Participant {
	if c.ParticipantA() == p {
		return c.ParticipantB()
	}
	return c.ParticipantA()
}
