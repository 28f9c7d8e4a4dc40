// Package messaging implements conversations between users and employees.
//
// A conversation is identified by its unordered pair of participants. The
// pair is stored in canonical order under a unique index, and every lookup
// goes through the same equality query on that ordered pair.
package messaging

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"landestate/internal/domain"
	"landestate/internal/metrics"
	"landestate/internal/queue"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxContentLength is the longest accepted message body, in characters
const MaxContentLength = 5000

var (
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrNotAllowed           = errors.New("you cannot message this participant")
	ErrSelfMessage          = errors.New("you cannot message yourself")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrMessageNotFound      = errors.New("message not found")
	ErrEmptyContent         = errors.New("message content is required")
	ErrContentTooLong       = errors.New("message content is too long")
)

// Profile is the public view of a participant
type Profile struct {
	domain.Participant
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
	Position     string `json:"position,omitempty"`
	managerID    uint
}

// ConversationSummary is one row of a participant's inbox
type ConversationSummary struct {
	ID            uint            `json:"id"`
	Counterpart   Profile         `json:"participant"`
	LastMessage   *domain.Message `json:"lastMessage"`
	LastMessageAt *time.Time      `json:"lastMessageAt"`
	UnreadCount   int64           `json:"unreadCount"`
}

// Service owns conversation and message persistence
type Service struct {
	db        *gorm.DB
	publisher queue.Publisher
}

// NewService wires the service; a nil publisher disables events
func NewService(db *gorm.DB, publisher queue.Publisher) *Service {
	if publisher == nil {
		publisher = queue.LogPublisher{}
	}
	return &Service{db: db, publisher: publisher}
}

// resolve loads the public profile of a participant
func resolve(db *gorm.DB, p domain.Participant) (Profile, error) {
	switch p.Kind {
	case domain.KindUser:
		var u domain.User
		if err := db.First(&u, p.ID).Error; err != nil {
			return Profile{}, notFound(err, ErrParticipantNotFound)
		}
		return Profile{Participant: p, Name: u.Name, Email: u.Email, ProfileImage: u.ProfileImage}, nil
	case domain.KindEmployee:
		var e domain.Employee
		if err := db.First(&e, p.ID).Error; err != nil {
			return Profile{}, notFound(err, ErrParticipantNotFound)
		}
		return Profile{Participant: p, Name: e.Name, Email: e.Email, ProfileImage: e.ProfileImage, Position: e.Position, managerID: e.ManagerID}, nil
	}
	return Profile{}, ErrParticipantNotFound
}

// canMessage allows user-user pairs, a user with its own employees, and employees of the same manager
func canMessage(from, to Profile) error {
	if from.Participant == to.Participant {
		return ErrSelfMessage
	}
	switch {
	case from.Kind == domain.KindUser && to.Kind == domain.KindUser:
		return nil
	case from.Kind == domain.KindUser && to.Kind == domain.KindEmployee:
		if to.managerID == from.ID {
			return nil
		}
	case from.Kind == domain.KindEmployee && to.Kind == domain.KindUser:
		if from.managerID == to.ID {
			return nil
		}
	case from.Kind == domain.KindEmployee && to.Kind == domain.KindEmployee:
		if from.managerID == to.managerID {
			return nil
		}
	}
	return ErrNotAllowed
}

// pairQuery selects the conversation row of an unordered pair
func pairQuery(db *gorm.DB, a, b domain.Participant) *gorm.DB {
	first, second := domain.OrderedPair(a, b)
	return db.Where(
		"participant_a_kind = ? AND participant_a_id = ? AND participant_b_kind = ? AND participant_b_id = ?",
		first.Kind, first.ID, second.Kind, second.ID,
	)
}

// involving selects conversations where p is either participant
func involving(db *gorm.DB, p domain.Participant) *gorm.DB {
	return db.Where(
		"(participant_a_kind = ? AND participant_a_id = ?) OR (participant_b_kind = ? AND participant_b_id = ?)",
		p.Kind, p.ID, p.Kind, p.ID,
	)
}

// FindConversation returns the conversation between a and b regardless of argument order
func (s *Service) FindConversation(ctx context.Context, a, b domain.Participant) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := pairQuery(s.db.WithContext(ctx), a, b).First(&conv).Error; err != nil {
		return nil, notFound(err, ErrConversationNotFound)
	}
	return &conv, nil
}

// FindOrCreateConversation returns the pair's conversation, creating it on first use
func (s *Service) FindOrCreateConversation(ctx context.Context, a, b domain.Participant) (*domain.Conversation, error) {
	return findOrCreate(s.db.WithContext(ctx), a, b)
}

func findOrCreate(db *gorm.DB, a, b domain.Participant) (*domain.Conversation, error) {
	conv := domain.NewConversation(a, b)
	// The unique pair index arbitrates concurrent creators; losers read the winner's row.
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&conv)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 && conv.ID != 0 {
		metrics.ConversationsCreatedTotal.Inc()
		return &conv, nil
	}
	var existing domain.Conversation
	if err := pairQuery(db, a, b).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Send stores a message from one participant to another
func (s *Service) Send(ctx context.Context, from, to domain.Participant, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	db := s.db.WithContext(ctx)
	sender, err := resolve(db, from)
	if err != nil {
		return nil, err
	}
	receiver, err := resolve(db, to)
	if err != nil {
		return nil, err
	}
	if err := canMessage(sender, receiver); err != nil {
		return nil, err
	}

	var msg domain.Message
	err = db.Transaction(func(tx *gorm.DB) error {
		conv, err := findOrCreate(tx, from, to)
		if err != nil {
			return err
		}
		msg = domain.Message{
			ConversationID: conv.ID,
			SenderKind:     from.Kind,
			SenderID:       from.ID,
			ReceiverKind:   to.Kind,
			ReceiverID:     to.ID,
			Content:        content,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(conv).Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMessageSent(string(from.Kind))
	event := queue.NewEvent(queue.EventMessageSent, queue.MessageSent{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         from,
		Receiver:       to,
	})
	if err := s.publisher.Publish(ctx, to.String(), event); err != nil {
		logrus.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"error":      err.Error(),
		}).Warn("Failed to publish message event")
	}
	return &msg, nil
}

// Conversations lists p's conversations, most recent activity first
func (s *Service) Conversations(ctx context.Context, p domain.Participant) ([]ConversationSummary, error) {
	db := s.db.WithContext(ctx)
	var convs []domain.Conversation
	if err := involving(db.Model(&domain.Conversation{}), p).
		Order("COALESCE(last_message_at, created_at) DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		other := conv.Counterpart(p)
		profile, err := resolve(db, other)
		if errors.Is(err, ErrParticipantNotFound) {
			profile = Profile{Participant: other, Name: "Deleted account"}
		} else if err != nil {
			return nil, err
		}

		summary := ConversationSummary{ID: conv.ID, Counterpart: profile, LastMessageAt: conv.LastMessageAt}
		var last domain.Message
		err = db.Where("conversation_id = ?", conv.ID).Order("created_at DESC, id DESC").First(&last).Error
		switch {
		case err == nil:
			summary.LastMessage = &last
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
		if err := unreadQuery(db, p).Where("conversation_id = ?", conv.ID).Count(&summary.UnreadCount).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Messages returns a conversation's messages in order and marks p's incoming messages read
func (s *Service) Messages(ctx context.Context, p domain.Participant, conversationID uint) ([]domain.Message, error) {
	db := s.db.WithContext(ctx)
	var conv domain.Conversation
	if err := db.First(&conv, conversationID).Error; err != nil {
		return nil, notFound(err, ErrConversationNotFound)
	}
	if !conv.Includes(p) {
		return nil, ErrNotParticipant
	}
	return s.readConversation(db, p, conv.ID)
}

// MessagesWith returns the messages exchanged with other; empty when they never talked
func (s *Service) MessagesWith(ctx context.Context, p, other domain.Participant) ([]domain.Message, error) {
	db := s.db.WithContext(ctx)
	if _, err := resolve(db, other); err != nil {
		return nil, err
	}
	var conv domain.Conversation
	err := pairQuery(db, p, other).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Message{}, nil
	} else if err != nil {
		return nil, err
	}
	return s.readConversation(db, p, conv.ID)
}

func (s *Service) readConversation(db *gorm.DB, p domain.Participant, conversationID uint) ([]domain.Message, error) {
	now := time.Now().UTC()
	if err := unreadQuery(db, p).Where("conversation_id = ?", conversationID).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, err
	}
	messages := []domain.Message{}
	if err := db.Where("conversation_id = ?", conversationID).Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead marks one message read; only its receiver may do so
func (s *Service) MarkRead(ctx context.Context, p domain.Participant, messageID uint) (*domain.Message, error) {
	db := s.db.WithContext(ctx)
	var msg domain.Message
	if err := db.First(&msg, messageID).Error; err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	if msg.Receiver() != p {
		return nil, ErrNotParticipant
	}
	if msg.IsRead {
		return &msg, nil
	}
	now := time.Now().UTC()
	if err := db.Model(&msg).Updates(map[string]any{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, err
	}
	msg.IsRead, msg.ReadAt = true, &now
	return &msg, nil
}

// UnreadCount counts p's unread incoming messages
func (s *Service) UnreadCount(ctx context.Context, p domain.Participant) (int64, error) {
	var n int64
	err := unreadQuery(s.db.WithContext(ctx), p).Count(&n).Error
	return n, err
}

func unreadQuery(db *gorm.DB, p domain.Participant) *gorm.DB {
	return db.Model(&domain.Message{}).
		Where("receiver_kind = ? AND receiver_id = ? AND is_read = ?", p.Kind, p.ID, false)
}

// Contacts lists the participants p may start a conversation with
func (s *Service) Contacts(ctx context.Context, p domain.Participant) ([]Profile, error) {
	db := s.db.WithContext(ctx)
	self, err := resolve(db, p)
	if err != nil {
		return nil, err
	}
	contacts := []Profile{}
	managerID := self.ID
	if p.Kind == domain.KindEmployee {
		managerID = self.managerID
		manager, err := resolve(db, domain.UserParticipant(managerID))
		if err == nil {
			contacts = append(contacts, manager)
		} else if !errors.Is(err, ErrParticipantNotFound) {
			return nil, err
		}
	}
	var employees []domain.Employee
	if err := db.Where("manager_id = ? AND is_active = ?", managerID, true).Order("name").Find(&employees).Error; err != nil {
		return nil, err
	}
	for _, e := range employees {
		if p.Kind == domain.KindEmployee && e.ID == p.ID {
			continue
		}
		contacts = append(contacts, Profile{
			Participant:  e.Participant(),
			Name:         e.Name,
			Email:        e.Email,
			ProfileImage: e.ProfileImage,
			Position:     e.Position,
			managerID:    e.ManagerID,
		})
	}
	return contacts, nil
}

// DeleteParticipantData removes every conversation and message involving p.
// Call it inside the transaction that deletes the participant's account.
func DeleteParticipantData(tx *gorm.DB, p domain.Participant) error {
	var ids []uint
	if err := involving(tx.Model(&domain.Conversation{}), p).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("conversation_id IN ?", ids).Delete(&domain.Message{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&domain.Conversation{}).Error
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
