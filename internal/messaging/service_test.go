package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"landestate/internal/db/dbtest"
	"landestate/internal/domain"
	"landestate/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ string, event queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	pub      *recordingPublisher
	landlord domain.User
	other    domain.User
	alice    domain.Employee
	bob      domain.Employee
	stranger domain.Employee
}

func setup(t *testing.T) *fixture {
	t.Helper()
	domain.BcryptCost = bcrypt.MinCost
	gdb := dbtest.Open(t)
	f := &fixture{db: gdb, pub: &recordingPublisher{}}
	f.svc = NewService(gdb, f.pub)

	f.landlord = domain.User{Name: "Lena Landlord", Email: "lena@example.com", Password: "password1"}
	f.other = domain.User{Name: "Otto Owner", Email: "otto@example.com", Password: "password1"}
	require.NoError(t, gdb.Create(&f.landlord).Error)
	require.NoError(t, gdb.Create(&f.other).Error)

	newEmployee := func(name string, manager uint) domain.Employee {
		e := domain.Employee{ManagerID: manager, Name: name, Email: strings.ToLower(name) + "@example.com", Password: "password1", IsActive: true}
		require.NoError(t, gdb.Create(&e).Error)
		return e
	}
	f.alice = newEmployee("Alice", f.landlord.ID)
	f.bob = newEmployee("Bob", f.landlord.ID)
	f.stranger = newEmployee("Stan", f.other.ID)
	return f
}

func TestConversationLookupIsOrderIndependent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u, e := f.landlord.Participant(), f.alice.Participant()

	created, err := f.svc.FindOrCreateConversation(ctx, u, e)
	require.NoError(t, err)

	again, err := f.svc.FindOrCreateConversation(ctx, e, u)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	found, err := f.svc.FindConversation(ctx, e, u)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserAndEmployeeWithSameIDDoNotCollide(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	// user 1 and employee 1 are different participants
	require.Equal(t, f.landlord.ID, f.alice.ID)

	_, err := f.svc.Send(ctx, f.landlord.Participant(), f.alice.Participant(), "hello")
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.landlord.Participant(), f.other.Participant(), "hi neighbour")
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&domain.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSendAndRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u, e := f.landlord.Participant(), f.alice.Participant()

	msg, err := f.svc.Send(ctx, u, e, "  Please check unit 4B  ")
	require.NoError(t, err)
	assert.Equal(t, "Please check unit 4B", msg.Content)
	assert.Equal(t, e, msg.Receiver())
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, queue.EventMessageSent, f.pub.events[0].Type)

	_, err = f.svc.Send(ctx, e, u, "On it")
	require.NoError(t, err)

	n, err := f.svc.UnreadCount(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	msgs, err := f.svc.MessagesWith(ctx, e, u)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Please check unit 4B", msgs[0].Content)
	assert.True(t, msgs[0].IsRead)
	assert.False(t, msgs[1].IsRead, "own outgoing message stays unread for the receiver")

	n, err = f.svc.UnreadCount(ctx, e)
	require.NoError(t, err)
	assert.Zero(t, n)

	conv, err := f.svc.FindConversation(ctx, u, e)
	require.NoError(t, err)
	assert.NotNil(t, conv.LastMessageAt)
}

func TestSendRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, f.landlord.Participant(), f.landlord.Participant(), "me")
	assert.ErrorIs(t, err, ErrSelfMessage)

	_, err = f.svc.Send(ctx, f.landlord.Participant(), f.stranger.Participant(), "hi")
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = f.svc.Send(ctx, f.stranger.Participant(), f.alice.Participant(), "hi")
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = f.svc.Send(ctx, f.alice.Participant(), f.bob.Participant(), "coworker")
	assert.NoError(t, err)

	_, err = f.svc.Send(ctx, f.landlord.Participant(), domain.EmployeeParticipant(999), "ghost")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = f.svc.Send(ctx, f.landlord.Participant(), f.alice.Participant(), "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = f.svc.Send(ctx, f.landlord.Participant(), f.alice.Participant(), strings.Repeat("x", MaxContentLength+1))
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestMessagesRequiresParticipant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	msg, err := f.svc.Send(ctx, f.landlord.Participant(), f.alice.Participant(), "private")
	require.NoError(t, err)

	_, err = f.svc.Messages(ctx, f.bob.Participant(), msg.ConversationID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.svc.Messages(ctx, f.bob.Participant(), 404)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	msgs, err := f.svc.Messages(ctx, f.alice.Participant(), msg.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestMessagesWithNoConversationIsEmpty(t *testing.T) {
	f := setup(t)
	msgs, err := f.svc.MessagesWith(context.Background(), f.landlord.Participant(), f.bob.Participant())
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NotNil(t, msgs)
}

func TestMarkRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	msg, err := f.svc.Send(ctx, f.landlord.Participant(), f.alice.Participant(), "ping")
	require.NoError(t, err)

	_, err = f.svc.MarkRead(ctx, f.landlord.Participant(), msg.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	read, err := f.svc.MarkRead(ctx, f.alice.Participant(), msg.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)

	_, err = f.svc.MarkRead(ctx, f.alice.Participant(), 999)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestConversationsSummary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.landlord.Participant()
	_, err := f.svc.Send(ctx, f.alice.Participant(), u, "first")
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.bob.Participant(), u, "second")
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.bob.Participant(), u, "third")
	require.NoError(t, err)

	list, err := f.svc.Conversations(ctx, u)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]ConversationSummary{}
	for _, s := range list {
		byName[s.Counterpart.Name] = s
	}
	assert.Equal(t, int64(2), byName["Bob"].UnreadCount)
	assert.Equal(t, "third", byName["Bob"].LastMessage.Content)
	assert.Equal(t, int64(1), byName["Alice"].UnreadCount)
	assert.Equal(t, domain.KindEmployee, byName["Alice"].Counterpart.Kind)
}

func TestContacts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	contacts, err := f.svc.Contacts(ctx, f.landlord.Participant())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	contacts, err = f.svc.Contacts(ctx, f.alice.Participant())
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, f.landlord.Participant(), contacts[0].Participant)
	assert.Equal(t, "Bob", contacts[1].Name)
}

func TestDeleteParticipantData(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Send(ctx, f.landlord.Participant(), f.alice.Participant(), "one")
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, f.landlord.Participant(), f.bob.Participant(), "two")
	require.NoError(t, err)

	require.NoError(t, DeleteParticipantData(f.db, f.alice.Participant()))

	var convs, msgs int64
	require.NoError(t, f.db.Model(&domain.Conversation{}).Count(&convs).Error)
	require.NoError(t, f.db.Model(&domain.Message{}).Count(&msgs).Error)
	assert.Equal(t, int64(1), convs)
	assert.Equal(t, int64(1), msgs)
}

func TestConcurrentFindOrCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := f.landlord.Participant(), f.bob.Participant()
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := f.svc.FindOrCreateConversation(ctx, a, b)
			errs[i] = err
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()
	for i := range ids {
		require.NoError(t, errs[i], fmt.Sprintf("worker %d", i))
		assert.Equal(t, ids[0], ids[i])
	}
}
