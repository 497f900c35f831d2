package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/lifecycle"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

type chatFixture struct {
	tickets    *TicketService
	chat       *ChatService
	messages   *fakeChatRepo
	history    *fakeHistoryRepo
	dispatcher *recordingDispatcher
}

func newChatFixture() *chatFixture {
	machine := lifecycle.NewMachine(transport)
	history := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}
	tickets := NewTicketService(TicketDependencies{
		MEPRepo:     newFakeMEPRepo(),
		VRRepo:      newFakeVRRepo(),
		HistoryRepo: history,
		Assignment: NewAssignmentService(AssignmentDependencies{
			EmployeeRepo: newFakeEmployeeRepo(),
			Router:       staticRouter{"peppl": mepPrimary},
			Machine:      machine,
		}),
		Machine:    machine,
		Dispatcher: dispatcher,
	})
	messages := &fakeChatRepo{}
	return &chatFixture{
		tickets:    tickets,
		messages:   messages,
		history:    history,
		dispatcher: dispatcher,
		chat: NewChatService(ChatDependencies{
			MessageRepo: messages,
			Tickets:     tickets,
			HistoryRepo: history,
			Dispatcher:  dispatcher,
			Logger:      zap.NewNop(),
		}),
	}
}

func TestChatPostNotifiesOtherParticipants(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	ticket, err := f.tickets.CreateMEP(ctx, requester, MEPCreateInput{Location: "PEPPL", Category: "Plumbing"})
	require.NoError(t, err)

	msg, err := f.chat.Post(ctx, domain.Principal{Email: requester}, ticket.TicketNumber, "  tap is leaking  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "tap is leaking", msg.Message)
	assert.Equal(t, int64(1), msg.ID)

	posted := f.dispatcher.ofType(events.EventChatMessagePosted)
	require.Len(t, posted, 1)
	payload := posted[0].Payload.(events.ChatMessagePostedPayload)
	assert.Equal(t, []string{mepPrimary}, payload.Recipients)
	assert.Equal(t, ticket.TicketNumber, payload.Ticket.TicketNumber)

	entries := f.history.forTicket(ticket.TicketNumber)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.ActionChatMessage, last.Action)
	assert.Equal(t, "Chat message sent", last.Comment.String)

	_, err = f.chat.Post(ctx, domain.Principal{Email: "head@example.com", IsHOD: true}, ticket.TicketNumber, "status?", nil)
	require.NoError(t, err)
	posted = f.dispatcher.ofType(events.EventChatMessagePosted)
	assert.Equal(t, []string{requester, mepPrimary}, posted[1].Payload.(events.ChatMessagePostedPayload).Recipients)

	list, err := f.chat.List(ctx, domain.Principal{Email: mepPrimary}, ticket.TicketNumber)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "tap is leaking", list[0].Message)
}

func TestChatGuards(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	ticket, err := f.tickets.CreateMEP(ctx, requester, MEPCreateInput{Location: "PEPPL", Category: "Civil"})
	require.NoError(t, err)

	_, err = f.chat.Post(ctx, domain.Principal{Email: requester}, ticket.TicketNumber, "   ", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.chat.Post(ctx, domain.Principal{Email: "stranger@example.com"}, ticket.TicketNumber, "hi", nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.chat.List(ctx, domain.Principal{Email: "stranger@example.com"}, ticket.TicketNumber)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.chat.List(ctx, domain.Principal{Email: requester}, "VR-20250304-001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.dispatcher.ofType(events.EventChatMessagePosted))
}

func TestChatPostKeepsTicketNumberAfterRequestBufferReuse(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	ticket, err := f.tickets.CreateMEP(ctx, requester, MEPCreateInput{Location: "PEPPL", Category: "Civil"})
	require.NoError(t, err)

	buf := []byte(ticket.TicketNumber)
	msg, err := f.chat.Post(ctx, domain.Principal{Email: requester}, aliasedString(buf), "door is stuck", nil)
	require.NoError(t, err)
	copy(buf, "XX-00000000-000")

	assert.Equal(t, ticket.TicketNumber, msg.TicketNumber)
	posted := f.dispatcher.ofType(events.EventChatMessagePosted)
	require.Len(t, posted, 1)
	assert.Equal(t, ticket.TicketNumber, posted[0].TicketNumber)
	entries := f.history.forTicket(ticket.TicketNumber)
	assert.Equal(t, ticket.TicketNumber, entries[len(entries)-1].TicketNumber)
}
