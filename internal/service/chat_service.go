package service

import (
	"context"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/lifecycle"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// ChatListLimit caps how many messages a conversation listing returns.
const ChatListLimit = 200

// TicketLookup loads a ticket of either kind by number.
type TicketLookup interface {
	Lookup(ctx context.Context, number string) (*TicketRef, error)
}

// ChatService manages ticket conversations.
type ChatService struct {
	messages   repository.ChatMessageRepository
	tickets    TicketLookup
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ChatDependencies bundles collaborators.
type ChatDependencies struct {
	MessageRepo repository.ChatMessageRepository
	Tickets     TicketLookup
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewChatService creates the service.
func NewChatService(deps ChatDependencies) *ChatService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		messages:   deps.MessageRepo,
		tickets:    deps.Tickets,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns the oldest ChatListLimit messages of a ticket.
func (s *ChatService) List(ctx context.Context, p domain.Principal, number string) ([]domain.ChatMessage, error) {
	if _, err := s.visibleTicket(ctx, p, number); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, number, ChatListLimit)
	if err != nil {
		return nil, persistenceError("list chat messages", err)
	}
	return msgs, nil
}

// Post appends a message and notifies every participant except the sender.
func (s *ChatService) Post(ctx context.Context, p domain.Principal, number, message string, attachments []domain.Attachment) (*domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"message": "required"})
	}
	ref, err := s.visibleTicket(ctx, p, number)
	if err != nil {
		return nil, err
	}
	number = ref.Ticket.TicketNumber

	msg := &domain.ChatMessage{
		TicketNumber: number,
		SenderEmail:  p.Email,
		Message:      message,
		Attachments:  attachments,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, persistenceError("post chat message", err)
	}

	appendHistory(ctx, s.history, s.logger, domain.HistoryEntry{
		TicketNumber: number,
		ActorEmail:   p.Email,
		Action:       domain.ActionChatMessage,
		Comment:      null.StringFrom("Chat message sent"),
		AfterState: map[string]any{
			"message_id": msg.ID,
			"message":    msg.Message,
		},
	})
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:         events.EventChatMessagePosted,
		TicketNumber: number,
		ActorEmail:   p.Email,
		Payload: events.ChatMessagePostedPayload{
			Ticket:      ref.Snapshot,
			MessageID:   msg.ID,
			SenderEmail: p.Email,
			Message:     msg.Message,
			Recipients:  lifecycle.ChatRecipients(ref.Ticket, p.Email),
		},
	})
	return msg, nil
}

func (s *ChatService) visibleTicket(ctx context.Context, p domain.Principal, number string) (*TicketRef, error) {
	ref, err := s.tickets.Lookup(ctx, number)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(ref.Ticket, p) {
		return nil, apperrors.NewForbidden("you are not a participant of this ticket")
	}
	return ref, nil
}
