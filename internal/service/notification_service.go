package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/mail"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// NotificationService turns domain events into emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	renderer   *mail.Renderer
	publicURL  string
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Mailer     mail.Mailer
	Renderer   *mail.Renderer
	PublicURL  string
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		renderer:   deps.Renderer,
		publicURL:  deps.PublicURL,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handle)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handle)
	n.dispatcher.Subscribe(events.EventDriverAssigned, n.handle)
	n.dispatcher.Subscribe(events.EventChatMessagePosted, n.handle)
	n.dispatcher.Subscribe(events.EventOTPRequested, n.handle)
}

// handle sends every email for the event. Delivery failures are logged, never returned.
func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	msgs, err := n.Messages(event)
	if err != nil {
		n.logFailure(event, apperrors.NewNotificationError(string(event.Type), err))
		return nil
	}
	for _, msg := range msgs {
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.logFailure(event, apperrors.NewNotificationError(string(event.Type), err),
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
			)
		}
	}
	return nil
}

func (n *NotificationService) logFailure(event events.Event, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("event", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("ticket_number", event.TicketNumber),
		zap.Error(err),
	}, fields...)
	n.logger.Warn("notification failed", fields...)
}

// Messages builds the emails an event produces.
func (n *NotificationService) Messages(event events.Event) ([]mail.Message, error) {
	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		return n.ticketCreated(p)
	case events.TicketStatusChangedPayload:
		return n.statusChanged(event, p)
	case events.DriverAssignedPayload:
		return n.driverAssigned(p)
	case events.ChatMessagePostedPayload:
		return n.chatPosted(p)
	case events.OTPRequestedPayload:
		return n.otpRequested(event, p)
	default:
		return nil, fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
}

func (n *NotificationService) ticketCreated(p events.TicketCreatedPayload) ([]mail.Message, error) {
	t := p.Ticket
	details := snapshotDetails(t)

	var requesterSubject, assigneeSubject, assigneeIntro string
	var cc []string
	switch {
	case t.Kind == domain.KindMEP:
		requesterSubject = fmt.Sprintf("SPOT: MEP Ticket Created (%s)", t.TicketNumber)
		assigneeSubject = fmt.Sprintf("SPOT: New MEP Ticket (%s)", t.TicketNumber)
		assigneeIntro = "A new MEP ticket has been assigned to you."
		cc = []string{t.RequesterEmail}
	case t.Status == domain.StatusPendingManager:
		requesterSubject = fmt.Sprintf("SPOT: VR Ticket Created (%s)", t.TicketNumber)
		assigneeSubject = fmt.Sprintf("SPOT: VR Manager Approval Needed (%s)", t.TicketNumber)
		assigneeIntro = "A vehicle request from your team is waiting for your approval."
	default:
		requesterSubject = fmt.Sprintf("SPOT: VR Ticket Created (%s)", t.TicketNumber)
		assigneeSubject = fmt.Sprintf("SPOT: New VR Ticket (%s)", t.TicketNumber)
		assigneeIntro = "A new vehicle request has been assigned to you."
	}

	toRequester, err := n.render(requesterSubject, mail.Page{
		Title:      requesterSubject,
		Paragraphs: []string{"Hello,", "Your request has been raised in SPOT."},
		Details:    details,
		ActionURL:  n.publicURL,
	})
	if err != nil {
		return nil, err
	}
	toRequester.To = []string{t.RequesterEmail}

	toAssignee, err := n.render(assigneeSubject, mail.Page{
		Title:      assigneeSubject,
		Paragraphs: []string{"Hello,", assigneeIntro},
		Details:    details,
		ActionURL:  n.publicURL,
	})
	if err != nil {
		return nil, err
	}
	toAssignee.To = []string{t.AssigneeEmail}
	toAssignee.CC = cc

	return []mail.Message{toRequester, toAssignee}, nil
}

func (n *NotificationService) statusChanged(event events.Event, p events.TicketStatusChangedPayload) ([]mail.Message, error) {
	t := p.Ticket
	subject := fmt.Sprintf("SPOT: %s Status Updated (%s)", t.Kind, t.TicketNumber)
	intro := "The status of your ticket has been updated in SPOT."
	if p.ManagerApproval {
		subject = fmt.Sprintf("SPOT: VR Manager Approval (%s)", t.TicketNumber)
		intro = "Your vehicle request was approved by your manager and handed to transport."
	}
	changes := []mail.Detail{
		{Label: "Ticket #", Value: t.TicketNumber},
		{Label: "Previous Status", Value: string(p.OldStatus)},
		{Label: "New Status", Value: string(p.NewStatus)},
		{Label: "Changed By", Value: event.ActorEmail},
		{Label: "Changed At (UTC)", Value: event.Timestamp.UTC().Format("2006-01-02 15:04:05")},
	}
	msg, err := n.render(subject, mail.Page{
		Title:      subject,
		Paragraphs: []string{"Hello,", intro},
		Details:    append(changes, snapshotDetails(t)...),
		ActionURL:  n.publicURL,
	})
	if err != nil {
		return nil, err
	}
	msg.To = t.Participants()
	return []mail.Message{msg}, nil
}

func (n *NotificationService) driverAssigned(p events.DriverAssignedPayload) ([]mail.Message, error) {
	t := p.Ticket
	subject := fmt.Sprintf("SPOT: VR Driver Assigned (%s)", t.TicketNumber)
	msg, err := n.render(subject, mail.Page{
		Title:      subject,
		Paragraphs: []string{"Hello,", "A driver has been assigned to your vehicle request."},
		Details: append([]mail.Detail{
			{Label: "Driver Name", Value: p.DriverName},
			{Label: "Driver Number", Value: p.DriverNumber},
		}, snapshotDetails(t)...),
		ActionURL: n.publicURL,
	})
	if err != nil {
		return nil, err
	}
	msg.To = []string{t.RequesterEmail}
	return []mail.Message{msg}, nil
}

func (n *NotificationService) chatPosted(p events.ChatMessagePostedPayload) ([]mail.Message, error) {
	if len(p.Recipients) == 0 {
		return nil, nil
	}
	subject := fmt.Sprintf("SPOT: New Message on %s", p.Ticket.TicketNumber)
	msg, err := n.render(subject, mail.Page{
		Title:      subject,
		Paragraphs: []string{"Hello,", "There is a new chat message on your SPOT ticket."},
		Details: append([]mail.Detail{
			{Label: "From", Value: p.SenderEmail},
			{Label: "Message", Value: p.Message},
		}, snapshotDetails(p.Ticket)...),
		ActionURL:   n.publicURL,
		ActionLabel: "Open Conversation",
	})
	if err != nil {
		return nil, err
	}
	msg.To = p.Recipients
	return []mail.Message{msg}, nil
}

func (n *NotificationService) otpRequested(event events.Event, p events.OTPRequestedPayload) ([]mail.Message, error) {
	const subject = "SPOT Login OTP"
	validFor := p.ExpiresAt.Sub(event.Timestamp).Round(time.Minute)
	if validFor <= 0 {
		validFor = time.Minute
	}
	msg, err := n.render(subject, mail.Page{
		Title:      subject,
		Paragraphs: []string{"Hello,", "Your one-time password for SPOT is below. Do not share this code with anyone."},
		Details: []mail.Detail{
			{Label: "Email", Value: p.Email},
			{Label: "One-Time Password", Value: p.Code},
			{Label: "Valid For", Value: fmt.Sprintf("%d minutes", int(validFor.Minutes()))},
		},
		ActionURL:   n.publicURL,
		ActionLabel: "Log in to SPOT",
	})
	if err != nil {
		return nil, err
	}
	msg.To = []string{p.Email}
	return []mail.Message{msg}, nil
}

func (n *NotificationService) render(subject string, page mail.Page) (mail.Message, error) {
	html, err := n.renderer.Render(page)
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{Subject: subject, HTML: html}, nil
}

func snapshotDetails(t events.TicketSnapshot) []mail.Detail {
	out := make([]mail.Detail, 0, len(t.Fields))
	for _, f := range t.Fields {
		out = append(out, mail.Detail{Label: f.Label, Value: f.Value})
	}
	return out
}
