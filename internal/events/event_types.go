package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventDriverAssigned      EventType = "driver_assigned"
	EventChatMessagePosted   EventType = "chat_message_posted"
	EventOTPRequested        EventType = "otp_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	TicketNumber string    `json:"ticket_number,omitempty"`
	ActorEmail   string    `json:"actor_email"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload"`
}

// Field is one labelled value of a ticket snapshot, in display order.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TicketSnapshot is the ticket as it was right after the change that raised the event.
type TicketSnapshot struct {
	Kind           domain.Kind         `json:"kind"`
	TicketNumber   string              `json:"ticket_number"`
	Status         domain.TicketStatus `json:"status"`
	RequesterEmail string              `json:"requester_email"`
	AssigneeEmail  string              `json:"assignee_email"`
	Fields         []Field             `json:"fields"`
}

// Participants mirrors domain.Ticket.Participants.
func (s TicketSnapshot) Participants() []string {
	out := []string{s.RequesterEmail}
	if s.AssigneeEmail != "" && !strings.EqualFold(s.AssigneeEmail, s.RequesterEmail) {
		out = append(out, s.AssigneeEmail)
	}
	return out
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket TicketSnapshot `json:"ticket"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Ticket          TicketSnapshot      `json:"ticket"`
	OldStatus       domain.TicketStatus `json:"old_status"`
	NewStatus       domain.TicketStatus `json:"new_status"`
	OldAssignee     string              `json:"old_assignee"`
	ManagerApproval bool                `json:"manager_approval"`
}

// DriverAssignedPayload payload.
type DriverAssignedPayload struct {
	Ticket       TicketSnapshot `json:"ticket"`
	DriverName   string         `json:"driver_name"`
	DriverNumber string         `json:"driver_number"`
}

// ChatMessagePostedPayload payload.
type ChatMessagePostedPayload struct {
	Ticket      TicketSnapshot `json:"ticket"`
	MessageID   int64          `json:"message_id"`
	SenderEmail string         `json:"sender_email"`
	Message     string         `json:"message"`
	Recipients  []string       `json:"recipients"`
}

// OTPRequestedPayload carries the plaintext code to the mail worker only.
type OTPRequestedPayload struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

const snapshotTimeLayout = "02 Jan 2006 15:04"

// SnapshotMEP captures an MEP ticket for notifications.
func SnapshotMEP(t *domain.MEPTicket) TicketSnapshot {
	fields := []Field{
		{Label: "Ticket Number", Value: t.TicketNumber},
		{Label: "Status", Value: string(t.Status)},
		{Label: "Requester", Value: t.RequesterEmail},
		{Label: "Assigned To", Value: t.AssigneeEmail},
		{Label: "Location", Value: t.Location},
		{Label: "Category", Value: t.Category},
	}
	fields = appendOptional(fields, "Area of Work", t.AreaOfWork.String, t.AreaOfWork.Valid)
	fields = appendOptional(fields, "Description", t.Description.String, t.Description.Valid)
	fields = appendOptional(fields, "Feedback", t.Feedback.String, t.Feedback.Valid)
	return TicketSnapshot{
		Kind:           domain.KindMEP,
		TicketNumber:   t.TicketNumber,
		Status:         t.Status,
		RequesterEmail: t.RequesterEmail,
		AssigneeEmail:  t.AssigneeEmail,
		Fields:         fields,
	}
}

// SnapshotVR captures a vehicle request for notifications.
func SnapshotVR(t *domain.VRTicket) TicketSnapshot {
	fields := []Field{
		{Label: "Ticket Number", Value: t.TicketNumber},
		{Label: "Status", Value: string(t.Status)},
		{Label: "Requester", Value: t.RequesterEmail},
		{Label: "Assigned To", Value: t.AssigneeEmail},
		{Label: "Number of People", Value: strconv.Itoa(t.NumberOfPeople)},
		{Label: "Employee / Guest", Value: string(t.EmployeeOrGuest)},
		{Label: "Names", Value: strings.Join(t.Names, ", ")},
		{Label: "Pickup", Value: t.PickupAt.Format(snapshotTimeLayout)},
		{Label: "Drop", Value: t.DropAt.Format(snapshotTimeLayout)},
		{Label: "Contact Number", Value: t.ContactNumber},
	}
	fields = appendOptional(fields, "Purpose of Visit", t.PurposeOfVisit.String, t.PurposeOfVisit.Valid)
	fields = appendOptional(fields, "Driver Name", t.DriverName.String, t.DriverName.Valid)
	fields = appendOptional(fields, "Driver Number", t.DriverNumber.String, t.DriverNumber.Valid)
	fields = appendOptional(fields, "Description", t.Description.String, t.Description.Valid)
	fields = appendOptional(fields, "Feedback", t.Feedback.String, t.Feedback.Valid)
	return TicketSnapshot{
		Kind:           domain.KindVR,
		TicketNumber:   t.TicketNumber,
		Status:         t.Status,
		RequesterEmail: t.RequesterEmail,
		AssigneeEmail:  t.AssigneeEmail,
		Fields:         fields,
	}
}

func appendOptional(fields []Field, label, value string, valid bool) []Field {
	if !valid || strings.TrimSpace(value) == "" {
		return fields
	}
	return append(fields, Field{Label: label, Value: value})
}
