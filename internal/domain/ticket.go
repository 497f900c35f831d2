package domain

import (
	"strings"
	"time"

	"github.com/aarondl/null/v8"
)

// Kind distinguishes the two ticket families handled by the portal.
type Kind string

const (
	KindMEP Kind = "MEP"
	KindVR  Kind = "VR"
)

// Prefix returns the ticket number prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindMEP:
		return "SR"
	case KindVR:
		return "VR"
	default:
		return ""
	}
}

// KindFromTicketNumber infers the kind from a ticket number prefix.
func KindFromTicketNumber(number string) (Kind, bool) {
	switch {
	case strings.HasPrefix(number, "SR-"):
		return KindMEP, true
	case strings.HasPrefix(number, "VR-"):
		return KindVR, true
	default:
		return "", false
	}
}

// TicketStatus enumerates lifecycle states. Which values are legal depends on the Kind.
type TicketStatus string

const (
	StatusPendingManager TicketStatus = "pending_manager"
	StatusPending        TicketStatus = "pending"
	StatusInProgress     TicketStatus = "in_progress"
	StatusCompleted      TicketStatus = "completed"
	StatusRejected       TicketStatus = "rejected"
)

// GuestType marks whether a vehicle request carries employees or guests.
type GuestType string

const (
	GuestTypeEmployee GuestType = "employee"
	GuestTypeGuest    GuestType = "guest"
)

// Attachment is file metadata supplied by the client. Files themselves live elsewhere.
type Attachment struct {
	Name string     `json:"name"`
	URL  string     `json:"url"`
	MIME string     `json:"mime,omitempty"`
	Size null.Int64 `json:"size"`
}

// Ticket holds the fields shared by MEP and VR tickets.
type Ticket struct {
	TicketNumber   string
	Kind           Kind
	Status         TicketStatus
	RequesterEmail string
	AssigneeEmail  string
	HOD            null.String
	Description    null.String
	Attachments    []Attachment
	Feedback       null.String
	CreatedAt      time.Time
}

// Participants returns the requester and assignee, deduplicated.
func (t Ticket) Participants() []string {
	out := []string{t.RequesterEmail}
	if t.AssigneeEmail != "" && !strings.EqualFold(t.AssigneeEmail, t.RequesterEmail) {
		out = append(out, t.AssigneeEmail)
	}
	return out
}

// MEPTicket is a maintenance/electrical/plumbing service request.
type MEPTicket struct {
	Ticket
	EmpID       null.String
	Dept        null.String
	Subdept     null.String
	EmpLocation null.String
	Designation null.String
	Location    string
	Category    string
	AreaOfWork  null.String
}

// VRTicket is a vehicle request.
type VRTicket struct {
	Ticket
	NumberOfPeople  int
	EmployeeOrGuest GuestType
	Names           []string
	PickupAt        time.Time
	DropAt          time.Time
	ContactNumber   string
	PurposeOfVisit  null.String
	DriverName      null.String
	DriverNumber    null.String
}

// TicketScope selects which side of a ticket the caller is on when listing.
type TicketScope string

const (
	ScopeMine     TicketScope = "mine"
	ScopeAssigned TicketScope = "assigned"
)
