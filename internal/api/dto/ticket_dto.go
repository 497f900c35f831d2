package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// AttachmentRequest describes attachment metadata supplied by the client.
type AttachmentRequest struct {
	Name string     `json:"name" validate:"required,max=255"`
	URL  string     `json:"url" validate:"required,max=2048"`
	MIME string     `json:"mime" validate:"omitempty,max=255"`
	Size null.Int64 `json:"size" validate:"omitempty,min=0"`
}

// CreateMEPRequest payload.
type CreateMEPRequest struct {
	Location    string              `json:"location" validate:"required,max=100"`
	Category    string              `json:"category" validate:"required,max=100"`
	AreaOfWork  null.String         `json:"area_of_work" validate:"omitempty,max=255"`
	Description null.String         `json:"description" validate:"omitempty,max=4000"`
	Attachments []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

// CreateVRRequest payload. The names list must hold one entry per person.
type CreateVRRequest struct {
	NumberOfPeople  int                 `json:"number_of_people" validate:"required,min=1"`
	EmployeeOrGuest string              `json:"employee_or_guest" validate:"required,oneof=employee guest"`
	Names           []string            `json:"names" validate:"required,dive,required"`
	PickupDatetime  time.Time           `json:"pickup_datetime" validate:"required"`
	DropDatetime    time.Time           `json:"drop_datetime" validate:"required,gtefield=PickupDatetime"`
	ContactNumber   string              `json:"contact_number" validate:"required,max=32"`
	PurposeOfVisit  null.String         `json:"purpose_of_visit" validate:"omitempty,max=1000"`
	Description     null.String         `json:"description" validate:"omitempty,max=4000"`
	Attachments     []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}

// DriverRequest payload.
type DriverRequest struct {
	DriverName   string `json:"driver_name" validate:"required,max=100"`
	DriverNumber string `json:"driver_number" validate:"required,max=32"`
}

// ChatMessageRequest payload.
type ChatMessageRequest struct {
	Message     string              `json:"message" validate:"required,max=4000"`
	Attachments []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`
}

// TicketListQuery captures query filters for list endpoints.
type TicketListQuery struct {
	Scope  string `query:"scope" validate:"omitempty,oneof=mine assigned"`
	Status string `query:"status"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Name string     `json:"name"`
	URL  string     `json:"url"`
	MIME string     `json:"mime,omitempty"`
	Size null.Int64 `json:"size"`
}

// MEPTicketResponse is a full MEP row.
type MEPTicketResponse struct {
	TicketNumber     string               `json:"ticket_number"`
	EmpID            null.String          `json:"empid"`
	EmpEmail         string               `json:"empemail"`
	Dept             null.String          `json:"dept"`
	Subdept          null.String          `json:"subdept"`
	EmpLocation      null.String          `json:"emplocation"`
	Designation      null.String          `json:"designation"`
	HOD              null.String          `json:"hod"`
	CreationDatetime time.Time            `json:"creation_datetime"`
	Location         string               `json:"location"`
	Category         string               `json:"category"`
	AreaOfWork       null.String          `json:"area_of_work"`
	Attachments      []AttachmentResponse `json:"attachments"`
	Description      null.String          `json:"description"`
	Status           domain.TicketStatus  `json:"status"`
	Feedback         null.String          `json:"feedback"`
	AssigneeEmail    string               `json:"assignee_email"`
}

// VRTicketResponse is a full vehicle request row.
type VRTicketResponse struct {
	TicketNumber     string               `json:"ticket_number"`
	UserEmail        string               `json:"user_email"`
	HOD              null.String          `json:"hod"`
	CreationDatetime time.Time            `json:"creation_datetime"`
	NumberOfPeople   int                  `json:"number_of_people"`
	EmployeeOrGuest  domain.GuestType     `json:"employee_or_guest"`
	Names            []string             `json:"names"`
	PickupDatetime   time.Time            `json:"pickup_datetime"`
	DropDatetime     time.Time            `json:"drop_datetime"`
	ContactNumber    string               `json:"contact_number"`
	PurposeOfVisit   null.String          `json:"purpose_of_visit"`
	DriverName       null.String          `json:"driver_name"`
	DriverNumber     null.String          `json:"driver_number"`
	AssigneeEmail    string               `json:"assignee_email"`
	Feedback         null.String          `json:"feedback"`
	Status           domain.TicketStatus  `json:"status"`
	Description      null.String          `json:"description"`
	Attachments      []AttachmentResponse `json:"attachments"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID           int64                `json:"id"`
	TicketNumber string               `json:"ticket_number"`
	ActorEmail   string               `json:"actor_email"`
	Comment      null.String          `json:"comment"`
	ActionType   domain.HistoryAction `json:"action_type"`
	BeforeState  map[string]any       `json:"before_state"`
	AfterState   map[string]any       `json:"after_state"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ChatMessageResponse is one conversation message.
type ChatMessageResponse struct {
	ID           int64                `json:"id"`
	TicketNumber string               `json:"ticket_number"`
	SenderEmail  string               `json:"sender_email"`
	Message      string               `json:"message"`
	Attachments  []AttachmentResponse `json:"attachments"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Attachments converts request metadata to the domain form.
func Attachments(in []AttachmentRequest) []domain.Attachment {
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Attachment{Name: a.Name, URL: a.URL, MIME: a.MIME, Size: a.Size})
	}
	return out
}

func attachmentResponses(in []domain.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(in))
	for _, a := range in {
		out = append(out, AttachmentResponse{Name: a.Name, URL: a.URL, MIME: a.MIME, Size: a.Size})
	}
	return out
}

// NewMEPTicketResponse maps a domain ticket.
func NewMEPTicketResponse(t *domain.MEPTicket) MEPTicketResponse {
	return MEPTicketResponse{
		TicketNumber:     t.TicketNumber,
		EmpID:            t.EmpID,
		EmpEmail:         t.RequesterEmail,
		Dept:             t.Dept,
		Subdept:          t.Subdept,
		EmpLocation:      t.EmpLocation,
		Designation:      t.Designation,
		HOD:              t.HOD,
		CreationDatetime: t.CreatedAt,
		Location:         t.Location,
		Category:         t.Category,
		AreaOfWork:       t.AreaOfWork,
		Attachments:      attachmentResponses(t.Attachments),
		Description:      t.Description,
		Status:           t.Status,
		Feedback:         t.Feedback,
		AssigneeEmail:    t.AssigneeEmail,
	}
}

// NewVRTicketResponse maps a domain vehicle request.
func NewVRTicketResponse(t *domain.VRTicket) VRTicketResponse {
	names := t.Names
	if names == nil {
		names = []string{}
	}
	return VRTicketResponse{
		TicketNumber:     t.TicketNumber,
		UserEmail:        t.RequesterEmail,
		HOD:              t.HOD,
		CreationDatetime: t.CreatedAt,
		NumberOfPeople:   t.NumberOfPeople,
		EmployeeOrGuest:  t.EmployeeOrGuest,
		Names:            names,
		PickupDatetime:   t.PickupAt,
		DropDatetime:     t.DropAt,
		ContactNumber:    t.ContactNumber,
		PurposeOfVisit:   t.PurposeOfVisit,
		DriverName:       t.DriverName,
		DriverNumber:     t.DriverNumber,
		AssigneeEmail:    t.AssigneeEmail,
		Feedback:         t.Feedback,
		Status:           t.Status,
		Description:      t.Description,
		Attachments:      attachmentResponses(t.Attachments),
	}
}

// MEPTicketResponses maps a list.
func MEPTicketResponses(in []domain.MEPTicket) []MEPTicketResponse {
	out := make([]MEPTicketResponse, 0, len(in))
	for i := range in {
		out = append(out, NewMEPTicketResponse(&in[i]))
	}
	return out
}

// VRTicketResponses maps a list.
func VRTicketResponses(in []domain.VRTicket) []VRTicketResponse {
	out := make([]VRTicketResponse, 0, len(in))
	for i := range in {
		out = append(out, NewVRTicketResponse(&in[i]))
	}
	return out
}

// HistoryResponses maps audit entries.
func HistoryResponses(in []domain.HistoryEntry) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(in))
	for _, e := range in {
		out = append(out, HistoryResponse{
			ID:           e.ID,
			TicketNumber: e.TicketNumber,
			ActorEmail:   e.ActorEmail,
			Comment:      e.Comment,
			ActionType:   e.Action,
			BeforeState:  e.BeforeState,
			AfterState:   e.AfterState,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}

// NewChatMessageResponse maps one message.
func NewChatMessageResponse(m *domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:           m.ID,
		TicketNumber: m.TicketNumber,
		SenderEmail:  m.SenderEmail,
		Message:      m.Message,
		Attachments:  attachmentResponses(m.Attachments),
		CreatedAt:    m.CreatedAt,
	}
}

// ChatMessageResponses maps a conversation.
func ChatMessageResponses(in []domain.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(in))
	for i := range in {
		out = append(out, NewChatMessageResponse(&in[i]))
	}
	return out
}
