package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
	"github.com/aarnav1729/premier-support-hub/internal/api/validation"
	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/service"
)

// TicketService runs the MEP and VR workflows.
type TicketService interface {
	CreateMEP(ctx context.Context, actor string, in service.MEPCreateInput) (*domain.MEPTicket, error)
	ListMEP(ctx context.Context, actor string, in service.ListInput) ([]domain.MEPTicket, error)
	GetMEP(ctx context.Context, p domain.Principal, number string) (*domain.MEPTicket, error)
	UpdateMEPStatus(ctx context.Context, actor, number string, to domain.TicketStatus) (*domain.MEPTicket, error)
	UpdateMEPFeedback(ctx context.Context, actor, number, feedback string) (*domain.MEPTicket, error)

	CreateVR(ctx context.Context, actor string, in service.VRCreateInput) (*domain.VRTicket, error)
	ListVR(ctx context.Context, actor string, in service.ListInput) ([]domain.VRTicket, error)
	GetVR(ctx context.Context, p domain.Principal, number string) (*domain.VRTicket, error)
	UpdateVRStatus(ctx context.Context, actor, number string, to domain.TicketStatus) (*domain.VRTicket, error)
	UpdateVRFeedback(ctx context.Context, actor, number, feedback string) (*domain.VRTicket, error)
	UpdateDriver(ctx context.Context, actor, number, name, phone string) (*domain.VRTicket, error)

	ListHistory(ctx context.Context, p domain.Principal, number string) ([]domain.HistoryEntry, error)
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service   TicketService
	validator *validation.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets TicketService, v *validation.Validator) *TicketsHandler {
	return &TicketsHandler{service: tickets, validator: v}
}

// CreateMEP POST /api/mep.
func (h *TicketsHandler) CreateMEP(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateMEPRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateMEP(c.UserContext(), p.Email, service.MEPCreateInput{
		Location:    req.Location,
		Category:    req.Category,
		AreaOfWork:  req.AreaOfWork,
		Description: req.Description,
		Attachments: dto.Attachments(req.Attachments),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewMEPTicketResponse(ticket)})
}

// ListMEP GET /api/mep.
func (h *TicketsHandler) ListMEP(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	in, err := h.listInput(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListMEP(c.UserContext(), p.Email, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MEPTicketResponses(tickets)})
}

// GetMEP GET /api/mep/:ticketNumber.
func (h *TicketsHandler) GetMEP(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetMEP(c.UserContext(), *p, c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMEPTicketResponse(ticket)})
}

// UpdateMEPStatus PATCH /api/mep/:ticketNumber/status.
func (h *TicketsHandler) UpdateMEPStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateMEPStatus(c.UserContext(), p.Email, c.Params("ticketNumber"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMEPTicketResponse(ticket)})
}

// UpdateMEPFeedback PATCH /api/mep/:ticketNumber/feedback.
func (h *TicketsHandler) UpdateMEPFeedback(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateMEPFeedback(c.UserContext(), p.Email, c.Params("ticketNumber"), req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMEPTicketResponse(ticket)})
}

// CreateVR POST /api/vr.
func (h *TicketsHandler) CreateVR(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateVRRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateVR(c.UserContext(), p.Email, service.VRCreateInput{
		NumberOfPeople:  req.NumberOfPeople,
		EmployeeOrGuest: domain.GuestType(req.EmployeeOrGuest),
		Names:           req.Names,
		PickupAt:        req.PickupDatetime,
		DropAt:          req.DropDatetime,
		ContactNumber:   req.ContactNumber,
		PurposeOfVisit:  req.PurposeOfVisit,
		Description:     req.Description,
		Attachments:     dto.Attachments(req.Attachments),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewVRTicketResponse(ticket)})
}

// ListVR GET /api/vr.
func (h *TicketsHandler) ListVR(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	in, err := h.listInput(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListVR(c.UserContext(), p.Email, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VRTicketResponses(tickets)})
}

// GetVR GET /api/vr/:ticketNumber.
func (h *TicketsHandler) GetVR(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetVR(c.UserContext(), *p, c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVRTicketResponse(ticket)})
}

// UpdateVRStatus PATCH /api/vr/:ticketNumber/status.
func (h *TicketsHandler) UpdateVRStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateVRStatus(c.UserContext(), p.Email, c.Params("ticketNumber"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVRTicketResponse(ticket)})
}

// UpdateVRDriver PATCH /api/vr/:ticketNumber/driver.
func (h *TicketsHandler) UpdateVRDriver(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.DriverRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateDriver(c.UserContext(), p.Email, c.Params("ticketNumber"), req.DriverName, req.DriverNumber)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVRTicketResponse(ticket)})
}

// UpdateVRFeedback PATCH /api/vr/:ticketNumber/feedback.
func (h *TicketsHandler) UpdateVRFeedback(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateVRFeedback(c.UserContext(), p.Email, c.Params("ticketNumber"), req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVRTicketResponse(ticket)})
}

// History GET /api/history/:ticketNumber.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListHistory(c.UserContext(), *p, c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryResponses(entries)})
}

func (h *TicketsHandler) listInput(c *fiber.Ctx) (service.ListInput, error) {
	var q dto.TicketListQuery
	if err := bindQuery(c, h.validator, &q); err != nil {
		return service.ListInput{}, err
	}
	return service.ListInput{Scope: domain.TicketScope(q.Scope), Status: q.Status}, nil
}
