package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardService serves the HOD views.
type DashboardService interface {
	AllMEP(ctx context.Context) ([]domain.MEPTicket, error)
	AllVR(ctx context.Context) ([]domain.VRTicket, error)
	Analytics(ctx context.Context) (*domain.AnalyticsSummary, error)
	ExportWorkbook(ctx context.Context, w io.Writer) error
}

// DashboardHandler exposes HOD and analytics endpoints.
type DashboardHandler struct {
	service DashboardService
	now     func() time.Time
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboard, now: time.Now}
}

// Tickets GET /api/hod/tickets.
func (h *DashboardHandler) Tickets(c *fiber.Ctx) error {
	mep, err := h.service.AllMEP(c.UserContext())
	if err != nil {
		return err
	}
	vr, err := h.service.AllVR(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.HODTicketsResponse{
		MEPTickets: dto.MEPTicketResponses(mep),
		VRTickets:  dto.VRTicketResponses(vr),
	})
}

// MEPSummary GET /api/hod/mep.
func (h *DashboardHandler) MEPSummary(c *fiber.Ctx) error {
	mep, err := h.service.AllMEP(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.MEPSummaryRows(mep))
}

// VRSummary GET /api/hod/vr.
func (h *DashboardHandler) VRSummary(c *fiber.Ctx) error {
	vr, err := h.service.AllVR(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.VRSummaryRows(vr))
}

// Export GET /api/hod/export.xlsx.
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(c.UserContext(), &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="spot-tickets-%s.xlsx"`, h.now().Format("20060102")))
	return c.Send(buf.Bytes())
}

// Analytics GET /api/analytics/summary.
func (h *DashboardHandler) Analytics(c *fiber.Ctx) error {
	summary, err := h.service.Analytics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAnalyticsResponse(summary))
}
