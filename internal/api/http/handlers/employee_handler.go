package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// EmployeeService reads the company directory.
type EmployeeService interface {
	Me(ctx context.Context, email string) (*domain.Employee, error)
}

// EmployeeHandler exposes directory lookups.
type EmployeeHandler struct {
	service EmployeeService
}

// NewEmployeeHandler constructs handler.
func NewEmployeeHandler(employees EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: employees}
}

// Me handles GET /api/emp/me.
func (h *EmployeeHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	emp, err := h.service.Me(c.UserContext(), p.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEmployeeResponse(emp))
}
