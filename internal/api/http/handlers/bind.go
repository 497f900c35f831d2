package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/validation"
	"github.com/aarnav1729/premier-support-hub/internal/auth"
	"github.com/aarnav1729/premier-support-hub/internal/domain"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

func bindBody(c *fiber.Ctx, v *validation.Validator, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return v.Struct(out)
}

func bindQuery(c *fiber.Ctx, v *validation.Validator, out any) error {
	if err := c.QueryParser(out); err != nil {
		return apperrors.NewValidationError("invalid query", map[string]any{"query": err.Error()})
	}
	return v.Struct(out)
}

func principal(c *fiber.Ctx) (*domain.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.Email == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}
