package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// RequireHOD ensures the caller is on the HOD allow-list.
func RequireHOD() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsHOD {
			return apperrors.NewForbidden("HOD access only")
		}
		return c.Next()
	}
}
