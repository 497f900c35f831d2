package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

const (
	principalKey = "auth_principal"
	// CookieName holds the session token for browser clients.
	CookieName = "auth_token"
)

// HODChecker reports whether an email belongs to the HOD allow-list.
type HODChecker interface {
	IsHOD(email string) bool
}

// AuthMiddleware validates session tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	hods   HODChecker
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, hods HODChecker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, hods: hods}
}

// Handle enforces authentication for protected routes.
// The bearer header wins over the cookie when both are present.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := tokenFromRequest(c)
	if err != nil {
		return err
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &domain.Principal{
		Email: claims.Email,
		IsHOD: m.hods.IsHOD(claims.Email),
	})
	return c.Next()
}

func tokenFromRequest(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie := c.Cookies(CookieName); cookie != "" {
		return cookie, nil
	}
	return "", apperrors.NewUnauthorized("missing credentials")
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
