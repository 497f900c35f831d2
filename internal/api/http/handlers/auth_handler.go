package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
	"github.com/aarnav1729/premier-support-hub/internal/api/validation"
	"github.com/aarnav1729/premier-support-hub/internal/auth"
	"github.com/aarnav1729/premier-support-hub/internal/service"
)

// AuthService issues and verifies login codes.
type AuthService interface {
	RequestOTP(ctx context.Context, email string) (*service.OTPRequest, error)
	VerifyOTP(ctx context.Context, email, code string) (*service.Session, error)
}

// AuthHandler exposes the OTP login endpoints.
type AuthHandler struct {
	service      AuthService
	validator    *validation.Validator
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthService, v *validation.Validator, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: authService, validator: v, cookieSecure: cookieSecure}
}

// RequestOTP handles POST /api/auth/request-otp.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req dto.RequestOTPRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	out, err := h.service.RequestOTP(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.RequestOTPResponse{Success: true, Email: out.Email, OTP: out.Code})
}

// VerifyOTP handles POST /api/auth/verify-otp and sets the session cookie.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	session, err := h.service.VerifyOTP(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Email:     session.Email,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.MeResponse{Email: p.Email, IsHOD: p.IsHOD})
}
