package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/auth"
	"github.com/aarnav1729/premier-support-hub/internal/config"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// OTPRequest is the outcome of asking for a login code.
// Code is filled only when the deployment echoes codes for debugging.
type OTPRequest struct {
	Email string
	Code  string
}

// Session is an issued login.
type Session struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates the email one-time-password login.
type AuthService struct {
	store      auth.OTPStore
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	cfg        config.AuthConfig
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Store      auth.OTPStore
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:      deps.Store,
		tokenMgr:   deps.Tokens,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestOTP issues a code for a company email, replacing any pending one.
func (s *AuthService) RequestOTP(ctx context.Context, email string) (*OTPRequest, error) {
	email, err := s.companyEmail(email)
	if err != nil {
		return nil, err
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	hash, err := auth.HashOTP(code, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	expiresAt := s.now().Add(s.cfg.OTPTTL())
	if err := s.store.Save(ctx, email, auth.OTPEntry{Hash: hash, ExpiresAt: expiresAt}); err != nil {
		return nil, apperrors.NewPersistenceError("store otp", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventOTPRequested,
		ActorEmail: email,
		Payload: events.OTPRequestedPayload{
			Email:     email,
			Code:      code,
			ExpiresAt: expiresAt,
		},
	})

	out := &OTPRequest{Email: email}
	if s.cfg.OTPInResponse {
		out.Code = code
	}
	return out, nil
}

// VerifyOTP consumes a pending code and issues a session token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	invalid := apperrors.NewValidationError("invalid or expired OTP", nil)

	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, invalid
	}

	entry, err := s.store.Get(ctx, email)
	if errors.Is(err, auth.ErrOTPNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("load otp", err)
	}
	if !s.now().Before(entry.ExpiresAt) {
		_ = s.store.Delete(ctx, email)
		return nil, invalid
	}
	if err := auth.CompareOTP(entry.Hash, code); err != nil {
		return nil, invalid
	}
	if err := s.store.Delete(ctx, email); err != nil {
		return nil, apperrors.NewPersistenceError("consume otp", err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Email: email, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) companyEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"email": "email"})
	}
	if domain := s.cfg.AllowedEmailDomain; domain != "" && !strings.HasSuffix(email, "@"+domain) {
		return "", apperrors.NewValidationError("email must belong to "+domain, map[string]any{"email": "company_email"})
	}
	return email, nil
}
