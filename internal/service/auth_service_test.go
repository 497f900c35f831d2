package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aarnav1729/premier-support-hub/internal/auth"
	"github.com/aarnav1729/premier-support-hub/internal/config"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

func newAuthService(echo bool) (*AuthService, *auth.TokenManager, *recordingDispatcher) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	dispatcher := &recordingDispatcher{}
	svc := NewAuthService(config.AuthConfig{
		AllowedEmailDomain: "example.com",
		OTPTTLMinutes:      5,
		OTPInResponse:      echo,
		BcryptCost:         bcrypt.MinCost,
	}, AuthDependencies{
		Store:      auth.NewMemoryOTPStore(),
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	return svc, tokens, dispatcher
}

func TestOTPLoginFlow(t *testing.T) {
	svc, tokens, dispatcher := newAuthService(true)
	ctx := context.Background()

	req, err := svc.RequestOTP(ctx, "  Asha@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", req.Email)
	assert.Len(t, req.Code, 6)

	sent := dispatcher.ofType(events.EventOTPRequested)
	require.Len(t, sent, 1)
	payload := sent[0].Payload.(events.OTPRequestedPayload)
	assert.Equal(t, req.Code, payload.Code)

	_, err = svc.VerifyOTP(ctx, "asha@example.com", "not-it")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	session, err := svc.VerifyOTP(ctx, "ASHA@example.com", req.Code)
	require.NoError(t, err)
	claims, err := tokens.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", claims.Email)

	// Codes are single use.
	_, err = svc.VerifyOTP(ctx, "asha@example.com", req.Code)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRequestOTPRejectsForeignDomain(t *testing.T) {
	svc, _, dispatcher := newAuthService(false)
	_, err := svc.RequestOTP(context.Background(), "someone@gmail.com")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.RequestOTP(context.Background(), "not an email")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, dispatcher.events)
}

func TestRequestOTPHidesCodeByDefault(t *testing.T) {
	svc, _, _ := newAuthService(false)
	req, err := svc.RequestOTP(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Empty(t, req.Code)
}

func TestExpiredOTPIsRejected(t *testing.T) {
	svc, _, _ := newAuthService(true)
	ctx := context.Background()
	req, err := svc.RequestOTP(ctx, "asha@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = svc.VerifyOTP(ctx, "asha@example.com", req.Code)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNewOTPReplacesPending(t *testing.T) {
	svc, _, _ := newAuthService(true)
	ctx := context.Background()
	first, err := svc.RequestOTP(ctx, "asha@example.com")
	require.NoError(t, err)
	second, err := svc.RequestOTP(ctx, "asha@example.com")
	require.NoError(t, err)

	if first.Code != second.Code {
		_, err = svc.VerifyOTP(ctx, "asha@example.com", first.Code)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
	_, err = svc.VerifyOTP(ctx, "asha@example.com", second.Code)
	assert.NoError(t, err)
}
