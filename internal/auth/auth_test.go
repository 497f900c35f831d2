package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

type hodList map[string]bool

func (h hodList) IsHOD(email string) bool { return h[email] }

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, expires, err := tm.GenerateToken(" Someone@Example.com ")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", claims.Email)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.GenerateToken("a@x.com")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).ParseToken(token)
	assert.Error(t, err)

	later := NewTokenManager("secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.ParseToken(token)
	assert.Error(t, err)
}

func TestDefaultTTLIsSevenDays(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, NewTokenManager("s", 0).TTL())
}

func newAuthApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm, hodList{"head@x.com": true})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("no principal")
		}
		return c.JSON(p)
	})
	app.Get("/hod", mw.Handle, RequireHOD(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestMiddlewareAcceptsBearerAndCookie(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	app := newAuthApp(tm)
	token, _, err := tm.GenerateToken("head@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/hod", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestMiddlewareRejections(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	app := newAuthApp(tm)
	staffToken, _, err := tm.GenerateToken("staff@x.com")
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "missing", path: "/me", status: http.StatusUnauthorized},
		{name: "malformed header", path: "/me", header: "Token abc", status: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "not hod", path: "/hod", header: "Bearer " + staffToken, status: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestGenerateOTPFormat(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestHashOTP(t *testing.T) {
	hash, err := HashOTP("012345", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, CompareOTP(hash, "012345"))
	assert.Error(t, CompareOTP(hash, "012346"))
}

func TestMemoryOTPStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryOTPStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "A@x.com", OTPEntry{Hash: "h1", ExpiresAt: now.Add(5 * time.Minute)}))
	require.NoError(t, s.Save(ctx, "a@x.com", OTPEntry{Hash: "h2", ExpiresAt: now.Add(5 * time.Minute)}))

	entry, err := s.Get(ctx, "a@X.com")
	require.NoError(t, err)
	assert.Equal(t, "h2", entry.Hash)

	now = now.Add(5 * time.Minute)
	_, err = s.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
	assert.Empty(t, s.entries)

	require.NoError(t, s.Save(ctx, "b@x.com", OTPEntry{Hash: "h", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, s.Delete(ctx, "b@x.com"))
	_, err = s.Get(ctx, "b@x.com")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestRedisOTPKey(t *testing.T) {
	s := NewRedisOTPStore(nil, "spot:")
	assert.Equal(t, "spot:otp:a@x.com", s.key(" A@X.com"))
}
