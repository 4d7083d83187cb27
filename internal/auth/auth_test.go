package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository/memory"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "support-desk", 5)
	token, expiresAt, err := tm.GenerateToken(42)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AgentID)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenRejectsForeignSecretAndIssuer(t *testing.T) {
	token, _, err := NewTokenManager("other", "support-desk", 5).GenerateToken(1)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", "support-desk", 5).ParseToken(token)
	assert.Error(t, err)

	token, _, err = NewTokenManager("secret", "elsewhere", 5).GenerateToken(1)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", "support-desk", 5).ParseToken(token)
	assert.Error(t, err)
}

func newTestApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User) {
	t.Helper()
	store := memory.NewStore()
	agent := &domain.User{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, store.Users().Create(context.Background(), agent))

	tm := NewTokenManager("secret", "support-desk", 5)
	mw := NewAuthMiddleware(tm, store.Users())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			derr := apperrors.ToDomainError(err)
			return c.Status(derr.HTTPStatus).SendString(derr.Code)
		},
	})
	app.Use(mw.OptionalAuth)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		viewer := ViewerFromContext(c)
		if viewer == nil {
			return c.SendString("anonymous")
		}
		return c.SendString("agent")
	})
	app.Get("/private", RequireAgent(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tm, agent
}

func TestOptionalAuth(t *testing.T) {
	app, tm, agent := newTestApp(t)
	token, _, err := tm.GenerateToken(agent.ID)
	require.NoError(t, err)
	orphan, _, err := tm.GenerateToken(999)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{"anonymous allowed", "/whoami", "", http.StatusOK},
		{"valid token", "/whoami", "Bearer " + token, http.StatusOK},
		{"garbage token", "/whoami", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/whoami", "Basic abc", http.StatusUnauthorized},
		{"unknown agent", "/whoami", "Bearer " + orphan, http.StatusUnauthorized},
		{"private anonymous", "/private", "", http.StatusUnauthorized},
		{"private agent", "/private", "Bearer " + token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
