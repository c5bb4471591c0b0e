package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newGatedApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Get("/s/whoami", UserContextMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})
	app.Get("/admin/ping", AdminContextMiddleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/stream", SSEAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestUserContextMiddleware(t *testing.T) {
	app := newGatedApp(t)

	token, err := utils.GenerateToken(testSecret, "user-42", utils.RoleUser, utils.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/s/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Missing header
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/s/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token
	req = httptest.NewRequest(http.MethodGet, "/s/whoami", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Refresh tokens are not sessions
	refresh, err := utils.GenerateToken(testSecret, "user-42", utils.RoleUser, utils.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/s/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminContextMiddlewareRequiresAdminRole(t *testing.T) {
	app := newGatedApp(t)

	userToken, err := utils.GenerateToken(testSecret, "user-42", utils.RoleUser, utils.TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "a user session is not an admin session")

	adminToken, err := utils.GenerateToken(testSecret, "op-1", utils.RoleAdmin, utils.TokenTypeAccess, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSSEAuthMiddlewareReadsQueryToken(t *testing.T) {
	app := newGatedApp(t)

	token, err := utils.GenerateToken(testSecret, "user-42", utils.RoleUser, utils.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stream?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/stream?token=nonsense", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
