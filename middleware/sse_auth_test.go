package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSSETestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("LEDGER_SERVICE_TOKEN", "stream-token")

	app := fiber.New()
	app.Get("/stream", SSEAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func TestSSEAuthValidToken(t *testing.T) {
	app := newSSETestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/stream?token=stream-token&user_id=alice", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "alice", string(body))
}

func TestSSEAuthRejectsBadOrMissingParams(t *testing.T) {
	app := newSSETestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/stream?user_id=alice", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/stream?token=stream-token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/stream?token=nope&user_id=alice", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
