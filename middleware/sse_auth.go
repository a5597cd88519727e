// middleware/sse_auth.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware authenticates event-stream requests. EventSource cannot
// set headers, so the gateway proxies the service token and the user id as
// query params instead.
//
// Usage:
//
//	app.Get("/user/rewards/stream", middleware.SSEAuthMiddleware(), eventService.StreamUserRewardEvents)
func SSEAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("LEDGER_SERVICE_TOKEN")

	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		userID := strings.TrimSpace(c.Query("user_id"))

		if token == "" || userID == "" {
			log.Printf("[SSEAuth] ❌ Missing query params on %s", c.Path())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token or user_id in query",
			})
		}

		if token != expectedToken {
			log.Printf("[SSEAuth] ❌ Invalid token for user %s", userID)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
