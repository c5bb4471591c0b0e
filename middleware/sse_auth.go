// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware validates the session token from the `token` query
// param. EventSource cannot set request headers, so streaming routes
// authenticate via query string instead of Authorization.
//
// Usage:
//
//	app.Get("/messages/stream", middleware.SSEAuthMiddleware(), messageService.StreamMessages)
func SSEAuthMiddleware() fiber.Handler {
	secret := JWTSecret()

	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(string(c.Request().URI().QueryArgs().Peek("token")))
		if accessToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token in query",
			})
		}

		claims, err := utils.ValidateToken(secret, accessToken)
		if err != nil || claims.TokenType != utils.TokenTypeAccess {
			log.Printf("[SSEAuth] ❌ Validation failed for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", claims.Role)
		return c.Next()
	}
}
