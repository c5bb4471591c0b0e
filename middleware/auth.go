// middleware/auth.go
package middleware

import (
	"log"
	"os"
	"strings"

	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
)

// JWTSecret reads the signing secret shared by all session middleware.
// The service cannot authenticate anyone without it.
func JWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("❌ JWT_SECRET is not set — service cannot validate sessions")
	}
	return secret
}

// UserContextMiddleware validates the Bearer access token and attaches
// the user identity to the request context.
func UserContextMiddleware() fiber.Handler {
	secret := JWTSecret()

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing Authorization header",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — try raw value
			token = authHeader
		}

		claims, err := utils.ValidateToken(secret, token)
		if err != nil || claims.TokenType != utils.TokenTypeAccess {
			log.Printf("❌ [USER_CTX] Invalid session token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", claims.Role)
		return c.Next()
	}
}

// AdminContextMiddleware gates the back-office surface. Only tokens
// carrying the admin role pass; a user session is not enough.
func AdminContextMiddleware() fiber.Handler {
	secret := JWTSecret()

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing admin token",
			})
		}

		claims, err := utils.ValidateToken(secret, token)
		if err != nil || claims.TokenType != utils.TokenTypeAccess || claims.Role != utils.RoleAdmin {
			log.Printf("🚫 [ADMIN_CTX] Rejected admin access to %s", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin privileges required",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", claims.Role)
		return c.Next()
	}
}
