package services

import "github.com/gofiber/fiber/v2"

// currentUserID pulls the authenticated user id set by the auth
// middleware. Empty when the route was not gated.
func currentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
