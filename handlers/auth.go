// handlers/auth.go
package handlers

import (
	"find-bask-service/middleware"
	"find-bask-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, profileService *services.ProfileService) {
	// 🔓 Public
	app.Post("/auth/signup", authService.Signup)
	app.Post("/auth/signin", authService.Signin)
	app.Post("/auth/refresh", authService.Refresh)
	app.Get("/profiles/:id", profileService.GetProfile)

	// 🔐 Secured — require a user session
	secured := app.Group("/s", middleware.UserContextMiddleware())
	secured.Get("/me", profileService.GetMe)
	secured.Put("/me", profileService.UpdateMe)
	secured.Post("/me/avatar", profileService.UploadAvatar)
}
