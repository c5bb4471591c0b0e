// handlers/admin.go
package handlers

import (
	"find-bask-service/middleware"
	"find-bask-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService) {
	app.Post("/admin/login", adminService.Login)

	// 🔐 Everything else requires an admin session — privileged
	// operations are gated server-side, never by a client flag.
	admin := app.Group("/admin", middleware.AdminContextMiddleware())

	admin.Get("/tables", adminService.GetTables)
	admin.Get("/tables/:name", adminService.BrowseTable)
	admin.Post("/tables/:name/clear", adminService.ClearTable)
	admin.Post("/profiles/reset", adminService.ResetProfiles)
	admin.Post("/storage/delete", adminService.DeleteStorage)
	admin.Get("/stats", adminService.Stats)
}
