// handlers/item.go
package handlers

import (
	"find-bask-service/middleware"
	"find-bask-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupItemRoutes(app *fiber.App, itemService *services.ItemService, claimService *services.ClaimService) {
	// 🔓 Public routes — search and item detail
	app.Get("/items", itemService.SearchItems)
	app.Get("/items/:id", itemService.GetItem)

	// 🔐 Secured routes — require user context, enforced via middleware
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/items", itemService.CreateItem)
	secured.Get("/items/mine", itemService.MyItems)
	secured.Put("/items/:id", itemService.UpdateItem)
	secured.Patch("/items/:id", itemService.UpdateItem)
	secured.Delete("/items/:id", itemService.DeleteItem)
	secured.Post("/items/:id/complete", itemService.CompleteItem)

	// ✅ Claim routes — finder reviews, claimer submits
	secured.Post("/items/:id/claims", claimService.SubmitClaim)
	secured.Get("/items/:id/claims", claimService.ListItemClaims)
	secured.Get("/claims/mine", claimService.MyClaims)
	secured.Post("/claims/:id/review", claimService.ReviewClaim)
	secured.Post("/claims/evidence", claimService.UploadEvidence)
	secured.Delete("/claims/evidence", claimService.RemoveEvidence)
}
