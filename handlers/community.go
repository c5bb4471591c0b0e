// handlers/community.go
package handlers

import (
	"find-bask-service/middleware"
	"find-bask-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCommunityRoutes(app *fiber.App, lostQueryService *services.LostQueryService, storyService *services.StoryService, placesClient *services.PlacesClient) {
	// 🔓 Public browse feeds + autocomplete proxy
	app.Get("/lost-queries", lostQueryService.RecentQueries)
	app.Get("/stories", storyService.ListStories)
	app.Post("/places/autocomplete", placesClient.HandleAutocomplete)

	secured := app.Group("/s", middleware.UserContextMiddleware())
	secured.Post("/lost-queries", lostQueryService.CreateQuery)
	secured.Get("/lost-queries/mine", lostQueryService.MyQueries)
	secured.Post("/stories", storyService.CreateStory)
}
