// handlers/message.go
package handlers

import (
	"find-bask-service/middleware"
	"find-bask-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMessageRoutes(app *fiber.App, messageService *services.MessageService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/messages", messageService.SendMessage)
	secured.Get("/messages/conversations", messageService.ListConversations)
	secured.Get("/messages/conversation/:partnerID", messageService.GetConversation)
	secured.Post("/messages/read/:partnerID", messageService.MarkConversationRead)

	// SSE stream authenticates via query token — EventSource cannot set headers.
	app.Get("/messages/stream", middleware.SSEAuthMiddleware(), messageService.StreamMessages)
}
