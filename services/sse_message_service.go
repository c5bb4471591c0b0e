package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamMessages pushes newly inserted messages involving the
// authenticated user as server-sent events.
func (s *MessageService) StreamMessages(c *fiber.Ctx) error {
	userID := currentUserID(c)

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	// Use fasthttp stream writer (THIS replaces Flush)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var lastMaxCreatedAt time.Time

		// Initialize cursor
		var latest models.Message
		if err := s.DB.
			Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Order("created_at DESC").
			First(&latest).Error; err == nil {
			lastMaxCreatedAt = latest.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for user %s: %v", userID, err)
		}

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var newMessages []models.Message

				err := s.DB.
					Where("sender_id = ? OR receiver_id = ?", userID, userID).
					Where("created_at > ?", lastMaxCreatedAt).
					Order("created_at ASC").
					Find(&newMessages).Error

				if err != nil {
					log.Printf("SSE query error for user %s: %v", userID, err)
					continue
				}

				if len(newMessages) == 0 {
					continue
				}

				lastMaxCreatedAt = newMessages[len(newMessages)-1].CreatedAt

				for _, m := range newMessages {
					payload, _ := json.Marshal(m)

					fmt.Fprintf(w,
						"event: message\ndata: %s\n\n",
						payload,
					)
				}

				// This is the REAL "flush"
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}
