package services

import (
	"errors"
	"strings"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	DB *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

// SendMessage creates a message. New messages are always unread.
func (s *MessageService) SendMessage(c *fiber.Ctx) error {
	senderID := currentUserID(c)

	var req struct {
		ReceiverID string `json:"receiver_id"`
		ItemID     string `json:"item_id"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ReceiverID == "" || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "receiver_id and content are required"})
	}
	if req.ReceiverID == senderID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot message yourself"})
	}

	var receiver models.Profile
	if err := s.DB.First(&receiver, "id = ?", req.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "receiver not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		ItemID:     req.ItemID,
		Content:    req.Content,
		IsRead:     false,
	}
	if err := s.DB.Create(msg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send message"})
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetConversation returns the full history between the caller and a
// partner, oldest first, with both participants' profiles resolved by
// a single batched lookup.
func (s *MessageService) GetConversation(c *fiber.Ctx) error {
	userID := currentUserID(c)
	partnerID := c.Params("partnerID")

	var messages []models.Message
	if err := s.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch messages"})
	}

	participants, err := batchProfileSummaries(s.DB, []string{userID, partnerID})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve participants"})
	}

	return c.JSON(fiber.Map{
		"messages":     messages,
		"participants": participants,
	})
}

// MarkConversationRead flips the partner's unread messages to read.
// Read flags only ever move false → true.
func (s *MessageService) MarkConversationRead(c *fiber.Ctx) error {
	userID := currentUserID(c)
	partnerID := c.Params("partnerID")

	res := s.DB.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark messages read"})
	}
	return c.JSON(fiber.Map{"marked_read": res.RowsAffected})
}

type conversationSummary struct {
	Partner     models.ProfileSummary `json:"partner"`
	LastMessage models.Message        `json:"last_message"`
	UnreadCount int                   `json:"unread_count"`
}

// ListConversations groups the caller's messages by partner and
// returns the latest message plus unread count per partner.
func (s *MessageService) ListConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var messages []models.Message
	if err := s.DB.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch messages"})
	}

	// Messages arrive newest first, so the first one seen per partner
	// is that conversation's latest.
	var order []string
	latest := map[string]models.Message{}
	unread := map[string]int{}
	for _, m := range messages {
		partner := m.SenderID
		if partner == userID {
			partner = m.ReceiverID
		}
		if _, ok := latest[partner]; !ok {
			latest[partner] = m
			order = append(order, partner)
		}
		if m.ReceiverID == userID && !m.IsRead {
			unread[partner]++
		}
	}

	partners, err := batchProfileSummaries(s.DB, order)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve partners"})
	}

	out := make([]conversationSummary, 0, len(order))
	for _, id := range order {
		out = append(out, conversationSummary{
			Partner:     partners[id],
			LastMessage: latest[id],
			UnreadCount: unread[id],
		})
	}
	return c.JSON(out)
}
