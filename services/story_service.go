package services

import (
	"errors"
	"strconv"
	"strings"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoryService struct {
	DB *gorm.DB
}

func NewStoryService(db *gorm.DB) *StoryService {
	return &StoryService{DB: db}
}

// CreateStory publishes a success story for a completed handover.
// Only a participant of the item — the finder or the claimer whose
// claim completed — can write one.
func (s *StoryService) CreateStory(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		ItemID   string `json:"item_id"`
		Title    string `json:"title"`
		Story    string `json:"story"`
		PhotoURL string `json:"photo_url"`
		PhotoKey string `json:"photo_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ItemID == "" || strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_id and title are required"})
	}

	var item models.FoundItem
	if err := s.DB.First(&item, "id = ?", req.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if item.Status != models.ItemStatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "stories can only be written after handover"})
	}

	var winning models.ItemClaim
	if err := s.DB.Where("item_id = ? AND status = ?", req.ItemID, models.ClaimStatusCompleted).
		First(&winning).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no completed claim on this item"})
	}
	if userID != item.FinderID && userID != winning.ClaimerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only participants can write this story"})
	}

	story := &models.SuccessStory{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		FinderID:  item.FinderID,
		ClaimerID: winning.ClaimerID,
		Title:     strings.TrimSpace(req.Title),
		Story:     req.Story,
		PhotoURL:  req.PhotoURL,
		PhotoKey:  req.PhotoKey,
	}
	if err := s.DB.Create(story).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save story"})
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// ListStories is the public feed, newest first.
func (s *StoryService) ListStories(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	var stories []models.SuccessStory
	if err := s.DB.Order("created_at DESC").Limit(limit).Find(&stories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch stories"})
	}
	return c.JSON(stories)
}
