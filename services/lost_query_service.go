package services

import (
	"strconv"
	"strings"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LostQueryService struct {
	DB *gorm.DB
}

func NewLostQueryService(db *gorm.DB) *LostQueryService {
	return &LostQueryService{DB: db}
}

// CreateQuery records what a user lost so finders can browse it.
func (s *LostQueryService) CreateQuery(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		ItemName    string `json:"item_name"`
		Category    string `json:"category"`
		Location    string `json:"location"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.ItemName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_name is required"})
	}

	query := &models.LostItemQuery{
		ID:          uuid.NewString(),
		UserID:      userID,
		ItemName:    strings.TrimSpace(req.ItemName),
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
	}
	if err := s.DB.Create(query).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save query"})
	}
	return c.Status(fiber.StatusCreated).JSON(query)
}

// MyQueries lists the caller's lost-item queries, newest first.
func (s *LostQueryService) MyQueries(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var queries []models.LostItemQuery
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&queries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch queries"})
	}
	return c.JSON(queries)
}

// RecentQueries is the public browse feed, optionally narrowed by
// category.
func (s *LostQueryService) RecentQueries(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.LostItemQuery{}).
		Order("created_at DESC").
		Limit(limit)
	if category := c.Query("category"); category != "" && category != FilterAllCategories {
		db = db.Where("category = ?", category)
	}

	var queries []models.LostItemQuery
	if err := db.Find(&queries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch queries"})
	}
	return c.JSON(queries)
}
