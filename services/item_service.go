package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"find-bask-service/models"
	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ItemService struct {
	DB *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{DB: db}
}

const maxItemImages = 5

// Search filter sentinels the client sends for "no filter selected".
const (
	FilterAllCategories = "All Categories"
	FilterAnyTime       = "Any Time"
)

// CreateItem posts a new found item. Images arrive as images[0..n]
// multipart fields and go to the bucket before the rows are written.
func (s *ItemService) CreateItem(c *fiber.Ctx) error {
	finderID := currentUserID(c)

	name := strings.TrimSpace(c.FormValue("name"))
	category := strings.TrimSpace(c.FormValue("category"))
	location := strings.TrimSpace(c.FormValue("location"))
	if name == "" || category == "" || location == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, category and location are required"})
	}

	contactPref := c.FormValue("contact_preference", models.ContactPrefApp)
	if !models.ValidContactPreference(contactPref) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contact_preference must be app, phone or email"})
	}

	item := &models.FoundItem{
		ID:                uuid.NewString(),
		FinderID:          finderID,
		Name:              name,
		Category:          category,
		Location:          location,
		Description:       c.FormValue("description"),
		ContactPreference: contactPref,
		Status:            models.ItemStatusActive,
	}

	// Upload photos first — object keys are recorded on the rows so a
	// later delete never needs to parse URLs.
	var images []models.ItemImage
	for i := 0; i < maxItemImages; i++ {
		key := "images[" + strconv.Itoa(i) + "]"
		file, err := c.FormFile(key)
		if err != nil {
			break
		}

		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		objectKey := fmt.Sprintf("items/%s-%s%s", slug.Make(name), uuid.NewString(), ext)
		url, err := utils.UploadToBucket(file, objectKey)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("failed to upload image %d", i)})
		}

		images = append(images, models.ItemImage{
			ID:         uuid.NewString(),
			ItemID:     item.ID,
			URL:        url,
			StorageKey: objectKey,
			Position:   i,
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("failed to save images: %v", err)
			}
		}
		return tx.Preload("Images").First(item, "id = ?", item.ID).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("✅ [ITEM] %s posted %q (%s)", finderID, item.Name, item.ID)
	return c.Status(fiber.StatusCreated).JSON(item)
}

// SearchItems lists active items matching every non-default filter,
// newest first. Claimed and completed items never show up.
func (s *ItemService) SearchItems(c *fiber.Ctx) error {
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.FoundItem{}).
		Where("status = ?", models.ItemStatusActive).
		Order("created_at DESC").
		Limit(limit)

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		term := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if category := c.Query("category"); category != "" && category != FilterAllCategories {
		db = db.Where("category = ?", category)
	}
	if location := strings.TrimSpace(c.Query("location")); location != "" {
		db = db.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
	if timeframe := c.Query("timeframe"); timeframe != "" && timeframe != FilterAnyTime {
		cutoff, ok := timeframeCutoff(timeframe, time.Now())
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown timeframe"})
		}
		db = db.Where("created_at >= ?", cutoff)
	}

	var items []models.FoundItem
	if err := db.Preload("Images").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to search items"})
	}
	return c.JSON(items)
}

// timeframeCutoff maps a timeframe filter label to its lower bound.
func timeframeCutoff(timeframe string, now time.Time) (time.Time, bool) {
	switch timeframe {
	case "Last 24 Hours":
		return now.Add(-24 * time.Hour), true
	case "Last 7 Days":
		return now.AddDate(0, 0, -7), true
	case "Last 30 Days":
		return now.AddDate(0, 0, -30), true
	default:
		return time.Time{}, false
	}
}

// GetItem returns a single item with its images.
func (s *ItemService) GetItem(c *fiber.Ctx) error {
	id := c.Params("id")

	var item models.FoundItem
	if err := s.DB.Preload("Images").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(item)
}

// MyItems lists everything the caller has posted, any status.
func (s *ItemService) MyItems(c *fiber.Ctx) error {
	finderID := currentUserID(c)

	var items []models.FoundItem
	if err := s.DB.Preload("Images").
		Where("finder_id = ?", finderID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch items"})
	}
	return c.JSON(items)
}

// UpdateItem edits descriptive fields. Status is workflow-owned and
// never writable here.
func (s *ItemService) UpdateItem(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	var item models.FoundItem
	if err := s.DB.First(&item, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}
	if item.FinderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the finder can edit this item"})
	}

	var req struct {
		Name              *string `json:"name"`
		Category          *string `json:"category"`
		Location          *string `json:"location"`
		Description       *string `json:"description"`
		ContactPreference *string `json:"contact_preference"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil && *req.Category != "" {
		updates["category"] = *req.Category
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ContactPreference != nil {
		if !models.ValidContactPreference(*req.ContactPreference) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid contact_preference"})
		}
		updates["contact_preference"] = *req.ContactPreference
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nothing to update"})
	}

	if err := s.DB.Model(&item).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update item"})
	}

	if err := s.DB.Preload("Images").First(&item, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload item"})
	}
	return c.JSON(item)
}

// CompleteItem records the physical handover. The item row and every
// approved claim move in one transaction, so observers never see the
// item completed while the winning claim still reads approved.
func (s *ItemService) CompleteItem(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	var item models.FoundItem
	if err := s.DB.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if item.FinderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the finder can complete this item"})
	}
	if !models.CanTransitionItem(item.Status, models.ItemStatusCompleted) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("item cannot move from %s to completed", item.Status),
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FoundItem{}).
			Where("id = ?", item.ID).
			Update("status", models.ItemStatusCompleted).Error; err != nil {
			return err
		}
		// Approved claims ride along; pending/rejected stay untouched.
		return tx.Model(&models.ItemClaim{}).
			Where("item_id = ? AND status = ?", item.ID, models.ClaimStatusApproved).
			Update("status", models.ClaimStatusCompleted).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to complete item"})
	}

	log.Printf("✅ [ITEM] Handover confirmed for %q (%s)", item.Name, item.ID)
	if err := s.DB.Preload("Images").First(&item, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload item"})
	}
	return c.JSON(item)
}

// DeleteItem soft-deletes an active item and clears its photos from
// the bucket best-effort.
func (s *ItemService) DeleteItem(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id := c.Params("id")

	var item models.FoundItem
	if err := s.DB.Preload("Images").First(&item, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}
	if item.FinderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the finder can delete this item"})
	}
	if item.Status != models.ItemStatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "only active items can be deleted"})
	}

	// Image rows go with the item; keeping them would leave references
	// to bucket objects that are about to disappear.
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.ItemImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete item"})
	}

	if len(item.Images) > 0 {
		keys := make([]string, 0, len(item.Images))
		for _, img := range item.Images {
			if img.StorageKey != "" {
				keys = append(keys, img.StorageKey)
			}
		}
		if err := utils.RemoveFromBucket(keys); err != nil {
			log.Printf("⚠️ [ITEM] Failed to remove images for %s: %v", item.ID, err)
		}
	}

	return c.JSON(fiber.Map{"deleted": true})
}
