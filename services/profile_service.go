package services

import (
	"errors"
	"log"
	"path/filepath"

	"find-bask-service/models"
	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// GetProfile returns any user's public profile.
func (s *ProfileService) GetProfile(c *fiber.Ctx) error {
	id := c.Params("id")

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(profile)
}

// GetMe returns the caller's own profile.
func (s *ProfileService) GetMe(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
	}
	return c.JSON(profile)
}

// UpdateMe lets the owning user change display fields and notification
// preferences. The profile ID is never mutable.
func (s *ProfileService) UpdateMe(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		Location    *string `json:"location"`
		Phone       *string `json:"phone"`
		NotifyEmail *bool   `json:"notify_email"`
		NotifySMS   *bool   `json:"notify_sms"`
		NotifyApp   *bool   `json:"notify_app"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		if *req.DisplayName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "display_name cannot be empty"})
		}
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.NotifyEmail != nil {
		updates["notify_email"] = *req.NotifyEmail
	}
	if req.NotifySMS != nil {
		updates["notify_sms"] = *req.NotifySMS
	}
	if req.NotifyApp != nil {
		updates["notify_app"] = *req.NotifyApp
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nothing to update"})
	}

	if err := s.DB.Model(&models.Profile{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
	}

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload profile"})
	}
	return c.JSON(profile)
}

// UploadAvatar replaces the caller's avatar. The previous object is
// removed best-effort after the new one is stored.
func (s *ProfileService) UploadAvatar(c *fiber.Ctx) error {
	userID := currentUserID(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "profile not found"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".png"
	}
	key := "avatars/" + uuid.NewString() + ext
	url, err := utils.UploadToBucket(file, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
	}

	oldKey := profile.AvatarKey
	updates := map[string]interface{}{"avatar_url": url, "avatar_key": key}
	if err := s.DB.Model(&models.Profile{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save avatar"})
	}

	if oldKey != "" {
		if err := utils.RemoveFromBucket([]string{oldKey}); err != nil {
			log.Printf("⚠️ [PROFILE] Failed to remove old avatar %s: %v", oldKey, err)
		}
	}

	return c.JSON(fiber.Map{"avatar_url": url})
}

// batchProfileSummaries resolves a set of user ids to display
// summaries with a single query instead of one lookup per row.
func batchProfileSummaries(db *gorm.DB, ids []string) (map[string]models.ProfileSummary, error) {
	out := make(map[string]models.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = models.ProfileSummary{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
		}
	}
	return out, nil
}
