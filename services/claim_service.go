package services

import (
	"errors"
	"log"
	"path/filepath"
	"strings"

	"find-bask-service/models"
	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimService struct {
	DB *gorm.DB
}

func NewClaimService(db *gorm.DB) *ClaimService {
	return &ClaimService{DB: db}
}

const minClaimDescription = 20

type evidenceRef struct {
	URL         string `json:"url"`
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// SubmitClaim files an ownership claim against an active item. One
// claim per (item, claimer): resubmitting returns the existing claim
// instead of creating a sibling, and the composite unique index backs
// that up against concurrent submissions.
func (s *ClaimService) SubmitClaim(c *fiber.Ctx) error {
	claimerID := currentUserID(c)
	itemID := c.Params("id")

	var item models.FoundItem
	if err := s.DB.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if item.Status != models.ItemStatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "item is no longer open for claims"})
	}
	if item.FinderID == claimerID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "you cannot claim your own item"})
	}

	var req struct {
		Description         string        `json:"description"`
		IdentificationMarks string        `json:"identification_marks"`
		AdditionalInfo      string        `json:"additional_info"`
		Evidence            []evidenceRef `json:"evidence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(strings.TrimSpace(req.Description)) < minClaimDescription {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description must be at least 20 characters",
		})
	}

	// Lookup-or-create keyed on (item, claimer).
	var existing models.ItemClaim
	err := s.DB.Preload("Evidence").
		Where("item_id = ? AND claimer_id = ?", itemID, claimerID).
		First(&existing).Error
	if err == nil {
		return c.JSON(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	claim := &models.ItemClaim{
		ID:                  uuid.NewString(),
		ItemID:              itemID,
		ClaimerID:           claimerID,
		Description:         strings.TrimSpace(req.Description),
		IdentificationMarks: req.IdentificationMarks,
		AdditionalInfo:      req.AdditionalInfo,
		Status:              models.ClaimStatusPending,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(claim).Error; err != nil {
			return err
		}
		var evidence []models.ClaimEvidence
		for _, ref := range req.Evidence {
			if ref.URL == "" {
				continue
			}
			evidence = append(evidence, models.ClaimEvidence{
				ID:          uuid.NewString(),
				ClaimID:     claim.ID,
				URL:         ref.URL,
				StorageKey:  ref.StorageKey,
				FileName:    ref.FileName,
				ContentType: ref.ContentType,
			})
		}
		if len(evidence) > 0 {
			if err := tx.Create(&evidence).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Evidence").First(claim, "id = ?", claim.ID).Error
	})
	if err != nil {
		// A concurrent submission may have won the unique index race.
		if lookupErr := s.DB.Preload("Evidence").
			Where("item_id = ? AND claimer_id = ?", itemID, claimerID).
			First(&existing).Error; lookupErr == nil {
			return c.JSON(existing)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to submit claim"})
	}

	log.Printf("✅ [CLAIM] %s claimed item %s (claim %s)", claimerID, itemID, claim.ID)
	return c.Status(fiber.StatusCreated).JSON(claim)
}

// UploadEvidence stores an ownership-evidence file and hands back the
// reference the client attaches to its claim submission.
func (s *ClaimService) UploadEvidence(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	if file.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large (max 10MB)"})
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".bin"
	}
	key := "evidence/" + uuid.NewString() + ext
	url, err := utils.UploadToBucket(file, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload evidence"})
	}

	return c.Status(fiber.StatusCreated).JSON(evidenceRef{
		URL:         url,
		StorageKey:  key,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	})
}

// RemoveEvidence deletes an evidence object by its stored key. If the
// reference is already attached to a claim, only the owning claimer
// may remove it.
func (s *ClaimService) RemoveEvidence(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		StorageKey string `json:"storage_key"`
	}
	if err := c.BodyParser(&req); err != nil || req.StorageKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "storage_key is required"})
	}

	var evidence models.ClaimEvidence
	err := s.DB.Where("storage_key = ?", req.StorageKey).First(&evidence).Error
	if err == nil {
		var claim models.ItemClaim
		if err := s.DB.First(&claim, "id = ?", evidence.ClaimID).Error; err == nil && claim.ClaimerID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your evidence"})
		}
		if err := s.DB.Delete(&evidence).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove evidence"})
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := utils.RemoveFromBucket([]string{req.StorageKey}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete file"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// ListItemClaims shows the finder every claim on their item, with the
// claimants' profiles resolved in one batched query.
func (s *ClaimService) ListItemClaims(c *fiber.Ctx) error {
	userID := currentUserID(c)
	itemID := c.Params("id")

	var item models.FoundItem
	if err := s.DB.First(&item, "id = ?", itemID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
	}
	if item.FinderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the finder can review claims"})
	}

	var claims []models.ItemClaim
	if err := s.DB.Preload("Evidence").
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&claims).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch claims"})
	}

	ids := make([]string, 0, len(claims))
	seen := map[string]bool{}
	for _, cl := range claims {
		if !seen[cl.ClaimerID] {
			seen[cl.ClaimerID] = true
			ids = append(ids, cl.ClaimerID)
		}
	}
	claimers, err := batchProfileSummaries(s.DB, ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve claimants"})
	}

	type claimWithProfile struct {
		models.ItemClaim
		Claimer models.ProfileSummary `json:"claimer"`
	}
	out := make([]claimWithProfile, len(claims))
	for i, cl := range claims {
		out[i] = claimWithProfile{ItemClaim: cl, Claimer: claimers[cl.ClaimerID]}
	}
	return c.JSON(out)
}

// MyClaims lists the caller's own claims, newest first.
func (s *ClaimService) MyClaims(c *fiber.Ctx) error {
	claimerID := currentUserID(c)

	var claims []models.ItemClaim
	if err := s.DB.Preload("Evidence").
		Where("claimer_id = ?", claimerID).
		Order("created_at DESC").
		Find(&claims).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch claims"})
	}
	return c.JSON(claims)
}

// ReviewClaim is the finder's approve/reject decision on a pending
// claim. Approval flips the claim and the parent item in a single
// transaction so the pair is never observed half-applied. Sibling
// pending claims are left pending.
func (s *ClaimService) ReviewClaim(c *fiber.Ctx) error {
	userID := currentUserID(c)
	claimID := c.Params("id")

	var req struct {
		Decision string `json:"decision"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Decision != "approve" && req.Decision != "reject" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "decision must be approve or reject"})
	}

	var claim models.ItemClaim
	if err := s.DB.First(&claim, "id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "claim not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var item models.FoundItem
	if err := s.DB.First(&item, "id = ?", claim.ItemID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load item"})
	}
	if item.FinderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the item's finder can review this claim"})
	}
	if claim.Status != models.ClaimStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "claim has already been reviewed"})
	}

	if req.Decision == "reject" {
		if err := s.DB.Model(&claim).Update("status", models.ClaimStatusRejected).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reject claim"})
		}
		claim.Status = models.ClaimStatusRejected
		return c.JSON(claim)
	}

	if !models.CanTransitionItem(item.Status, models.ItemStatusClaimed) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "item is no longer active; another claim may already be approved",
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ItemClaim{}).
			Where("id = ?", claim.ID).
			Update("status", models.ClaimStatusApproved).Error; err != nil {
			return err
		}
		return tx.Model(&models.FoundItem{}).
			Where("id = ?", item.ID).
			Update("status", models.ItemStatusClaimed).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to approve claim"})
	}

	log.Printf("✅ [CLAIM] %s approved claim %s on item %s", userID, claim.ID, item.ID)
	if err := s.DB.Preload("Evidence").First(&claim, "id = ?", claimID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reload claim"})
	}
	return c.JSON(claim)
}
