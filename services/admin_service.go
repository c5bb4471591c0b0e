package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"find-bask-service/models"
	"find-bask-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService struct {
	DB        *gorm.DB
	JWTSecret string
}

func NewAdminService(db *gorm.DB, jwtSecret string) *AdminService {
	return &AdminService{DB: db, JWTSecret: jwtSecret}
}

// managedTables is the fixed set of application tables the back office
// may browse or clear. Account and operator tables are deliberately
// not on it.
var managedTables = []string{
	"found_items",
	"item_images",
	"item_claims",
	"claim_evidence",
	"item_messages",
	"profiles",
	"lost_item_queries",
	"success_stories",
}

func isManagedTable(name string) bool {
	for _, t := range managedTables {
		if t == name {
			return true
		}
	}
	return false
}

// EnsureSeedOperator creates the initial back-office account from the
// environment if it does not exist yet. Returns silently when it does.
func (s *AdminService) EnsureSeedOperator(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("admin seed credentials not configured")
	}

	var existing models.AdminOperator
	err := s.DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash operator password: %w", err)
	}

	op := &models.AdminOperator{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.DB.Create(op).Error; err != nil {
		return fmt.Errorf("failed to seed operator: %w", err)
	}
	log.Printf("✅ [ADMIN] Seeded operator %q", username)
	return nil
}

// Login authenticates an operator and issues an admin session token.
// Verification happens here, server-side — there is no client-side
// credential check anywhere in the system.
func (s *AdminService) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var op models.AdminOperator
	if err := s.DB.Where("username = ?", req.Username).First(&op).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := utils.GenerateToken(s.JWTSecret, op.ID, utils.RoleAdmin, utils.TokenTypeAccess, 12*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to issue token"})
	}

	log.Printf("✅ [ADMIN] Operator %q logged in", op.Username)
	return c.JSON(fiber.Map{"access_token": token})
}

// GetTables lists the managed tables with their row counts.
func (s *AdminService) GetTables(c *fiber.Ctx) error {
	type tableInfo struct {
		Name     string `json:"name"`
		RowCount int64  `json:"row_count"`
	}

	out := make([]tableInfo, 0, len(managedTables))
	for _, name := range managedTables {
		var count int64
		if err := s.DB.Table(name).Count(&count).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to count table %s", name),
			})
		}
		out = append(out, tableInfo{Name: name, RowCount: count})
	}
	return c.JSON(out)
}

// BrowseTable pages through raw rows of a managed table.
func (s *AdminService) BrowseTable(c *fiber.Ctx) error {
	name := c.Params("name")
	if !isManagedTable(name) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown table"})
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var rows []map[string]interface{}
	if err := s.DB.Table(name).Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read table"})
	}

	var total int64
	if err := s.DB.Table(name).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count table"})
	}

	return c.JSON(fiber.Map{
		"table":  name,
		"total":  total,
		"offset": offset,
		"rows":   rows,
	})
}

// ClearTable wipes all rows from a managed table.
func (s *AdminService) ClearTable(c *fiber.Ctx) error {
	name := c.Params("name")
	if !isManagedTable(name) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown table"})
	}

	if err := s.DB.Exec("DELETE FROM " + name).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to clear table"})
	}

	log.Printf("🗑️ [ADMIN] Cleared table %s", name)
	return c.JSON(fiber.Map{"cleared": name})
}

// ResetProfiles blanks display data on every profile while keeping the
// accounts themselves intact.
func (s *AdminService) ResetProfiles(c *fiber.Ctx) error {
	res := s.DB.Model(&models.Profile{}).Where("1 = 1").Updates(map[string]interface{}{
		"display_name": "User",
		"avatar_url":   "",
		"avatar_key":   "",
		"bio":          "",
		"location":     "",
		"phone":        "",
	})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reset profiles"})
	}

	log.Printf("🗑️ [ADMIN] Reset %d profile(s)", res.RowsAffected)
	return c.JSON(fiber.Map{"reset": res.RowsAffected})
}

// DeleteStorage removes objects from the bucket by key.
func (s *AdminService) DeleteStorage(c *fiber.Ctx) error {
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Keys) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "keys are required"})
	}

	if err := utils.RemoveFromBucket(req.Keys); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete objects"})
	}
	return c.JSON(fiber.Map{"deleted": len(req.Keys)})
}

// Stats summarizes the dataset for the back-office dashboard.
func (s *AdminService) Stats(c *fiber.Ctx) error {
	stats := fiber.Map{}

	var users int64
	if err := s.DB.Model(&models.User{}).Count(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count users"})
	}
	stats["users"] = users

	itemCounts := map[string]int64{}
	for _, status := range []string{models.ItemStatusActive, models.ItemStatusClaimed, models.ItemStatusCompleted} {
		var n int64
		if err := s.DB.Model(&models.FoundItem{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count items"})
		}
		itemCounts[status] = n
	}
	stats["items"] = itemCounts

	claimCounts := map[string]int64{}
	for _, status := range []string{models.ClaimStatusPending, models.ClaimStatusApproved, models.ClaimStatusRejected, models.ClaimStatusCompleted} {
		var n int64
		if err := s.DB.Model(&models.ItemClaim{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count claims"})
		}
		claimCounts[status] = n
	}
	stats["claims"] = claimCounts

	var messages int64
	if err := s.DB.Model(&models.Message{}).Count(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count messages"})
	}
	stats["messages"] = messages

	return c.JSON(stats)
}
