package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. The shared
// cache keeps the database alive across GORM's pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.FoundItem{},
		&models.ItemImage{},
		&models.ItemClaim{},
		&models.ClaimEvidence{},
		&models.Message{},
		&models.LostItemQuery{},
		&models.SuccessStory{},
		&models.AdminOperator{},
	))
	return db
}

// testAuth stands in for the session middleware: the test picks the
// caller via the X-Test-User header.
func testAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals("user_id", id)
		}
		return c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, displayName string) string {
	t.Helper()

	id := uuid.NewString()
	require.NoError(t, db.Create(&models.User{
		ID:           id,
		Email:        displayName + "-" + id[:8] + "@example.com",
		PasswordHash: "x",
	}).Error)
	require.NoError(t, db.Create(&models.Profile{
		ID:          id,
		DisplayName: displayName,
	}).Error)
	return id
}

func jsonRequest(t *testing.T, method, target, userID string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
}
