package services

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newItemApp(db *gorm.DB) *fiber.App {
	svc := NewItemService(db)
	app := fiber.New()
	app.Use(testAuth())
	app.Get("/items", svc.SearchItems)
	app.Get("/items/:id", svc.GetItem)
	app.Put("/items/:id", svc.UpdateItem)
	app.Post("/items/:id/complete", svc.CompleteItem)
	app.Delete("/items/:id", svc.DeleteItem)
	return app
}

func seedItem(t *testing.T, db *gorm.DB, finderID, name, category, status string, createdAt time.Time) *models.FoundItem {
	t.Helper()

	item := &models.FoundItem{
		ID:                uuid.NewString(),
		FinderID:          finderID,
		Name:              name,
		Category:          category,
		Location:          "MG Road",
		ContactPreference: models.ContactPrefApp,
		Status:            status,
		CreatedAt:         createdAt,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestSearchItemsExcludesNonActive(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")

	now := time.Now()
	seedItem(t, db, finder, "Black Wallet", "Wallets", models.ItemStatusActive, now)
	seedItem(t, db, finder, "Blue Wallet", "Wallets", models.ItemStatusClaimed, now)
	seedItem(t, db, finder, "Red Wallet", "Wallets", models.ItemStatusCompleted, now)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/items", "", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.FoundItem
	decodeBody(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Black Wallet", items[0].Name)
}

func TestSearchItemsAppliesEveryFilter(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")

	now := time.Now()
	match := seedItem(t, db, finder, "Silver Headphones", "Electronics", models.ItemStatusActive, now.Add(-2*time.Hour))
	seedItem(t, db, finder, "Old Phone", "Electronics", models.ItemStatusActive, now.Add(-48*time.Hour)) // too old
	seedItem(t, db, finder, "Silver Ring", "Jewellery", models.ItemStatusActive, now.Add(-time.Hour))    // wrong category

	q := url.Values{}
	q.Set("q", "silver")
	q.Set("category", "Electronics")
	q.Set("location", "mg road")
	q.Set("timeframe", "Last 24 Hours")

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/items?"+q.Encode(), "", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.FoundItem
	decodeBody(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, match.ID, items[0].ID)
}

func TestSearchItemsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")

	now := time.Now()
	older := seedItem(t, db, finder, "Umbrella", "Accessories", models.ItemStatusActive, now.Add(-3*time.Hour))
	newer := seedItem(t, db, finder, "Scarf", "Accessories", models.ItemStatusActive, now.Add(-time.Hour))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/items", "", nil))
	require.NoError(t, err)

	var items []models.FoundItem
	decodeBody(t, resp, &items)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)
}

func TestSearchItemsRejectsUnknownTimeframe(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)

	q := url.Values{}
	q.Set("timeframe", "Last Century")
	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/items?"+q.Encode(), "", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTimeframeCutoff(t *testing.T) {
	now := time.Now()

	cutoff, ok := timeframeCutoff("Last 24 Hours", now)
	require.True(t, ok)
	assert.Equal(t, now.Add(-24*time.Hour), cutoff)

	cutoff, ok = timeframeCutoff("Last 7 Days", now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -7), cutoff)

	_, ok = timeframeCutoff("whenever", now)
	assert.False(t, ok)
}

func TestUpdateItemNeverWritesStatus(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")
	item := seedItem(t, db, finder, "Keys", "Keys", models.ItemStatusActive, time.Now())

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/items/"+item.ID, finder, map[string]string{
		"description": "found near the fountain",
		"status":      models.ItemStatusCompleted, // ignored
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.FoundItem
	require.NoError(t, db.First(&got, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusActive, got.Status)
	assert.Equal(t, "found near the fountain", got.Description)
}

func TestUpdateItemOnlyFinder(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")
	stranger := seedUser(t, db, "stranger")
	item := seedItem(t, db, finder, "Keys", "Keys", models.ItemStatusActive, time.Now())

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/items/"+item.ID, stranger, map[string]string{
		"description": "mine now",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCompleteItemPromotesApprovedClaims(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")
	winner := seedUser(t, db, "winner")
	loser := seedUser(t, db, "loser")

	item := seedItem(t, db, finder, "Black Wallet", "Wallets", models.ItemStatusClaimed, time.Now())
	approved := seedClaim(t, db, item.ID, winner, models.ClaimStatusApproved)
	pending := seedClaim(t, db, item.ID, loser, models.ClaimStatusPending)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/items/"+item.ID+"/complete", finder, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var gotItem models.FoundItem
	require.NoError(t, db.First(&gotItem, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusCompleted, gotItem.Status)

	var gotApproved, gotPending models.ItemClaim
	require.NoError(t, db.First(&gotApproved, "id = ?", approved.ID).Error)
	require.NoError(t, db.First(&gotPending, "id = ?", pending.ID).Error)
	assert.Equal(t, models.ClaimStatusCompleted, gotApproved.Status)
	assert.Equal(t, models.ClaimStatusPending, gotPending.Status)
}

func TestCompleteItemRequiresClaimedState(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")
	item := seedItem(t, db, finder, "Keys", "Keys", models.ItemStatusActive, time.Now())

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/items/"+item.ID+"/complete", finder, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Terminal state stays terminal.
	require.NoError(t, db.Model(&models.FoundItem{}).Where("id = ?", item.ID).
		Update("status", models.ItemStatusCompleted).Error)
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/items/"+item.ID+"/complete", finder, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCompleteItemOnlyFinder(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")
	stranger := seedUser(t, db, "stranger")
	item := seedItem(t, db, finder, "Keys", "Keys", models.ItemStatusClaimed, time.Now())

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/items/"+item.ID+"/complete", stranger, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteItemOnlyWhileActive(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")

	claimed := seedItem(t, db, finder, "Keys", "Keys", models.ItemStatusClaimed, time.Now())
	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/items/"+claimed.ID, finder, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	active := seedItem(t, db, finder, "Scarf", "Accessories", models.ItemStatusActive, time.Now())
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/items/"+active.ID, finder, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.FoundItem{}).Where("id = ?", active.ID).Count(&count).Error)
	assert.Zero(t, count, "soft-deleted item should be excluded from default scope")
}

func TestDeleteItemRemovesImageRows(t *testing.T) {
	db := newTestDB(t)
	app := newItemApp(db)
	finder := seedUser(t, db, "finder")
	item := seedItem(t, db, finder, "Camera", "Electronics", models.ItemStatusActive, time.Now())

	require.NoError(t, db.Create(&models.ItemImage{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		URL:        "https://cdn.example/items/camera-1.jpg",
		StorageKey: "items/camera-1.jpg",
	}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/items/"+item.ID, finder, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var images int64
	require.NoError(t, db.Model(&models.ItemImage{}).Where("item_id = ?", item.ID).Count(&images).Error)
	assert.Zero(t, images, "image rows must not outlive the item")
}
