package services

import (
	"net/http"
	"testing"
	"time"

	"find-bask-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommunityApp(db *gorm.DB) *fiber.App {
	lostSvc := NewLostQueryService(db)
	storySvc := NewStoryService(db)
	app := fiber.New()
	app.Use(testAuth())
	app.Post("/lost-queries", lostSvc.CreateQuery)
	app.Get("/lost-queries", lostSvc.RecentQueries)
	app.Get("/lost-queries/mine", lostSvc.MyQueries)
	app.Post("/stories", storySvc.CreateStory)
	app.Get("/stories", storySvc.ListStories)
	return app
}

func TestLostQueryLifecycle(t *testing.T) {
	db := newTestDB(t)
	app := newCommunityApp(db)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/lost-queries", owner, map[string]string{
		"item_name":   "Blue Backpack",
		"category":    "Bags",
		"location":    "Indiranagar",
		"description": "lost on the metro",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// item_name is required.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/lost-queries", owner, map[string]string{
		"category": "Bags",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/lost-queries/mine", other, nil))
	require.NoError(t, err)
	var mine []models.LostItemQuery
	decodeBody(t, resp, &mine)
	assert.Empty(t, mine)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/lost-queries?category=Bags", "", nil))
	require.NoError(t, err)
	var recent []models.LostItemQuery
	decodeBody(t, resp, &recent)
	require.Len(t, recent, 1)
	assert.Equal(t, "Blue Backpack", recent[0].ItemName)
}

func TestCreateStoryOnlyAfterHandover(t *testing.T) {
	db := newTestDB(t)
	app := newCommunityApp(db)
	finder := seedUser(t, db, "finder")
	claimer := seedUser(t, db, "claimer")
	stranger := seedUser(t, db, "stranger")

	item := seedItem(t, db, finder, "Black Wallet", "Wallets", models.ItemStatusClaimed, time.Now())
	claim := seedClaim(t, db, item.ID, claimer, models.ClaimStatusApproved)

	body := map[string]string{
		"item_id": item.ID,
		"title":   "Wallet back home",
		"story":   "Met at the cafe and handed it over.",
	}

	// Not completed yet.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/stories", finder, body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	require.NoError(t, db.Model(&models.FoundItem{}).Where("id = ?", item.ID).
		Update("status", models.ItemStatusCompleted).Error)
	require.NoError(t, db.Model(&models.ItemClaim{}).Where("id = ?", claim.ID).
		Update("status", models.ClaimStatusCompleted).Error)

	// Strangers cannot write it.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/stories", stranger, body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The claimer can.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/stories", claimer, body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var story models.SuccessStory
	decodeBody(t, resp, &story)
	assert.Equal(t, finder, story.FinderID)
	assert.Equal(t, claimer, story.ClaimerID)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/stories", "", nil))
	require.NoError(t, err)
	var stories []models.SuccessStory
	decodeBody(t, resp, &stories)
	assert.Len(t, stories, 1)
}
