package workers

import (
	"fmt"
	"testing"

	"find-bask-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FoundItem{}, &models.ItemClaim{}))
	return db
}

func seedPair(t *testing.T, db *gorm.DB, itemStatus, claimStatus string) (string, string) {
	t.Helper()

	itemID := uuid.NewString()
	require.NoError(t, db.Create(&models.FoundItem{
		ID:       itemID,
		FinderID: uuid.NewString(),
		Name:     "Black Wallet",
		Status:   itemStatus,
	}).Error)

	claimID := uuid.NewString()
	require.NoError(t, db.Create(&models.ItemClaim{
		ID:          claimID,
		ItemID:      itemID,
		ClaimerID:   uuid.NewString(),
		Description: "brown leather wallet with ID cards",
		Status:      claimStatus,
	}).Error)
	return itemID, claimID
}

func TestReconcileRepairsApprovedClaimOnActiveItem(t *testing.T) {
	db := newTestDB(t)
	itemID, claimID := seedPair(t, db, models.ItemStatusActive, models.ClaimStatusApproved)

	repaired, err := NewReconciler(db).ReconcileOnce()
	require.NoError(t, err)
	assert.EqualValues(t, 1, repaired)

	var item models.FoundItem
	var claim models.ItemClaim
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	require.NoError(t, db.First(&claim, "id = ?", claimID).Error)
	assert.Equal(t, models.ItemStatusClaimed, item.Status)
	assert.Equal(t, models.ClaimStatusApproved, claim.Status)
}

func TestReconcileRepairsApprovedClaimOnCompletedItem(t *testing.T) {
	db := newTestDB(t)
	itemID, claimID := seedPair(t, db, models.ItemStatusCompleted, models.ClaimStatusApproved)

	repaired, err := NewReconciler(db).ReconcileOnce()
	require.NoError(t, err)
	assert.EqualValues(t, 1, repaired)

	var item models.FoundItem
	var claim models.ItemClaim
	require.NoError(t, db.First(&item, "id = ?", itemID).Error)
	require.NoError(t, db.First(&claim, "id = ?", claimID).Error)
	assert.Equal(t, models.ItemStatusCompleted, item.Status)
	assert.Equal(t, models.ClaimStatusCompleted, claim.Status)
}

func TestReconcileLeavesConsistentRowsAlone(t *testing.T) {
	db := newTestDB(t)
	seedPair(t, db, models.ItemStatusActive, models.ClaimStatusPending)
	seedPair(t, db, models.ItemStatusClaimed, models.ClaimStatusApproved)
	seedPair(t, db, models.ItemStatusCompleted, models.ClaimStatusRejected)

	repaired, err := NewReconciler(db).ReconcileOnce()
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
