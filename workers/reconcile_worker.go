package workers

import (
	"context"
	"log"
	"time"

	"find-bask-service/models"

	"gorm.io/gorm"
)

// Reconciler repairs half-applied workflow states. The approve and
// complete operations write their two rows in one transaction, but
// rows written by older clients (or a crashed deploy mid-flight) can
// still disagree; this pass makes the pair consistent again.
type Reconciler struct {
	DB *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db}
}

// ReconcileOnce runs a single repair pass and returns how many rows it
// touched.
func (r *Reconciler) ReconcileOnce() (int64, error) {
	var repaired int64

	// An approved claim implies the item is claimed (or further).
	res := r.DB.Model(&models.FoundItem{}).
		Where("status = ?", models.ItemStatusActive).
		Where("id IN (?)",
			r.DB.Model(&models.ItemClaim{}).
				Select("item_id").
				Where("status = ?", models.ClaimStatusApproved),
		).
		Update("status", models.ItemStatusClaimed)
	if res.Error != nil {
		return repaired, res.Error
	}
	repaired += res.RowsAffected

	// A completed item implies its approved claims completed too.
	res = r.DB.Model(&models.ItemClaim{}).
		Where("status = ?", models.ClaimStatusApproved).
		Where("item_id IN (?)",
			r.DB.Model(&models.FoundItem{}).
				Select("id").
				Where("status = ?", models.ItemStatusCompleted),
		).
		Update("status", models.ClaimStatusCompleted)
	if res.Error != nil {
		return repaired, res.Error
	}
	repaired += res.RowsAffected

	return repaired, nil
}

// PollReconcile runs the repair pass on a fixed interval until the
// context is cancelled. Failures are retried on the next tick.
func PollReconcile(ctx context.Context, r *Reconciler, pollInterval time.Duration) {
	log.Println("Starting workflow reconciler...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Workflow reconciler stopped.")
			return
		case <-ticker.C:
			repaired, err := r.ReconcileOnce()
			if err != nil {
				log.Printf("❌ Reconcile pass failed: %v", err)
				continue
			}
			if repaired > 0 {
				log.Printf("🔧 Reconciled %d half-applied row(s)", repaired)
			}
		}
	}
}
