// services/scheduler.go
package services

import (
	"log"
	"time"

	"find-bask-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartClaimScheduler periodically rejects pending claims left behind
// on items whose handover already completed, so losing claimants don't
// see "pending" forever.
func (s *ClaimService) StartClaimScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-24 * time.Hour)

			res := s.DB.Model(&models.ItemClaim{}).
				Where("status = ?", models.ClaimStatusPending).
				Where("updated_at < ?", cutoff).
				Where("item_id IN (?)",
					s.DB.Model(&models.FoundItem{}).
						Select("id").
						Where("status = ?", models.ItemStatusCompleted),
				).
				Update("status", models.ClaimStatusRejected)
			if res.Error != nil {
				log.Printf("[Scheduler] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Auto-rejected %d stale claim(s) on completed items", res.RowsAffected)
			}
		}),
	)
}
