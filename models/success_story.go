package models

import "time"

// SuccessStory is written by a participant after a completed handover.
type SuccessStory struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ItemID    string    `json:"item_id" gorm:"index;not null"`
	FinderID  string    `json:"finder_id" gorm:"not null"`
	ClaimerID string    `json:"claimer_id" gorm:"not null"`
	Title     string    `json:"title" gorm:"not null"`
	Story     string    `json:"story"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	PhotoKey  string    `json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
