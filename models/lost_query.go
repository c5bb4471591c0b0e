package models

import "time"

// LostItemQuery = a user describing something they lost, so finders
// browsing recent queries can reach out.
type LostItemQuery struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	ItemName    string    `json:"item_name" gorm:"not null"`
	Category    string    `json:"category" gorm:"index"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (LostItemQuery) TableName() string { return "lost_item_queries" }
