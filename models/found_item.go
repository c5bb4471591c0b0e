// models/found_item.go
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ItemStatusActive    = "active"    // visible in search, open for claims
	ItemStatusClaimed   = "claimed"   // finder approved a claim, hidden from search
	ItemStatusCompleted = "completed" // handover confirmed, terminal
)

const (
	ContactPrefApp   = "app"
	ContactPrefPhone = "phone"
	ContactPrefEmail = "email"
)

type FoundItem struct {
	ID          string `json:"id" gorm:"primaryKey"`
	FinderID    string `json:"finder_id" gorm:"index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Category    string `json:"category" gorm:"index"`
	Location    string `json:"location"`
	Description string `json:"description"`

	// How the finder wants to be reached: app | phone | email
	ContactPreference string `json:"contact_preference" gorm:"default:'app'"`

	// 🖼️ Ordered photos of the item
	Images []ItemImage `json:"images" gorm:"foreignKey:ItemID"`

	// 🎛️ Workflow state: active | claimed | completed (strictly forward)
	Status string `json:"status" gorm:"default:'active'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// 🔗 Claims filed against this item
	Claims []ItemClaim `json:"claims,omitempty" gorm:"foreignKey:ItemID"`
}

type ItemImage struct {
	ID     string `json:"id" gorm:"primaryKey"`
	ItemID string `json:"item_id" gorm:"index"`
	URL    string `json:"url"` // public URL served from the bucket

	// Object key inside the bucket. Stored at upload time so deletion
	// never has to re-derive it from the URL.
	StorageKey string `json:"storage_key"`
	Position   int    `json:"position"`
}

// ValidContactPreference reports whether p is one of app | phone | email.
func ValidContactPreference(p string) bool {
	return p == ContactPrefApp || p == ContactPrefPhone || p == ContactPrefEmail
}

// CanTransitionItem reports whether an item may move from one status to
// another. The lifecycle is strictly forward, one step at a time:
// active → claimed → completed. Nothing ever reverts.
func CanTransitionItem(from, to string) bool {
	switch from {
	case ItemStatusActive:
		return to == ItemStatusClaimed
	case ItemStatusClaimed:
		return to == ItemStatusCompleted
	default:
		return false
	}
}
