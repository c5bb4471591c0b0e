package models

import "time"

// User is the account row behind a session. Display data lives on the
// Profile with the same ID.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Profile holds the public-facing identity of a user. Created at
// signup with ID = user ID, mutated by the owning user only.
type Profile struct {
	ID          string `json:"id" gorm:"primaryKey"`
	DisplayName string `json:"display_name" gorm:"index"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AvatarKey   string `json:"-"` // bucket key of the current avatar
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Phone       string `json:"phone,omitempty"`

	// Notification preferences
	NotifyEmail bool `json:"notify_email" gorm:"default:true"`
	NotifySMS   bool `json:"notify_sms" gorm:"default:false"`
	NotifyApp   bool `json:"notify_app" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ProfileSummary is the slice of a profile attached to messages and
// claim listings — enough to render a name and avatar.
type ProfileSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
