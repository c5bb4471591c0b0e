package models

import "time"

// AdminOperator is a back-office account. Unlike regular users these
// are seeded from the environment and authenticate against the server,
// never against anything shipped to a client.
type AdminOperator struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (AdminOperator) TableName() string { return "admin_operators" }
