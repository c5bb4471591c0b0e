// models/message.go
package models

import "time"

// Message is one chat message between two users, optionally tied to a
// found item. Messages are never deleted; the only mutation ever
// applied is flipping IsRead from false to true when the recipient
// opens the conversation.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	SenderID   string    `json:"sender_id" gorm:"index;not null"`
	ReceiverID string    `json:"receiver_id" gorm:"index;not null"`
	ItemID     string    `json:"item_id,omitempty" gorm:"index"`
	Content    string    `json:"content" gorm:"not null"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Message) TableName() string { return "item_messages" }
