// models/item_claim.go
package models

import "time"

const (
	ClaimStatusPending   = "pending"
	ClaimStatusApproved  = "approved"
	ClaimStatusRejected  = "rejected"
	ClaimStatusCompleted = "completed" // only via the parent item completing
)

// ItemClaim = a user's assertion of ownership over a found item,
// reviewed by the finder. One claim per (item, claimer) pair, enforced
// by the composite unique index.
type ItemClaim struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ItemID    string `json:"item_id" gorm:"uniqueIndex:idx_item_claimer;not null"`
	ClaimerID string `json:"claimer_id" gorm:"uniqueIndex:idx_item_claimer;not null"`

	// Ownership verification supplied by the claimer
	Description         string `json:"description" gorm:"not null"`
	IdentificationMarks string `json:"identification_marks,omitempty"`
	AdditionalInfo      string `json:"additional_info,omitempty"`

	Evidence []ClaimEvidence `json:"evidence" gorm:"foreignKey:ClaimID"`

	// pending | approved | rejected | completed
	Status string `json:"status" gorm:"default:'pending'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClaimEvidence is an uploaded photo/document backing a claim. The
// bucket key is persisted next to the public URL so removal is a plain
// delete by key.
type ClaimEvidence struct {
	ID          string `json:"id" gorm:"primaryKey"`
	ClaimID     string `json:"claim_id" gorm:"index"`
	URL         string `json:"url"`
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// "evidence" is its own plural; GORM would otherwise name the table
// claim_evidences.
func (ClaimEvidence) TableName() string { return "claim_evidence" }
