package domain

import "time"

// DefaultReviewer is stamped on reviews until real reviewer accounts exist.
const DefaultReviewer = "HR_USER"

// HumanReview is the audit record of a manual decision. The unique index on
// CandidateID enforces at most one review per candidate at the store level.
// Rows are never updated or deleted.
type HumanReview struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CandidateID uint      `gorm:"not null;uniqueIndex" json:"candidate_id"`
	Reviewer    string    `gorm:"size:255;not null" json:"reviewer"`
	Decision    Decision  `gorm:"size:32;not null" json:"decision"`
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}
