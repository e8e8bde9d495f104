package domain

import "time"

// EmailStatus is the outcome of one notification attempt.
type EmailStatus string

const (
	EmailSent   EmailStatus = "SENT"
	EmailFailed EmailStatus = "FAILED"
	// EmailSkipped means the mailer is not configured. Skipped attempts are
	// logged but never written to the email log.
	EmailSkipped EmailStatus = "SKIPPED"
)

// NotificationResult reports what a notifier did for one candidate.
type NotificationResult struct {
	Recipient string
	Subject   string
	Body      string
	Status    EmailStatus
	Error     string
}

// EmailLog is the append-only audit trail of notification attempts. Rows
// are never updated or deleted.
type EmailLog struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CandidateID uint        `gorm:"not null;index" json:"candidate_id"`
	EmailType   string      `gorm:"size:32" json:"email_type"`
	Recipient   string      `gorm:"size:255" json:"recipient"`
	Subject     string      `gorm:"size:255" json:"subject"`
	Body        string      `gorm:"type:text" json:"body"`
	Status      EmailStatus `gorm:"size:16;not null" json:"status"`
	Error       string      `gorm:"type:text" json:"error,omitempty"`
	SentAt      time.Time   `gorm:"autoCreateTime" json:"sent_at"`
}
