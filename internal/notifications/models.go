package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Delivery statuses
const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// SentEmail records every outbound email attempt. Failures are recorded
// here and logged but never surfaced to the triggering operation.
type SentEmail struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Recipient string     `json:"recipient" gorm:"not null"`
	Subject   string     `json:"subject" gorm:"not null"`
	Body      string     `json:"body" gorm:"not null"`
	Provider  string     `json:"provider" gorm:"not null"`
	Status    string     `json:"status" gorm:"not null"`
	Error     *string    `json:"error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}
