// Package notification holds the letter notification model and its
// persistence layer, spanning the live table and the history table that
// older rows are archived into.
package notification

import (
	"errors"
	"time"

	"github.com/govnotify/letterpipe/internal/postage"
)

// Status values a letter moves through.
const (
	StatusCreated           = "created"
	StatusPendingVirusCheck = "pending-virus-check"
	StatusSending           = "sending"
	StatusDelivered         = "delivered"
	StatusTechnicalFailure  = "technical-failure"
	StatusValidationFailed  = "validation-failed"
	StatusVirusScanFailed   = "virus-scan-failed"
)

// API key types. Test-key letters never reach the print provider.
const (
	KeyTypeNormal = "normal"
	KeyTypeTeam   = "team"
	KeyTypeTest   = "test"
)

var ErrNotFound = errors.New("notification_not_found")

// Notification is one letter travelling through the pipeline. Reference is
// the value printed into PDF filenames and echoed back by the provider.
type Notification struct {
	ID             string     `gorm:"primaryKey;type:uuid"`
	Reference      string     `gorm:"type:text;not null;index"`
	ServiceID      string     `gorm:"type:uuid;not null;index"`
	OrganisationID string     `gorm:"type:uuid;not null"`
	Status         string     `gorm:"type:text;not null;index"`
	KeyType        string     `gorm:"type:text;not null;default:normal"`
	Postage        string     `gorm:"type:text;not null"`
	BillableUnits  int        `gorm:"not null;default:0"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      *time.Time `gorm:""`
	SentAt         *time.Time `gorm:""`
}

func (Notification) TableName() string { return "notifications" }

// History mirrors Notification for rows moved out of the live table.
type History struct {
	Notification
}

func (History) TableName() string { return "notification_history" }

// PostageClass parses the stored postage value.
func (n *Notification) PostageClass() (postage.Class, error) {
	return postage.Parse(n.Postage)
}

// TerminalStatus reports whether the status admits no further transitions.
func TerminalStatus(status string) bool {
	switch status {
	case StatusDelivered, StatusTechnicalFailure, StatusValidationFailed, StatusVirusScanFailed:
		return true
	}
	return false
}
