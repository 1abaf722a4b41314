package models

import "time"

// WaitlistEntry is a single signup. One row per distinct email.
type WaitlistEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:320;not null;uniqueIndex:uk_waitlist_entries_email" json:"email"`
	Reason      *string   `gorm:"type:text" json:"reason,omitempty"`
	UseCase     *string   `gorm:"type:text" json:"use_case,omitempty"`
	EarlyAccess bool      `gorm:"not null;default:false" json:"early_access"`
	IP          string    `gorm:"size:64;not null;default:'unknown'" json:"ip"`
	UserAgent   *string   `gorm:"size:512" json:"user_agent,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_waitlist_entries_created_at" json:"created_at"`
}

func (WaitlistEntry) TableName() string { return "waitlist_entries" }

// WaitlistFilter represents filter criteria for waitlist queries
type WaitlistFilter struct {
	ID            *uint
	Email         *string
	Search        *string
	EarlyAccess   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
