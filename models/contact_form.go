package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Contact form statuses. Admins may set any of them at any time.
const (
	ContactStatusNew       = "NEW"
	ContactStatusResponded = "RESPONDED"
	ContactStatusClosed    = "CLOSED"
)

// ContactStatuses lists the accepted status values
var ContactStatuses = []string{ContactStatusNew, ContactStatusResponded, ContactStatusClosed}

// IsValidContactStatus reports whether s is one of ContactStatuses.
func IsValidContactStatus(s string) bool {
	for _, v := range ContactStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ContactForm struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:320;not null;index:idx_contact_forms_email" json:"email"`
	Company     *string   `gorm:"size:255" json:"company,omitempty"`
	Subject     *string   `gorm:"size:255" json:"subject,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	ServiceType *string   `gorm:"size:100" json:"service_type,omitempty"`
	Status      string    `gorm:"size:20;not null;default:'NEW';index:idx_contact_forms_status" json:"status"`
	CreatedAt   time.Time `gorm:"index:idx_contact_forms_created_at" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ContactForm) TableName() string { return "contact_forms" }

func (c *ContactForm) BeforeCreate(tx *gorm.DB) error {
	c.Status = strings.ToUpper(strings.TrimSpace(c.Status))
	if c.Status == "" {
		c.Status = ContactStatusNew
	}
	return nil
}

// ContactFormFilter represents filter criteria for contact form queries
type ContactFormFilter struct {
	ID            *uint
	Email         *string
	Status        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
