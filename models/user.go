package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account able to sign in to the admin dashboard.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID  `gorm:"size:36;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email        string     `gorm:"size:320;not null;uniqueIndex:uk_users_email" json:"email"`
	Username     *string    `gorm:"size:255;uniqueIndex:uk_users_username" json:"username,omitempty"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'USER';index:idx_users_role" json:"role"`
	IsActive     *bool      `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Email    *string
	Username *string
	Role     *string
	IsActive *bool
}
