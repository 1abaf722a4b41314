package dto

import "time"

// JoinWaitlistRequest is the public signup payload
type JoinWaitlistRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"basic_email,max=320"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=5000"`
	UseCase     *string `json:"useCase,omitempty" validate:"omitempty,max=5000"`
	EarlyAccess *bool   `json:"earlyAccess,omitempty"`
}

// WaitlistEntryDTO is a waitlist entry as shown to admins
type WaitlistEntryDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Reason      *string   `json:"reason,omitempty"`
	UseCase     *string   `json:"useCase,omitempty"`
	EarlyAccess bool      `json:"earlyAccess"`
	IP          string    `json:"ip"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminWaitlistListResponse is one page of waitlist entries
type AdminWaitlistListResponse struct {
	Entries    []WaitlistEntryDTO `json:"entries"`
	Total      int64              `json:"total"`
	Pagination PaginationDTO      `json:"pagination"`
}
