package dto

import "time"

// ContactRequest is the public contact form payload
type ContactRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,basic_email,max=320"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,max=255"`
	Message     string  `json:"message" validate:"required,max=10000"`
	ServiceType *string `json:"serviceType,omitempty" validate:"omitempty,max=100"`
}

// ContactSubmitResult tells the caller whether a notification actually left the building
type ContactSubmitResult struct {
	ID             uint   `json:"id"`
	EmailDelivered bool   `json:"emailDelivered"`
	EmailProvider  string `json:"emailProvider"`
}

type ContactFormDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     *string   `json:"company,omitempty"`
	Subject     *string   `json:"subject,omitempty"`
	Message     string    `json:"message"`
	ServiceType *string   `json:"serviceType,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ContactListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=NEW RESPONDED CLOSED"`
	Limit  int    `query:"limit" validate:"omitempty,min=0"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type ContactListResponse struct {
	Forms      []ContactFormDTO `json:"forms"`
	Total      int64            `json:"total"`
	Pagination PaginationDTO    `json:"pagination"`
}

type UpdateContactStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
