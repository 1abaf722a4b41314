// Package dto contains Data Transfer Objects for API request and response structures
package dto

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// PaginationDTO describes one page of a listing
type PaginationDTO struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// NewPagination computes hasMore as offset+limit < total
func NewPagination(limit, offset int, total int64) PaginationDTO {
	return PaginationDTO{
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
}

// ListQuery is the common limit/offset query of admin listings
type ListQuery struct {
	Search string `query:"search" validate:"omitempty,max=255"`
	Limit  int    `query:"limit" validate:"omitempty,min=0,max=1000"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
