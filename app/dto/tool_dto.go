package dto

import "time"

// ToolDTO is a catalog entry on the wire; Type is the ordered tag list
type ToolDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Type        []string  `json:"type"`
	License     string    `json:"license"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Pricing     *string   `json:"pricing"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListToolsQuery is the query string of the tools listing
type ListToolsQuery struct {
	Category string `query:"category" validate:"omitempty,max=255"`
	Type     string `query:"type" validate:"omitempty,max=255"`
	Search   string `query:"search" validate:"omitempty,max=255"`
	Limit    int    `query:"limit" validate:"omitempty,min=0"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
	IsActive *bool  `query:"isActive"`
}

// ToolListResponse is the listing body; fields sit at the top level next to success
type ToolListResponse struct {
	Success    bool          `json:"success"`
	Tools      []ToolDTO     `json:"tools"`
	Total      int64         `json:"total"`
	Categories []string      `json:"categories"`
	Types      []string      `json:"types"`
	Pagination PaginationDTO `json:"pagination"`
}

// AdminToolRequest creates or replaces a tool
type AdminToolRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required,max=255"`
	Type        []string `json:"type" validate:"omitempty,dive,max=255"`
	License     string   `json:"license" validate:"omitempty,max=255"`
	URL         string   `json:"url" validate:"omitempty,max=2048"`
	Pricing     *string  `json:"pricing" validate:"omitempty,max=255"`
	IsActive    *bool    `json:"isActive"`
}

// ToolImportRowError reports one rejected import line
type ToolImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ToolImportResult summarizes a TSV import
type ToolImportResult struct {
	Created int                  `json:"created"`
	Updated int                  `json:"updated"`
	Skipped int                  `json:"skipped"`
	Errors  []ToolImportRowError `json:"errors,omitempty"`
}
