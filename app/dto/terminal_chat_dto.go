package dto

import "time"

// TerminalChatRequest appends one transcript turn
type TerminalChatRequest struct {
	SessionID string         `json:"sessionId" validate:"required,max=255"`
	VisitorID *string        `json:"visitorId,omitempty" validate:"omitempty,max=255"`
	Role      string         `json:"role" validate:"required,max=32"`
	Content   string         `json:"content" validate:"required"`
	Page      *string        `json:"page,omitempty" validate:"omitempty,max=512"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type TerminalChatDTO struct {
	ID        uint           `json:"id"`
	SessionID string         `json:"sessionId"`
	VisitorID *string        `json:"visitorId,omitempty"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Page      *string        `json:"page,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TerminalChatListQuery filters transcript reads; endDate is inclusive of that whole day
type TerminalChatListQuery struct {
	SessionID string `query:"sessionId"`
	VisitorID string `query:"visitorId"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Limit     int    `query:"limit" validate:"omitempty,min=0"`
}

type TerminalChatListResponse struct {
	Chats []TerminalChatDTO `json:"chats"`
	Count int               `json:"count"`
}
