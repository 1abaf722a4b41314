package models

import "time"

// TerminalChat is one append-only turn of a site chat transcript.
type TerminalChat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:255;not null;index:idx_terminal_chats_session_id" json:"session_id"`
	VisitorID *string   `gorm:"size:255;index:idx_terminal_chats_visitor_id" json:"visitor_id,omitempty"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Page      *string   `gorm:"size:512" json:"page,omitempty"`
	Metadata  *string   `gorm:"type:text" json:"metadata,omitempty"`
	Timestamp time.Time `gorm:"column:logged_at;not null;index:idx_terminal_chats_logged_at" json:"timestamp"`
}

func (TerminalChat) TableName() string { return "terminal_chats" }

// TerminalChatFilter represents filter criteria for transcript reads.
// Until is an exclusive upper bound.
type TerminalChatFilter struct {
	SessionID *string
	VisitorID *string
	Since     *time.Time
	Until     *time.Time
}
