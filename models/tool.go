// Package models contains the persisted entities of the AetherInc backend
package models

import "time"

// Tool is an entry of the public AI tools catalog.
// Table: tools
// Name is the business key and is unique across the catalog.
type Tool struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:uk_tools_name" json:"name"`
	Category    string    `gorm:"size:255;not null;index:idx_tools_category" json:"category"`
	License     string    `gorm:"size:255" json:"license"`
	Description string    `gorm:"type:text;not null" json:"description"`
	URL         string    `gorm:"size:2048" json:"url"`
	Pricing     *string   `gorm:"size:255" json:"pricing,omitempty"`
	IsActive    *bool     `gorm:"default:true;index:idx_tools_is_active" json:"is_active"`
	Tags        []ToolTag `gorm:"foreignKey:ToolID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_tools_created_at" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tool) TableName() string { return "tools" }

// TagNames returns the tag names in their stored order.
func (t Tool) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// ToolTag is one ordered type label attached to a tool.
// Table: tool_tags
// Unique by (tool_id, name)
type ToolTag struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	ToolID   uint   `gorm:"not null;uniqueIndex:uk_tool_tags_tool_name,priority:1;index:idx_tool_tags_tool_id" json:"-"`
	Name     string `gorm:"size:255;not null;uniqueIndex:uk_tool_tags_tool_name,priority:2;index:idx_tool_tags_name" json:"name"`
	Position int    `gorm:"not null;default:0" json:"position"`
}

func (ToolTag) TableName() string { return "tool_tags" }

// ToolFilter represents filter criteria for tool queries
type ToolFilter struct {
	ID       *uint
	Name     *string
	Category *string
	Type     *string
	Search   *string
	IsActive *bool
}
