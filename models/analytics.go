package models

import "time"

// Analytics is the daily page-view counter for one page.
// Table: analytics
// Unique by (page, date); date is the UTC day start.
type Analytics struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Page      string    `gorm:"size:512;not null;uniqueIndex:uk_analytics_page_date,priority:1" json:"page"`
	Date      time.Time `gorm:"not null;uniqueIndex:uk_analytics_page_date,priority:2;index:idx_analytics_date" json:"date"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Analytics) TableName() string { return "analytics" }

// AnalyticsEvent is the daily click counter for one UI element on one page.
// Table: analytics_events
// Unique by (event_type, element_id, page, date)
type AnalyticsEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventType   string    `gorm:"size:100;not null;uniqueIndex:uk_analytics_events_key,priority:1" json:"event_type"`
	ElementID   string    `gorm:"size:255;not null;uniqueIndex:uk_analytics_events_key,priority:2" json:"element_id"`
	ElementName *string   `gorm:"size:255" json:"element_name,omitempty"`
	Page        string    `gorm:"size:512;not null;uniqueIndex:uk_analytics_events_key,priority:3" json:"page"`
	Date        time.Time `gorm:"not null;uniqueIndex:uk_analytics_events_key,priority:4;index:idx_analytics_events_date" json:"date"`
	Count       int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AnalyticsEvent) TableName() string { return "analytics_events" }

// AnalyticsRange bounds counter reads; both ends inclusive.
type AnalyticsRange struct {
	Start time.Time
	End   time.Time
}
