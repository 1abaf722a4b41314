package dto

import "time"

// PageViewRequest records one page view
type PageViewRequest struct {
	Page      string  `json:"page" validate:"required,max=512"`
	VisitorID *string `json:"visitorId,omitempty" validate:"omitempty,max=255"`
}

// AnalyticsEventRequest records one UI click
type AnalyticsEventRequest struct {
	EventType   string  `json:"eventType" validate:"required,max=100"`
	ElementID   string  `json:"elementId" validate:"required,max=255"`
	ElementName *string `json:"elementName,omitempty" validate:"omitempty,max=255"`
	Page        string  `json:"page" validate:"required,max=512"`
	VisitorID   *string `json:"visitorId,omitempty" validate:"omitempty,max=255"`
}

// AnalyticsExportQuery bounds an export; empty values default to epoch..now
type AnalyticsExportQuery struct {
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Format    string `query:"format" validate:"omitempty,oneof=json xlsx"`
}

type PageViewDTO struct {
	ID    uint      `json:"id"`
	Page  string    `json:"page"`
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

type AnalyticsEventDTO struct {
	ID          uint      `json:"id"`
	EventType   string    `json:"eventType"`
	ElementID   string    `json:"elementId"`
	ElementName *string   `json:"elementName,omitempty"`
	Page        string    `json:"page"`
	Date        time.Time `json:"date"`
	Count       int64     `json:"count"`
}

type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AnalyticsExport is the downloadable export document
type AnalyticsExport struct {
	ExportDate string              `json:"exportDate"`
	DateRange  DateRangeDTO        `json:"dateRange"`
	PageViews  []PageViewDTO       `json:"pageViews"`
	Events     []AnalyticsEventDTO `json:"events"`
}

// AnalyticsClearResult reports how many rows were removed
type AnalyticsClearResult struct {
	PageViewsDeleted int64 `json:"pageViewsDeleted"`
	EventsDeleted    int64 `json:"eventsDeleted"`
}

type PageTotalDTO struct {
	Page  string `json:"page"`
	Views int64  `json:"views"`
}

type EventTotalDTO struct {
	EventType   string  `json:"eventType"`
	ElementID   string  `json:"elementId"`
	ElementName *string `json:"elementName,omitempty"`
	Clicks      int64   `json:"clicks"`
}

// AnalyticsSummary aggregates the last N days for the dashboard
type AnalyticsSummary struct {
	Days        int             `json:"days"`
	TotalViews  int64           `json:"totalViews"`
	TotalClicks int64           `json:"totalClicks"`
	Pages       []PageTotalDTO  `json:"pages"`
	Events      []EventTotalDTO `json:"events"`
}
