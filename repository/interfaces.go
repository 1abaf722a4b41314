// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/aetherinc/aether-waitlist/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ToolRepository defines operations for the tools catalog
type ToolRepository interface {
	Repository[models.Tool, models.ToolFilter]
	ByName(ctx context.Context, name string) (*models.Tool, error)
	Update(ctx context.Context, tool *models.Tool) error
	ReplaceTags(ctx context.Context, toolID uint, names []string) error
	Delete(ctx context.Context, id uint) (int64, error)
	DistinctCategories(ctx context.Context, activeOnly bool) ([]string, error)
	DistinctTypes(ctx context.Context, activeOnly bool) ([]string, error)
}

// WaitlistRepository defines operations for waitlist entries
type WaitlistRepository interface {
	Repository[models.WaitlistEntry, models.WaitlistFilter]
	ByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

// ContactFormRepository defines operations for contact form submissions
type ContactFormRepository interface {
	Repository[models.ContactForm, models.ContactFormFilter]
	UpdateStatus(ctx context.Context, id uint, status string) (int64, error)
}

// AnalyticsRepository defines operations for the daily page-view and click counters
type AnalyticsRepository interface {
	IncrementPageView(ctx context.Context, page string, day time.Time) error
	IncrementEvent(ctx context.Context, eventType, elementID, page string, elementName *string, day time.Time) error
	PageViewsBetween(ctx context.Context, r models.AnalyticsRange) ([]*models.Analytics, error)
	EventsBetween(ctx context.Context, r models.AnalyticsRange) ([]*models.AnalyticsEvent, error)
	Clear(ctx context.Context) (pageViews int64, events int64, err error)
}

// TerminalChatRepository defines operations for chat transcripts
type TerminalChatRepository interface {
	Save(ctx context.Context, entity *models.TerminalChat) error
	SaveBatch(ctx context.Context, entities []*models.TerminalChat) error
	ByFilter(ctx context.Context, filter models.TerminalChatFilter, orderBy string, limit, offset int) ([]*models.TerminalChat, error)
	Count(ctx context.Context, filter models.TerminalChatFilter) (int64, error)
	Clear(ctx context.Context) (int64, error)
}

// UserRepository defines operations for dashboard users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}
