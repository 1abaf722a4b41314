package repository

import (
	"context"
	"time"

	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepositoryImpl implements AnalyticsRepository over the two daily counter tables
type AnalyticsRepositoryImpl struct {
	DB *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &AnalyticsRepositoryImpl{DB: db}
}

func (r *AnalyticsRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB.WithContext(ctx)
}

// IncrementPageView bumps the counter of (page, day) by one, creating it at 1.
// Runs as a single INSERT ... ON CONFLICT DO UPDATE statement.
func (r *AnalyticsRepositoryImpl) IncrementPageView(ctx context.Context, page string, day time.Time) error {
	now := utils.UTCNow()
	row := models.Analytics{
		Page:      page,
		Date:      utils.StartOfDayUTC(day),
		Count:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "page"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("analytics.count + 1"),
			"updated_at": now,
		}),
	}).Create(&row).Error
	return storeErr("failed to increment page view", err)
}

// IncrementEvent bumps the counter of (eventType, elementID, page, day) by one.
// A non-empty elementName overwrites the stored label.
func (r *AnalyticsRepositoryImpl) IncrementEvent(ctx context.Context, eventType, elementID, page string, elementName *string, day time.Time) error {
	now := utils.UTCNow()
	row := models.AnalyticsEvent{
		EventType:   eventType,
		ElementID:   elementID,
		ElementName: elementName,
		Page:        page,
		Date:        utils.StartOfDayUTC(day),
		Count:       1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	updates := map[string]any{
		"count":      gorm.Expr("analytics_events.count + 1"),
		"updated_at": now,
	}
	if elementName != nil {
		updates["element_name"] = *elementName
	}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_type"}, {Name: "element_id"}, {Name: "page"}, {Name: "date"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&row).Error
	return storeErr("failed to increment event", err)
}

// PageViewsBetween returns page-view buckets whose day lies in r (inclusive)
func (r *AnalyticsRepositoryImpl) PageViewsBetween(ctx context.Context, rng models.AnalyticsRange) ([]*models.Analytics, error) {
	var rows []*models.Analytics
	err := r.getDB(ctx).
		Where("date >= ? AND date <= ?", rng.Start, rng.End).
		Order("date ASC, page ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr("failed to read page views", err)
	}
	return rows, nil
}

// EventsBetween returns click-event buckets whose day lies in r (inclusive)
func (r *AnalyticsRepositoryImpl) EventsBetween(ctx context.Context, rng models.AnalyticsRange) ([]*models.AnalyticsEvent, error) {
	var rows []*models.AnalyticsEvent
	err := r.getDB(ctx).
		Where("date >= ? AND date <= ?", rng.Start, rng.End).
		Order("date ASC, event_type ASC, element_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeErr("failed to read events", err)
	}
	return rows, nil
}

// Clear deletes every row of both counter tables
func (r *AnalyticsRepositoryImpl) Clear(ctx context.Context) (pageViews int64, events int64, err error) {
	err = WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)
		res := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Analytics{})
		if res.Error != nil {
			return storeErr("failed to clear page views", res.Error)
		}
		pageViews = res.RowsAffected
		res = db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.AnalyticsEvent{})
		if res.Error != nil {
			return storeErr("failed to clear events", res.Error)
		}
		events = res.RowsAffected
		return nil
	})
	return pageViews, events, err
}
