package repository

import (
	"context"
	"strings"

	"github.com/aetherinc/aether-waitlist/models"
	"gorm.io/gorm"
)

// WaitlistRepositoryImpl implements WaitlistRepository interface
type WaitlistRepositoryImpl struct {
	*BaseRepository[models.WaitlistEntry, models.WaitlistFilter]
}

// NewWaitlistRepository creates a new waitlist repository
func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &WaitlistRepositoryImpl{
		BaseRepository: NewBaseRepository[models.WaitlistEntry, models.WaitlistFilter](db),
	}
}

// ByEmail retrieves an entry by its (already normalized) email
func (r *WaitlistRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	rows, err := r.ByFilter(ctx, models.WaitlistFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *WaitlistRepositoryImpl) applyFilter(query *gorm.DB, filter models.WaitlistFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Search != nil {
		like := "%" + escapeLike(strings.ToLower(*filter.Search)) + "%"
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, like, like)
	}
	if filter.EarlyAccess != nil {
		query = query.Where("early_access = ?", *filter.EarlyAccess)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves waitlist entries based on filter criteria
func (r *WaitlistRepositoryImpl) ByFilter(ctx context.Context, filter models.WaitlistFilter, orderBy string, limit, offset int) ([]*models.WaitlistEntry, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.WaitlistEntry{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC, id DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.WaitlistEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeErr("failed to list waitlist entries", err)
	}
	return rows, nil
}

// Count returns the number of entries matching the filter
func (r *WaitlistRepositoryImpl) Count(ctx context.Context, filter models.WaitlistFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.WaitlistEntry{}), filter).Count(&count).Error; err != nil {
		return 0, storeErr("failed to count waitlist entries", err)
	}
	return count, nil
}

// Exists checks if any entry matching the filter exists
func (r *WaitlistRepositoryImpl) Exists(ctx context.Context, filter models.WaitlistFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Delete hard-deletes an entry
func (r *WaitlistRepositoryImpl) Delete(ctx context.Context, id uint) (int64, error) {
	return r.deleteByID(ctx, id)
}
