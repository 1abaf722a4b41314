package repository

import (
	"context"

	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/utils"
	"gorm.io/gorm"
)

// ContactFormRepositoryImpl implements ContactFormRepository interface
type ContactFormRepositoryImpl struct {
	*BaseRepository[models.ContactForm, models.ContactFormFilter]
}

// NewContactFormRepository creates a new contact form repository
func NewContactFormRepository(db *gorm.DB) ContactFormRepository {
	return &ContactFormRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ContactForm, models.ContactFormFilter](db),
	}
}

func (r *ContactFormRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContactFormFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves contact forms based on filter criteria
func (r *ContactFormRepositoryImpl) ByFilter(ctx context.Context, filter models.ContactFormFilter, orderBy string, limit, offset int) ([]*models.ContactForm, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ContactForm{}), filter)
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

	var rows []*models.ContactForm
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeErr("failed to list contact forms", err)
	}
	return rows, nil
}

// Count returns the number of contact forms matching the filter
func (r *ContactFormRepositoryImpl) Count(ctx context.Context, filter models.ContactFormFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.ContactForm{}), filter).Count(&count).Error; err != nil {
		return 0, storeErr("failed to count contact forms", err)
	}
	return count, nil
}

// Exists checks if any contact form matching the filter exists
func (r *ContactFormRepositoryImpl) Exists(ctx context.Context, filter models.ContactFormFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// UpdateStatus sets the status of one submission
func (r *ContactFormRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status string) (int64, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.ContactForm{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"updated_at": utils.UTCNow(),
	})
	if res.Error != nil {
		return 0, storeErr("failed to update contact form status", res.Error)
	}
	return res.RowsAffected, nil
}
