package repository

import (
	"context"

	"github.com/aetherinc/aether-waitlist/models"
	"gorm.io/gorm"
)

// TerminalChatRepositoryImpl implements TerminalChatRepository interface
type TerminalChatRepositoryImpl struct {
	*BaseRepository[models.TerminalChat, models.TerminalChatFilter]
}

// NewTerminalChatRepository creates a new transcript repository
func NewTerminalChatRepository(db *gorm.DB) TerminalChatRepository {
	return &TerminalChatRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TerminalChat, models.TerminalChatFilter](db),
	}
}

func (r *TerminalChatRepositoryImpl) applyFilter(query *gorm.DB, filter models.TerminalChatFilter) *gorm.DB {
	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}
	if filter.VisitorID != nil {
		query = query.Where("visitor_id = ?", *filter.VisitorID)
	}
	if filter.Since != nil {
		query = query.Where("logged_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("logged_at < ?", *filter.Until)
	}
	return query
}

// ByFilter retrieves transcript rows, newest first unless orderBy says otherwise
func (r *TerminalChatRepositoryImpl) ByFilter(ctx context.Context, filter models.TerminalChatFilter, orderBy string, limit, offset int) ([]*models.TerminalChat, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TerminalChat{}), filter)
	if orderBy == "" {
		orderBy = "logged_at DESC, id DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.TerminalChat
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeErr("failed to list terminal chats", err)
	}
	return rows, nil
}

// Count returns the number of rows matching the filter
func (r *TerminalChatRepositoryImpl) Count(ctx context.Context, filter models.TerminalChatFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.TerminalChat{}), filter).Count(&count).Error; err != nil {
		return 0, storeErr("failed to count terminal chats", err)
	}
	return count, nil
}

// Clear deletes every transcript row
func (r *TerminalChatRepositoryImpl) Clear(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)
	res := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.TerminalChat{})
	if res.Error != nil {
		return 0, storeErr("failed to clear terminal chats", res.Error)
	}
	return res.RowsAffected, nil
}
