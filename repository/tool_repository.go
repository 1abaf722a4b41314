package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/aetherinc/aether-waitlist/models"
	"gorm.io/gorm"
)

// ToolRepositoryImpl implements ToolRepository interface
type ToolRepositoryImpl struct {
	*BaseRepository[models.Tool, models.ToolFilter]
}

// NewToolRepository creates a new tool repository
func NewToolRepository(db *gorm.DB) ToolRepository {
	return &ToolRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tool, models.ToolFilter](db),
	}
}

func preloadTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("tool_tags.position ASC")
	})
}

// ByID retrieves a tool with its tags
func (r *ToolRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Tool, error) {
	db := r.getDB(ctx)
	var row models.Tool
	if err := preloadTags(db).Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("failed to find tool", err)
	}
	return &row, nil
}

// ByName retrieves a tool by its unique name
func (r *ToolRepositoryImpl) ByName(ctx context.Context, name string) (*models.Tool, error) {
	filter := models.ToolFilter{Name: &name}
	rows, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ToolRepositoryImpl) applyFilter(query *gorm.DB, filter models.ToolFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("tools.id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("tools.name = ?", *filter.Name)
	}
	if filter.Category != nil {
		query = query.Where("tools.category = ?", *filter.Category)
	}
	if filter.Type != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM tool_tags WHERE tool_tags.tool_id = tools.id AND LOWER(tool_tags.name) = ?)",
			strings.ToLower(*filter.Type),
		)
	}
	if filter.Search != nil {
		like := "%" + escapeLike(strings.ToLower(*filter.Search)) + "%"
		query = query.Where(
			`(LOWER(tools.name) LIKE ? ESCAPE '\' OR LOWER(tools.description) LIKE ? ESCAPE '\' OR LOWER(tools.category) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}
	if filter.IsActive != nil {
		query = query.Where("tools.is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves tools based on filter criteria
func (r *ToolRepositoryImpl) ByFilter(ctx context.Context, filter models.ToolFilter, orderBy string, limit, offset int) ([]*models.Tool, error) {
	db := r.getDB(ctx)
	query := preloadTags(db.Model(&models.Tool{}))

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "tools.id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Tool
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeErr("failed to list tools", err)
	}
	return rows, nil
}

// Count returns the number of tools matching the filter
func (r *ToolRepositoryImpl) Count(ctx context.Context, filter models.ToolFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tool{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storeErr("failed to count tools", err)
	}
	return count, nil
}

// Exists checks if any tool matching the filter exists
func (r *ToolRepositoryImpl) Exists(ctx context.Context, filter models.ToolFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Update writes every mutable column of tool, including nil pricing
func (r *ToolRepositoryImpl) Update(ctx context.Context, tool *models.Tool) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Tool{}).Where("id = ?", tool.ID).Updates(map[string]any{
		"name":        tool.Name,
		"category":    tool.Category,
		"license":     tool.License,
		"description": tool.Description,
		"url":         tool.URL,
		"pricing":     tool.Pricing,
		"is_active":   tool.IsActive,
		"updated_at":  tool.UpdatedAt,
	})
	if res.Error != nil {
		return storeErr("failed to update tool", res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("failed to update tool", gorm.ErrRecordNotFound)
	}
	return nil
}

// ReplaceTags swaps the tag set of a tool for names, keeping their order
func (r *ToolRepositoryImpl) ReplaceTags(ctx context.Context, toolID uint, names []string) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)
		if err := db.Where("tool_id = ?", toolID).Delete(&models.ToolTag{}).Error; err != nil {
			return storeErr("failed to clear tool tags", err)
		}
		if len(names) == 0 {
			return nil
		}
		tags := make([]models.ToolTag, 0, len(names))
		for i, name := range names {
			tags = append(tags, models.ToolTag{ToolID: toolID, Name: name, Position: i})
		}
		if err := db.Create(&tags).Error; err != nil {
			return storeErr("failed to save tool tags", err)
		}
		return nil
	})
}

// Delete hard-deletes a tool and its tags
func (r *ToolRepositoryImpl) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)
		if err := db.Where("tool_id = ?", id).Delete(&models.ToolTag{}).Error; err != nil {
			return storeErr("failed to delete tool tags", err)
		}
		n, err := r.deleteByID(txCtx, id)
		affected = n
		return err
	})
	return affected, err
}

// DistinctCategories lists the categories in use, sorted
func (r *ToolRepositoryImpl) DistinctCategories(ctx context.Context, activeOnly bool) ([]string, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tool{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []string
	if err := query.Distinct("category").Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, storeErr("failed to list tool categories", err)
	}
	return categories, nil
}

// DistinctTypes lists the tag names in use, sorted
func (r *ToolRepositoryImpl) DistinctTypes(ctx context.Context, activeOnly bool) ([]string, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ToolTag{}).Joins("JOIN tools ON tools.id = tool_tags.tool_id")
	if activeOnly {
		query = query.Where("tools.is_active = ?", true)
	}
	var types []string
	if err := query.Distinct("tool_tags.name").Order("tool_tags.name ASC").Pluck("tool_tags.name", &types).Error; err != nil {
		return nil, storeErr("failed to list tool types", err)
	}
	return types, nil
}
