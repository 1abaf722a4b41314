package repository

import (
	"context"

	"github.com/aetherinc/aether-waitlist/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the application owns
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return storeErr("failed to migrate schema", err)
	}
	return nil
}

// Ping checks store connectivity
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return storeErr("failed to get underlying sql.DB", err)
	}
	return storeErr("ping", sqlDB.PingContext(ctx))
}
