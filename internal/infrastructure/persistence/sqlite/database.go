// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"

	"github.com/shiliao/dietplan/internal/infrastructure/catalog"
	gormModels "github.com/shiliao/dietplan/internal/infrastructure/persistence/gorm"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase loads the embedded catalog into an empty database
func SeedDatabase(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&gormModels.FoodModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count foods: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	snapshot, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to parse embedded catalog: %w", err)
	}

	repo := gormModels.NewCatalogRepository(db)
	if err := repo.ReplaceAll(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Info("Seeded catalog", zap.Int("items", snapshot.ItemCount()))
	return nil
}
