// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"fmt"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"gorm.io/gorm"
)

const insertBatchSize = 200

// CatalogRepository implements the catalog repository interface using GORM
type CatalogRepository struct {
	db *gorm.DB
}

var _ outbound.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Name identifies the repository as a catalog source
func (r *CatalogRepository) Name() string {
	return "database"
}

// LoadSnapshot reads the whole catalog in category order
func (r *CatalogRepository) LoadSnapshot(ctx context.Context) (*outbound.CatalogSnapshot, error) {
	var foods []FoodModel
	if err := r.db.WithContext(ctx).
		Order("category").
		Order("position").
		Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to load foods: %w", err)
	}

	var cuisines []CuisineModel
	if err := r.db.WithContext(ctx).Order("cuisine").Find(&cuisines).Error; err != nil {
		return nil, fmt.Errorf("failed to load cuisines: %w", err)
	}

	return ModelsToSnapshot(foods, cuisines), nil
}

// ReplaceAll swaps the stored catalog for snapshot in one transaction
func (r *CatalogRepository) ReplaceAll(ctx context.Context, snapshot *outbound.CatalogSnapshot) error {
	foods, cuisines := SnapshotToModels(snapshot)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&FoodModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear foods: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CuisineModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear cuisines: %w", err)
		}
		if len(foods) > 0 {
			if err := tx.CreateInBatches(&foods, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert foods: %w", err)
			}
		}
		if len(cuisines) > 0 {
			if err := tx.Create(&cuisines).Error; err != nil {
				return fmt.Errorf("failed to insert cuisines: %w", err)
			}
		}
		return nil
	})
}

// CountByCategory returns the number of stored foods per category
func (r *CatalogRepository) CountByCategory(ctx context.Context) (map[diet.Category]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&FoodModel{}).
		Select("category, count(*) as count").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count foods: %w", err)
	}

	counts := make(map[diet.Category]int64, len(rows))
	for _, row := range rows {
		counts[diet.Category(row.Category)] = row.Count
	}
	return counts, nil
}
