// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/shiliao/dietplan/internal/domain/diet"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// FoodCatalog is the read-only food lookup the generator consumes.
// Implementations must be safe for concurrent reads.
type FoodCatalog interface {
	// GetByCategory returns the ordered items of category, or an empty list
	GetByCategory(category diet.Category) []diet.FoodItem
	GetCuisineMethods(cuisine diet.Cuisine) []string
	GetCuisineFlavors(cuisine diet.Cuisine) []string
}

// CatalogSnapshot is the serializable form of a fully partitioned catalog
type CatalogSnapshot struct {
	FoodByType     map[diet.Category][]diet.FoodItem `json:"food_by_type" yaml:"food_by_type"`
	CuisineMethods map[diet.Cuisine][]string         `json:"cuisine_methods" yaml:"cuisine_methods"`
	CuisineFlavors map[diet.Cuisine][]string         `json:"cuisine_flavors" yaml:"cuisine_flavors"`
}

// ItemCount returns the total number of food items in the snapshot
func (s *CatalogSnapshot) ItemCount() int {
	n := 0
	for _, items := range s.FoodByType {
		n += len(items)
	}
	return n
}

// CatalogSource loads a catalog snapshot from some backing store
type CatalogSource interface {
	Name() string
	LoadSnapshot(ctx context.Context) (*CatalogSnapshot, error)
}

// CatalogProvider hands out the process-wide catalog, loading it once
type CatalogProvider interface {
	Catalog(ctx context.Context) (FoodCatalog, error)
}

// CatalogRepository defines the interface for catalog persistence
type CatalogRepository interface {
	CatalogSource

	// ReplaceAll swaps the stored catalog for snapshot atomically
	ReplaceAll(ctx context.Context, snapshot *CatalogSnapshot) error
	CountByCategory(ctx context.Context) (map[diet.Category]int64, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
