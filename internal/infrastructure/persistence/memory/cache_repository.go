// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shiliao/dietplan/internal/ports/outbound"
)

const defaultTTL = 24 * time.Hour

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// CacheRepository implements in-memory cache repository
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.RWMutex
	now   func() time.Time
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// Option configures the cache
type Option func(*CacheRepository)

// WithClock replaces the wall clock, for expiry tests
func WithClock(now func() time.Time) Option {
	return func(r *CacheRepository) {
		r.now = now
	}
}

// NewCacheRepository creates a new in-memory cache repository
func NewCacheRepository(opts ...Option) *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]CacheItem),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || r.expired(item) {
		return nil, outbound.ErrCacheMiss
	}
	return append([]byte(nil), item.Value...), nil
}

// Set stores a value in cache with TTL; zero means the default of one day
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[key] = CacheItem{
		Value:     append([]byte(nil), value...),
		ExpiresAt: r.now().Add(ttl),
	}
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	return exists && !r.expired(item), nil
}

// Len returns the number of stored entries, expired ones included until swept
func (r *CacheRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

// Sweep drops expired entries and reports how many were removed
func (r *CacheRepository) Sweep() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for key, item := range r.data {
		if r.expired(item) {
			delete(r.data, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries every interval until ctx is done
func (r *CacheRepository) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *CacheRepository) expired(item CacheItem) bool {
	return !r.now().Before(item.ExpiresAt)
}
