package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProviderConfig controls how the provider loads and caches the catalog
type ProviderConfig struct {
	CacheKey string
	CacheTTL time.Duration
	AutoTag  bool
}

// Provider loads the catalog once per process and hands the same read-only
// instance to every caller. A snapshot is written through to the cache so
// other instances can skip the source.
type Provider struct {
	source outbound.CatalogSource
	cache  outbound.CacheRepository
	tables diet.Tables
	config ProviderConfig
	logger *zap.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	catalog *Catalog
}

var _ outbound.CatalogProvider = (*Provider)(nil)

// NewProvider creates a catalog provider. cache may be nil.
func NewProvider(
	source outbound.CatalogSource,
	cache outbound.CacheRepository,
	tables diet.Tables,
	cfg ProviderConfig,
	logger *zap.Logger,
) *Provider {
	if cfg.CacheKey == "" {
		cfg.CacheKey = "dietplan:catalog:v1"
	}
	return &Provider{
		source: source,
		cache:  cache,
		tables: tables,
		config: cfg,
		logger: logger.Named("catalog"),
	}
}

// Catalog implements outbound.CatalogProvider
func (p *Provider) Catalog(ctx context.Context) (outbound.FoodCatalog, error) {
	c, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the process catalog, loading it on first use
func (p *Provider) Load(ctx context.Context) (*Catalog, error) {
	if c := p.Current(); c != nil {
		return c, nil
	}

	v, err, _ := p.group.Do("catalog", func() (interface{}, error) {
		if c := p.Current(); c != nil {
			return c, nil
		}
		c, err := p.load(ctx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.catalog = c
		p.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// Current returns the loaded catalog or nil
func (p *Provider) Current() *Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.catalog
}

// Loaded reports whether the catalog is ready
func (p *Provider) Loaded() bool {
	return p.Current() != nil
}

func (p *Provider) load(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	if snapshot, ok := p.fromCache(ctx); ok {
		c := New(snapshot)
		p.logger.Info("Catalog loaded from cache",
			zap.String("key", p.config.CacheKey),
			zap.Int("items", c.Len()),
			zap.Duration("duration", time.Since(start)),
		)
		return c, nil
	}

	snapshot, err := p.source.LoadSnapshot(ctx)
	if err != nil {
		p.logger.Error("Catalog load failed", zap.String("source", p.source.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", diet.ErrCatalogUnavailable, p.source.Name(), err)
	}
	if snapshot.ItemCount() == 0 {
		return nil, fmt.Errorf("%w: %s: catalog is empty", diet.ErrCatalogUnavailable, p.source.Name())
	}

	if p.config.AutoTag {
		ApplyAffinityTags(snapshot, p.tables)
	}
	p.toCache(ctx, snapshot)

	c := New(snapshot)
	p.logger.Info("Catalog loaded",
		zap.String("source", p.source.Name()),
		zap.Int("items", c.Len()),
		zap.Int("categories", len(snapshot.FoodByType)),
		zap.Bool("auto_tag", p.config.AutoTag),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

func (p *Provider) fromCache(ctx context.Context) (*outbound.CatalogSnapshot, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, err := p.cache.Get(ctx, p.config.CacheKey)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			p.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var snapshot outbound.CatalogSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		p.logger.Warn("Discarding corrupt catalog cache entry", zap.Error(err))
		return nil, false
	}
	if snapshot.ItemCount() == 0 {
		return nil, false
	}
	return &snapshot, true
}

func (p *Provider) toCache(ctx context.Context, snapshot *outbound.CatalogSnapshot) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		p.logger.Warn("Catalog snapshot not cacheable", zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, p.config.CacheKey, data, p.config.CacheTTL); err != nil {
		p.logger.Warn("Catalog cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached snapshot; the in-process catalog is kept
func (p *Provider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Delete(ctx, p.config.CacheKey)
}
