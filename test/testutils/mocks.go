// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockCatalogProvider provides a mock implementation of CatalogProvider
type MockCatalogProvider struct {
	mock.Mock
}

// Catalog returns the configured catalog or error
func (m *MockCatalogProvider) Catalog(ctx context.Context) (outbound.FoodCatalog, error) {
	args := m.Called(ctx)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(outbound.FoodCatalog), nil
}

// StaticCatalogProvider always hands out the same catalog
type StaticCatalogProvider struct {
	FoodCatalog outbound.FoodCatalog
}

// Catalog implements outbound.CatalogProvider
func (p StaticCatalogProvider) Catalog(context.Context) (outbound.FoodCatalog, error) {
	return p.FoodCatalog, nil
}

// MockCatalogSource provides a mock implementation of CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

// Name identifies the mock
func (m *MockCatalogSource) Name() string {
	return "mock"
}

// LoadSnapshot returns the configured snapshot or error
func (m *MockCatalogSource) LoadSnapshot(ctx context.Context) (*outbound.CatalogSnapshot, error) {
	args := m.Called(ctx)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.CatalogSnapshot), nil
}

// MockCacheRepository is an in-memory CacheRepository that records calls
type MockCacheRepository struct {
	mock.Mock
	data map[string][]byte
	mu   sync.RWMutex
}

// NewMockCacheRepository creates a new mock cache
func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

// Get returns the stored value or ErrCacheMiss
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	return append([]byte(nil), v...), nil
}

// Set stores value, ignoring ttl
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Exists reports whether key is stored
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

// RecordingRecorder counts plan measurements
type RecordingRecorder struct {
	mu        sync.Mutex
	Generated int
	Failures  map[string]int
	Fallbacks map[diet.Role]int
	Repeats   map[diet.Role]int
	Durations []time.Duration
}

// NewRecordingRecorder creates an empty recorder
func NewRecordingRecorder() *RecordingRecorder {
	return &RecordingRecorder{
		Failures:  map[string]int{},
		Fallbacks: map[diet.Role]int{},
		Repeats:   map[diet.Role]int{},
	}
}

func (r *RecordingRecorder) RecordPlanGenerated(_ diet.Constitution, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Generated++
	r.Durations = append(r.Durations, d)
}

func (r *RecordingRecorder) RecordPlanFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[reason]++
}

func (r *RecordingRecorder) RecordFallback(role diet.Role, _ diet.FallbackLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fallbacks[role]++
}

func (r *RecordingRecorder) RecordForcedRepeat(role diet.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Repeats[role]++
}

// MockPlanService provides a mock implementation of inbound.PlanService
type MockPlanService struct {
	mock.Mock
}

// GeneratePlan returns the configured plan or error
func (m *MockPlanService) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.PlanDTO, error) {
	args := m.Called(ctx, cmd)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.PlanDTO), nil
}

// AssessProfile returns the configured assessment or error
func (m *MockPlanService) AssessProfile(ctx context.Context, cmd inbound.ProfileCommand) (*inbound.ProfileAssessmentDTO, error) {
	args := m.Called(ctx, cmd)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.ProfileAssessmentDTO), nil
}

// ListConstitutions returns the configured profiles or error
func (m *MockPlanService) ListConstitutions(ctx context.Context) ([]diet.ConstitutionProfile, error) {
	args := m.Called(ctx)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]diet.ConstitutionProfile), nil
}
