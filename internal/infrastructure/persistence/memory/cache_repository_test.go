package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shiliao/dietplan/internal/infrastructure/persistence/memory"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CacheRepositoryTestSuite covers TTL handling of the in-memory cache
type CacheRepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *fakeClock
	cache *memory.CacheRepository
}

func (s *CacheRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fakeClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	s.cache = memory.NewCacheRepository(memory.WithClock(s.clock.Now))
}

func (s *CacheRepositoryTestSuite) TestGet_Missing_ShouldReturnCacheMiss() {
	_, err := s.cache.Get(s.ctx, "absent")
	assert.ErrorIs(s.T(), err, outbound.ErrCacheMiss)
}

func (s *CacheRepositoryTestSuite) TestSet_ShouldExpireAfterTTL() {
	// Arrange
	require.NoError(s.T(), s.cache.Set(s.ctx, "catalog", []byte("v1"), time.Minute))

	// Act + Assert
	got, err := s.cache.Get(s.ctx, "catalog")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("v1"), got)

	s.clock.Advance(59 * time.Second)
	exists, _ := s.cache.Exists(s.ctx, "catalog")
	assert.True(s.T(), exists)

	s.clock.Advance(time.Second)
	_, err = s.cache.Get(s.ctx, "catalog")
	assert.ErrorIs(s.T(), err, outbound.ErrCacheMiss)
	exists, _ = s.cache.Exists(s.ctx, "catalog")
	assert.False(s.T(), exists)
}

func (s *CacheRepositoryTestSuite) TestSet_ZeroTTL_ShouldDefaultToOneDay() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "k", []byte("v"), 0))

	s.clock.Advance(23 * time.Hour)
	exists, _ := s.cache.Exists(s.ctx, "k")
	assert.True(s.T(), exists)

	s.clock.Advance(time.Hour)
	exists, _ = s.cache.Exists(s.ctx, "k")
	assert.False(s.T(), exists)
}

func (s *CacheRepositoryTestSuite) TestValues_ShouldBeCopied() {
	value := []byte("abc")
	require.NoError(s.T(), s.cache.Set(s.ctx, "k", value, time.Minute))
	value[0] = 'x'

	got, err := s.cache.Get(s.ctx, "k")
	require.NoError(s.T(), err)
	got[1] = 'y'

	again, _ := s.cache.Get(s.ctx, "k")
	assert.Equal(s.T(), []byte("abc"), again)
}

func (s *CacheRepositoryTestSuite) TestSweep_ShouldDropOnlyExpired() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "short", []byte("1"), time.Second))
	require.NoError(s.T(), s.cache.Set(s.ctx, "long", []byte("2"), time.Hour))
	s.clock.Advance(time.Minute)

	removed := s.cache.Sweep()

	assert.Equal(s.T(), 1, removed)
	assert.Equal(s.T(), 1, s.cache.Len())
}

func (s *CacheRepositoryTestSuite) TestDelete_ShouldRemoveKey() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "k", []byte("v"), time.Hour))

	require.NoError(s.T(), s.cache.Delete(s.ctx, "k"))

	exists, _ := s.cache.Exists(s.ctx, "k")
	assert.False(s.T(), exists)
}

func (s *CacheRepositoryTestSuite) TestRun_ShouldStopWithContext() {
	defer goleak.VerifyNone(s.T(), goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		s.cache.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	<-done
}

func TestCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}
