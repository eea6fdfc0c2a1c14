package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/internal/infrastructure/persistence/redis"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

// CacheRepositoryTestSuite runs against the Redis at DIETPLAN_TEST_REDIS_ADDR
type CacheRepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	cache *redis.CacheRepository
	key   string
}

func (s *CacheRepositoryTestSuite) SetupSuite() {
	addr := os.Getenv("DIETPLAN_TEST_REDIS_ADDR")
	if addr == "" {
		s.T().Skip("DIETPLAN_TEST_REDIS_ADDR not set")
	}
	s.ctx = context.Background()
	client := redis.NewClient(config.RedisConfig{
		Addr:        addr,
		PoolSize:    2,
		DialTimeout: 2 * time.Second,
	})
	s.cache = redis.NewCacheRepository(client, zaptest.NewLogger(s.T()))
	require.NoError(s.T(), s.cache.Ping(s.ctx))
}

func (s *CacheRepositoryTestSuite) TearDownSuite() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

func (s *CacheRepositoryTestSuite) SetupTest() {
	s.key = "dietplan:test:" + uuid.NewString()
}

func (s *CacheRepositoryTestSuite) TearDownTest() {
	_ = s.cache.Delete(s.ctx, s.key)
}

func (s *CacheRepositoryTestSuite) TestGet_Missing_ShouldReturnCacheMiss() {
	_, err := s.cache.Get(s.ctx, s.key)
	assert.ErrorIs(s.T(), err, outbound.ErrCacheMiss)
}

func (s *CacheRepositoryTestSuite) TestSetGetDelete() {
	require.NoError(s.T(), s.cache.Set(s.ctx, s.key, []byte(`{"food_by_type":{}}`), time.Minute))

	got, err := s.cache.Get(s.ctx, s.key)
	require.NoError(s.T(), err)
	assert.JSONEq(s.T(), `{"food_by_type":{}}`, string(got))

	exists, err := s.cache.Exists(s.ctx, s.key)
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)

	require.NoError(s.T(), s.cache.Delete(s.ctx, s.key))
	exists, err = s.cache.Exists(s.ctx, s.key)
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func TestCacheRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CacheRepositoryTestSuite))
}
