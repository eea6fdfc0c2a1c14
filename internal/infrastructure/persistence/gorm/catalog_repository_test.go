package gorm_test

import (
	"context"
	"testing"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/catalog"
	gormModels "github.com/shiliao/dietplan/internal/infrastructure/persistence/gorm"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/shiliao/dietplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CatalogRepositoryTestSuite round-trips catalogs through an in-memory SQLite database
type CatalogRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	db   *testutils.TestDatabase
	repo *gormModels.CatalogRepository
}

func (s *CatalogRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutils.SetupTestDatabase(s.T())
	s.repo = gormModels.NewCatalogRepository(s.db.DB)
}

func sample() *outbound.CatalogSnapshot {
	snapshot := catalog.Partition([]diet.FoodItem{
		{Name: "小米粥", Category: diet.CategoryGrain, Info: map[string]string{"能量": "46千卡"}},
		{Name: "燕麦粥", Category: diet.CategoryGrain},
		{Name: "冬瓜", Category: diet.CategoryVegetable, Tags: []string{"体质:痰湿内盛"}},
		{Name: "豆腐", Category: diet.CategoryLegume},
	})
	return snapshot
}

func (s *CatalogRepositoryTestSuite) TestReplaceAll_ShouldRoundTrip() {
	// Arrange
	want := sample()

	// Act
	require.NoError(s.T(), s.repo.ReplaceAll(s.ctx, want))
	got, err := s.repo.LoadSnapshot(s.ctx)

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), want.FoodByType, got.FoodByType)
	assert.Equal(s.T(), want.CuisineMethods, got.CuisineMethods)
	assert.Equal(s.T(), want.CuisineFlavors, got.CuisineFlavors)
	assert.Equal(s.T(), "database", s.repo.Name())
}

func (s *CatalogRepositoryTestSuite) TestReplaceAll_ShouldDropPreviousCatalog() {
	// Arrange
	require.NoError(s.T(), s.repo.ReplaceAll(s.ctx, sample()))
	next := catalog.Partition([]diet.FoodItem{{Name: "苹果", Category: diet.CategoryFruit}})

	// Act
	require.NoError(s.T(), s.repo.ReplaceAll(s.ctx, next))

	// Assert
	counts, err := s.repo.CountByCategory(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), map[diet.Category]int64{diet.CategoryFruit: 1}, counts)
}

func (s *CatalogRepositoryTestSuite) TestCountByCategory() {
	require.NoError(s.T(), s.repo.ReplaceAll(s.ctx, sample()))

	counts, err := s.repo.CountByCategory(s.ctx)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), counts[diet.CategoryGrain])
	assert.Equal(s.T(), int64(1), counts[diet.CategoryVegetable])
	assert.Equal(s.T(), int64(1), counts[diet.CategoryLegume])
}

func (s *CatalogRepositoryTestSuite) TestEmptyDatabase_ShouldYieldEmptySnapshot() {
	snapshot, err := s.repo.LoadSnapshot(s.ctx)

	require.NoError(s.T(), err)
	assert.Zero(s.T(), snapshot.ItemCount())
}

func (s *CatalogRepositoryTestSuite) TestEmbeddedCatalog_ShouldSurviveStorage() {
	// Arrange
	want, err := catalog.Default()
	require.NoError(s.T(), err)

	// Act
	require.NoError(s.T(), s.repo.ReplaceAll(s.ctx, want))
	got, err := s.repo.LoadSnapshot(s.ctx)

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), want.ItemCount(), got.ItemCount())
	for category, items := range want.FoodByType {
		names := func(items []diet.FoodItem) []string {
			out := make([]string, len(items))
			for i, item := range items {
				out[i] = item.Name
			}
			return out
		}
		assert.Equal(s.T(), names(items), names(got.FoodByType[category]), "order of %s", category)
	}
}

func TestCatalogRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogRepositoryTestSuite))
}
