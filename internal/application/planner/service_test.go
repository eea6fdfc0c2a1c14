package planner_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shiliao/dietplan/internal/application/planner"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/pkg/errors"
	"github.com/shiliao/dietplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// ServiceTestSuite covers the plan use cases and their error mapping
type ServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	recorder *testutils.RecordingRecorder
	service  inbound.PlanService
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.recorder = testutils.NewRecordingRecorder()
	provider := testutils.StaticCatalogProvider{FoodCatalog: testutils.DefaultCatalog(s.T())}
	s.service = planner.NewService(provider, diet.DefaultTables(), s.recorder,
		planner.ServiceConfig{}, zaptest.NewLogger(s.T()))
}

func seed(v int64) *int64 { return &v }

func (s *ServiceTestSuite) TestGeneratePlan() {
	s.Run("ValidCommand_ShouldReturnFullPlan", func() {
		// Arrange
		cmd := inbound.GeneratePlanCommand{Profile: testutils.ReferenceCommand(), Seed: seed(77)}

		// Act
		plan, err := s.service.GeneratePlan(s.ctx, cmd)

		// Assert
		require.NoError(s.T(), err)
		assert.NotEmpty(s.T(), plan.ID.String())
		assert.Equal(s.T(), int64(77), plan.Seed)
		assert.Equal(s.T(), 1916, plan.Assessment.CalorieTarget)
		assert.Equal(s.T(), diet.BMIBandOverweight, plan.Assessment.BMIBand)
		assert.NotEmpty(s.T(), plan.Assessment.DietTip)
		assert.Len(s.T(), plan.Assessment.RecommendedMedicinals, 8)
		testutils.NewPlanAssertions(s.T()).CompleteWeek(plan.Menu)
		assert.Equal(s.T(), 1, s.recorder.Generated)
	})

	s.Run("SameSeed_ShouldReproduceMenu", func() {
		cmd := inbound.GeneratePlanCommand{Profile: testutils.ReferenceCommand(), Seed: seed(3)}

		first, err := s.service.GeneratePlan(s.ctx, cmd)
		require.NoError(s.T(), err)
		second, err := s.service.GeneratePlan(s.ctx, cmd)
		require.NoError(s.T(), err)

		assert.NotEqual(s.T(), first.ID, second.ID)
		assert.Empty(s.T(), cmp.Diff(first.Menu, second.Menu))
		assert.Equal(s.T(), first.Assessment, second.Assessment)
	})

	s.Run("MissingFields_ShouldFailValidation", func() {
		// Arrange
		cmd := inbound.GeneratePlanCommand{Profile: inbound.ProfileCommand{Gender: "其他", Activity: "躺平"}}

		// Act
		_, err := s.service.GeneratePlan(s.ctx, cmd)

		// Assert
		require.Error(s.T(), err)
		assert.Equal(s.T(), errors.CodeValidationFailed, errors.GetCode(err))

		var appErr *errors.AppError
		require.True(s.T(), stderrors.As(err, &appErr))
		fields := appErr.Metadata["validation_errors"].(errors.ValidationErrors)
		var names []string
		for _, f := range fields {
			names = append(names, f.Field)
		}
		assert.Subset(s.T(), names, []string{"main_type", "gender", "age", "height", "weight", "activity"})
		assert.Equal(s.T(), 1, s.recorder.Failures["validation"])
	})

	s.Run("OverlongFields_ShouldFailValidation", func() {
		// Arrange
		profile := testutils.ReferenceCommand()
		profile.PrimaryType = strings.Repeat("气", 33)
		profile.Diseases = []string{strings.Repeat("x", 40)}

		// Act
		_, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{Profile: profile})

		// Assert
		assert.Equal(s.T(), errors.CodeValidationFailed, errors.GetCode(err))
		var appErr *errors.AppError
		require.True(s.T(), stderrors.As(err, &appErr))
		fields := appErr.Metadata["validation_errors"].(errors.ValidationErrors)
		var names []string
		for _, f := range fields {
			names = append(names, f.Field)
			assert.Equal(s.T(), "max", f.Tag)
		}
		assert.ElementsMatch(s.T(), []string{"main_type", "diseases[0]"}, names)
		assert.Contains(s.T(), appErr.Details, "main_type must be at most 32 characters")
	})

	s.Run("UnknownConstitutions_ShouldFallBack", func() {
		// Arrange
		core, logs := observer.New(zap.WarnLevel)
		provider := testutils.StaticCatalogProvider{FoodCatalog: testutils.DefaultCatalog(s.T())}
		service := planner.NewService(provider, diet.DefaultTables(), nil, planner.ServiceConfig{}, zap.New(core))
		profile := testutils.ReferenceCommand()
		profile.PrimaryType = "<script>alert(1)</script>"
		profile.SecondaryType = ""

		// Act
		plan, err := service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{Profile: profile, Seed: seed(5)})

		// Assert
		require.NoError(s.T(), err)
		assert.Empty(s.T(), plan.Assessment.RecommendedMedicinals)
		testutils.NewPlanAssertions(s.T()).CompleteWeek(plan.Menu)
		warnings := logs.FilterMessage("Unknown constitution, no medicinal foods drawn for it").All()
		require.Len(s.T(), warnings, 1)
		assert.Equal(s.T(), profile.PrimaryType, warnings[0].ContextMap()["constitution"])
	})

	s.Run("CatalogFailure_ShouldMapToCatalogUnavailable", func() {
		// Arrange
		provider := new(testutils.MockCatalogProvider)
		provider.On("Catalog", mock.Anything).Return(nil, diet.ErrCatalogUnavailable)
		service := planner.NewService(provider, diet.DefaultTables(), nil, planner.ServiceConfig{}, zaptest.NewLogger(s.T()))

		// Act
		_, err := service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{Profile: testutils.ReferenceCommand()})

		// Assert
		assert.Equal(s.T(), errors.CodeCatalogUnavailable, errors.GetCode(err))
		assert.ErrorIs(s.T(), err, diet.ErrCatalogUnavailable)
		provider.AssertExpectations(s.T())
	})

	s.Run("ConfiguredSeed_ShouldApplyWhenRequestHasNone", func() {
		provider := testutils.StaticCatalogProvider{FoodCatalog: testutils.DefaultCatalog(s.T())}
		service := planner.NewService(provider, diet.DefaultTables(), nil,
			planner.ServiceConfig{Seed: 1234}, zaptest.NewLogger(s.T()))

		plan, err := service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{Profile: testutils.ReferenceCommand()})

		require.NoError(s.T(), err)
		assert.Equal(s.T(), int64(1234), plan.Seed)
	})
}

func (s *ServiceTestSuite) TestAssessProfile() {
	s.Run("ReferenceProfile_ShouldReturnAssessment", func() {
		assessment, err := s.service.AssessProfile(s.ctx, testutils.ReferenceCommand())

		require.NoError(s.T(), err)
		assert.InDelta(s.T(), 25.71, assessment.BMI, 0.01)
		assert.Equal(s.T(), 1916, assessment.CalorieTarget)
		assert.NotEmpty(s.T(), assessment.Medicinals)
		assert.Subset(s.T(), assessment.RecommendedMedicinals, assessment.Medicinals)
	})

	s.Run("UnknownActivity_ShouldFailValidation", func() {
		cmd := testutils.ReferenceCommand()
		cmd.Activity = "躺平"

		_, err := s.service.AssessProfile(s.ctx, cmd)

		assert.Equal(s.T(), errors.CodeValidationFailed, errors.GetCode(err))
		assert.Equal(s.T(), 400, err.(*errors.AppError).StatusCode())
	})
}

func (s *ServiceTestSuite) TestListConstitutions_ShouldDescribeAllFive() {
	profiles, err := s.service.ListConstitutions(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), profiles, 5)
	for _, p := range profiles {
		assert.NotEmpty(s.T(), p.Symptoms)
		assert.NotEmpty(s.T(), p.Medicinals)
	}
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
