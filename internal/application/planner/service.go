// Package planner builds weekly TCM diet plans: candidate selection,
// repetition tracking, meal composition and the plan use cases on top.
package planner

import (
	"context"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/shiliao/dietplan/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Recorder receives plan generation measurements
type Recorder interface {
	RecordPlanGenerated(primary diet.Constitution, duration time.Duration)
	RecordPlanFailure(reason string)
	RecordFallback(role diet.Role, level diet.FallbackLevel)
	RecordForcedRepeat(role diet.Role)
}

// NopRecorder discards measurements
type NopRecorder struct{}

func (NopRecorder) RecordPlanGenerated(diet.Constitution, time.Duration) {}
func (NopRecorder) RecordPlanFailure(string)                            {}
func (NopRecorder) RecordFallback(diet.Role, diet.FallbackLevel)        {}
func (NopRecorder) RecordForcedRepeat(diet.Role)                        {}

// ServiceConfig tunes plan generation
type ServiceConfig struct {
	MaxAttempts int
	// Seed fixes the random source for every request that brings none.
	// Zero means a time-based seed per request.
	Seed int64
}

// Service implements the plan use cases
type Service struct {
	catalogs outbound.CatalogProvider
	tables   diet.Tables
	validate *validator.Validate
	recorder Recorder
	tracer   trace.Tracer
	config   ServiceConfig
	logger   *zap.Logger
	clock    func() time.Time
}

// NewService creates the plan service. recorder may be nil.
func NewService(
	catalogs outbound.CatalogProvider,
	tables diet.Tables,
	recorder Recorder,
	config ServiceConfig,
	logger *zap.Logger,
) inbound.PlanService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Service{
		catalogs: catalogs,
		tables:   tables,
		validate: NewValidator(),
		recorder: recorder,
		tracer:   otel.Tracer("github.com/shiliao/dietplan/planner"),
		config:   config,
		logger:   logger.Named("plan-service"),
		clock:    time.Now,
	}
}

// GeneratePlan builds a fresh weekly plan for the submitted profile
func (s *Service) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.PlanDTO, error) {
	ctx, span := s.tracer.Start(ctx, "planner.GeneratePlan")
	defer span.End()

	start := s.clock()

	if err := s.validate.Struct(cmd); err != nil {
		s.recorder.RecordPlanFailure("validation")
		return nil, s.fail(span, validationError(err))
	}
	profile := cmd.Profile.ToProfile()

	catalog, err := s.catalogs.Catalog(ctx)
	if err != nil {
		s.recorder.RecordPlanFailure("catalog")
		s.logger.Error("Catalog unavailable", zap.Error(err))
		return nil, s.fail(span, errors.NewCatalogUnavailableError(err))
	}

	seed := s.seed(cmd.Seed)
	span.SetAttributes(
		attribute.Int64("plan.seed", seed),
		attribute.String("plan.primary_type", string(profile.PrimaryType)),
	)

	gen, err := NewGenerator(profile, catalog,
		WithSeed(seed),
		WithMaxAttempts(s.config.MaxAttempts),
		WithTables(s.tables),
		WithLogger(s.logger),
	)
	if err != nil {
		return nil, s.fail(span, s.mapError(err))
	}

	menu, err := gen.GenerateWeeklyMenu()
	if err != nil {
		s.recorder.RecordPlanFailure("compose")
		return nil, s.fail(span, errors.Wrap(err, "Failed to generate weekly menu"))
	}
	s.observe(gen)

	assessment := s.assessment(profile, gen.BMI(), gen.CalorieTarget(), gen.Medicinals(), gen.MedicinalPool())
	plan := &inbound.PlanDTO{
		ID:         uuid.New(),
		Seed:       seed,
		Assessment: assessment,
		Menu:       menu,
	}

	duration := s.clock().Sub(start)
	s.recorder.RecordPlanGenerated(profile.PrimaryType, duration)
	s.logger.Info("Plan generated",
		zap.String("plan_id", plan.ID.String()),
		zap.Int64("seed", seed),
		zap.String("primary_type", string(profile.PrimaryType)),
		zap.Int("calorie_target", plan.Assessment.CalorieTarget),
		zap.Duration("duration", duration),
	)
	return plan, nil
}

// AssessProfile derives BMI, calorie target and medicinal foods without
// building a menu
func (s *Service) AssessProfile(ctx context.Context, cmd inbound.ProfileCommand) (*inbound.ProfileAssessmentDTO, error) {
	_, span := s.tracer.Start(ctx, "planner.AssessProfile")
	defer span.End()

	if err := s.validate.Struct(cmd); err != nil {
		return nil, s.fail(span, validationError(err))
	}
	profile := cmd.ToProfile()
	if err := profile.Validate(); err != nil {
		return nil, s.fail(span, s.mapError(err))
	}
	target, err := diet.CalorieTarget(profile)
	if err != nil {
		return nil, s.fail(span, s.mapError(err))
	}

	rng := rand.New(rand.NewSource(s.seed(nil)))
	assessment := s.assessment(profile, diet.BMI(profile), target,
		SelectMedicinals(rng, s.tables, profile.PrimaryType, profile.SecondaryType),
		MedicinalPool(s.tables, profile.PrimaryType, profile.SecondaryType))
	return &assessment, nil
}

// ListConstitutions returns the constitution descriptions
func (s *Service) ListConstitutions(ctx context.Context) ([]diet.ConstitutionProfile, error) {
	return s.tables.ConstitutionProfiles(), nil
}

func (s *Service) assessment(profile diet.UserProfile, bmi float64, target int, sample, pool []string) inbound.ProfileAssessmentDTO {
	for _, c := range []diet.Constitution{profile.PrimaryType, profile.SecondaryType} {
		if c != "" && !s.tables.KnownConstitution(c) {
			s.logger.Warn("Unknown constitution, no medicinal foods drawn for it",
				zap.String("constitution", string(c)))
		}
	}

	tip, _ := s.tables.DietTip(profile.Diseases)
	return inbound.ProfileAssessmentDTO{
		BMI:                   bmi,
		BMIBand:               diet.ClassifyBMI(bmi),
		CalorieTarget:         target,
		Medicinals:            sample,
		RecommendedMedicinals: pool,
		DietTip:               tip,
	}
}

// observe turns the generator's events into measurements
func (s *Service) observe(gen *Generator) {
	for _, event := range gen.Events() {
		switch e := event.(type) {
		case diet.FallbackUsedEvent:
			s.recorder.RecordFallback(e.Role, e.Level)
		case diet.RepeatForcedEvent:
			s.recorder.RecordForcedRepeat(e.Role)
		}
	}
}

func (s *Service) seed(requested *int64) int64 {
	if requested != nil {
		return *requested
	}
	if s.config.Seed != 0 {
		return s.config.Seed
	}
	return s.clock().UnixNano()
}

func (s *Service) mapError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, diet.ErrInvalidProfile):
		s.recorder.RecordPlanFailure("invalid_profile")
		return errors.NewInvalidProfileError(err)
	case stderrors.Is(err, diet.ErrCatalogUnavailable):
		s.recorder.RecordPlanFailure("catalog")
		return errors.NewCatalogUnavailableError(err)
	default:
		s.recorder.RecordPlanFailure("internal")
		return errors.Wrap(err, "Failed to prepare plan generator")
	}
}

func (s *Service) fail(span trace.Span, err *errors.AppError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(err.Code))
	return err
}
