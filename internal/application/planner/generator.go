package planner

import (
	"fmt"
	"math/rand"
	"reflect"
	"time"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/domain/shared"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"go.uber.org/zap"
)

// Option configures a Generator
type Option func(*options)

type options struct {
	rng         *rand.Rand
	maxAttempts int
	tables      *diet.Tables
	logger      *zap.Logger
}

// WithRand sets the random source. The source is owned by the generator from
// then on and must not be shared with another generator.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed seeds a fresh random source
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithMaxAttempts bounds the repetition search
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithTables replaces the recommendation tables
func WithTables(tables diet.Tables) Option {
	return func(o *options) { o.tables = &tables }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Generator produces weekly menus for one profile. It carries the week's
// repetition state and is not safe for concurrent use; the catalog it reads
// from may be shared.
type Generator struct {
	profile       diet.UserProfile
	bmi           float64
	calorieTarget int
	medicinals    []string
	tables        diet.Tables

	record   *diet.WeeklyRecord
	composer *Composer
	logger   *zap.Logger
}

// NewGenerator validates the profile and prepares a generator over catalog.
// BMI, calorie target and the medicinal sample are fixed at construction.
func NewGenerator(profile diet.UserProfile, catalog outbound.FoodCatalog, opts ...Option) (*Generator, error) {
	o := options{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	tables := diet.DefaultTables()
	if o.tables != nil {
		tables = *o.tables
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if isNil(catalog) {
		return nil, fmt.Errorf("%w: no catalog", diet.ErrCatalogUnavailable)
	}
	calorieTarget, err := diet.CalorieTarget(profile)
	if err != nil {
		return nil, err
	}

	logger := o.logger.Named("planner")
	record := diet.NewWeeklyRecord()
	selector := NewSelector(catalog, tables, o.rng, record)
	tracker := NewTracker(record, o.rng, o.maxAttempts, logger)

	return &Generator{
		profile:       profile,
		bmi:           diet.BMI(profile),
		calorieTarget: calorieTarget,
		medicinals:    SelectMedicinals(o.rng, tables, profile.PrimaryType, profile.SecondaryType),
		tables:        tables,
		record:        record,
		composer:      NewComposer(profile, tables, selector, tracker, record, o.rng),
		logger:        logger,
	}, nil
}

// GenerateWeeklyMenu builds seven days of breakfast, lunch and dinner.
// Repeated calls keep accumulating repetition state.
func (g *Generator) GenerateWeeklyMenu() (diet.WeeklyMenu, error) {
	start := time.Now()
	menu := diet.WeeklyMenu{Days: make([]diet.DayMenu, 0, diet.DaysPerWeek)}

	for day := 1; day <= diet.DaysPerWeek; day++ {
		dm := diet.DayMenu{Day: day, Meals: make(map[diet.Slot]diet.Meal, len(diet.Slots()))}
		for _, slot := range diet.Slots() {
			meal, err := g.composer.Compose(day, slot)
			if err != nil {
				return diet.WeeklyMenu{}, fmt.Errorf("day %d: %w", day, err)
			}
			dm.Meals[slot] = meal
		}
		menu.Days = append(menu.Days, dm)
	}

	g.logger.Debug("Weekly menu generated",
		zap.String("primary_type", string(g.profile.PrimaryType)),
		zap.Int("used_staples", len(g.record.UsedStaples)),
		zap.Int("used_proteins", len(g.record.UsedProteins)),
		zap.Int("events", g.record.PendingEvents()),
		zap.Duration("duration", time.Since(start)),
	)
	return menu, nil
}

// BMI is weight / (height/100)^2
func (g *Generator) BMI() float64 { return g.bmi }

// CalorieTarget is the daily target in kcal
func (g *Generator) CalorieTarget() int { return g.calorieTarget }

// Medicinals returns the sample drawn at construction
func (g *Generator) Medicinals() []string {
	return append([]string(nil), g.medicinals...)
}

// MedicinalPool returns every medicinal food recommended for the profile
func (g *Generator) MedicinalPool() []string {
	return MedicinalPool(g.tables, g.profile.PrimaryType, g.profile.SecondaryType)
}

// Record exposes the week's repetition state
func (g *Generator) Record() *diet.WeeklyRecord { return g.record }

// Events drains the events raised so far
func (g *Generator) Events() []shared.DomainEvent { return g.record.Events() }

// isNil also catches a nil pointer wrapped in a non-nil interface
func isNil(catalog outbound.FoodCatalog) bool {
	if catalog == nil {
		return true
	}
	v := reflect.ValueOf(catalog)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
