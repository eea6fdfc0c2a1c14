package planner

import (
	"math/rand"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the search for an unused staple or protein
const DefaultMaxAttempts = 10

// Tracker keeps staples and proteins from repeating within one week.
type Tracker struct {
	record      *diet.WeeklyRecord
	rng         *rand.Rand
	maxAttempts int
	logger      *zap.Logger
}

// NewTracker creates a tracker over record. A non-positive maxAttempts
// selects DefaultMaxAttempts.
func NewTracker(record *diet.WeeklyRecord, rng *rand.Rand, maxAttempts int, logger *zap.Logger) *Tracker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{record: record, rng: rng, maxAttempts: maxAttempts, logger: logger}
}

// Staple picks a staple not yet used this week when possible
func (t *Tracker) Staple(candidates []diet.FoodItem, day int, slot diet.Slot) diet.FoodItem {
	return t.avoidRepeat(candidates, t.record.UsedStaples, day, slot, diet.RoleStaple)
}

// Protein picks a protein not yet used this week when possible
func (t *Tracker) Protein(candidates []diet.FoodItem, day int, slot diet.Slot) diet.FoodItem {
	return t.avoidRepeat(candidates, t.record.UsedProteins, day, slot, diet.RoleProtein)
}

// avoidRepeat draws up to maxAttempts times and keeps the first unused name.
// When every draw hits a used name, one more draw is accepted as is: it is
// logged but not marked used.
func (t *Tracker) avoidRepeat(candidates []diet.FoodItem, used diet.NameSet, day int, slot diet.Slot, role diet.Role) diet.FoodItem {
	for range t.maxAttempts {
		item := pick(t.rng, candidates)
		if !used.Has(item.Name) {
			used.Add(item.Name)
			t.record.Log(day, slot, role, item.Name)
			return item
		}
	}

	item := pick(t.rng, candidates)
	t.record.Log(day, slot, role, item.Name)
	t.record.AddEvent(diet.NewRepeatForcedEvent(day, slot, role, item.Name))
	t.logger.Debug("Repeat accepted after exhausting attempts",
		zap.Int("day", day),
		zap.String("slot", string(slot)),
		zap.String("role", string(role)),
		zap.String("name", item.Name),
		zap.Int("attempts", t.maxAttempts),
	)
	return item
}
