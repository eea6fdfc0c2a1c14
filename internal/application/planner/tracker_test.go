package planner_test

import (
	"math/rand"
	"testing"

	"github.com/shiliao/dietplan/internal/application/planner"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

// TrackerTestSuite covers repetition avoidance and its leniency on exhaustion
type TrackerTestSuite struct {
	suite.Suite
	record  *diet.WeeklyRecord
	tracker *planner.Tracker
}

func (s *TrackerTestSuite) SetupTest() {
	s.record = diet.NewWeeklyRecord()
	s.tracker = planner.NewTracker(s.record, rand.New(rand.NewSource(7)), 0, zaptest.NewLogger(s.T()))
}

func items(category diet.Category, names ...string) []diet.FoodItem {
	out := make([]diet.FoodItem, 0, len(names))
	for _, n := range names {
		out = append(out, diet.FoodItem{Name: n, Category: category})
	}
	return out
}

func (s *TrackerTestSuite) TestFreshPick_ShouldBeMarkedUsedAndLogged() {
	// Act
	item := s.tracker.Staple(items(diet.CategoryGrain, "小米粥"), 1, diet.SlotBreakfast)

	// Assert
	assert.Equal(s.T(), "小米粥", item.Name)
	assert.True(s.T(), s.record.UsedStaples.Has("小米粥"))
	assert.Equal(s.T(), []string{"小米粥"}, s.record.Logged(1, diet.SlotBreakfast, diet.RoleStaple))
	assert.Zero(s.T(), s.record.PendingEvents())
}

func (s *TrackerTestSuite) TestExhaustion_ShouldAcceptRepeatWithoutMarkingUsed() {
	// Arrange
	pool := items(diet.CategoryGrain, "米饭")
	s.tracker.Staple(pool, 1, diet.SlotLunch)

	// Act
	item := s.tracker.Staple(pool, 2, diet.SlotLunch)

	// Assert
	assert.Equal(s.T(), "米饭", item.Name)
	assert.Len(s.T(), s.record.UsedStaples, 1)
	assert.Equal(s.T(), []string{"米饭"}, s.record.Logged(2, diet.SlotLunch, diet.RoleStaple))

	events := s.record.Events()
	require.Len(s.T(), events, 1)
	forced, ok := events[0].(diet.RepeatForcedEvent)
	require.True(s.T(), ok)
	assert.Equal(s.T(), "米饭", forced.Name)
	assert.Equal(s.T(), 2, forced.Day)
	assert.Equal(s.T(), diet.RoleStaple, forced.Role)
}

func (s *TrackerTestSuite) TestDistinctPool_ShouldNotRepeatWhileUnusedNamesRemain() {
	// Arrange: 30 names, 7 picks; a repeat needs ten consecutive used draws
	var names []string
	for _, n := range []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"} {
		names = append(names, n+"粥", n+"饭", n+"面")
	}
	pool := items(diet.CategoryGrain, names...)

	// Act
	picked := map[string]bool{}
	for day := 1; day <= diet.DaysPerWeek; day++ {
		picked[s.tracker.Staple(pool, day, diet.SlotDinner).Name] = true
	}

	// Assert
	assert.Len(s.T(), picked, diet.DaysPerWeek)
	assert.Len(s.T(), s.record.UsedStaples, diet.DaysPerWeek)
}

func (s *TrackerTestSuite) TestStaples_ShouldShareOneSetAcrossSlots() {
	// Arrange: a staple eaten at breakfast counts as used for dinner too
	tracker := planner.NewTracker(s.record, rand.New(rand.NewSource(7)), 64, zaptest.NewLogger(s.T()))
	tracker.Staple(items(diet.CategoryGrain, "米饭"), 1, diet.SlotBreakfast)

	// Act
	dinner := tracker.Staple(items(diet.CategoryGrain, "米饭", "面条"), 1, diet.SlotDinner)

	// Assert
	assert.Equal(s.T(), "面条", dinner.Name)
	assert.Equal(s.T(), []string{"米饭", "面条"}, s.record.UsedStaples.Sorted())
}

func (s *TrackerTestSuite) TestStaplesAndProteins_ShouldUseSeparateSets() {
	// Arrange
	pool := items(diet.CategoryLegume, "豆腐")
	s.tracker.Staple(pool, 1, diet.SlotDinner)

	// Act
	s.tracker.Protein(pool, 1, diet.SlotDinner)

	// Assert
	assert.True(s.T(), s.record.UsedProteins.Has("豆腐"))
	assert.Zero(s.T(), s.record.PendingEvents(), "first protein pick should not be a forced repeat")
}

func (s *TrackerTestSuite) TestCustomAttempts_ShouldBoundSearch() {
	// Arrange
	rng := rand.New(rand.NewSource(3))
	tracker := planner.NewTracker(s.record, rng, 1, nil)
	pool := items(diet.CategoryPoultry, "鸡胸肉", "鸭肉")
	s.record.UsedProteins.Add("鸡胸肉")
	s.record.UsedProteins.Add("鸭肉")

	// Act
	item := tracker.Protein(pool, 3, diet.SlotLunch)

	// Assert
	assert.Contains(s.T(), []string{"鸡胸肉", "鸭肉"}, item.Name)
	assert.Len(s.T(), s.record.UsedProteins, 2)
	assert.Equal(s.T(), 1, s.record.PendingEvents())
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}
