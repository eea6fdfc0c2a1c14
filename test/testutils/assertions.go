// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	caloriePattern = regexp.MustCompile(`^(\d+)kcal$`)
	macroPattern   = regexp.MustCompile(`^碳水(\d+)% 蛋白(\d+)% 脂肪(-?\d+)%$`)
)

// PlanAssertions provides menu-specific assertion methods
type PlanAssertions struct {
	t *testing.T
}

// NewPlanAssertions creates a new plan assertions helper
func NewPlanAssertions(t *testing.T) *PlanAssertions {
	return &PlanAssertions{t: t}
}

// CompleteWeek asserts seven days of three meals each
func (pa *PlanAssertions) CompleteWeek(menu diet.WeeklyMenu) {
	require.Len(pa.t, menu.Days, diet.DaysPerWeek, "Menu should cover a full week")
	for i, day := range menu.Days {
		assert.Equal(pa.t, i+1, day.Day, "Days should be numbered from 1")
		assert.Len(pa.t, day.Meals, 3, "Day %d should have three meals", day.Day)
		for _, slot := range diet.Slots() {
			meal, err := day.Meal(slot)
			if assert.NoError(pa.t, err, "Day %d should have %s", day.Day, slot) {
				pa.WellFormedMeal(meal)
			}
		}
	}
}

// WellFormedMeal asserts the staple, dish count, calorie string and macros
func (pa *PlanAssertions) WellFormedMeal(meal diet.Meal) {
	assert.NotEmpty(pa.t, meal.Staple, "Meal should have a staple")
	assert.GreaterOrEqual(pa.t, len(meal.Dishes), 2, "Meal should have at least two dishes")
	assert.LessOrEqual(pa.t, len(meal.Dishes), 5, "Meal should have at most five dishes")
	for _, dish := range meal.Dishes {
		assert.NotEmpty(pa.t, dish)
	}
	assert.Regexp(pa.t, caloriePattern, meal.Calories, "Calories should end in kcal")
	pa.MacrosSumTo100(meal.Macros.String())
}

// MacrosSumTo100 parses a formatted macro string
func (pa *PlanAssertions) MacrosSumTo100(macros string) {
	m := macroPattern.FindStringSubmatch(macros)
	require.Len(pa.t, m, 4, "Macro string %q should parse", macros)
	sum := 0
	for _, part := range m[1:] {
		v, err := strconv.Atoi(part)
		require.NoError(pa.t, err)
		assert.Positive(pa.t, v, "Macro share should be positive in %q", macros)
		sum += v
	}
	assert.Equal(pa.t, 100, sum, "Macros should sum to 100 in %q", macros)
}

// Calories extracts the number from a calorie string
func Calories(s string) int {
	m := caloriePattern.FindStringSubmatch(s)
	if m == nil {
		return -1
	}
	v, _ := strconv.Atoi(m[1])
	return v
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(resp *http.Response, target interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.NewDecoder(resp.Body).Decode(target), "Response should be valid JSON")
}

// HasHeader asserts that a header exists
func (ha *HTTPAssertions) HasHeader(resp *http.Response, headerName string) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.NotEmpty(ha.t, resp.Header.Get(headerName), "Response should have header %s", headerName)
}
