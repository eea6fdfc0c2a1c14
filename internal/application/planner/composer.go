package planner

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/shiliao/dietplan/internal/domain/diet"
)

const (
	minDishes      = 2
	maxDishes      = 4
	soupVolumeML   = 250
	dessertWeightG = 100
)

var (
	vegetablePortion = diet.Range{Min: 150, Max: 250}
	proteinPortion   = diet.Range{Min: 80, Max: 150}
	seasonalPortion  = diet.Range{Min: 100, Max: 200}
	fruitPortion     = diet.Range{Min: 80, Max: 150}
	carbsPercent     = diet.Range{Min: 40, Max: 55}
	proteinPercent   = diet.Range{Min: 20, Max: 30}
)

// Composer assembles single meals for one profile
type Composer struct {
	profile  diet.UserProfile
	tables   diet.Tables
	selector *Selector
	tracker  *Tracker
	record   *diet.WeeklyRecord
	rng      *rand.Rand
}

// NewComposer wires a composer; selector, tracker and record must share the
// same random source and record.
func NewComposer(profile diet.UserProfile, tables diet.Tables, selector *Selector, tracker *Tracker, record *diet.WeeklyRecord, rng *rand.Rand) *Composer {
	return &Composer{
		profile:  profile,
		tables:   tables,
		selector: selector,
		tracker:  tracker,
		record:   record,
		rng:      rng,
	}
}

// Compose builds the meal for day and slot. The draws happen in a fixed
// order so a seeded source always yields the same meal.
func (c *Composer) Compose(day int, slot diet.Slot) (diet.Meal, error) {
	calories, ok := c.tables.CalorieRange(slot)
	if !ok {
		return diet.Meal{}, fmt.Errorf("%w: %q", diet.ErrUnknownSlot, slot)
	}
	kcal := c.draw(calories)

	staple := c.tracker.Staple(c.selector.Staples(slot), day, slot)
	medicinals := SelectMedicinals(c.rng, c.tables, c.profile.PrimaryType, c.profile.SecondaryType)
	method, flavor := c.selector.CookingStyle(c.profile.Cuisine)

	dishes := make([]string, 0, maxDishes+1)

	vegetable := c.selector.Vegetable(c.profile.PrimaryType)
	c.record.Log(day, slot, diet.RoleVegetable, vegetable.Name)
	dishes = append(dishes, fmt.Sprintf("%s%s（%dg，%s味）",
		c.verb(method, c.tables.VegetableVerbs()), vegetable.Name, c.draw(vegetablePortion), flavor))

	protein := c.tracker.Protein(c.selector.Proteins(c.profile.Diseases), day, slot)
	var medicinal string
	if len(medicinals) > 0 {
		medicinal = medicinals[0]
	}
	dishes = append(dishes, fmt.Sprintf("%s%s（%dg，药材：%s 适量）",
		c.verb(method, c.tables.ProteinVerbs()), protein.Name, c.draw(proteinPortion), medicinal))

	count := minDishes + c.rng.Intn(maxDishes-minDishes+1)
	if count >= 3 {
		seasonal := c.selector.SeasonalVegetable(c.profile.Season)
		c.record.Log(day, slot, diet.RoleVegetable, seasonal.Name)
		dishes = append(dishes, fmt.Sprintf("%s%s（%dg）",
			pick(c.rng, c.tables.SeasonalVerbs()), seasonal.Name, c.draw(seasonalPortion)))
	}
	if count >= 4 {
		if c.rng.Intn(2) == 0 {
			dishes = append(dishes, fmt.Sprintf("%s（%dml）", pick(c.rng, c.tables.Soups()), soupVolumeML))
		} else {
			dishes = append(dishes, fmt.Sprintf("%s（%dg）", pick(c.rng, c.tables.Desserts()), dessertWeightG))
		}
	}

	if c.wantsFruit(slot) {
		fruit := c.selector.SeasonalFruit(c.profile.Season)
		c.record.Log(day, slot, diet.RoleFruit, fruit.Name)
		dishes = append(dishes, fmt.Sprintf("水果：%s（%dg）", fruit.Name, c.draw(fruitPortion)))
	}

	carbs := c.draw(carbsPercent)
	proteinShare := c.draw(proteinPercent)

	return diet.Meal{
		Staple:   staple.Name,
		Dishes:   dishes,
		Calories: fmt.Sprintf("%dkcal", kcal),
		Macros:   diet.NewMacroRatio(carbs, proteinShare),
	}, nil
}

// wantsFruit: breakfast always, lunch never, dinner on a coin flip
func (c *Composer) wantsFruit(slot diet.Slot) bool {
	switch slot {
	case diet.SlotBreakfast:
		return true
	case diet.SlotDinner:
		return c.rng.Intn(2) == 0
	default:
		return false
	}
}

// verb keeps the cuisine's method when it suits the dish, otherwise draws one
func (c *Composer) verb(method string, verbs []string) string {
	if slices.Contains(verbs, method) {
		return method
	}
	return pick(c.rng, verbs)
}

func (c *Composer) draw(r diet.Range) int {
	return r.Min + c.rng.Intn(r.Max-r.Min+1)
}
