package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/shiliao/dietplan/internal/domain/diet"
)

// Nutrient keys used by the food table's info section
const (
	NutrientEnergy  = "能量"
	NutrientProtein = "蛋白质"
	NutrientFat     = "脂肪"
	NutrientCarbs   = "碳水化合物"
)

// NutrientValue is one food's amount of a nutrient
type NutrientValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ParseAmount extracts the numeric part of an info value such as "12.5克"
// or "340千卡". It keeps digits and dots only.
func ParseAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RankByNutrient returns the foods carrying nutrient, highest first.
// A limit of zero or less returns every food.
func RankByNutrient(items []diet.FoodItem, nutrient string, limit int) []NutrientValue {
	var ranked []NutrientValue
	for _, item := range items {
		raw, ok := item.Info[nutrient]
		if !ok {
			continue
		}
		if v, ok := ParseAmount(raw); ok {
			ranked = append(ranked, NutrientValue{Name: item.Name, Value: v})
		}
	}
	slices.SortStableFunc(ranked, func(a, b NutrientValue) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// AllItems flattens the catalog in a stable category order
func (c *Catalog) AllItems() []diet.FoodItem {
	if c == nil {
		return nil
	}
	categories := make([]diet.Category, 0, len(c.foods))
	for category := range c.foods {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	var items []diet.FoodItem
	for _, category := range categories {
		items = append(items, c.GetByCategory(category)...)
	}
	return items
}
