package diet

import "slices"

// Affinity tag prefixes carried by catalog items
const (
	TagConstitutionPrefix = "constitution:"
	TagSeasonPrefix       = "season:"
)

// ConstitutionTag is the affinity tag marking an item as suited to c
func ConstitutionTag(c Constitution) string {
	return TagConstitutionPrefix + string(c)
}

// SeasonTag is the affinity tag marking an item as in season s
func SeasonTag(s Season) string {
	return TagSeasonPrefix + string(s)
}

// FoodItem is one catalog entry
type FoodItem struct {
	Name     string            `json:"name" yaml:"name"`
	Category Category          `json:"type" yaml:"type"`
	Info     map[string]string `json:"info,omitempty" yaml:"info,omitempty"`
	Tags     []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// HasTag reports whether the item carries the given affinity tag
func (f FoodItem) HasTag(tag string) bool {
	return slices.Contains(f.Tags, tag)
}

// Placeholder items used when every fallback comes up empty
var (
	PlaceholderVegetable = FoodItem{Name: "时令蔬菜", Category: CategoryVegetable}
	PlaceholderFruit     = FoodItem{Name: "时令水果", Category: CategoryFruit}
	PlaceholderProtein   = FoodItem{Name: "豆腐", Category: CategoryLegume}
)
