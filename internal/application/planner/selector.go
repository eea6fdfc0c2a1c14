package planner

import (
	"math/rand"
	"slices"
	"strings"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
)

const (
	minStapleCandidates   = 5
	minSeasonalFruits     = 3
	fruitTopUpTarget      = 5
	fruitCatalogFallbackN = 5
)

// Selector builds candidate pools for each food role from the catalog.
// Membership is decided by affinity tags first; name fragments from the
// recommendation tables are the fallback for untagged catalogs.
type Selector struct {
	catalog outbound.FoodCatalog
	tables  diet.Tables
	rng     *rand.Rand
	record  *diet.WeeklyRecord
}

// NewSelector creates a selector. record may be nil; when set, fallbacks are
// recorded on it as events.
func NewSelector(catalog outbound.FoodCatalog, tables diet.Tables, rng *rand.Rand, record *diet.WeeklyRecord) *Selector {
	return &Selector{catalog: catalog, tables: tables, rng: rng, record: record}
}

func (s *Selector) fallback(role diet.Role, level diet.FallbackLevel) {
	if s.record != nil {
		s.record.AddEvent(diet.NewFallbackUsedEvent(role, level))
	}
}

// Staples returns the staple candidates for slot: grains and tubers whose
// name carries one of the slot's keywords, topped up with the slot defaults
// until at least five candidates exist.
func (s *Selector) Staples(slot diet.Slot) []diet.FoodItem {
	keywords := s.tables.StapleKeywords(slot)

	var candidates []diet.FoodItem
	for _, category := range diet.StapleCategories() {
		for _, item := range s.catalog.GetByCategory(category) {
			if containsAny(strings.ToLower(item.Name), keywords) {
				candidates = append(candidates, item)
			}
		}
	}

	if len(candidates) < minStapleCandidates {
		s.fallback(diet.RoleStaple, diet.FallbackDefaults)
		for _, def := range s.tables.StapleDefaults(slot) {
			if len(candidates) >= minStapleCandidates {
				break
			}
			if !containsName(candidates, def.Name) {
				candidates = append(candidates, def)
			}
		}
	}
	return candidates
}

// VegetableCandidates returns the vegetables suited to constitution c.
// The result is never empty.
func (s *Selector) VegetableCandidates(c diet.Constitution) []diet.FoodItem {
	vegetables := s.catalog.GetByCategory(diet.CategoryVegetable)
	return s.withFallbacks(
		diet.RoleVegetable,
		s.affinity(vegetables, diet.ConstitutionTag(c), s.tables.ConstitutionVegetables(c)),
		vegetables,
		diet.PlaceholderVegetable,
	)
}

// Vegetable picks one vegetable for constitution c
func (s *Selector) Vegetable(c diet.Constitution) diet.FoodItem {
	return pick(s.rng, s.VegetableCandidates(c))
}

// SeasonalVegetableCandidates returns the vegetables in season.
// The result is never empty.
func (s *Selector) SeasonalVegetableCandidates(season diet.Season) []diet.FoodItem {
	vegetables := s.catalog.GetByCategory(diet.CategoryVegetable)
	return s.withFallbacks(
		diet.RoleVegetable,
		s.affinity(vegetables, diet.SeasonTag(season), s.tables.SeasonalVegetables(season)),
		vegetables,
		diet.PlaceholderVegetable,
	)
}

// SeasonalVegetable picks one vegetable in season
func (s *Selector) SeasonalVegetable(season diet.Season) diet.FoodItem {
	return pick(s.rng, s.SeasonalVegetableCandidates(season))
}

// SeasonalFruitCandidates returns fruits in season. A thin list (fewer than
// three) is topped up with common fruits to five; with no match at all the
// first five catalog fruits are used. The result is never empty.
func (s *Selector) SeasonalFruitCandidates(season diet.Season) []diet.FoodItem {
	fruits := s.catalog.GetByCategory(diet.CategoryFruit)
	candidates := s.affinity(fruits, diet.SeasonTag(season), s.tables.SeasonalFruits(season))

	if len(candidates) < minSeasonalFruits {
		common := s.tables.CommonFruits()
		for _, fruit := range fruits {
			if len(candidates) >= fruitTopUpTarget {
				break
			}
			if containsAny(fruit.Name, common) && !containsName(candidates, fruit.Name) {
				candidates = append(candidates, fruit)
			}
		}
	}
	if len(candidates) > 0 {
		return candidates
	}

	if len(fruits) > 0 {
		s.fallback(diet.RoleFruit, diet.FallbackCategory)
		return fruits[:min(fruitCatalogFallbackN, len(fruits))]
	}
	s.fallback(diet.RoleFruit, diet.FallbackPlaceholder)
	return []diet.FoodItem{diet.PlaceholderFruit}
}

// SeasonalFruit picks one fruit in season
func (s *Selector) SeasonalFruit(season diet.Season) diet.FoodItem {
	return pick(s.rng, s.SeasonalFruitCandidates(season))
}

// Proteins pools the protein categories and applies the single
// restriction of the highest-priority disease present. An empty result falls
// back to legumes and poultry, then to bean curd.
func (s *Selector) Proteins(diseases []diet.Disease) []diet.FoodItem {
	policy := s.tables.ProteinPolicy(diseases)

	var candidates []diet.FoodItem
	for _, category := range diet.ProteinCategories() {
		if !policy.Permits(category) {
			continue
		}
		candidates = append(candidates, s.catalog.GetByCategory(category)...)
	}
	if len(candidates) > 0 {
		return candidates
	}

	for _, category := range []diet.Category{diet.CategoryLegume, diet.CategoryPoultry} {
		candidates = append(candidates, s.catalog.GetByCategory(category)...)
	}
	if len(candidates) > 0 {
		s.fallback(diet.RoleProtein, diet.FallbackCategory)
		return candidates
	}
	s.fallback(diet.RoleProtein, diet.FallbackPlaceholder)
	return []diet.FoodItem{diet.PlaceholderProtein}
}

// CookingStyle draws one cooking method and one flavor for cuisine, using the
// generic lists when the catalog has none for it.
func (s *Selector) CookingStyle(cuisine diet.Cuisine) (method, flavor string) {
	methods := s.catalog.GetCuisineMethods(cuisine)
	if len(methods) == 0 {
		methods = s.tables.FallbackMethods()
	}
	flavors := s.catalog.GetCuisineFlavors(cuisine)
	if len(flavors) == 0 {
		flavors = s.tables.FallbackFlavors()
	}
	return pick(s.rng, methods), pick(s.rng, flavors)
}

// affinity returns the items carrying tag; when none do, the items whose name
// contains one of fragments (first match wins per item).
func (s *Selector) affinity(items []diet.FoodItem, tag string, fragments []string) []diet.FoodItem {
	var tagged []diet.FoodItem
	for _, item := range items {
		if item.HasTag(tag) {
			tagged = append(tagged, item)
		}
	}
	if len(tagged) > 0 {
		return tagged
	}

	var matched []diet.FoodItem
	for _, item := range items {
		if containsAny(item.Name, fragments) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (s *Selector) withFallbacks(role diet.Role, preferred, category []diet.FoodItem, placeholder diet.FoodItem) []diet.FoodItem {
	if len(preferred) > 0 {
		return preferred
	}
	if len(category) > 0 {
		s.fallback(role, diet.FallbackCategory)
		return category
	}
	s.fallback(role, diet.FallbackPlaceholder)
	return []diet.FoodItem{placeholder}
}

func containsAny(name string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

func containsName(items []diet.FoodItem, name string) bool {
	return slices.ContainsFunc(items, func(item diet.FoodItem) bool { return item.Name == name })
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
