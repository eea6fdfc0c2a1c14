// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"maps"
	"slices"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
)

// FoodToModel converts a catalog food to a GORM model at position within its category
func FoodToModel(item diet.FoodItem, position int) *FoodModel {
	return &FoodModel{
		Name:     item.Name,
		Category: string(item.Category),
		Position: position,
		Info:     StringMap(maps.Clone(item.Info)),
		Tags:     StringSlice(slices.Clone(item.Tags)),
	}
}

// ModelToFood converts a GORM model back to a catalog food
func ModelToFood(model *FoodModel) diet.FoodItem {
	item := diet.FoodItem{
		Name:     model.Name,
		Category: diet.Category(model.Category),
	}
	if len(model.Info) > 0 {
		item.Info = maps.Clone(map[string]string(model.Info))
	}
	if len(model.Tags) > 0 {
		item.Tags = slices.Clone([]string(model.Tags))
	}
	return item
}

// SnapshotToModels flattens a snapshot into rows, keeping catalog order
func SnapshotToModels(snapshot *outbound.CatalogSnapshot) ([]FoodModel, []CuisineModel) {
	categories := make([]diet.Category, 0, len(snapshot.FoodByType))
	for category := range snapshot.FoodByType {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	foods := make([]FoodModel, 0, snapshot.ItemCount())
	for _, category := range categories {
		for i, item := range snapshot.FoodByType[category] {
			item.Category = category
			foods = append(foods, *FoodToModel(item, i))
		}
	}

	cuisineSet := make(map[diet.Cuisine]struct{})
	for c := range snapshot.CuisineMethods {
		cuisineSet[c] = struct{}{}
	}
	for c := range snapshot.CuisineFlavors {
		cuisineSet[c] = struct{}{}
	}
	cuisines := make([]CuisineModel, 0, len(cuisineSet))
	for _, c := range slices.Sorted(maps.Keys(cuisineSet)) {
		cuisines = append(cuisines, CuisineModel{
			Cuisine: string(c),
			Methods: StringSlice(slices.Clone(snapshot.CuisineMethods[c])),
			Flavors: StringSlice(slices.Clone(snapshot.CuisineFlavors[c])),
		})
	}
	return foods, cuisines
}

// ModelsToSnapshot rebuilds a snapshot; foods must be ordered by position
func ModelsToSnapshot(foods []FoodModel, cuisines []CuisineModel) *outbound.CatalogSnapshot {
	snapshot := &outbound.CatalogSnapshot{
		FoodByType:     make(map[diet.Category][]diet.FoodItem),
		CuisineMethods: make(map[diet.Cuisine][]string, len(cuisines)),
		CuisineFlavors: make(map[diet.Cuisine][]string, len(cuisines)),
	}
	for i := range foods {
		item := ModelToFood(&foods[i])
		snapshot.FoodByType[item.Category] = append(snapshot.FoodByType[item.Category], item)
	}
	for _, c := range cuisines {
		if len(c.Methods) > 0 {
			snapshot.CuisineMethods[diet.Cuisine(c.Cuisine)] = []string(c.Methods)
		}
		if len(c.Flavors) > 0 {
			snapshot.CuisineFlavors[diet.Cuisine(c.Cuisine)] = []string(c.Flavors)
		}
	}
	return snapshot
}
