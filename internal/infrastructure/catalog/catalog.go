// Package catalog holds the in-memory food catalog and the loaders that build it
package catalog

import (
	"maps"
	"slices"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
)

// Catalog is an immutable, category-partitioned food catalog. It is safe for
// concurrent reads and is meant to be built once per process.
type Catalog struct {
	foods   map[diet.Category][]diet.FoodItem
	methods map[diet.Cuisine][]string
	flavors map[diet.Cuisine][]string
}

var _ outbound.FoodCatalog = (*Catalog)(nil)

// New builds a catalog from snapshot. The snapshot is copied, so later changes
// to it are not observed.
func New(snapshot *outbound.CatalogSnapshot) *Catalog {
	c := &Catalog{
		foods:   make(map[diet.Category][]diet.FoodItem, len(snapshot.FoodByType)),
		methods: make(map[diet.Cuisine][]string, len(snapshot.CuisineMethods)),
		flavors: make(map[diet.Cuisine][]string, len(snapshot.CuisineFlavors)),
	}
	for category, items := range snapshot.FoodByType {
		copied := make([]diet.FoodItem, len(items))
		for i, item := range items {
			copied[i] = cloneItem(item)
		}
		c.foods[category] = copied
	}
	for cuisine, methods := range snapshot.CuisineMethods {
		c.methods[cuisine] = slices.Clone(methods)
	}
	for cuisine, flavors := range snapshot.CuisineFlavors {
		c.flavors[cuisine] = slices.Clone(flavors)
	}
	return c
}

func cloneItem(item diet.FoodItem) diet.FoodItem {
	item.Info = maps.Clone(item.Info)
	item.Tags = slices.Clone(item.Tags)
	return item
}

// GetByCategory returns the items of category in catalog order.
// Unknown categories and a nil catalog yield an empty list.
func (c *Catalog) GetByCategory(category diet.Category) []diet.FoodItem {
	if c == nil {
		return nil
	}
	return slices.Clone(c.foods[category])
}

// GetCuisineMethods returns the cooking methods of cuisine
func (c *Catalog) GetCuisineMethods(cuisine diet.Cuisine) []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.methods[cuisine])
}

// GetCuisineFlavors returns the flavors of cuisine
func (c *Catalog) GetCuisineFlavors(cuisine diet.Cuisine) []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.flavors[cuisine])
}

// Counts returns the number of items per category
func (c *Catalog) Counts() map[diet.Category]int {
	if c == nil {
		return map[diet.Category]int{}
	}
	counts := make(map[diet.Category]int, len(c.foods))
	for category, items := range c.foods {
		counts[category] = len(items)
	}
	return counts
}

// Len returns the total number of items
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, items := range c.foods {
		n += len(items)
	}
	return n
}

// Snapshot returns a deep copy of the catalog in serializable form
func (c *Catalog) Snapshot() *outbound.CatalogSnapshot {
	s := &outbound.CatalogSnapshot{
		FoodByType:     make(map[diet.Category][]diet.FoodItem, len(c.foods)),
		CuisineMethods: make(map[diet.Cuisine][]string, len(c.methods)),
		CuisineFlavors: make(map[diet.Cuisine][]string, len(c.flavors)),
	}
	for category, items := range c.foods {
		copied := make([]diet.FoodItem, len(items))
		for i, item := range items {
			copied[i] = cloneItem(item)
		}
		s.FoodByType[category] = copied
	}
	for cuisine, methods := range c.methods {
		s.CuisineMethods[cuisine] = slices.Clone(methods)
	}
	for cuisine, flavors := range c.flavors {
		s.CuisineFlavors[cuisine] = slices.Clone(flavors)
	}
	return s
}
