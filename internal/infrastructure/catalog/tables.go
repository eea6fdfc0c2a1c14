package catalog

import (
	"slices"
	"strings"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/ports/outbound"
)

// DefaultCuisineMethods returns the signature cooking methods per cuisine
func DefaultCuisineMethods() map[diet.Cuisine][]string {
	return map[diet.Cuisine][]string{
		diet.CuisineCantonese: {"清蒸", "白灼", "煲汤", "炒", "焖"},
		diet.CuisineSichuan:   {"麻辣", "干煸", "回锅", "水煮", "爆炒"},
		diet.CuisineHunan:     {"香辣", "腊制", "烟熏", "干锅", "蒸炒"},
		diet.CuisineShandong:  {"爆", "炸", "烧", "蒸", "煨"},
		diet.CuisineJiangsu:   {"红烧", "清炖", "煮", "焖", "炒"},
		diet.CuisineZhejiang:  {"炖", "炒", "蒸", "烤", "煎"},
		diet.CuisineFujian:    {"红糟", "醉", "烧", "焖", "煮"},
		diet.CuisineAnhui:     {"炖", "蒸", "烧", "炒", "熏"},
	}
}

// DefaultCuisineFlavors returns the characteristic flavors per cuisine
func DefaultCuisineFlavors() map[diet.Cuisine][]string {
	return map[diet.Cuisine][]string{
		diet.CuisineCantonese: {"鲜", "清淡", "平和"},
		diet.CuisineSichuan:   {"麻辣", "辣", "香"},
		diet.CuisineHunan:     {"香辣", "咸鲜"},
		diet.CuisineShandong:  {"醇厚", "咸鲜"},
		diet.CuisineJiangsu:   {"甜", "清淡", "鲜"},
		diet.CuisineZhejiang:  {"鲜", "清淡"},
		diet.CuisineFujian:    {"清鲜", "酸甜"},
		diet.CuisineAnhui:     {"醇厚", "浓郁"},
	}
}

var roleCategories = map[diet.Role][]diet.Category{
	diet.RoleStaple:    {diet.CategoryGrain, diet.CategoryTuber},
	diet.RoleProtein:   {diet.CategoryLegume, diet.CategoryLivestock, diet.CategoryPoultry, diet.CategoryEgg, diet.CategoryAquatic},
	diet.RoleVegetable: {diet.CategoryVegetable, diet.CategoryFungus, diet.CategoryAlgae},
	diet.RoleFruit:     {diet.CategoryFruit},
	diet.RoleNut:       {diet.CategoryNut},
	diet.RoleSeasoning: {diet.CategorySeasoning, diet.CategoryOil},
	diet.RoleBeverage:  {diet.CategoryTea, diet.CategoryAlcohol, diet.CategorySnackDrink},
}

// RoleOf returns the meal role a category contributes to
func RoleOf(category diet.Category) (diet.Role, bool) {
	for role, categories := range roleCategories {
		if slices.Contains(categories, category) {
			return role, true
		}
	}
	return "", false
}

// CategoriesOf returns the categories that make up role
func CategoriesOf(role diet.Role) []diet.Category {
	return slices.Clone(roleCategories[role])
}

// ApplyAffinityTags derives constitution and season tags for vegetables and
// fruits from the recommendation tables, so that selection can use tag
// membership instead of matching names on every request. Existing tags are kept.
func ApplyAffinityTags(snapshot *outbound.CatalogSnapshot, tables diet.Tables) {
	tagCategory := func(category diet.Category, derive func(name string) []string) {
		items := snapshot.FoodByType[category]
		for i := range items {
			for _, tag := range derive(items[i].Name) {
				if !items[i].HasTag(tag) {
					items[i].Tags = append(items[i].Tags, tag)
				}
			}
		}
	}

	tagCategory(diet.CategoryVegetable, func(name string) []string {
		var tags []string
		for _, c := range diet.Constitutions() {
			if containsAny(name, tables.ConstitutionVegetables(c)) {
				tags = append(tags, diet.ConstitutionTag(c))
			}
		}
		for _, s := range diet.Seasons() {
			if containsAny(name, tables.SeasonalVegetables(s)) {
				tags = append(tags, diet.SeasonTag(s))
			}
		}
		return tags
	})

	tagCategory(diet.CategoryFruit, func(name string) []string {
		var tags []string
		for _, s := range diet.Seasons() {
			if containsAny(name, tables.SeasonalFruits(s)) {
				tags = append(tags, diet.SeasonTag(s))
			}
		}
		return tags
	})
}

func containsAny(name string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}
