// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/catalog"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/stretchr/testify/require"
)

// ReferenceProfile is the worked example used throughout the tests:
// phlegm-damp over spleen deficiency, female, 35, 165cm, 70kg, medium
// activity, hypertension, Cantonese, summer.
func ReferenceProfile() diet.UserProfile {
	return diet.UserProfile{
		PrimaryType:   diet.ConstitutionPhlegmDamp,
		SecondaryType: diet.ConstitutionSpleenDeficiency,
		Gender:        diet.GenderFemale,
		Age:           35,
		Height:        165,
		Weight:        70,
		Activity:      diet.ActivityMedium,
		Diseases:      []diet.Disease{diet.DiseaseHypertension},
		Cuisine:       diet.CuisineCantonese,
		Season:        diet.SeasonSummer,
	}
}

// ReferenceCommand is ReferenceProfile as a client would submit it
func ReferenceCommand() inbound.ProfileCommand {
	return inbound.ProfileCommand{
		PrimaryType:   string(diet.ConstitutionPhlegmDamp),
		SecondaryType: string(diet.ConstitutionSpleenDeficiency),
		Gender:        string(diet.GenderFemale),
		Age:           35,
		Height:        165,
		Weight:        70,
		Activity:      string(diet.ActivityMedium),
		Diseases:      []string{string(diet.DiseaseHypertension)},
		Cuisine:       string(diet.CuisineCantonese),
		Season:        string(diet.SeasonSummer),
	}
}

// ProfileFactory creates random valid profiles
type ProfileFactory struct {
	faker *gofakeit.Faker
}

// NewProfileFactory creates a new profile factory with seeded faker
func NewProfileFactory(seed int64) *ProfileFactory {
	return &ProfileFactory{faker: gofakeit.New(seed)}
}

// ProfileBuilder provides a fluent interface for building test profiles
type ProfileBuilder struct {
	profile diet.UserProfile
}

// Build returns a random but valid profile
func (f *ProfileFactory) Build() diet.UserProfile {
	return f.Builder().Profile()
}

// Builder returns a builder seeded with random but valid values
func (f *ProfileFactory) Builder() *ProfileBuilder {
	constitutions := diet.Constitutions()
	cuisines := diet.Cuisines()
	seasons := diet.Seasons()
	activities := []diet.ActivityLevel{diet.ActivityLow, diet.ActivityMedium, diet.ActivityHigh}
	diseases := []diet.Disease{
		diet.DiseaseNone, diet.DiseaseHypertension, diet.DiseaseDiabetes,
		diet.DiseaseHyperlipidemia, diet.DiseaseGout,
	}
	gender := diet.GenderFemale
	if f.faker.Bool() {
		gender = diet.GenderMale
	}

	return &ProfileBuilder{profile: diet.UserProfile{
		PrimaryType:   constitutions[f.faker.Number(0, len(constitutions)-1)],
		SecondaryType: constitutions[f.faker.Number(0, len(constitutions)-1)],
		Gender:        gender,
		Age:           float64(f.faker.Number(18, 80)),
		Height:        f.faker.Float64Range(150, 195),
		Weight:        f.faker.Float64Range(45, 110),
		Activity:      activities[f.faker.Number(0, len(activities)-1)],
		Diseases:      []diet.Disease{diseases[f.faker.Number(0, len(diseases)-1)]},
		Cuisine:       cuisines[f.faker.Number(0, len(cuisines)-1)],
		Season:        seasons[f.faker.Number(0, len(seasons)-1)],
	}}
}

// NewProfileBuilder starts from the reference profile
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{profile: ReferenceProfile()}
}

// WithConstitution sets the primary and secondary types
func (b *ProfileBuilder) WithConstitution(primary, secondary diet.Constitution) *ProfileBuilder {
	b.profile.PrimaryType = primary
	b.profile.SecondaryType = secondary
	return b
}

// WithGender sets the gender
func (b *ProfileBuilder) WithGender(g diet.Gender) *ProfileBuilder {
	b.profile.Gender = g
	return b
}

// WithBody sets age, height (cm) and weight (kg)
func (b *ProfileBuilder) WithBody(age, height, weight float64) *ProfileBuilder {
	b.profile.Age = age
	b.profile.Height = height
	b.profile.Weight = weight
	return b
}

// WithActivity sets the activity level
func (b *ProfileBuilder) WithActivity(a diet.ActivityLevel) *ProfileBuilder {
	b.profile.Activity = a
	return b
}

// WithDiseases replaces the disease set
func (b *ProfileBuilder) WithDiseases(diseases ...diet.Disease) *ProfileBuilder {
	b.profile.Diseases = diseases
	return b
}

// WithCuisine sets the preferred cuisine
func (b *ProfileBuilder) WithCuisine(c diet.Cuisine) *ProfileBuilder {
	b.profile.Cuisine = c
	return b
}

// WithSeason sets the season
func (b *ProfileBuilder) WithSeason(s diet.Season) *ProfileBuilder {
	b.profile.Season = s
	return b
}

// Profile returns the built profile
func (b *ProfileBuilder) Profile() diet.UserProfile {
	p := b.profile
	p.Diseases = append([]diet.Disease(nil), b.profile.Diseases...)
	return p
}

// CatalogBuilder assembles small catalogs for selector tests
type CatalogBuilder struct {
	snapshot outbound.CatalogSnapshot
}

// NewCatalogBuilder starts an empty catalog without cuisine tables
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{snapshot: outbound.CatalogSnapshot{
		FoodByType:     map[diet.Category][]diet.FoodItem{},
		CuisineMethods: map[diet.Cuisine][]string{},
		CuisineFlavors: map[diet.Cuisine][]string{},
	}}
}

// WithFoods appends plain items named names to category
func (b *CatalogBuilder) WithFoods(category diet.Category, names ...string) *CatalogBuilder {
	for _, n := range names {
		b.snapshot.FoodByType[category] = append(b.snapshot.FoodByType[category],
			diet.FoodItem{Name: n, Category: category})
	}
	return b
}

// WithTagged appends one item carrying tags
func (b *CatalogBuilder) WithTagged(category diet.Category, name string, tags ...string) *CatalogBuilder {
	b.snapshot.FoodByType[category] = append(b.snapshot.FoodByType[category],
		diet.FoodItem{Name: name, Category: category, Tags: tags})
	return b
}

// WithCuisine sets the methods and flavors of cuisine
func (b *CatalogBuilder) WithCuisine(c diet.Cuisine, methods, flavors []string) *CatalogBuilder {
	b.snapshot.CuisineMethods[c] = methods
	b.snapshot.CuisineFlavors[c] = flavors
	return b
}

// Snapshot returns the raw snapshot
func (b *CatalogBuilder) Snapshot() *outbound.CatalogSnapshot {
	s := b.snapshot
	return &s
}

// Build returns the read-only catalog
func (b *CatalogBuilder) Build() *catalog.Catalog {
	return catalog.New(b.Snapshot())
}

// DefaultCatalog loads the catalog shipped with the binary, auto-tagged
func DefaultCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	snapshot, err := catalog.Default()
	require.NoError(t, err, "embedded catalog should parse")
	catalog.ApplyAffinityTags(snapshot, diet.DefaultTables())
	return catalog.New(snapshot)
}

// Seeds returns n distinct seeds derived from base
func Seeds(base int64, n int) []int64 {
	faker := gofakeit.New(base)
	seeds := make([]int64, 0, n)
	seen := make(map[int64]bool, n)
	for len(seeds) < n {
		s := faker.Int64()
		if !seen[s] {
			seen[s] = true
			seeds = append(seeds, s)
		}
	}
	return seeds
}

// TimeSeed is a non-deterministic seed for property tests
func TimeSeed() int64 {
	return time.Now().UnixNano()
}
