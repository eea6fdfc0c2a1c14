package diet_test

import (
	"testing"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/stretchr/testify/assert"
)

func TestTables_ProteinPolicyPriority(t *testing.T) {
	tables := diet.DefaultTables()

	cases := []struct {
		name     string
		diseases []diet.Disease
		allowed  []diet.Category
		denied   []diet.Category
	}{
		{
			name:     "DiabetesWinsOverHypertension",
			diseases: []diet.Disease{diet.DiseaseHypertension, diet.DiseaseDiabetes},
			allowed:  []diet.Category{diet.CategoryLegume, diet.CategoryPoultry, diet.CategoryEgg},
			denied:   []diet.Category{diet.CategoryLivestock, diet.CategoryAquatic},
		},
		{
			name:     "HypertensionExcludesAquatic",
			diseases: []diet.Disease{diet.DiseaseGout, diet.DiseaseHypertension},
			allowed:  []diet.Category{diet.CategoryLivestock, diet.CategoryLegume},
			denied:   []diet.Category{diet.CategoryAquatic},
		},
		{
			name:     "HyperlipidemiaExcludesLivestock",
			diseases: []diet.Disease{diet.DiseaseHyperlipidemia},
			allowed:  []diet.Category{diet.CategoryAquatic},
			denied:   []diet.Category{diet.CategoryLivestock},
		},
		{
			name:     "GoutExcludesAquaticAndLivestock",
			diseases: []diet.Disease{diet.DiseaseGout},
			allowed:  []diet.Category{diet.CategoryEgg},
			denied:   []diet.Category{diet.CategoryAquatic, diet.CategoryLivestock},
		},
		{
			name:     "NoneAllowsEverything",
			diseases: []diet.Disease{diet.DiseaseNone},
			allowed:  diet.ProteinCategories(),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := tables.ProteinPolicy(tc.diseases)
			for _, c := range tc.allowed {
				assert.True(t, policy.Permits(c), "expected %s allowed", c)
			}
			for _, c := range tc.denied {
				assert.False(t, policy.Permits(c), "expected %s denied", c)
			}
		})
	}
}

func TestTables_AccessorsReturnCopies(t *testing.T) {
	tables := diet.DefaultTables()

	foods := tables.Medicinals(diet.ConstitutionPhlegmDamp)
	foods[0] = "changed"

	assert.Equal(t, "茯苓", tables.Medicinals(diet.ConstitutionPhlegmDamp)[0])
	assert.Nil(t, tables.Medicinals("未知体质"))
	assert.Equal(t, []string{"菠菜", "西红柿", "青菜"}, tables.ConstitutionVegetables("未知体质"))
}

func TestTables_DietTipAndProfiles(t *testing.T) {
	tables := diet.DefaultTables()

	tip, ok := tables.DietTip([]diet.Disease{diet.DiseaseGout, diet.DiseaseHyperlipidemia})
	assert.True(t, ok)
	assert.Contains(t, tip, "高血脂")

	_, ok = tables.DietTip(nil)
	assert.False(t, ok)

	profiles := tables.ConstitutionProfiles()
	assert.Len(t, profiles, len(diet.Constitutions()))
	assert.Equal(t, diet.ConstitutionStomachHeat, profiles[0].Type)
	assert.NotEmpty(t, profiles[0].Medicinals)
}

func TestTables_StapleDefaultsAreGrains(t *testing.T) {
	tables := diet.DefaultTables()
	for _, slot := range diet.Slots() {
		defaults := tables.StapleDefaults(slot)
		assert.Len(t, defaults, 5)
		for _, item := range defaults {
			assert.Equal(t, diet.CategoryGrain, item.Category)
		}
		_, ok := tables.CalorieRange(slot)
		assert.True(t, ok)
	}
}
