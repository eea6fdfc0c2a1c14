package planner

import (
	"math/rand"

	"github.com/shiliao/dietplan/internal/domain/diet"
)

// MedicinalPool concatenates the medicinal foods of the primary and secondary
// constitution. Unknown types contribute nothing.
func MedicinalPool(tables diet.Tables, primary, secondary diet.Constitution) []string {
	return append(tables.Medicinals(primary), tables.Medicinals(secondary)...)
}

// SelectMedicinals draws k in {1,2,3} and samples min(k, len(pool)) items
// without replacement. An empty pool yields an empty sample.
func SelectMedicinals(rng *rand.Rand, tables diet.Tables, primary, secondary diet.Constitution) []string {
	pool := MedicinalPool(tables, primary, secondary)
	k := rng.Intn(3) + 1
	n := min(k, len(pool))

	sample := make([]string, 0, n)
	for _, i := range rng.Perm(len(pool))[:n] {
		sample = append(sample, pool[i])
	}
	return sample
}
