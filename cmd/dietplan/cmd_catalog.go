package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/shiliao/dietplan/internal/domain/diet"
	"github.com/shiliao/dietplan/internal/infrastructure/catalog"
	gormRepo "github.com/shiliao/dietplan/internal/infrastructure/persistence/gorm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFile string
	nutrient   string
	role       string
	top        int
	stored     bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and import the food catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the stored catalog with a food table, helper data or YAML file",
	Args:  cobra.NoArgs,
	RunE:  runCatalogImport,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-category counts and optional nutrient rankings",
	Args:  cobra.NoArgs,
	RunE:  runCatalogStats,
}

func init() {
	catalogImportCmd.Flags().StringVar(&importFile, "file", "", "catalog file (.json, .yaml) (required)")
	_ = catalogImportCmd.MarkFlagRequired("file")

	catalogStatsCmd.Flags().StringVar(&nutrient, "nutrient", "", "rank foods by this nutrient, e.g. "+catalog.NutrientProtein)
	catalogStatsCmd.Flags().StringVar(&role, "role", "", "limit the ranking to one meal role, e.g. "+string(diet.RoleProtein))
	catalogStatsCmd.Flags().IntVar(&top, "top", 10, "number of ranked foods to show")
	catalogStatsCmd.Flags().BoolVar(&stored, "stored", false, "count rows in the database instead of the loaded catalog")
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	snapshot, err := catalog.LoadFile(importFile)
	if err != nil {
		return err
	}
	if snapshot.ItemCount() == 0 {
		return fmt.Errorf("%s contains no foods", importFile)
	}
	catalog.ApplyAffinityTags(snapshot, diet.DefaultTables())

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var (
		repo     *gormRepo.CatalogRepository
		provider *catalog.Provider
	)
	stop, err := startCore(ctx, &repo, &provider)
	if err != nil {
		return err
	}
	defer stop()

	if err := repo.ReplaceAll(ctx, snapshot); err != nil {
		return err
	}
	if err := provider.Invalidate(ctx); err != nil {
		log.Warn("Failed to invalidate cached catalog", zap.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d foods from %s\n", snapshot.ItemCount(), importFile)
	return nil
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	var roleCategories []diet.Category
	if role != "" {
		if roleCategories = catalog.CategoriesOf(diet.Role(role)); len(roleCategories) == 0 {
			return fmt.Errorf("unknown role %q", role)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var (
		repo     *gormRepo.CatalogRepository
		provider *catalog.Provider
	)
	stop, err := startCore(ctx, &repo, &provider)
	if err != nil {
		return err
	}
	defer stop()

	out := cmd.OutOrStdout()
	if stored {
		counts, err := repo.CountByCategory(ctx)
		if err != nil {
			return err
		}
		for _, category := range slices.Sorted(maps.Keys(counts)) {
			fmt.Fprintf(out, "%s\t%d\n", category, counts[category])
		}
		return nil
	}

	c, err := provider.Load(ctx)
	if err != nil {
		return err
	}
	counts := c.Counts()
	for _, category := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(out, "%s\t%d\n", category, counts[category])
	}
	fmt.Fprintf(out, "total\t%d\n", c.Len())

	byRole := make(map[diet.Role]int)
	for category, n := range counts {
		if r, ok := catalog.RoleOf(category); ok {
			byRole[r] += n
		}
	}
	fmt.Fprintln(out, "\nby role")
	for _, r := range slices.Sorted(maps.Keys(byRole)) {
		fmt.Fprintf(out, "%s\t%d\n", r, byRole[r])
	}

	if nutrient == "" {
		return nil
	}
	items := c.AllItems()
	if roleCategories != nil {
		items = slices.DeleteFunc(items, func(item diet.FoodItem) bool {
			return !slices.Contains(roleCategories, item.Category)
		})
	}
	fmt.Fprintf(out, "\ntop %d by %s\n", top, nutrient)
	for i, v := range catalog.RankByNutrient(items, nutrient, top) {
		fmt.Fprintf(out, "%2d. %s\t%g\n", i+1, v.Name, v.Value)
	}
	return nil
}
