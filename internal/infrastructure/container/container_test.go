package container_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shiliao/dietplan/internal/infrastructure/container"
	"github.com/shiliao/dietplan/internal/ports/inbound"
	"github.com/shiliao/dietplan/internal/ports/outbound"
	"github.com/shiliao/dietplan/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
)

func writeConfig(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
app:
  environment: test
  log_level: warn
database:
  driver: sqlite
  path: %s
  seed: true
catalog:
  source: %s
monitoring:
  enable_tracing: false
`, filepath.Join(dir, "dietplan.db"), source)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestModule_GraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(
		fx.NopLogger,
		fx.Supply(container.ConfigPath(writeConfig(t, "file"))),
		container.Module,
	)
	assert.NoError(t, err)
}

func TestCoreModule_DatabaseCatalog_ShouldGeneratePlan(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		service  inbound.PlanService
		catalogs outbound.CatalogProvider
	)
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(container.ConfigPath(writeConfig(t, "database"))),
		container.CoreModule,
		fx.Populate(&service, &catalogs),
	)
	app.RequireStart()
	defer app.RequireStop()

	c, err := catalogs.Catalog(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, c.GetByCategory("谷类"))

	seed := int64(5)
	plan, err := service.GeneratePlan(context.Background(), inbound.GeneratePlanCommand{
		Profile: testutils.ReferenceCommand(),
		Seed:    &seed,
	})
	require.NoError(t, err)
	testutils.NewPlanAssertions(t).CompleteWeek(plan.Menu)
}
