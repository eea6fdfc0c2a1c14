package testutils

import (
	"testing"

	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
)

// TestConfig returns the default configuration with tracing and rate
// limiting off and an in-memory database
func TestConfig(t testing.TB) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.App.Environment = "test"
	cfg.Database.Path = ""
	cfg.Monitoring.EnableTracing = false
	cfg.RateLimit.Enable = false
	return cfg
}
