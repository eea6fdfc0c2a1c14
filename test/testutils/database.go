// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"fmt"
	"testing"

	"github.com/shiliao/dietplan/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestDatabase provides an in-memory SQLite database with the catalog schema
type TestDatabase struct {
	DB *gorm.DB
	t  testing.TB
}

// SetupTestDatabase creates a migrated, empty in-memory database closed at test end
func SetupTestDatabase(t testing.TB) *TestDatabase {
	t.Helper()

	db, err := sqlite.SetupDatabase("", nil)
	require.NoError(t, err)

	td := &TestDatabase{DB: db, t: t}
	t.Cleanup(td.Cleanup)
	return td
}

// SeedCatalog loads the embedded catalog
func (td *TestDatabase) SeedCatalog() {
	td.t.Helper()
	require.NoError(td.t, sqlite.SeedDatabase(context.Background(), td.DB, zap.NewNop()))
}

// CountRecords counts the rows of table
func (td *TestDatabase) CountRecords(table string) int64 {
	td.t.Helper()
	var n int64
	require.NoError(td.t, td.DB.Table(table).Count(&n).Error, fmt.Sprintf("count %s", table))
	return n
}

// Cleanup closes the database
func (td *TestDatabase) Cleanup() {
	sqlDB, err := td.DB.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}
