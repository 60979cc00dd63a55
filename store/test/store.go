// Package test provides a shared store harness for driver-backed tests.
//
// Tests run against SQLite in a per-test temp directory by default. Set
// SHOPSMART_TEST_POSTGRES_DSN to point the harness at a PostgreSQL
// instance instead and the same suite exercises the postgres driver.
package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopsmart/shopsmart/internal/profile"
	"github.com/shopsmart/shopsmart/store"
	"github.com/shopsmart/shopsmart/store/db"
)

// NewTestingStore returns a migrated store backed by a fresh database.
// The store and its driver are closed automatically when the test ends.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	prof := testProfile(t)
	driver, err := db.NewDBDriver(prof)
	if err != nil {
		t.Fatalf("create db driver: %v", err)
	}
	if err := driver.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.New(driver, prof)
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Logf("close store: %v", err)
		}
	})
	return st
}

func testProfile(t *testing.T) *profile.Profile {
	t.Helper()

	if dsn := os.Getenv("SHOPSMART_TEST_POSTGRES_DSN"); dsn != "" {
		return &profile.Profile{
			Mode:   "dev",
			Driver: "postgres",
			DSN:    dsn,
		}
	}

	dir := t.TempDir()
	return &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "shopsmart_test.db"),
	}
}
