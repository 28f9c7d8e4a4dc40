// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"landestate/internal/db" // Schema migration
	"testing"                // Test lifecycle

	"gorm.io/driver/sqlite" // SQLite driver
	"gorm.io/gorm"          // GORM ORM library
	"gorm.io/gorm/logger"   // Silence SQL logging
)

// Open returns a migrated in-memory SQLite database scoped to one test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1) // every connection to :memory: is a separate database
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
