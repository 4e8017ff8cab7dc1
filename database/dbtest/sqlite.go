// Package dbtest provides throwaway databases for repository and service tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"yamdb/database"
	"yamdb/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seq atomic.Int64

// NewSQLite returns a migrated in-memory database private to the test.
// Foreign keys are enforced so cascades behave like postgres.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:yamdb_test_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	logger := logging.Discard()

	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig(logger))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Prepare(db); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := database.Migrate(db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
