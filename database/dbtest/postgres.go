//go:build integration

package dbtest

import (
	"context"
	"testing"
	"time"

	"yamdb/database"
	"yamdb/internal/logging"
	"yamdb/internal/microservices/http-api/models"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// StartPostgres runs a disposable postgres container and returns its DSN.
// The container is terminated when t finishes.
func StartPostgres(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("yamdb"),
		postgres.WithUsername("yamdb"),
		postgres.WithPassword("yamdb"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	return dsn
}

// NewPostgres returns an opener that hands every test an empty, migrated schema
// in the database behind dsn.
func NewPostgres(dsn string) func(t testing.TB) *gorm.DB {
	return func(t testing.TB) *gorm.DB {
		t.Helper()
		logger := logging.Discard()

		db, err := database.Connect(dsn, logger)
		if err != nil {
			t.Fatalf("connect postgres: %v", err)
		}
		t.Cleanup(func() { database.Close(db) })

		// reverse dependency order
		all := models.All()
		for i := len(all) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(all[i]); err != nil {
				t.Fatalf("drop table: %v", err)
			}
		}
		if err := database.Migrate(db, logger); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		return db
	}
}
