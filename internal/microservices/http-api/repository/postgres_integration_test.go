//go:build integration

package repository_test

import (
	"testing"

	"yamdb/database/dbtest"

	"github.com/stretchr/testify/suite"
)

// TestRepositorySuite_Postgres runs the repository suite against a real
// postgres so unique indexes, check constraints and cascades are exercised
// through the pgx driver.
func TestRepositorySuite_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	dsn := dbtest.StartPostgres(t)
	suite.Run(t, &RepositorySuite{newDB: dbtest.NewPostgres(dsn)})
}
