// Package databasetest starts a disposable PostgreSQL for repository tests.
package databasetest

import (
	"context"
	"testing"

	"blogging/internal/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const image = "postgres:16-alpine"

// New starts a migrated PostgreSQL container for the duration of t.
// The test is skipped in -short mode or when no container runtime is reachable.
func New(t *testing.T) database.Service {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("blogging"),
		postgres.WithUsername("blogging"),
		postgres.WithPassword("blogging"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))

	return db
}

// Reset empties every table so subtests start from a clean schema
func Reset(t *testing.T, db database.Service) {
	t.Helper()

	_, err := db.Exec(context.Background(), `TRUNCATE sessions, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}
