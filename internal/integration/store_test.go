//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stormsignal/storm-report-service/internal/database"
	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
	"github.com/stormsignal/storm-report-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context, t *testing.T) (string, *tcpostgres.PostgresContainer) {
	t.Helper()
	pg, err := tcpostgres.Run(ctx, "postgres:16",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "start postgres")

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "connection string")
	return dsn, pg
}

// setupStore starts Postgres, runs migrations, and returns a ready store.
func setupStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	dsn, pg := startPostgres(ctx, t)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	require.NoError(t, database.RunMigrations(dsn))

	pool, err := database.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return store.New(pool, observability.NewMetricsForTesting())
}

func position(name string, at time.Time, windKt int) domain.HurricanePosition {
	return domain.HurricanePosition{
		Name:     name,
		Time:     at,
		Lat:      27.5,
		Lon:      -88.9,
		WindKt:   windKt,
		Category: domain.SaffirSimpson(windKt),
	}
}

func TestStoreUpsertAndRangeQuery(t *testing.T) {
	ctx := context.Background()
	s := setupStore(ctx, t)

	base := time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)
	fixes := []domain.HurricanePosition{
		position("MILTON", base.Add(6*time.Hour), 120),
		position("MILTON", base.Add(12*time.Hour), 155),
		position("MILTON", base.Add(18*time.Hour), 145),
		position("KIRK", base.Add(9*time.Hour), 95),
	}
	for _, p := range fixes {
		require.NoError(t, s.UpsertPosition(ctx, p))
	}

	// Full-day range returns every fix ascending by observation time.
	got, err := s.PositionsInRange(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Time.Before(got[i-1].Time), "positions must be ascending")
	}

	// Narrow range excludes the later fixes.
	got, err = s.PositionsInRange(ctx, base, base.Add(10*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MILTON", got[0].Name)
	assert.Equal(t, "KIRK", got[1].Name)

	// Empty range.
	got, err = s.PositionsInRange(ctx, base.Add(48*time.Hour), base.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreUpsertReplacesSameObservation(t *testing.T) {
	ctx := context.Background()
	s := setupStore(ctx, t)

	at := time.Date(2024, 10, 7, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertPosition(ctx, position("MILTON", at, 120)))

	// A corrected advisory for the same storm and time overwrites the row.
	updated := position("MILTON", at, 155)
	updated.Lat = 26.8
	require.NoError(t, s.UpsertPosition(ctx, updated))

	got, err := s.PositionsInRange(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 155, got[0].WindKt)
	assert.Equal(t, 5, got[0].Category)
	assert.InDelta(t, 26.8, got[0].Lat, 1e-9)
}

func TestStoreReadiness(t *testing.T) {
	ctx := context.Background()
	s := setupStore(ctx, t)
	assert.NoError(t, s.CheckReadiness(ctx))
}
