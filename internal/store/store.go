// Package store persists and queries operational hurricane positions in
// PostgreSQL. It covers the years the static HURDAT2 file does not: rows are
// written by the live advisory updater and read by the aggregation path for
// post-cutoff query dates.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
)

// Store provides persistence operations for hurricane positions.
type Store struct {
	pool    *pgxpool.Pool
	metrics *observability.Metrics
}

// New creates a Store with the given connection pool and metrics.
func New(pool *pgxpool.Pool, m *observability.Metrics) *Store {
	return &Store{pool: pool, metrics: m}
}

func (s *Store) observeQuery(operation string, start time.Time) {
	s.metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// UpsertPosition inserts a position fix, replacing any existing fix for the
// same storm and observation time. Re-running an advisory refresh is safe.
func (s *Store) UpsertPosition(ctx context.Context, p domain.HurricanePosition) error {
	defer s.observeQuery("upsert", time.Now())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hurricane_positions (name, observed_at, lat, lon, wind_kt, category, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (name, observed_at) DO UPDATE
		SET lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon,
		    wind_kt = EXCLUDED.wind_kt,
		    category = EXCLUDED.category,
		    updated_at = now()`,
		p.Name, p.Time, p.Lat, p.Lon, p.WindKt, p.Category,
	)
	if err != nil {
		return fmt.Errorf("upsert hurricane position: %w", err)
	}
	return nil
}

// PositionsInRange returns all positions observed in [from, to], ascending by
// observation time.
func (s *Store) PositionsInRange(ctx context.Context, from, to time.Time) ([]domain.HurricanePosition, error) {
	defer s.observeQuery("range", time.Now())
	rows, err := s.pool.Query(ctx, `
		SELECT name, observed_at, lat, lon, wind_kt, category
		FROM hurricane_positions
		WHERE observed_at BETWEEN $1 AND $2
		ORDER BY observed_at`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query hurricane positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.HurricanePosition
	for rows.Next() {
		var p domain.HurricanePosition
		if err := rows.Scan(&p.Name, &p.Time, &p.Lat, &p.Lon, &p.WindKt, &p.Category); err != nil {
			return nil, fmt.Errorf("scan hurricane position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hurricane positions: %w", err)
	}
	return positions, nil
}

// CheckReadiness reports whether the database is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
