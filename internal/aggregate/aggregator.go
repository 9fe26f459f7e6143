// Package aggregate coordinates the per-source fetchers into one storm-report
// query: build the date window, fan out across sources and dates, distance-
// filter, and merge.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// positionTolerance mirrors the ±24 h band the HURDAT2 path uses to match a
// track timestamp to a query date. The operational-store query widens its
// range by the same amount.
const positionTolerance = 24 * time.Hour

// SPCSource fetches one day's tornado/wind/hail reports.
type SPCSource interface {
	ReportsForDay(ctx context.Context, day time.Time) ([]domain.StormReport, error)
}

// HurricaneHistory serves hurricane reports for dates at or before the
// HURDAT2 cutoff year.
type HurricaneHistory interface {
	ReportsForDates(ctx context.Context, dates []time.Time) ([]domain.StormReport, error)
}

// PositionReader queries the operational hurricane store for dates after the
// cutoff year.
type PositionReader interface {
	PositionsInRange(ctx context.Context, from, to time.Time) ([]domain.HurricanePosition, error)
}

// Config holds the tunables of one aggregator instance.
type Config struct {
	DaysBefore       int
	DaysAfter        int
	MaxDistanceMiles float64
	HurdatCutoffYear int
}

// Aggregator answers storm-report queries by fanning out to the SPC and
// hurricane sources concurrently and merging the distance-filtered results.
type Aggregator struct {
	cfg       Config
	spc       SPCSource
	history   HurricaneHistory
	positions PositionReader // nil when no operational store is configured
	metrics   *observability.Metrics
	logger    *slog.Logger
	ready     atomic.Bool
}

// New creates an Aggregator. positions may be nil; post-cutoff hurricane
// dates then contribute no reports.
func New(cfg Config, spc SPCSource, history HurricaneHistory, positions PositionReader, m *observability.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		cfg:       cfg,
		spc:       spc,
		history:   history,
		positions: positions,
		metrics:   m,
		logger:    logger,
	}
}

// CheckReadiness returns nil once at least one aggregation has completed.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("no aggregation completed yet")
	}
	return nil
}

// StormReports returns every report within the configured radius of
// (lat, lon) across the date window centered on date. The list is unsorted;
// grouping and ordering are presentation concerns of the caller.
//
// Partial failures (a single date or a single source) are absorbed and only
// reduce the result. An error is returned when every source fails.
func (a *Aggregator) StormReports(ctx context.Context, date time.Time, lat, lon float64) ([]domain.StormReport, error) {
	start := time.Now()
	dates := domain.DateRange(date, a.cfg.DaysBefore, a.cfg.DaysAfter)

	var (
		spcReports, hurricaneReports []domain.StormReport
		spcErr, hurricaneErr         error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		spcReports, spcErr = a.spcPath(gctx, dates, lat, lon)
		return nil
	})
	g.Go(func() error {
		hurricaneReports, hurricaneErr = a.hurricanePath(gctx, dates, lat, lon)
		return nil
	})
	_ = g.Wait()

	if spcErr != nil && hurricaneErr != nil {
		a.metrics.AggregationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("aggregate storm reports: %w", errors.Join(spcErr, hurricaneErr))
	}
	if spcErr != nil {
		a.logger.Warn("spc source failed, returning hurricane reports only", "error", spcErr)
	}
	if hurricaneErr != nil {
		a.logger.Warn("hurricane source failed, returning spc reports only", "error", hurricaneErr)
	}

	combined := make([]domain.StormReport, 0, len(spcReports)+len(hurricaneReports))
	combined = append(combined, spcReports...)
	combined = append(combined, hurricaneReports...)

	a.metrics.AggregationsTotal.WithLabelValues("success").Inc()
	a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	a.metrics.ReportsReturned.Observe(float64(len(combined)))
	a.ready.Store(true)

	return combined, nil
}

// spcPath fetches every date in the window concurrently. A failed date
// contributes zero reports; only all dates failing is an error.
func (a *Aggregator) spcPath(ctx context.Context, dates []time.Time, lat, lon float64) ([]domain.StormReport, error) {
	perDate := make([][]domain.StormReport, len(dates))
	var failed atomic.Int64

	g := new(errgroup.Group)
	for i, day := range dates {
		g.Go(func() error {
			reports, err := a.spc.ReportsForDay(ctx, day)
			if err != nil {
				failed.Add(1)
				a.logger.Warn("spc fetch failed for date, contributing zero reports",
					"date", day.Format(time.DateOnly), "error", err)
				return nil
			}
			perDate[i] = reports
			return nil
		})
	}
	_ = g.Wait()

	if len(dates) > 0 && failed.Load() == int64(len(dates)) {
		return nil, fmt.Errorf("all %d spc bulletin fetches failed", len(dates))
	}

	var merged []domain.StormReport
	for _, reports := range perDate {
		merged = append(merged, reports...)
	}
	return domain.FilterByRadius(merged, lat, lon, a.cfg.MaxDistanceMiles), nil
}

// hurricanePath splits the window by the cutoff year: the HURDAT2 file covers
// dates at or before the cutoff, the operational store covers the rest.
func (a *Aggregator) hurricanePath(ctx context.Context, dates []time.Time, lat, lon float64) ([]domain.StormReport, error) {
	var historical, recent []time.Time
	for _, d := range dates {
		if d.Year() <= a.cfg.HurdatCutoffYear {
			historical = append(historical, d)
		} else {
			recent = append(recent, d)
		}
	}

	var (
		reports  []domain.StormReport
		errs     []error
		attempts int
	)

	if len(historical) > 0 {
		attempts++
		r, err := a.history.ReportsForDates(ctx, historical)
		if err != nil {
			errs = append(errs, fmt.Errorf("hurdat history: %w", err))
			a.logger.Warn("hurdat history fetch failed", "error", err)
		} else {
			reports = append(reports, r...)
		}
	}

	if len(recent) > 0 {
		if a.positions == nil {
			a.logger.Debug("no operational hurricane store configured, skipping post-cutoff dates")
		} else {
			attempts++
			from := recent[0].Add(-positionTolerance)
			to := recent[len(recent)-1].Add(positionTolerance)
			positions, err := a.positions.PositionsInRange(ctx, from, to)
			if err != nil {
				errs = append(errs, fmt.Errorf("hurricane position store: %w", err))
				a.logger.Warn("hurricane position query failed", "error", err)
			} else {
				for _, p := range positions {
					reports = append(reports, p.Report())
				}
			}
		}
	}

	if attempts > 0 && len(errs) == attempts {
		return nil, errors.Join(errs...)
	}
	return domain.FilterByRadius(reports, lat, lon, a.cfg.MaxDistanceMiles), nil
}
