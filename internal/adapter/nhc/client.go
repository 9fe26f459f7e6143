package nhc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
)

// matchTolerance is how far a track point's timestamp may fall from UTC
// midnight of a query date and still count as a match for that date.
const matchTolerance = 24 * time.Hour

// Client serves historical hurricane reports from the HURDAT2 best-track
// file. The file covers all years up to its release cutoff, so one download
// answers every historical query; the parsed tracks are memoized with a TTL.
type Client struct {
	hurdatURL  string
	httpClient *http.Client
	cacheTTL   time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger

	mu        sync.Mutex
	tracks    []TrackPoint
	fetchedAt time.Time
}

// NewClient creates a HURDAT2 client. cacheTTL bounds how long the parsed
// file is reused before re-downloading.
func NewClient(hurdatURL string, timeout, cacheTTL time.Duration, m *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		hurdatURL:  hurdatURL,
		httpClient: &http.Client{Timeout: timeout},
		cacheTTL:   cacheTTL,
		clock:      clockwork.NewRealClock(),
		metrics:    m,
		logger:     logger,
	}
}

// SetClock swaps the time source used for cache expiry. Tests inject a fake
// clock; pass nil to reset to real time.
func (c *Client) SetClock(clk clockwork.Clock) {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	c.clock = clk
}

// ReportsForDates returns hurricane reports whose track timestamp falls
// within 24 hours of UTC midnight of any of the given dates. Each track
// point is emitted at most once even when it matches several dates.
func (c *Client) ReportsForDates(ctx context.Context, dates []time.Time) ([]domain.StormReport, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	tracks, err := c.allTracks(ctx)
	if err != nil {
		return nil, err
	}

	var reports []domain.StormReport
	for _, point := range tracks {
		if matchesAny(point.Time, dates) {
			reports = append(reports, point.Report())
		}
	}
	return reports, nil
}

func matchesAny(t time.Time, dates []time.Time) bool {
	for _, d := range dates {
		midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		delta := t.Sub(midnight)
		if delta < 0 {
			delta = -delta
		}
		if delta <= matchTolerance {
			return true
		}
	}
	return false
}

// allTracks returns the parsed best-track file, downloading it when the
// memoized copy is absent or older than the TTL. A failed refresh falls back
// to the stale copy when one exists.
func (c *Client) allTracks(ctx context.Context) ([]TrackPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.tracks != nil && now.Sub(c.fetchedAt) < c.cacheTTL {
		return c.tracks, nil
	}

	data, err := c.download(ctx)
	if err != nil {
		c.metrics.FetchesTotal.WithLabelValues("hurdat", "error").Inc()
		if c.tracks != nil {
			c.logger.Warn("hurdat refresh failed, serving stale tracks", "error", err)
			return c.tracks, nil
		}
		return nil, err
	}

	tracks, err := ParseHURDAT2(bytes.NewReader(data))
	if err != nil {
		c.metrics.FetchesTotal.WithLabelValues("hurdat", "error").Inc()
		return nil, fmt.Errorf("parse hurdat2: %w", err)
	}
	c.metrics.FetchesTotal.WithLabelValues("hurdat", "success").Inc()

	c.tracks = tracks
	c.fetchedAt = now
	return c.tracks, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues("hurdat").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hurdatURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create hurdat request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download hurdat2: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download hurdat2: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read hurdat2: %w", err)
	}
	return data, nil
}
