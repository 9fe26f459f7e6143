package spc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
)

// BlobCache is the key-value blob store used to cache downloaded bulletins,
// keyed by bulletin filename. The second Get return reports whether the key
// was present.
type BlobCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Fetcher retrieves and parses SPC daily bulletins, reading through a blob
// cache so each day's CSV is downloaded at most once.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	cache      BlobCache
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates a bulletin fetcher. Pass a nil cache to always download.
func NewFetcher(baseURL string, timeout time.Duration, cache BlobCache, m *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		metrics:    m,
		logger:     logger,
	}
}

// ReportsForDay returns all storm reports from one day's bulletin. Cache
// read errors degrade to a download; download errors are returned for the
// caller to absorb as zero reports for the day.
func (f *Fetcher) ReportsForDay(ctx context.Context, day time.Time) ([]domain.StormReport, error) {
	key := BulletinFilename(day)

	if f.cache != nil {
		data, ok, err := f.cache.Get(ctx, key)
		if err != nil {
			f.logger.Warn("bulletin cache read failed, falling back to download", "key", key, "error", err)
		} else if ok {
			f.metrics.BulletinCache.WithLabelValues("hit").Inc()
			return ParseDailyBulletin(day, data, f.logger), nil
		} else {
			f.metrics.BulletinCache.WithLabelValues("miss").Inc()
		}
	}

	data, err := f.download(ctx, key)
	if err != nil {
		f.metrics.FetchesTotal.WithLabelValues("spc", "error").Inc()
		return nil, err
	}
	f.metrics.FetchesTotal.WithLabelValues("spc", "success").Inc()

	if f.cache != nil {
		// Re-fetching a day overwrites the same key with equivalent content,
		// so duplicate writes are safe.
		if err := f.cache.Put(ctx, key, data); err != nil {
			f.logger.Warn("bulletin cache write failed", "key", key, "error", err)
		}
	}

	return ParseDailyBulletin(day, data, f.logger), nil
}

func (f *Fetcher) download(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() {
		f.metrics.FetchDuration.WithLabelValues("spc").Observe(time.Since(start).Seconds())
	}()

	url := f.baseURL + "/" + key
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create bulletin request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download bulletin %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download bulletin %s: status %d", key, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bulletin %s: %w", key, err)
	}
	return data, nil
}
