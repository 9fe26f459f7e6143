package nhc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
)

// PositionWriter persists live storm positions. Implemented by the
// operational hurricane store.
type PositionWriter interface {
	UpsertPosition(ctx context.Context, p domain.HurricanePosition) error
}

// stormTitleRe extracts the storm name from an advisory title, e.g.
// "Hurricane MILTON Public Advisory Number 12" -> "MILTON".
var stormTitleRe = regexp.MustCompile(`(?i)^(?:hurricane|tropical storm|tropical depression|post-tropical cyclone)\s+([A-Za-z-]+)`)

// Updater polls the NHC advisory index feed and refreshes active-storm
// positions into the operational store. One storm's bad advisory never aborts
// the cycle; it is logged and skipped.
type Updater struct {
	feedURL    string
	feedParser *gofeed.Parser
	httpClient *http.Client
	store      PositionWriter
	interval   time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewUpdater creates a live advisory updater polling feedURL every interval.
func NewUpdater(feedURL string, interval, timeout time.Duration, store PositionWriter, m *observability.Metrics, logger *slog.Logger) *Updater {
	client := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Updater{
		feedURL:    feedURL,
		feedParser: parser,
		httpClient: client,
		store:      store,
		interval:   interval,
		metrics:    m,
		logger:     logger,
	}
}

// Run polls until the context is cancelled. The first refresh happens
// immediately so a restart does not wait a full interval.
func (u *Updater) Run(ctx context.Context) error {
	u.logger.Info("advisory updater started", "feed", u.feedURL, "interval", u.interval)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		if err := u.RefreshOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			u.logger.Error("advisory refresh failed", "error", err)
		}

		select {
		case <-ctx.Done():
			u.logger.Info("advisory updater stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// RefreshOnce fetches the advisory index and upserts a position for every
// storm whose advisory parses. Returns an error only when the index itself
// cannot be fetched.
func (u *Updater) RefreshOnce(ctx context.Context) error {
	feed, err := u.feedParser.ParseURLWithContext(u.feedURL, ctx)
	if err != nil {
		u.metrics.FetchesTotal.WithLabelValues("nhc_feed", "error").Inc()
		return fmt.Errorf("fetch advisory index: %w", err)
	}
	u.metrics.FetchesTotal.WithLabelValues("nhc_feed", "success").Inc()

	for _, item := range feed.Items {
		if !strings.Contains(item.Title, "Public Advisory") {
			continue
		}

		if err := u.refreshStorm(ctx, item); err != nil {
			u.metrics.AdvisoryUpdates.WithLabelValues("skipped").Inc()
			u.logger.Warn("skipping storm advisory", "title", item.Title, "error", err)
			continue
		}
		u.metrics.AdvisoryUpdates.WithLabelValues("success").Inc()
	}
	return nil
}

func (u *Updater) refreshStorm(ctx context.Context, item *gofeed.Item) error {
	name := stormName(item.Title)
	if name == "" {
		return fmt.Errorf("no storm name in title %q", item.Title)
	}

	text, err := u.fetchAdvisoryText(ctx, item.Link)
	if err != nil {
		return err
	}

	advisory, err := ParseAdvisory(text)
	if err != nil {
		return err
	}

	observedAt := domain.Now().UTC().Truncate(time.Hour)
	if item.PublishedParsed != nil {
		observedAt = item.PublishedParsed.UTC()
	}

	windKt := advisory.WindKt()
	return u.store.UpsertPosition(ctx, domain.HurricanePosition{
		Name:     name,
		Time:     observedAt,
		Lat:      advisory.Lat,
		Lon:      advisory.Lon,
		WindKt:   windKt,
		Category: domain.SaffirSimpson(windKt),
	})
}

func (u *Updater) fetchAdvisoryText(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("create advisory request: %w", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch advisory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch advisory: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read advisory: %w", err)
	}
	return string(body), nil
}

func stormName(title string) string {
	m := stormTitleRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
