package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/stormsignal/storm-report-service/internal/adapter/http"
	"github.com/stormsignal/storm-report-service/internal/adapter/kafka"
	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	reports []domain.StormReport
	err     error
	date    time.Time
	lat     float64
	lon     float64
}

func (m *mockProvider) StormReports(_ context.Context, date time.Time, lat, lon float64) ([]domain.StormReport, error) {
	m.date, m.lat, m.lon = date, lat, lon
	return m.reports, m.err
}

type mockReady struct{ err error }

func (m *mockReady) CheckReadiness(context.Context) error { return m.err }

type mockPublisher struct {
	events []kafka.ResultEvent
	err    error
}

func (m *mockPublisher) PublishResult(_ context.Context, event kafka.ResultEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestServer(provider *mockProvider, ready *mockReady, publisher httpadapter.ResultPublisher) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", provider, ready, publisher, observability.NewMetricsForTesting(), logger)
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestStormReportsEndpoint(t *testing.T) {
	wind := 75.0
	provider := &mockProvider{reports: []domain.StormReport{
		{Type: domain.ReportWind, Time: time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC), Lat: 35.1, Lon: -97.1, Details: domain.Details{WindSpeedMph: &wind}},
	}}
	srv := newTestServer(provider, &mockReady{}, nil)

	rec := get(t, srv, "/v1/storm-reports?date=2024-06-15&lat=35.0&lon=-97.0")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Reports []domain.StormReport `json:"reports"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Reports, 1)
	assert.Equal(t, domain.ReportWind, body.Reports[0].Type)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), provider.date)
	assert.Equal(t, 35.0, provider.lat)
	assert.Equal(t, -97.0, provider.lon)
}

func TestStormReportsAcceptsRFC3339Date(t *testing.T) {
	provider := &mockProvider{}
	srv := newTestServer(provider, &mockReady{}, nil)

	rec := get(t, srv, "/v1/storm-reports?date=2024-06-15T12:00:00Z&lat=35&lon=-97")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), provider.date)
}

func TestStormReportsEmptyResultIsOK(t *testing.T) {
	srv := newTestServer(&mockProvider{}, &mockReady{}, nil)

	rec := get(t, srv, "/v1/storm-reports?date=2024-06-15&lat=0&lon=-160")
	require.Equal(t, 200, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 0, body["count"])
}

func TestStormReportsValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing date", "/v1/storm-reports?lat=35&lon=-97"},
		{"malformed date", "/v1/storm-reports?date=06-15-2024&lat=35&lon=-97"},
		{"missing lat", "/v1/storm-reports?date=2024-06-15&lon=-97"},
		{"non-numeric lon", "/v1/storm-reports?date=2024-06-15&lat=35&lon=west"},
		{"lat out of range", "/v1/storm-reports?date=2024-06-15&lat=91&lon=-97"},
		{"lon out of range", "/v1/storm-reports?date=2024-06-15&lat=35&lon=181"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&mockProvider{}, &mockReady{}, nil)
			rec := get(t, srv, tt.target)
			assert.Equal(t, 400, rec.Code)
		})
	}
}

func TestStormReportsProviderFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("all sources failed")}
	srv := newTestServer(provider, &mockReady{}, nil)

	rec := get(t, srv, "/v1/storm-reports?date=2024-06-15&lat=35&lon=-97")
	require.Equal(t, 502, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "report lookup failed", body["error"])
}

func TestStormReportsPublishesResult(t *testing.T) {
	provider := &mockProvider{reports: []domain.StormReport{
		{Type: domain.ReportTornado, Lat: 35.1, Lon: -97.1},
	}}
	publisher := &mockPublisher{}
	srv := newTestServer(provider, &mockReady{}, publisher)

	rec := get(t, srv, "/v1/storm-reports?date=2024-06-15&lat=35.0&lon=-97.0")
	require.Equal(t, 200, rec.Code)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), event.QueryDate)
	assert.Equal(t, 35.0, event.Lat)
	assert.Equal(t, -97.0, event.Lon)
	assert.Len(t, event.Reports, 1)
	assert.False(t, event.GeneratedAt.IsZero())
}

func TestStormReportsPublishFailureIsAbsorbed(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("broker unreachable")}
	srv := newTestServer(&mockProvider{}, &mockReady{}, publisher)

	rec := get(t, srv, "/v1/storm-reports?date=2024-06-15&lat=35&lon=-97")
	assert.Equal(t, 200, rec.Code, "a failed publish must not fail the request")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&mockProvider{}, &mockReady{}, nil)

	rec := get(t, srv, "/healthz")
	require.Equal(t, 200, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(&mockProvider{}, &mockReady{}, nil)
		rec := get(t, srv, "/readyz")
		assert.Equal(t, 200, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := newTestServer(&mockProvider{}, &mockReady{err: errors.New("no aggregation completed yet")}, nil)
		rec := get(t, srv, "/readyz")
		require.Equal(t, 503, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not ready", body["status"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockProvider{}, &mockReady{}, nil)
	rec := get(t, srv, "/metrics")
	assert.Equal(t, 200, rec.Code)
}
