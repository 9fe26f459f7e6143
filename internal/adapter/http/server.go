// Package http exposes the aggregation pipeline over HTTP for the web
// application, plus health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stormsignal/storm-report-service/internal/adapter/kafka"
	"github.com/stormsignal/storm-report-service/internal/domain"
	"github.com/stormsignal/storm-report-service/internal/observability"
)

// ReportProvider answers storm-report queries.
type ReportProvider interface {
	StormReports(ctx context.Context, date time.Time, lat, lon float64) ([]domain.StormReport, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ResultPublisher forwards aggregation results downstream. Optional.
type ResultPublisher interface {
	PublishResult(ctx context.Context, event kafka.ResultEvent) error
}

// Server exposes the report query API.
type Server struct {
	httpServer *http.Server
	provider   ReportProvider
	publisher  ResultPublisher
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the report route and the
// /healthz, /readyz, and /metrics operational routes. publisher may be nil.
func NewServer(addr string, provider ReportProvider, ready ReadinessChecker, publisher ResultPublisher, m *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		provider:  provider,
		publisher: publisher,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.MetricsMiddleware(m))

	r.Get("/v1/storm-reports", s.handleStormReports)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleStormReports serves GET /v1/storm-reports?date=YYYY-MM-DD&lat=&lon=.
// An empty report list is a successful response; only a total aggregation
// failure maps to a 502.
func (s *Server) handleStormReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD or RFC 3339")
		return
	}
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "invalid lat/lon")
		return
	}

	reports, err := s.provider.StormReports(r.Context(), date, lat, lon)
	if err != nil {
		s.logger.Error("storm report aggregation failed", "error", err)
		writeError(w, http.StatusBadGateway, "report lookup failed")
		return
	}

	if s.publisher != nil {
		event := kafka.ResultEvent{
			QueryDate:   date,
			Lat:         lat,
			Lon:         lon,
			Reports:     reports,
			GeneratedAt: domain.Now().UTC(),
		}
		if err := s.publisher.PublishResult(r.Context(), event); err != nil {
			// Publishing feeds the notification flow; the lookup itself succeeded.
			s.logger.Warn("publish aggregation result failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing date")
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
