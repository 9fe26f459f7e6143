package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/stormsignal/storm-report-service/internal/adapter/blob"
	httpadapter "github.com/stormsignal/storm-report-service/internal/adapter/http"
	kafkaadapter "github.com/stormsignal/storm-report-service/internal/adapter/kafka"
	"github.com/stormsignal/storm-report-service/internal/adapter/nhc"
	"github.com/stormsignal/storm-report-service/internal/adapter/spc"
	"github.com/stormsignal/storm-report-service/internal/aggregate"
	"github.com/stormsignal/storm-report-service/internal/config"
	"github.com/stormsignal/storm-report-service/internal/database"
	"github.com/stormsignal/storm-report-service/internal/observability"
	"github.com/stormsignal/storm-report-service/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Operational hurricane store (post-cutoff years). Optional.
	var positionStore *store.Store
	if cfg.DatabaseURL != "" {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error("run migrations", "error", err)
			os.Exit(1)
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		positionStore = store.New(pool, metrics)
		logger.Info("operational hurricane store enabled")
	} else {
		logger.Info("no DATABASE_URL set, post-cutoff hurricane dates will return no reports")
	}

	cache, err := blob.NewDiskCache(cfg.CacheDir)
	if err != nil {
		logger.Error("create bulletin cache", "error", err)
		os.Exit(1)
	}

	spcFetcher := spc.NewFetcher(cfg.SPCBaseURL, cfg.SPCTimeout, cache, metrics, logger)
	hurdat := nhc.NewClient(cfg.HurdatURL, cfg.HurdatTimeout, cfg.HurdatCacheTTL, metrics, logger)

	aggregator := aggregate.New(aggregate.Config{
		DaysBefore:       cfg.DaysBefore,
		DaysAfter:        cfg.DaysAfter,
		MaxDistanceMiles: cfg.MaxDistanceMiles,
		HurdatCutoffYear: cfg.HurdatCutoffYear,
	}, spcFetcher, hurdat, positionSource(positionStore), metrics, logger)

	// Result publishing for the notification flow (feature-flagged).
	var publisher httpadapter.ResultPublisher
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka publisher close", "error", err)
			}
		}()
		publisher = kp
		logger.Info("kafka result publishing enabled", "topic", cfg.KafkaSinkTopic)
	}

	// Live advisory updater (feature-flagged, needs the store).
	if cfg.AdvisoryEnabled && positionStore != nil {
		updater := nhc.NewUpdater(cfg.NHCFeedURL, cfg.AdvisoryInterval, cfg.AdvisoryTimeout, positionStore, metrics, logger)
		go func() {
			if err := updater.Run(ctx); err != nil {
				logger.Error("advisory updater", "error", err)
			}
		}()
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, aggregator, aggregator, publisher, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// positionSource widens a possibly-nil *store.Store into the aggregator's
// interface without producing a non-nil interface around a nil pointer.
func positionSource(s *store.Store) aggregate.PositionReader {
	if s == nil {
		return nil
	}
	return s
}
