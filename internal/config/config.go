package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// SPC bulletin source.
	SPCBaseURL string
	SPCTimeout time.Duration
	CacheDir   string

	// HURDAT2 historical hurricane source.
	HurdatURL        string
	HurdatCutoffYear int
	HurdatTimeout    time.Duration
	HurdatCacheTTL   time.Duration

	// Aggregation window and radius.
	DaysBefore       int
	DaysAfter        int
	MaxDistanceMiles float64

	// Operational hurricane store (post-cutoff years). Empty disables it.
	DatabaseURL string

	// Live NHC advisory updater.
	AdvisoryEnabled  bool
	NHCFeedURL       string
	AdvisoryInterval time.Duration
	AdvisoryTimeout  time.Duration

	// Result publishing for the downstream notification flow.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	spcTimeout, err := envDuration("SPC_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	hurdatTimeout, err := envDuration("HURDAT_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	hurdatTTL, err := envDuration("HURDAT_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	advisoryInterval, err := envDuration("ADVISORY_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	advisoryTimeout, err := envDuration("ADVISORY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cutoffYear, err := envInt("HURDAT_CUTOFF_YEAR", 2023)
	if err != nil {
		return nil, err
	}
	daysBefore, err := envInt("WINDOW_DAYS_BEFORE", 7)
	if err != nil {
		return nil, err
	}
	daysAfter, err := envInt("WINDOW_DAYS_AFTER", 7)
	if err != nil {
		return nil, err
	}
	maxDistance, err := envFloat("MAX_DISTANCE_MILES", 150)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SPCBaseURL: envOrDefault("SPC_BASE_URL", "https://www.spc.noaa.gov/climo/reports"),
		SPCTimeout: spcTimeout,
		CacheDir:   envOrDefault("BULLETIN_CACHE_DIR", "data/bulletins"),

		HurdatURL:        envOrDefault("HURDAT_URL", "https://www.nhc.noaa.gov/data/hurdat/hurdat2-1851-2023-051124.txt"),
		HurdatCutoffYear: cutoffYear,
		HurdatTimeout:    hurdatTimeout,
		HurdatCacheTTL:   hurdatTTL,

		DaysBefore:       daysBefore,
		DaysAfter:        daysAfter,
		MaxDistanceMiles: maxDistance,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AdvisoryEnabled:  envOrDefault("ADVISORY_ENABLED", "false") == "true",
		NHCFeedURL:       envOrDefault("NHC_FEED_URL", "https://www.nhc.noaa.gov/index-at.xml"),
		AdvisoryInterval: advisoryInterval,
		AdvisoryTimeout:  advisoryTimeout,

		KafkaEnabled:   envOrDefault("KAFKA_ENABLED", "false") == "true",
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "storm-report-results"),
	}

	if cfg.MaxDistanceMiles <= 0 {
		return nil, errors.New("MAX_DISTANCE_MILES must be positive")
	}
	if cfg.DaysBefore < 0 || cfg.DaysAfter < 0 {
		return nil, errors.New("WINDOW_DAYS_BEFORE and WINDOW_DAYS_AFTER must be non-negative")
	}
	if cfg.SPCBaseURL == "" {
		return nil, errors.New("SPC_BASE_URL is required")
	}
	if cfg.HurdatURL == "" {
		return nil, errors.New("HURDAT_URL is required")
	}
	if cfg.AdvisoryEnabled && cfg.DatabaseURL == "" {
		return nil, errors.New("ADVISORY_ENABLED is true but DATABASE_URL is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
