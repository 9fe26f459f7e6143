// Command reportcheck runs one storm-report aggregation from the command line
// and prints the results, for operator debugging. It uses the same config as
// the server but skips the database and Kafka wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/stormsignal/storm-report-service/internal/adapter/blob"
	"github.com/stormsignal/storm-report-service/internal/adapter/nhc"
	"github.com/stormsignal/storm-report-service/internal/adapter/spc"
	"github.com/stormsignal/storm-report-service/internal/aggregate"
	"github.com/stormsignal/storm-report-service/internal/config"
	"github.com/stormsignal/storm-report-service/internal/observability"
)

func main() {
	dateFlag := flag.String("date", "", "damage date, YYYY-MM-DD (required)")
	latFlag := flag.Float64("lat", 0, "property latitude (required)")
	lonFlag := flag.Float64("lon", 0, "property longitude (required)")
	flag.Parse()

	if *dateFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: reportcheck -date YYYY-MM-DD -lat LAT -lon LON")
		os.Exit(2)
	}
	date, err := time.Parse(time.DateOnly, *dateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *dateFlag, err)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetricsForTesting()

	cache, err := blob.NewDiskCache(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create bulletin cache: %v\n", err)
		os.Exit(1)
	}

	spcFetcher := spc.NewFetcher(cfg.SPCBaseURL, cfg.SPCTimeout, cache, metrics, logger)
	hurdat := nhc.NewClient(cfg.HurdatURL, cfg.HurdatTimeout, cfg.HurdatCacheTTL, metrics, logger)

	aggregator := aggregate.New(aggregate.Config{
		DaysBefore:       cfg.DaysBefore,
		DaysAfter:        cfg.DaysAfter,
		MaxDistanceMiles: cfg.MaxDistanceMiles,
		HurdatCutoffYear: cfg.HurdatCutoffYear,
	}, spcFetcher, hurdat, nil, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reports, err := aggregator.StormReports(ctx, date, *latFlag, *lonFlag)
	if err != nil {
		slog.Error("aggregation failed", "error", err)
		os.Exit(1)
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Time.Before(reports[j].Time) })

	fmt.Printf("%d reports within %.0f miles of (%.4f, %.4f), %s ±%d/%d days\n\n",
		len(reports), cfg.MaxDistanceMiles, *latFlag, *lonFlag,
		date.Format(time.DateOnly), cfg.DaysBefore, cfg.DaysAfter)
	for _, r := range reports {
		distance := 0.0
		if r.DistanceMiles != nil {
			distance = *r.DistanceMiles
		}
		fmt.Printf("%-10s %s  %6.1f mi  %s\n",
			r.Type, r.Time.Format("2006-01-02 15:04"), distance, r.Description)
	}
}
