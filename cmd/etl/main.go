// Command etl runs one batch: fetch the upcoming MLB schedule, enrich it
// with venue coordinates and hourly forecasts, redact restricted columns,
// append the synthetic columns, and publish CSV, Parquet, and Feather
// artifacts to object storage.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/openmeteo"
	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/s3"
	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/stadiummap"
	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/statsapi"
	"github.com/ballparkdata/mlb-weather-etl/internal/config"
	"github.com/ballparkdata/mlb-weather-etl/internal/observability"
	"github.com/ballparkdata/mlb-weather-etl/internal/pipeline"
	"github.com/ballparkdata/mlb-weather-etl/internal/sink"
	"github.com/ballparkdata/mlb-weather-etl/internal/warehouse"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
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
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	uploader, err := s3.NewUploader(ctx, cfg.S3Bucket, cfg.AWSRegion, logger)
	if err != nil {
		logger.Error("failed to initialize s3 uploader", "error", err)
		os.Exit(1)
	}

	var games pipeline.GamesWriter
	if cfg.PostgresDSN != "" {
		writer, err := warehouse.Open(cfg.PostgresDSN, cfg.PostgresTable, logger)
		if err != nil {
			logger.Error("failed to connect to warehouse", "error", err)
			os.Exit(1)
		}
		games = writer
		logger.Info("warehouse enabled", "table", cfg.PostgresTable)
	}

	p := pipeline.New(
		statsapi.NewClient(cfg.HTTPTimeout, logger),
		stadiummap.NewClient(cfg.HTTPTimeout, logger),
		openmeteo.NewClient(cfg.HTTPTimeout, cfg.WeatherRateLimit, logger),
		sink.NewExporter(cfg.StagingDir, cfg.S3Prefix, uploader, logger),
		games,
		clockwork.NewRealClock(),
		logger,
		metrics,
		pipeline.Options{Seed: cfg.RandomSeed, WeatherConcurrency: cfg.WeatherConcurrency},
	)

	runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cfg.PushgatewayURL); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}
