package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	S3Bucket  string
	S3Prefix  string
	AWSRegion string

	StagingDir string
	RandomSeed int64

	HTTPTimeout        time.Duration
	RunTimeout         time.Duration
	WeatherConcurrency int
	WeatherRateLimit   float64 // open-meteo requests per second

	// Optional destinations.
	PostgresDSN    string
	PostgresTable  string
	PushgatewayURL string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	runTimeout, err := parseDuration("RUN_TIMEOUT", "15m")
	if err != nil {
		return nil, err
	}

	seed, err := parseInt64("RANDOM_SEED", 8675309)
	if err != nil {
		return nil, err
	}

	concurrency, err := parsePositiveInt("WEATHER_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	rateLimit, err := parsePositiveFloat("WEATHER_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		S3Bucket:  os.Getenv("S3_BUCKET"),
		S3Prefix:  envOrDefault("S3_PREFIX", "dump"),
		AWSRegion: envOrDefault("AWS_REGION", "us-east-1"),

		StagingDir: envOrDefault("STAGING_DIR", "data_backups"),
		RandomSeed: seed,

		HTTPTimeout:        httpTimeout,
		RunTimeout:         runTimeout,
		WeatherConcurrency: concurrency,
		WeatherRateLimit:   rateLimit,

		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		PostgresTable:  envOrDefault("POSTGRES_TABLE", "mlb_games"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required")
	}
	if cfg.PostgresDSN != "" && cfg.PostgresTable == "" {
		return nil, errors.New("POSTGRES_TABLE must not be empty when POSTGRES_DSN is set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt64(key string, fallback int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
