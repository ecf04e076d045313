package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL run.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec // labels: stage

	// Source API metrics.
	SourceRequests  *prometheus.CounterVec // labels: source={statsapi,stadium_map,open_meteo,s3}, outcome={success,error}
	WeatherFetches  prometheus.Counter
	GamesFetched    prometheus.Gauge
	RowsExported    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics on a private registry so repeated batch
// invocations never collide with default-registry state.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.StageDuration,
		m.SourceRequests,
		m.WeatherFetches,
		m.GamesFetched,
		m.RowsExported,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can instantiate
// freely without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlb_etl",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mlb_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mlb_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180},
		}, []string{"stage"}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlb_etl",
			Name:      "source_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		WeatherFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mlb_etl",
			Name:      "weather_fetches_total",
			Help:      "Total hourly forecast fetches, one per distinct venue coordinate.",
		}),
		GamesFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mlb_etl",
			Name:      "games_fetched",
			Help:      "Games returned by the schedule API in the latest run.",
		}),
		RowsExported: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mlb_etl",
			Name:      "rows_exported",
			Help:      "Rows written to the export artifacts in the latest run.",
		}),
	}
}

// Push sends the current metric state to a Pushgateway. Batch jobs exit after
// one run, so scraping is not an option.
func (m *Metrics) Push(gatewayURL string) error {
	if m.registry == nil {
		return nil
	}
	if err := push.New(gatewayURL, "mlb_weather_etl").Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
