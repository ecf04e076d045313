// Package pipeline orchestrates the daily batch run: fetch the upcoming
// schedule, flatten and normalize it, enrich with venue coordinates and
// hourly forecasts, redact restricted columns, append the synthetic columns,
// and export. Every stage is fail-fast: the first error aborts the run and
// nothing is uploaded.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ballparkdata/mlb-weather-etl/internal/domain"
	"github.com/ballparkdata/mlb-weather-etl/internal/observability"
	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// scheduleWindowDays is the length of the fetched schedule window. The window
// starts tomorrow so every game still has a full hourly forecast.
const scheduleWindowDays = 6

// ScheduleFetcher returns the game schedule between two calendar dates.
type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context, startDate, endDate string) (domain.Schedule, error)
}

// StadiumFetcher returns the stadium reference list.
type StadiumFetcher interface {
	FetchStadiums(ctx context.Context) ([]domain.Stadium, error)
}

// WeatherFetcher returns the hourly forecast for one coordinate.
type WeatherFetcher interface {
	FetchHourly(ctx context.Context, lat, lng float64) (domain.Forecast, error)
}

// Exporter writes the final table to the artifact formats and uploads them.
type Exporter interface {
	Export(ctx context.Context, t *table.Table) error
}

// GamesWriter persists the final table to a relational store.
type GamesWriter interface {
	WriteGames(ctx context.Context, t *table.Table) error
}

// Pipeline wires the fetchers, transforms, and sinks into a single run.
type Pipeline struct {
	schedule ScheduleFetcher
	stadiums StadiumFetcher
	weather  WeatherFetcher
	exporter Exporter
	games    GamesWriter // nil disables the warehouse stage
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	seed               int64
	weatherConcurrency int
}

// Options carries the run parameters that are not collaborators.
type Options struct {
	Seed               int64
	WeatherConcurrency int
}

// New creates a Pipeline. games may be nil when no warehouse is configured.
func New(
	schedule ScheduleFetcher,
	stadiums StadiumFetcher,
	weather WeatherFetcher,
	exporter Exporter,
	games GamesWriter,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
	opts Options,
) *Pipeline {
	concurrency := opts.WeatherConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pipeline{
		schedule:           schedule,
		stadiums:           stadiums,
		weather:            weather,
		exporter:           exporter,
		games:              games,
		clock:              clock,
		logger:             logger,
		metrics:            metrics,
		seed:               opts.Seed,
		weatherConcurrency: concurrency,
	}
}

// Run executes one complete batch run.
func (p *Pipeline) Run(ctx context.Context) error {
	runStart := p.clock.Now()
	start, end := p.scheduleWindow()
	p.logger.Info("run started", "start_date", start, "end_date", end)

	games, err := p.buildGamesTable(ctx, start, end)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := p.deliver(ctx, games); err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		return err
	}

	elapsed := p.clock.Now().Sub(runStart)
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.metrics.RowsExported.Set(float64(games.Len()))
	p.logger.Info("run finished", "rows", games.Len(), "duration", elapsed)
	return nil
}

// scheduleWindow returns the start and end calendar dates of the fetch
// window: tomorrow through tomorrow plus scheduleWindowDays.
func (p *Pipeline) scheduleWindow() (string, string) {
	start := p.clock.Now().AddDate(0, 0, 1)
	end := start.AddDate(0, 0, scheduleWindowDays)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

func (p *Pipeline) buildGamesTable(ctx context.Context, startDate, endDate string) (*table.Table, error) {
	sched, err := p.timedSchedule(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}

	games, err := p.timedStage("flatten", func() (*table.Table, error) {
		return domain.FlattenSchedule(sched)
	})
	if err != nil {
		return nil, fmt.Errorf("flatten schedule: %w", err)
	}
	p.metrics.GamesFetched.Set(float64(games.Len()))
	p.logger.Info("flattened schedule", "games", games.Len())

	if _, err := p.timedStage("normalize", func() (*table.Table, error) {
		return games, domain.NormalizeSchedule(games)
	}); err != nil {
		return nil, fmt.Errorf("normalize schedule: %w", err)
	}

	games, err = p.joinVenues(ctx, games)
	if err != nil {
		return nil, err
	}

	games, err = p.joinWeather(ctx, games)
	if err != nil {
		return nil, err
	}

	if _, err := p.timedStage("redact", func() (*table.Table, error) {
		return games, domain.Redact(games)
	}); err != nil {
		return nil, fmt.Errorf("redact columns: %w", err)
	}

	if _, err := p.timedStage("synthetic", func() (*table.Table, error) {
		if err := domain.AddRandomID(games, p.seed); err != nil {
			return nil, err
		}
		return games, domain.AddJenny(games, p.seed)
	}); err != nil {
		return nil, fmt.Errorf("append synthetic columns: %w", err)
	}

	return games, nil
}

func (p *Pipeline) timedSchedule(ctx context.Context, startDate, endDate string) (domain.Schedule, error) {
	start := p.clock.Now()
	sched, err := p.schedule.FetchSchedule(ctx, startDate, endDate)
	p.metrics.StageDuration.WithLabelValues("fetch_schedule").Observe(p.clock.Now().Sub(start).Seconds())
	p.observeSource("statsapi", err)
	return sched, err
}

// joinVenues fetches the stadium list and left-joins venue coordinates onto
// the games by corrected home team name.
func (p *Pipeline) joinVenues(ctx context.Context, games *table.Table) (*table.Table, error) {
	start := p.clock.Now()
	stadiums, err := p.stadiums.FetchStadiums(ctx)
	p.metrics.StageDuration.WithLabelValues("fetch_stadiums").Observe(p.clock.Now().Sub(start).Seconds())
	p.observeSource("stadium_map", err)
	if err != nil {
		return nil, fmt.Errorf("fetch stadiums: %w", err)
	}

	venues := domain.ResolveVenues(stadiums)
	joined, err := domain.JoinCoordinates(games, venues)
	if err != nil {
		return nil, fmt.Errorf("join coordinates: %w", err)
	}
	p.logger.Info("joined venue coordinates", "rows", joined.Len(), "stadiums", len(stadiums))
	return joined, nil
}

// joinWeather fetches one forecast per distinct venue coordinate with a
// bounded worker pool, then left-joins the hourly rows onto the games. Any
// failed fetch aborts the stage.
func (p *Pipeline) joinWeather(ctx context.Context, games *table.Table) (*table.Table, error) {
	coords := domain.DistinctCoordinates(games)
	p.logger.Info("fetching forecasts", "coordinates", len(coords))

	start := p.clock.Now()
	forecasts := make([]domain.Forecast, len(coords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.weatherConcurrency)
	for i, c := range coords {
		i, c := i, c
		g.Go(func() error {
			forecast, err := p.weather.FetchHourly(gctx, c.Lat, c.Lng)
			p.observeSource("open_meteo", err)
			if err != nil {
				return fmt.Errorf("fetch forecast for (%v, %v): %w", c.Lat, c.Lng, err)
			}
			p.metrics.WeatherFetches.Inc()
			forecasts[i] = forecast
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.metrics.StageDuration.WithLabelValues("fetch_weather").Observe(p.clock.Now().Sub(start).Seconds())

	weather, err := domain.WeatherTable(forecasts)
	if err != nil {
		return nil, fmt.Errorf("build weather table: %w", err)
	}
	joined := domain.JoinWeather(games, weather)
	p.logger.Info("joined hourly weather", "rows", joined.Len(), "forecast_hours", weather.Len())
	return joined, nil
}

func (p *Pipeline) deliver(ctx context.Context, games *table.Table) error {
	start := p.clock.Now()
	if err := p.exporter.Export(ctx, games); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	p.metrics.StageDuration.WithLabelValues("export").Observe(p.clock.Now().Sub(start).Seconds())

	if p.games == nil {
		return nil
	}
	start = p.clock.Now()
	if err := p.games.WriteGames(ctx, games); err != nil {
		return fmt.Errorf("write warehouse: %w", err)
	}
	p.metrics.StageDuration.WithLabelValues("warehouse").Observe(p.clock.Now().Sub(start).Seconds())
	return nil
}

func (p *Pipeline) timedStage(stage string, fn func() (*table.Table, error)) (*table.Table, error) {
	start := p.clock.Now()
	t, err := fn()
	p.metrics.StageDuration.WithLabelValues(stage).Observe(p.clock.Now().Sub(start).Seconds())
	return t, err
}

func (p *Pipeline) observeSource(source string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.SourceRequests.WithLabelValues(source, outcome).Inc()
}
