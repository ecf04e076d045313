package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballparkdata/mlb-weather-etl/internal/domain"
	"github.com/ballparkdata/mlb-weather-etl/internal/observability"
	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

type fakeScheduleFetcher struct {
	sched     domain.Schedule
	err       error
	startDate string
	endDate   string
}

func (f *fakeScheduleFetcher) FetchSchedule(_ context.Context, startDate, endDate string) (domain.Schedule, error) {
	f.startDate, f.endDate = startDate, endDate
	return f.sched, f.err
}

type fakeStadiumFetcher struct {
	stadiums []domain.Stadium
	err      error
}

func (f *fakeStadiumFetcher) FetchStadiums(context.Context) ([]domain.Stadium, error) {
	return f.stadiums, f.err
}

type fakeWeatherFetcher struct {
	calls    atomic.Int64
	failLat  float64 // coordinate that should fail; zero value means none
	failLng  float64
	failWith error
	hourly   domain.HourlySeries
}

func (f *fakeWeatherFetcher) FetchHourly(_ context.Context, lat, lng float64) (domain.Forecast, error) {
	f.calls.Add(1)
	if f.failWith != nil && lat == f.failLat && lng == f.failLng {
		return domain.Forecast{}, f.failWith
	}
	return domain.Forecast{Latitude: lat, Longitude: lng, Hourly: f.hourly}, nil
}

type fakeExporter struct {
	exported *table.Table
	err      error
}

func (f *fakeExporter) Export(_ context.Context, t *table.Table) error {
	f.exported = t
	return f.err
}

type fakeGamesWriter struct {
	written *table.Table
}

func (f *fakeGamesWriter) WriteGames(_ context.Context, t *table.Table) error {
	f.written = t
	return nil
}

const testGameJSON = `{
	"gamePk": 745804,
	"gameGuid": "c7cb518a-3dc1-4bbb-8de2-8be2a45fcb47",
	"gameType": "R",
	"season": "2026",
	"gameDate": "2026-09-01T23:10:00Z",
	"officialDate": "2026-09-01",
	"status": {"detailedState": "Scheduled", "startTimeTBD": false},
	"teams": {
		"away": {
			"leagueRecord": {"wins": 80, "losses": 55, "pct": ".593"},
			"team": {"id": 121, "name": "New York Mets", "link": "/api/v1/teams/121"},
			"seriesNumber": 44
		},
		"home": {
			"leagueRecord": {"wins": 70, "losses": 65, "pct": ".519"},
			"team": {"id": 112, "name": "Chicago Cubs", "link": "/api/v1/teams/112"},
			"seriesNumber": 44
		}
	},
	"venue": {"id": 17, "name": "Wrigley Field", "link": "/api/v1/venues/17"},
	"content": {"link": "/api/v1/game/745804/content"},
	"doubleHeader": "N",
	"dayNight": "night",
	"scheduledInnings": 9,
	"reverseHomeAwayStatus": false,
	"inningBreakLength": 120,
	"seriesDescription": "Regular Season"
}`

func testSchedule(t *testing.T) domain.Schedule {
	t.Helper()
	payload := `{"dates":[{"date":"2026-09-01","games":[` + testGameJSON + `]}]}`
	var sched domain.Schedule
	require.NoError(t, json.Unmarshal([]byte(payload), &sched))
	return sched
}

func testHourly() domain.HourlySeries {
	return domain.HourlySeries{
		Time:         []string{"2026-09-01T23:00"},
		Temperature:  []float64{21.3},
		Rain:         []float64{0},
		Showers:      []float64{0.2},
		Snowfall:     []float64{0},
		WindSpeed10M: []float64{12.5},
	}
}

func testStadiums() []domain.Stadium {
	return []domain.Stadium{
		{Team: "Chicago Cubs", Address: "1060 W Addison St", Lat: 41.948438, Lng: -87.655333},
	}
}

func newTestPipeline(
	schedule ScheduleFetcher,
	stadiums StadiumFetcher,
	weather WeatherFetcher,
	exporter Exporter,
	games GamesWriter,
) *Pipeline {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	return New(schedule, stadiums, weather, exporter, games, clock, logger,
		observability.NewMetricsForTesting(), Options{Seed: 8675309, WeatherConcurrency: 2})
}

func TestRunProducesRedactedEnrichedTable(t *testing.T) {
	scheduleFetcher := &fakeScheduleFetcher{sched: testSchedule(t)}
	weatherFetcher := &fakeWeatherFetcher{hourly: testHourly()}
	exporter := &fakeExporter{}
	warehouse := &fakeGamesWriter{}

	p := newTestPipeline(scheduleFetcher, &fakeStadiumFetcher{stadiums: testStadiums()}, weatherFetcher, exporter, warehouse)

	err := p.Run(context.Background())
	require.NoError(t, err)

	t.Run("window starts tomorrow and spans six days", func(t *testing.T) {
		assert.Equal(t, "2026-08-30", scheduleFetcher.startDate)
		assert.Equal(t, "2026-09-05", scheduleFetcher.endDate)
	})

	require.NotNil(t, exporter.exported)
	out := exporter.exported
	require.Equal(t, 1, out.Len())
	row := out.Rows()[0]

	t.Run("restricted columns gone", func(t *testing.T) {
		for _, name := range []string{
			"game_guid", "reverse_home_away_status", "inning_break_length",
			"time_zero_minute", "latitude", "longitude",
		} {
			assert.False(t, out.HasColumn(name), name)
		}
	})

	t.Run("weather joined on game hour", func(t *testing.T) {
		assert.Equal(t, 21.3, row["temperature_2m"])
		assert.Equal(t, 12.5, row["wind_speed_10m"])
	})

	t.Run("synthetic columns present", func(t *testing.T) {
		id, ok := row["random_id"].(string)
		require.True(t, ok)
		assert.Len(t, id, 12)
		assert.Contains(t, []any{int64(0), int64(1)}, row["id_includes_nineteen"])
		jenny := row["jenny"].(float64)
		assert.GreaterOrEqual(t, jenny, -150.0)
		assert.Less(t, jenny, 150.0)
		assert.Equal(t, jenny <= -50, row["jenny_error"])
	})

	t.Run("warehouse receives same table", func(t *testing.T) {
		assert.Same(t, out, warehouse.written)
	})
}

func TestRunWithoutWarehouse(t *testing.T) {
	exporter := &fakeExporter{}
	p := newTestPipeline(&fakeScheduleFetcher{sched: testSchedule(t)},
		&fakeStadiumFetcher{stadiums: testStadiums()},
		&fakeWeatherFetcher{hourly: testHourly()}, exporter, nil)

	require.NoError(t, p.Run(context.Background()))
	assert.NotNil(t, exporter.exported)
}

func TestRunScheduleFailureAbortsBeforeExport(t *testing.T) {
	exporter := &fakeExporter{}
	weatherFetcher := &fakeWeatherFetcher{hourly: testHourly()}
	p := newTestPipeline(&fakeScheduleFetcher{err: errors.New("schedule down")},
		&fakeStadiumFetcher{stadiums: testStadiums()}, weatherFetcher, exporter, nil)

	err := p.Run(context.Background())

	require.ErrorContains(t, err, "fetch schedule")
	assert.Nil(t, exporter.exported)
	assert.Zero(t, weatherFetcher.calls.Load())
}

func TestRunStadiumFailureAbortsBeforeExport(t *testing.T) {
	exporter := &fakeExporter{}
	p := newTestPipeline(&fakeScheduleFetcher{sched: testSchedule(t)},
		&fakeStadiumFetcher{err: errors.New("gist unreachable")},
		&fakeWeatherFetcher{hourly: testHourly()}, exporter, nil)

	err := p.Run(context.Background())

	require.ErrorContains(t, err, "fetch stadiums")
	assert.Nil(t, exporter.exported)
}

func TestRunWeatherFailureAbortsBeforeExport(t *testing.T) {
	exporter := &fakeExporter{}
	weatherFetcher := &fakeWeatherFetcher{
		hourly:   testHourly(),
		failLat:  41.948438,
		failLng:  -87.655333,
		failWith: errors.New("forecast upstream unavailable"),
	}
	p := newTestPipeline(&fakeScheduleFetcher{sched: testSchedule(t)},
		&fakeStadiumFetcher{stadiums: testStadiums()}, weatherFetcher, exporter, nil)

	err := p.Run(context.Background())

	require.ErrorContains(t, err, "forecast upstream unavailable")
	assert.Nil(t, exporter.exported, "no export after a failed forecast fetch")
}

func TestRunExportFailureSurfaces(t *testing.T) {
	exporter := &fakeExporter{err: errors.New("bucket denied")}
	p := newTestPipeline(&fakeScheduleFetcher{sched: testSchedule(t)},
		&fakeStadiumFetcher{stadiums: testStadiums()},
		&fakeWeatherFetcher{hourly: testHourly()}, exporter, nil)

	err := p.Run(context.Background())

	require.ErrorContains(t, err, "export")
}
