// Package integration exercises the full batch run against stub HTTP
// services: schedule API, stadium list, and forecast API, through to staged
// artifacts and uploads.
package integration

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/openmeteo"
	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/stadiummap"
	"github.com/ballparkdata/mlb-weather-etl/internal/adapter/statsapi"
	"github.com/ballparkdata/mlb-weather-etl/internal/observability"
	"github.com/ballparkdata/mlb-weather-etl/internal/pipeline"
	"github.com/ballparkdata/mlb-weather-etl/internal/sink"
)

const scheduleResponse = `{
	"totalGames": 2,
	"dates": [
		{
			"date": "2026-09-01",
			"games": [
				{
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
				},
				{
					"gamePk": 745805,
					"gameGuid": "0f0d7ef3-51de-4a19-9e4d-0123a45bc678",
					"gameType": "R",
					"season": "2026",
					"gameDate": "2026-09-01T22:40:00Z",
					"officialDate": "2026-09-01",
					"status": {"detailedState": "Scheduled", "startTimeTBD": false},
					"teams": {
						"away": {
							"leagueRecord": {"wins": 66, "losses": 69, "pct": ".489"},
							"team": {"id": 116, "name": "Detroit Tigers", "link": "/api/v1/teams/116"},
							"seriesNumber": 45
						},
						"home": {
							"leagueRecord": {"wins": 75, "losses": 60, "pct": ".556"},
							"team": {"id": 114, "name": "Cleveland Guardians", "link": "/api/v1/teams/114"},
							"seriesNumber": 45
						}
					},
					"venue": {"id": 5, "name": "Progressive Field", "link": "/api/v1/venues/5"},
					"content": {"link": "/api/v1/game/745805/content"},
					"doubleHeader": "N",
					"dayNight": "night",
					"scheduledInnings": 9,
					"reverseHomeAwayStatus": false,
					"inningBreakLength": 120,
					"seriesDescription": "Regular Season"
				}
			]
		}
	]
}`

// The external list still carries Cleveland's legacy franchise name; the
// venue resolver is expected to rewrite it.
const stadiumResponse = `[
	{"team": "Chicago Cubs", "address": "1060 W Addison St, Chicago, IL 60613", "lat": 41.948438, "lng": -87.655333},
	{"team": "Cleveland Indians", "address": "2401 Ontario St, Cleveland, OH 44115", "lat": 41.495149, "lng": -81.685211}
]`

type memoryUploader struct {
	keys  []string
	sizes map[string]int64
}

func (m *memoryUploader) Upload(_ context.Context, localPath, key string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	if m.sizes == nil {
		m.sizes = map[string]int64{}
	}
	m.keys = append(m.keys, key)
	m.sizes[key] = info.Size()
	return nil
}

func TestBatchRunEndToEnd(t *testing.T) {
	scheduleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("sportId"))
		assert.Equal(t, "2026-08-30", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-09-05", r.URL.Query().Get("endDate"))
		fmt.Fprint(w, scheduleResponse)
	}))
	defer scheduleSrv.Close()

	stadiumSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, stadiumResponse)
	}))
	defer stadiumSrv.Close()

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9", r.URL.Query().Get("forecast_days"))
		lat, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
		require.NoError(t, err)
		// Distinguishable per-venue temperatures so the join can be verified:
		// Wrigley sits north of Progressive Field.
		temps := "[10.5, 15.5]"
		if lat > 41.9 {
			temps = "[20.5, 25.5]"
		}
		fmt.Fprintf(w, `{
			"latitude": %s,
			"longitude": %s,
			"hourly": {
				"time": ["2026-09-01T22:00", "2026-09-01T23:00"],
				"temperature_2m": %s,
				"rain": [0, 0.4],
				"showers": [0, 0],
				"snowfall": [0, 0],
				"wind_speed_10m": [10.1, 14.7]
			}
		}`, r.URL.Query().Get("latitude"), r.URL.Query().Get("longitude"), temps)
	}))
	defer weatherSrv.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	uploader := &memoryUploader{}
	stagingDir := t.TempDir()

	p := pipeline.New(
		statsapi.NewClientWithBaseURL(scheduleSrv.URL, 5*time.Second, logger),
		stadiummap.NewClientWithURL(stadiumSrv.URL, 5*time.Second, logger),
		openmeteo.NewClientWithBaseURL(weatherSrv.URL, 5*time.Second, 100, logger),
		sink.NewExporter(stagingDir, "dump", uploader, logger),
		nil,
		clock,
		logger,
		observability.NewMetricsForTesting(),
		pipeline.Options{Seed: 8675309, WeatherConcurrency: 2},
	)

	require.NoError(t, p.Run(context.Background()))

	t.Run("uploads all three artifacts", func(t *testing.T) {
		assert.Equal(t, []string{
			"dump/mlb_games.csv",
			"dump/mlb_games.parquet",
			"dump/mlb_games.feather",
		}, uploader.keys)
		for key, size := range uploader.sizes {
			assert.Positive(t, size, key)
		}
	})

	data, err := os.ReadFile(filepath.Join(stagingDir, "mlb_games.csv"))
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two game rows")

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q not in header %v", name, header)
		return -1
	}

	t.Run("restricted columns absent", func(t *testing.T) {
		for _, name := range []string{
			"game_guid", "reverse_home_away_status", "inning_break_length",
			"time_zero_minute", "latitude", "longitude",
		} {
			assert.NotContains(t, header, name)
		}
	})

	t.Run("weather joined per venue and game hour", func(t *testing.T) {
		byTeam := map[string][]string{}
		for _, rec := range records[1:] {
			byTeam[rec[col("home_team_name")]] = rec
		}
		require.Contains(t, byTeam, "Chicago Cubs")
		require.Contains(t, byTeam, "Cleveland Guardians")

		// Cubs start 23:10 UTC -> 23:00 bucket; Guardians 22:40 -> 22:00.
		assert.Equal(t, "25.5", byTeam["Chicago Cubs"][col("temperature_2m")])
		assert.Equal(t, "10.5", byTeam["Cleveland Guardians"][col("temperature_2m")])
		assert.Equal(t, "0.4", byTeam["Chicago Cubs"][col("rain")])
	})

	t.Run("synthetic columns populated", func(t *testing.T) {
		for _, rec := range records[1:] {
			assert.Len(t, rec[col("random_id")], 12)
			assert.Contains(t, []string{"0", "1"}, rec[col("id_includes_nineteen")])
			jenny, err := strconv.ParseFloat(rec[col("jenny")], 64)
			require.NoError(t, err)
			assert.Equal(t, strconv.FormatBool(jenny <= -50), rec[col("jenny_error")])
		}
	})
}
