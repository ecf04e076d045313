package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

func forecastFixture(lat, lng float64, hours ...string) Forecast {
	h := HourlySeries{Time: hours}
	for i := range hours {
		h.Temperature = append(h.Temperature, 20.0+float64(i))
		h.Rain = append(h.Rain, 0.1*float64(i))
		h.Showers = append(h.Showers, 0)
		h.Snowfall = append(h.Snowfall, 0)
		h.WindSpeed10M = append(h.WindSpeed10M, 12.5)
	}
	return Forecast{Latitude: lat, Longitude: lng, Hourly: h}
}

func TestWeatherTable(t *testing.T) {
	forecasts := []Forecast{
		forecastFixture(41.9, -87.6, "2024-05-01T22:00", "2024-05-01T23:00"),
		forecastFixture(25.7, -80.2, "2024-05-01T22:00"),
	}

	w, err := WeatherTable(forecasts)
	require.NoError(t, err)

	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []string{
		"time_zero_minute", "latitude", "longitude",
		"temperature_2m", "rain", "showers", "snowfall", "wind_speed_10m",
	}, w.Columns())

	first := w.Rows()[0]
	assert.Equal(t, time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC), first["time_zero_minute"])
	assert.Equal(t, 41.9, first["latitude"])
	assert.Equal(t, 20.0, first["temperature_2m"])

	// Per-location blocks concatenate in input order.
	assert.Equal(t, 25.7, w.Rows()[2]["latitude"])
}

func TestWeatherTable_SeriesLengthMismatch(t *testing.T) {
	f := forecastFixture(41.9, -87.6, "2024-05-01T22:00")
	f.Hourly.Rain = nil

	_, err := WeatherTable([]Forecast{f})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length")
}

func TestWeatherTable_BadTimestamp(t *testing.T) {
	f := forecastFixture(41.9, -87.6, "05/01/2024 22:00")
	_, err := WeatherTable([]Forecast{f})
	assert.Error(t, err)
}

func TestJoinWeather(t *testing.T) {
	games := table.New("game_id", "time_zero_minute", "latitude", "longitude")
	games.Append(table.Row{
		"game_id":          "1",
		"time_zero_minute": time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC),
		"latitude":         41.9,
		"longitude":        -87.6,
	})
	games.Append(table.Row{
		// Bucket with no forecast row: weather stays null.
		"game_id":          "2",
		"time_zero_minute": time.Date(2024, 5, 9, 3, 0, 0, 0, time.UTC),
		"latitude":         41.9,
		"longitude":        -87.6,
	})
	games.Append(table.Row{
		// Null coordinates can never match.
		"game_id":          "3",
		"time_zero_minute": time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC),
		"latitude":         nil,
		"longitude":        nil,
	})

	weather, err := WeatherTable([]Forecast{
		forecastFixture(41.9, -87.6, "2024-05-01T22:00", "2024-05-01T23:00"),
	})
	require.NoError(t, err)

	joined := JoinWeather(games, weather)

	require.Equal(t, games.Len(), joined.Len())

	assert.Equal(t, 20.0, joined.Rows()[0]["temperature_2m"])
	assert.Equal(t, 12.5, joined.Rows()[0]["wind_speed_10m"])

	assert.Nil(t, joined.Rows()[1]["temperature_2m"])
	assert.Nil(t, joined.Rows()[2]["temperature_2m"])
}
