package domain

import (
	"fmt"
	"time"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// hourlyTimeLayout is the naive local-time format open-meteo uses for hourly
// timestamps. Requested without a timezone the series is UTC, matching the
// zone-stripped game buckets.
const hourlyTimeLayout = "2006-01-02T15:04"

// HourlySeries holds the parallel per-hour arrays of one forecast response.
type HourlySeries struct {
	Time         []string  `json:"time"`
	Temperature  []float64 `json:"temperature_2m"`
	Rain         []float64 `json:"rain"`
	Showers      []float64 `json:"showers"`
	Snowfall     []float64 `json:"snowfall"`
	WindSpeed10M []float64 `json:"wind_speed_10m"`
}

// Forecast is one location's hourly forecast, tagged with the coordinate it
// was requested for. The tag is the request coordinate, not the grid point
// the provider snapped to, so it joins back exactly.
type Forecast struct {
	Latitude  float64
	Longitude float64
	Hourly    HourlySeries
}

// weatherColumns is the weather table schema; the time column is already
// renamed to the join key name.
var weatherColumns = []string{
	"time_zero_minute", "latitude", "longitude",
	"temperature_2m", "rain", "showers", "snowfall", "wind_speed_10m",
}

// WeatherTable concatenates per-location forecasts into one table with one
// row per forecast hour, in the order the forecasts are given.
func WeatherTable(forecasts []Forecast) (*table.Table, error) {
	t := table.New(weatherColumns...)
	for _, f := range forecasts {
		h := f.Hourly
		for _, series := range [][]float64{h.Temperature, h.Rain, h.Showers, h.Snowfall, h.WindSpeed10M} {
			if len(series) != len(h.Time) {
				return nil, fmt.Errorf("weather table (%v, %v): hourly series length %d does not match %d timestamps",
					f.Latitude, f.Longitude, len(series), len(h.Time))
			}
		}
		for i, raw := range h.Time {
			ts, err := time.Parse(hourlyTimeLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("weather table (%v, %v): parse hour %q: %w", f.Latitude, f.Longitude, raw, err)
			}
			t.Append(table.Row{
				"time_zero_minute": ts,
				"latitude":         f.Latitude,
				"longitude":        f.Longitude,
				"temperature_2m":   h.Temperature[i],
				"rain":             h.Rain[i],
				"showers":          h.Showers[i],
				"snowfall":         h.Snowfall[i],
				"wind_speed_10m":   h.WindSpeed10M[i],
			})
		}
	}
	return t, nil
}

// JoinWeather left-joins the weather table onto the coordinate-joined
// schedule on exact (time_zero_minute, latitude, longitude) equality. Games
// whose bucket or coordinate has no forecast row keep null weather fields.
func JoinWeather(games, weather *table.Table) *table.Table {
	return games.LeftJoin(weather, weatherRowKey, weatherRowKey)
}

func weatherRowKey(r table.Row) (string, bool) {
	ts, ok := r["time_zero_minute"].(time.Time)
	if !ok {
		return "", false
	}
	coord, ok := rowCoordKey(r)
	if !ok {
		return "", false
	}
	return ts.Format(hourlyTimeLayout) + "|" + coord, true
}
