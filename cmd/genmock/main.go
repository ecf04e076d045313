// Command genmock generates deterministic stub responses for the three
// upstream APIs (schedule, stadium list, hourly forecast) so local stub
// servers and demos never hit real endpoints.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -start 2026-09-01 -days 7
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/ballparkdata/mlb-weather-etl/internal/domain"
)

// parks is a small slate of home venues for generated games.
var parks = []struct {
	teamID   int
	team     string
	venueID  int
	venue    string
	lat, lng float64
}{
	{112, "Chicago Cubs", 17, "Wrigley Field", 41.948438, -87.655333},
	{114, "Cleveland Guardians", 5, "Progressive Field", 41.495149, -81.685211},
	{121, "New York Mets", 3289, "Citi Field", 40.7571004, -73.8458342},
	{136, "Seattle Mariners", 680, "T-Mobile Park", 47.591333, -122.33251},
}

// visitors rotate through as away teams.
var visitors = []struct {
	teamID int
	team   string
}{
	{116, "Detroit Tigers"},
	{110, "Baltimore Orioles"},
	{143, "Philadelphia Phillies"},
	{119, "Los Angeles Dodgers"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for fixture files")
	start := flag.String("start", "", "first game date (YYYY-MM-DD)")
	days := flag.Int("days", 7, "number of schedule days to generate")
	seed := flag.Int64("seed", 8675309, "seed for generated scores and records")
	flag.Parse()

	if *outDir == "" || *start == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -start")
	}
	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := writeJSON(filepath.Join(*outDir, "schedule.json"), buildSchedule(startDate, *days, rng)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*outDir, "stadiums.json"), buildStadiums()); err != nil {
		return err
	}
	for _, p := range parks {
		name := fmt.Sprintf("forecast_%v_%v.json", p.lat, p.lng)
		if err := writeJSON(filepath.Join(*outDir, name), buildForecast(startDate, p.lat, p.lng, rng)); err != nil {
			return err
		}
	}

	log.Printf("wrote fixtures to %s (%d days starting %s)", *outDir, *days, *start)
	return nil
}

// buildSchedule emits one game per park per day in the schedule API shape.
func buildSchedule(start time.Time, days int, rng *rand.Rand) map[string]any {
	gamePk := 745804
	dates := make([]map[string]any, 0, days)
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		games := make([]map[string]any, 0, len(parks))
		for i, p := range parks {
			v := visitors[(i+d)%len(visitors)]
			firstPitch := time.Date(day.Year(), day.Month(), day.Day(), 17+2*i, 10, 0, 0, time.UTC)
			games = append(games, map[string]any{
				"gamePk":   gamePk,
				"gameGuid": fmt.Sprintf("%08x-0000-4000-8000-%012d", rng.Uint32(), gamePk),
				"gameType": "R", "season": fmt.Sprint(day.Year()),
				"gameDate":     firstPitch.Format(time.RFC3339),
				"officialDate": day.Format("2006-01-02"),
				"status":       map[string]any{"detailedState": "Scheduled", "startTimeTBD": false},
				"teams": map[string]any{
					"away": map[string]any{
						"leagueRecord": record(rng),
						"team":         map[string]any{"id": v.teamID, "name": v.team, "link": fmt.Sprintf("/api/v1/teams/%d", v.teamID)},
						"seriesNumber": 40 + d,
					},
					"home": map[string]any{
						"leagueRecord": record(rng),
						"team":         map[string]any{"id": p.teamID, "name": p.team, "link": fmt.Sprintf("/api/v1/teams/%d", p.teamID)},
						"seriesNumber": 40 + d,
					},
				},
				"venue":                 map[string]any{"id": p.venueID, "name": p.venue, "link": fmt.Sprintf("/api/v1/venues/%d", p.venueID)},
				"content":               map[string]any{"link": fmt.Sprintf("/api/v1/game/%d/content", gamePk)},
				"doubleHeader":          "N",
				"dayNight":              "night",
				"scheduledInnings":      9,
				"reverseHomeAwayStatus": false,
				"inningBreakLength":     120,
				"seriesDescription":     "Regular Season",
			})
			gamePk++
		}
		dates = append(dates, map[string]any{"date": day.Format("2006-01-02"), "games": games})
	}
	return map[string]any{"totalGames": days * len(parks), "dates": dates}
}

func record(rng *rand.Rand) map[string]any {
	wins := 55 + rng.Intn(40)
	losses := 135 - wins - rng.Intn(10)
	return map[string]any{
		"wins": wins, "losses": losses,
		"pct": fmt.Sprintf("%.3f", float64(wins)/float64(wins+losses))[1:],
	}
}

func buildStadiums() []domain.Stadium {
	out := make([]domain.Stadium, 0, len(parks))
	for _, p := range parks {
		out = append(out, domain.Stadium{Team: p.team, Lat: p.lat, Lng: p.lng})
	}
	return out
}

// buildForecast emits 9 days of hourly series in the forecast API shape.
func buildForecast(start time.Time, lat, lng float64, rng *rand.Rand) map[string]any {
	hours := 9 * 24
	hourly := domain.HourlySeries{
		Time:         make([]string, hours),
		Temperature:  make([]float64, hours),
		Rain:         make([]float64, hours),
		Showers:      make([]float64, hours),
		Snowfall:     make([]float64, hours),
		WindSpeed10M: make([]float64, hours),
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for h := 0; h < hours; h++ {
		ts := day.Add(time.Duration(h) * time.Hour)
		hourly.Time[h] = ts.Format("2006-01-02T15:04")
		hourly.Temperature[h] = round1(12 + 10*rng.Float64())
		hourly.Rain[h] = round1(rng.Float64())
		hourly.WindSpeed10M[h] = round1(5 + 20*rng.Float64())
	}
	return map[string]any{"latitude": lat, "longitude": lng, "hourly": hourly}
}

func round1(v float64) float64 {
	return float64(int(v*10)) / 10
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
