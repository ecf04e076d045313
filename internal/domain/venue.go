package domain

import (
	"fmt"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// Stadium is one entry of the external stadium list.
type Stadium struct {
	Team    string  `json:"team"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// supplementalStadiums are parks missing from the external list.
var supplementalStadiums = []Stadium{
	{
		Team:    "Miami Marlins",
		Address: "501 Marlins Way, Miami, FL 33125",
		Lat:     25.7781487,
		Lng:     -80.2221747,
	},
	{
		Team:    "Los Angeles Angels",
		Address: "2000 E Gene Autry Way, Anaheim, CA 92806",
		Lat:     33.7998135,
		Lng:     -117.8824162,
	},
}

// teamRenames rewrites legacy franchise names still present in the external
// list. Matches are exact and case-sensitive.
var teamRenames = map[string]string{
	"Cleveland Indians":    "Cleveland Guardians",
	"Tampa Bay Devil Rays": "Tampa Bay Rays",
}

// ResolveVenues builds the team-name -> coordinate table from the fetched
// stadium list: supplemental parks appended, legacy names rewritten, and the
// street address dropped (not needed downstream). Duplicate team names keep
// their first coordinate.
func ResolveVenues(stadiums []Stadium) *table.Table {
	t := table.New("team", "latitude", "longitude")
	for _, s := range append(append([]Stadium(nil), stadiums...), supplementalStadiums...) {
		team := s.Team
		if renamed, ok := teamRenames[team]; ok {
			team = renamed
		}
		t.Append(table.Row{"team": team, "latitude": s.Lat, "longitude": s.Lng})
	}
	return t
}

// JoinCoordinates left-joins venue coordinates onto the normalized schedule,
// matching home_team_name against the resolver's team name. Unmatched teams
// keep null coordinates. The join helper column "team" is removed afterwards.
func JoinCoordinates(games *table.Table, venues *table.Table) (*table.Table, error) {
	joined := games.LeftJoin(venues,
		func(r table.Row) (string, bool) {
			name, ok := r["home_team_name"].(string)
			return name, ok
		},
		func(r table.Row) (string, bool) {
			name, ok := r["team"].(string)
			return name, ok
		},
	)
	if err := joined.Drop("team"); err != nil {
		return nil, fmt.Errorf("join coordinates: %w", err)
	}
	return joined, nil
}

// Coordinate is a (latitude, longitude) pair from the coordinate-joined
// schedule.
type Coordinate struct {
	Lat float64
	Lng float64
}

// DistinctCoordinates returns the distinct non-null coordinate pairs in
// first-occurrence order. Rows with null coordinates are skipped; they can
// never be looked up and keep null weather downstream.
func DistinctCoordinates(t *table.Table) []Coordinate {
	rows := t.Distinct(rowCoordKey)
	out := make([]Coordinate, 0, len(rows))
	for _, r := range rows {
		lat, _ := r["latitude"].(float64)
		lng, _ := r["longitude"].(float64)
		out = append(out, Coordinate{Lat: lat, Lng: lng})
	}
	return out
}

func rowCoordKey(r table.Row) (string, bool) {
	lat, ok := r["latitude"].(float64)
	if !ok {
		return "", false
	}
	lng, ok := r["longitude"].(float64)
	if !ok {
		return "", false
	}
	return coordKey(lat, lng), true
}

func coordKey(lat, lng float64) string {
	return fmt.Sprintf("%v,%v", lat, lng)
}
