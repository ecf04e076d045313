package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ballparkdata/mlb-weather-etl/internal/ordered"
	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// Schedule is the decoded schedule response: one bucket per calendar date,
// each holding its games in response order. Games stay order-preserving
// objects until flattening so output column order follows the wire.
type Schedule struct {
	Dates []ScheduleDate `json:"dates"`
}

// ScheduleDate is a single date bucket of the schedule response.
type ScheduleDate struct {
	Date  string            `json:"date"`
	Games []*ordered.Object `json:"games"`
}

// inlineCategories are the nested sub-objects whose scalar fields are copied
// into the flat row under a "<parent>_<key>" column.
var inlineCategories = []string{"status", "venue", "content"}

// teamRule maps one path inside the nested "teams" block to a flat column.
type teamRule struct {
	column    string
	path      []string
	transform func(any) (any, error)
}

// teamRules is the declarative mapping for the home/away team block. Rule
// order is column order in the flattened output.
var teamRules = []teamRule{
	{"home_team_id", []string{"teams", "home", "team", "id"}, asString},
	{"home_team_name", []string{"teams", "home", "team", "name"}, asIs},
	{"home_team_link", []string{"teams", "home", "team", "link"}, asIs},
	{"home_team_wins", []string{"teams", "home", "leagueRecord", "wins"}, asScalar},
	{"home_team_losses", []string{"teams", "home", "leagueRecord", "losses"}, asScalar},
	{"home_team_win_rate", []string{"teams", "home", "leagueRecord", "pct"}, asFloat},
	{"away_team_id", []string{"teams", "away", "team", "id"}, asString},
	{"away_team_name", []string{"teams", "away", "team", "name"}, asIs},
	{"away_team_link", []string{"teams", "away", "team", "link"}, asIs},
	{"away_team_wins", []string{"teams", "away", "leagueRecord", "wins"}, asScalar},
	{"away_team_losses", []string{"teams", "away", "leagueRecord", "losses"}, asScalar},
	{"away_team_win_rate", []string{"teams", "away", "leagueRecord", "pct"}, asFloat},
}

// FlattenSchedule converts the nested schedule response into one flat row per
// game. Row order follows the response: date buckets in order, games within
// each bucket in order. Every top-level scalar is copied; status, venue, and
// content scalars are inlined with a prefix; the teams block expands to the
// twelve teamRules columns. The four nested keys do not survive as columns.
func FlattenSchedule(sched Schedule) (*table.Table, error) {
	t := table.New()
	for _, bucket := range sched.Dates {
		for _, game := range bucket.Games {
			row, columns, err := flattenGame(game)
			if err != nil {
				return nil, fmt.Errorf("flatten schedule date %s: %w", bucket.Date, err)
			}
			for _, c := range columns {
				t.AppendColumnName(c)
			}
			t.Append(row)
		}
	}
	return t, nil
}

// flattenGame flattens one raw game record, returning the row and its column
// names in source order.
func flattenGame(game *ordered.Object) (table.Row, []string, error) {
	row := make(table.Row)
	var columns []string

	add := func(col string, v any) {
		row[col] = v
		columns = append(columns, col)
	}

	for _, key := range game.Keys() {
		if key == "teams" {
			continue
		}
		val, _ := game.Get(key)

		if nested, ok := val.(*ordered.Object); ok {
			if !isInlineCategory(key) {
				continue
			}
			for _, nestedKey := range nested.Keys() {
				nestedVal, _ := nested.Get(nestedKey)
				if !isScalar(nestedVal) {
					continue
				}
				add(key+"_"+nestedKey, mustScalar(nestedVal))
			}
			continue
		}
		if !isScalar(val) {
			continue
		}
		add(key, mustScalar(val))
	}

	for _, rule := range teamRules {
		raw, ok := game.Lookup(rule.path...)
		if !ok {
			return nil, nil, fmt.Errorf("flatten game: missing %v", rule.path)
		}
		v, err := rule.transform(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("flatten game: %s: %w", rule.column, err)
		}
		add(rule.column, v)
	}
	return row, columns, nil
}

func isInlineCategory(key string) bool {
	for _, c := range inlineCategories {
		if key == c {
			return true
		}
	}
	return false
}

// isScalar reports whether v is a JSON leaf (string, number, bool, or null).
func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number:
		return true
	default:
		return false
	}
}

// mustScalar converts a decoded JSON leaf to its table representation:
// json.Number becomes int64 when integral, float64 otherwise.
func mustScalar(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func asIs(v any) (any, error) {
	return mustScalar(v), nil
}

func asScalar(v any) (any, error) {
	return mustScalar(v), nil
}

// asString renders identifiers as strings, keeping leading zeros and avoiding
// numeric formatting.
func asString(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return nil, fmt.Errorf("cannot represent %T as string", v)
	}
}

// asFloat parses the win percentage, which the source encodes as a record
// string such as ".583".
func asFloat(v any) (any, error) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", t, err)
		}
		return f, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", t.String(), err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot represent %T as float", v)
	}
}
