package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

var (
	// camelRunRe inserts an underscore before an uppercase run that is
	// followed by lowercase letters: "HTTPStatus" -> "HTTP_Status".
	camelRunRe = regexp.MustCompile(`(.)([A-Z][a-z]+)`)

	// lowerUpperRe inserts an underscore between a lowercase letter or digit
	// and the uppercase letter that follows: "gamePk" -> "game_Pk".
	lowerUpperRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// CamelToSnake converts a mixed/camel-case column name to snake_case.
// It is idempotent: applying it to an already converted name is a no-op.
func CamelToSnake(name string) string {
	s := camelRunRe.ReplaceAllString(name, "${1}_${2}")
	s = lowerUpperRe.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// NormalizeSchedule rewrites the flattened schedule in place to the stable
// tabular schema: snake_case column names, game_pk renamed to game_id,
// identifier columns cast to string, timestamp columns parsed, and the
// time_zero_minute join key derived.
func NormalizeSchedule(t *table.Table) error {
	for _, col := range t.Columns() {
		if snake := CamelToSnake(col); snake != col {
			if err := t.Rename(col, snake); err != nil {
				return fmt.Errorf("normalize: %w", err)
			}
		}
	}

	if err := t.Rename("game_pk", "game_id"); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	for _, col := range []string{"game_id", "venue_id"} {
		if !t.HasColumn(col) {
			return fmt.Errorf("normalize: %q: %w", col, table.ErrColumnMissing)
		}
		for _, r := range t.Rows() {
			r[col] = stringifyID(r[col])
		}
	}

	if !t.HasColumn("game_date") || !t.HasColumn("official_date") {
		return fmt.Errorf("normalize: timestamp columns: %w", table.ErrColumnMissing)
	}
	t.AppendColumnName("time_zero_minute")
	for _, r := range t.Rows() {
		gameDate, err := parseInstant(r["game_date"])
		if err != nil {
			return fmt.Errorf("normalize: game_date: %w", err)
		}
		officialDate, err := parseCalendarDate(r["official_date"])
		if err != nil {
			return fmt.Errorf("normalize: official_date: %w", err)
		}
		r["game_date"] = gameDate
		r["official_date"] = officialDate
		r["time_zero_minute"] = ZeroMinute(gameDate)
	}
	return nil
}

// ZeroMinute strips the timezone from an instant and zeroes minutes, seconds,
// and sub-second units. Pure function of its input; used only as a join key.
func ZeroMinute(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
}

func stringifyID(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func parseInstant(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %q: %w", t, err)
		}
		return ts, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseCalendarDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse("2006-01-02", t)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %q: %w", t, err)
		}
		return ts, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected date type %T", v)
	}
}
