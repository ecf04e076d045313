package domain

import (
	"fmt"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// restrictedColumns is the fixed set removed before export: the globally
// unique game GUID (treated as sensitive), two low-value status fields, and
// the three join-helper columns.
var restrictedColumns = []string{
	"game_guid",
	"reverse_home_away_status",
	"inning_break_length",
	"time_zero_minute",
	"latitude",
	"longitude",
}

// Redact drops the restricted columns in place. Every column must be present;
// a missing one means the upstream schema drifted and the run must fail
// rather than ship a partially redacted dataset.
func Redact(t *table.Table) error {
	if err := t.Drop(restrictedColumns...); err != nil {
		return fmt.Errorf("redact: %w", err)
	}
	return nil
}
