// Command validate checks a staged artifact set for contract violations
// before it is handed to downstream consumers: restricted columns must be
// absent, the synthetic columns must be internally consistent, and the three
// artifact files must all be present and non-empty.
//
// Usage:
//
//	go run ./cmd/validate -dir data_backups
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// restrictedColumns must never appear in a published artifact.
var restrictedColumns = []string{
	"game_guid", "reverse_home_away_status", "inning_break_length",
	"time_zero_minute", "latitude", "longitude",
}

// requiredColumns are the minimum set every artifact carries.
var requiredColumns = []string{
	"game_id", "home_team_name", "away_team_name",
	"temperature_2m", "rain", "showers", "snowfall", "wind_speed_10m",
	"random_id", "id_includes_nineteen", "jenny", "jenny_error",
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "data_backups", "staging directory holding the exported artifacts")
	flag.Parse()

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	phases := []*phase{
		checkFiles(dir),
		checkColumns(dir),
		checkSynthetic(dir),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed\n", len(phases))
	return 0
}

// checkFiles verifies all three artifact formats exist and are non-empty.
func checkFiles(dir string) *phase {
	p := &phase{name: "artifact files"}
	for _, name := range []string{"mlb_games.csv", "mlb_games.parquet", "mlb_games.feather"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			p.errorf("%s is empty", name)
		}
	}
	return p
}

// checkColumns verifies the CSV header carries the required columns and none
// of the restricted ones.
func checkColumns(dir string) *phase {
	p := &phase{name: "column contract"}
	header, _, err := readCSV(dir)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	for _, name := range restrictedColumns {
		if slices.Contains(header, name) {
			p.errorf("restricted column %q present", name)
		}
	}
	for _, name := range requiredColumns {
		if !slices.Contains(header, name) {
			p.errorf("required column %q missing", name)
		}
	}
	return p
}

// checkSynthetic verifies the synthetic column family invariants row by row.
func checkSynthetic(dir string) *phase {
	p := &phase{name: "synthetic columns"}
	header, rows, err := readCSV(dir)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	col := func(name string) int { return slices.Index(header, name) }
	idIdx, flagIdx := col("random_id"), col("id_includes_nineteen")
	jennyIdx, jerrIdx := col("jenny"), col("jenny_error")
	if idIdx < 0 || flagIdx < 0 || jennyIdx < 0 || jerrIdx < 0 {
		p.errorf("synthetic columns missing from header")
		return p
	}

	for i, rec := range rows {
		id := rec[idIdx]
		if len(id) != 12 {
			p.errorf("row %d: random_id %q is not 12 characters", i, id)
		}
		wantFlag := "0"
		if strings.Contains(id, "19") {
			wantFlag = "1"
		}
		if rec[flagIdx] != wantFlag {
			p.errorf("row %d: id_includes_nineteen=%s for id %q, want %s", i, rec[flagIdx], id, wantFlag)
		}

		jenny, err := strconv.ParseFloat(rec[jennyIdx], 64)
		if err != nil {
			p.errorf("row %d: jenny %q is not numeric", i, rec[jennyIdx])
			continue
		}
		if jenny < -150 || jenny >= 150 {
			p.errorf("row %d: jenny %v outside [-150, 150)", i, jenny)
		}
		if want := strconv.FormatBool(jenny <= -50); rec[jerrIdx] != want {
			p.errorf("row %d: jenny_error=%s for jenny %v, want %s", i, rec[jerrIdx], jenny, want)
		}
	}
	return p
}

func readCSV(dir string) ([]string, [][]string, error) {
	f, err := os.Open(filepath.Join(dir, "mlb_games.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv has no header row")
	}
	return records[0], records[1:], nil
}
