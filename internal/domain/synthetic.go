package domain

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// DefaultSeed seeds both synthetic column families unless overridden.
const DefaultSeed int64 = 8675309

// idAlphabet is the 62-character alphanumeric alphabet, ASCII letters first
// then digits. The order is part of the reproducibility contract.
const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const idLength = 12

// AddRandomID appends the random_id and id_includes_nineteen columns. A fresh
// generator is created from the seed, so the column family is reproducible
// independently of any other draw in the process. Each row consumes one full
// 12-character draw before the next row begins.
func AddRandomID(t *table.Table, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	ids := make([]any, t.Len())
	flags := make([]any, t.Len())
	var b [idLength]byte
	for i := range ids {
		for j := range b {
			b[j] = idAlphabet[rng.Intn(len(idAlphabet))]
		}
		id := string(b[:])
		ids[i] = id
		flags[i] = boolToInt(strings.Contains(id, "19"))
	}

	if err := t.AddColumn("random_id", ids); err != nil {
		return fmt.Errorf("add random id: %w", err)
	}
	if err := t.AddColumn("id_includes_nineteen", flags); err != nil {
		return fmt.Errorf("add random id: %w", err)
	}
	return nil
}

// AddJenny appends the jenny and jenny_error columns: one uniform draw on
// [-150, 150) per row from a fresh seeded generator, with jenny_error set
// when the value is at or below -50.
func AddJenny(t *table.Table, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	values := make([]any, t.Len())
	errsCol := make([]any, t.Len())
	for i := range values {
		v := rng.Float64()*300 - 150
		values[i] = v
		errsCol[i] = v <= -50
	}

	if err := t.AddColumn("jenny", values); err != nil {
		return fmt.Errorf("add jenny: %w", err)
	}
	if err := t.AddColumn("jenny_error", errsCol); err != nil {
		return fmt.Errorf("add jenny: %w", err)
	}
	return nil
}

// boolToInt mirrors the historical encoding of id_includes_nineteen as 0/1.
func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
