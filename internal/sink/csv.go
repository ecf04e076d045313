package sink

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// writeCSV writes the table as a comma-delimited text file with a header row.
// Null cells become empty fields.
func writeCSV(path string, t *table.Table, schema []column) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(schema))
	for i, c := range schema {
		header[i] = c.name
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(schema))
	for _, r := range t.Rows() {
		for i, c := range schema {
			record[i] = formatCell(r[c.name])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
