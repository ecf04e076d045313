// Package sink serializes the final games table into three artifact formats
// and hands each to the object storage uploader: a delimited text table
// (CSV), a columnar binary table (Parquet), and a lightweight binary row
// table (Arrow IPC / Feather). All three carry identical rows and columns.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// baseName is the artifact filename stem shared by all three formats.
const baseName = "mlb_games"

// ObjectUploader sends a local file to object storage under a key.
type ObjectUploader interface {
	Upload(ctx context.Context, localPath, key string) error
}

// Exporter writes the final table to a local staging directory and uploads
// the results.
type Exporter struct {
	stagingDir string
	keyPrefix  string
	uploader   ObjectUploader
	logger     *slog.Logger
}

// NewExporter creates an Exporter that stages files under stagingDir and
// uploads them under keyPrefix.
func NewExporter(stagingDir, keyPrefix string, uploader ObjectUploader, logger *slog.Logger) *Exporter {
	return &Exporter{
		stagingDir: stagingDir,
		keyPrefix:  keyPrefix,
		uploader:   uploader,
		logger:     logger,
	}
}

// Export writes the CSV, Parquet, and Feather artifacts locally, then uploads
// each. Any local write error aborts before uploads begin; upload errors are
// aggregated so one bad destination does not mask another.
func (e *Exporter) Export(ctx context.Context, t *table.Table) error {
	if err := os.MkdirAll(e.stagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	schema := inferSchema(t)
	artifacts := []struct {
		name  string
		write func(string, *table.Table, []column) error
	}{
		{baseName + ".csv", writeCSV},
		{baseName + ".parquet", writeParquet},
		{baseName + ".feather", writeFeather},
	}

	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		p := filepath.Join(e.stagingDir, a.name)
		if err := a.write(p, t, schema); err != nil {
			return fmt.Errorf("write %s: %w", a.name, err)
		}
		e.logger.Info("wrote artifact", "path", p, "rows", t.Len())
		paths[i] = p
	}

	var uploadErr *multierror.Error
	for i, a := range artifacts {
		key := path.Join(e.keyPrefix, a.name)
		if err := e.uploader.Upload(ctx, paths[i], key); err != nil {
			uploadErr = multierror.Append(uploadErr, err)
		}
	}
	return uploadErr.ErrorOrNil()
}

// kind is the inferred storage type of a column.
type kind int

const (
	kindString kind = iota
	kindFloat
	kindInt
	kindBool
	kindTime
)

type column struct {
	name string
	kind kind
}

// inferSchema determines each column's kind from its first non-nil cell.
// Columns that are entirely null are treated as strings.
func inferSchema(t *table.Table) []column {
	cols := t.Columns()
	out := make([]column, len(cols))
	for i, name := range cols {
		out[i] = column{name: name, kind: kindString}
		for _, r := range t.Rows() {
			v := r[name]
			if v == nil {
				continue
			}
			out[i].kind = kindOf(v)
			break
		}
	}
	return out
}

func kindOf(v any) kind {
	switch v.(type) {
	case float64:
		return kindFloat
	case int64, int:
		return kindInt
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	default:
		return kindString
	}
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
