// Package warehouse persists the final games table to Postgres so downstream
// reporting can query it without touching the object storage artifacts.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// insertBatchSize caps how many rows go into a single INSERT statement.
const insertBatchSize = 500

// Writer inserts game rows into a Postgres table.
type Writer struct {
	db        *gorm.DB
	tableName string
	logger    *slog.Logger
}

// Open connects to Postgres with the given DSN and returns a Writer targeting
// tableName.
func Open(dsn, tableName string, logger *slog.Logger) (*Writer, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return NewWriter(db, tableName, logger), nil
}

// NewWriter wraps an existing gorm handle.
func NewWriter(db *gorm.DB, tableName string, logger *slog.Logger) *Writer {
	return &Writer{db: db, tableName: tableName, logger: logger}
}

// WriteGames inserts every row of the table in batches. Each row is padded to
// the full column set so all batches share one column list.
func (w *Writer) WriteGames(ctx context.Context, t *table.Table) error {
	cols := t.Columns()
	rows := make([]map[string]any, 0, t.Len())
	for _, r := range t.Rows() {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			rec[c] = r[c]
		}
		rows = append(rows, rec)
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		batch := rows[start:end]
		if err := w.db.WithContext(ctx).Table(w.tableName).Create(batch).Error; err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
	}

	w.logger.Info("wrote games to warehouse", "table", w.tableName, "rows", len(rows))
	return nil
}
