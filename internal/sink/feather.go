package sink

import (
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

func arrowDataType(k kind) arrow.DataType {
	switch k {
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		// Timestamps are written as RFC 3339 strings so the three
		// output formats stay cell for cell identical.
		return arrow.BinaryTypes.String
	}
}

// writeFeather writes the table as an Arrow IPC file (Feather V2) holding a
// single record batch.
func writeFeather(path string, t *table.Table, schema []column) error {
	fields := make([]arrow.Field, len(schema))
	for i, c := range schema {
		fields[i] = arrow.Field{Name: c.name, Type: arrowDataType(c.kind), Nullable: true}
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	pool := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(pool, arrowSchema)
	defer builder.Release()

	for _, r := range t.Rows() {
		for i, c := range schema {
			appendArrowCell(builder.Field(i), r[c.name], c.kind)
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(arrowSchema), ipc.WithAllocator(pool))
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	if err := w.Write(record); err != nil {
		w.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return f.Close()
}

func appendArrowCell(b array.Builder, v any, k kind) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch k {
	case kindFloat:
		fb := b.(*array.Float64Builder)
		if i, ok := v.(int64); ok {
			fb.Append(float64(i))
		} else {
			fb.Append(v.(float64))
		}
	case kindInt:
		b.(*array.Int64Builder).Append(v.(int64))
	case kindBool:
		b.(*array.BooleanBuilder).Append(v.(bool))
	case kindTime:
		sb := b.(*array.StringBuilder)
		if ts, ok := v.(time.Time); ok {
			sb.Append(ts.Format(time.RFC3339))
		} else {
			sb.Append(formatCell(v))
		}
	default:
		b.(*array.StringBuilder).Append(formatCell(v))
	}
}
