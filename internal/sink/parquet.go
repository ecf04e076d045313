package sink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/ballparkdata/mlb-weather-etl/internal/table"
)

// parquetJSONSchema builds the parquet-go JSON schema for the table. All
// columns are OPTIONAL so null joins and empty-column batches round-trip.
// Timestamps are stored as UTF8 RFC 3339 strings, matching the CSV output.
func parquetJSONSchema(schema []column) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	root := struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}

	for _, c := range schema {
		var typ string
		switch c.kind {
		case kindFloat:
			typ = "type=DOUBLE"
		case kindInt:
			typ = "type=INT64"
		case kindBool:
			typ = "type=BOOLEAN"
		default:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8"
		}
		root.Fields = append(root.Fields, field{
			Tag: fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.name, typ),
		})
	}

	data, err := json.Marshal(root)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeParquet writes the table as a snappy-compressed Parquet file with a
// single row group.
func writeParquet(path string, t *table.Table, schema []column) error {
	jsonSchema, err := parquetJSONSchema(schema)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fw.Close()

	pw, err := writer.NewJSONWriter(jsonSchema, fw, 2)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range t.Rows() {
		rec := make(map[string]any, len(schema))
		for _, c := range schema {
			v := r[c.name]
			if v == nil {
				continue // absent keys become nulls
			}
			rec[c.name] = parquetValue(v, c.kind)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		if err := pw.Write(string(data)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := stopParquetWriter(pw); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return fw.Close()
}

// stopParquetWriter flushes the row group footer. WriteStop can panic on
// malformed rows, so the panic is converted to an error.
func stopParquetWriter(pw *writer.JSONWriter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write stop panic: %v", r)
		}
	}()
	return pw.WriteStop()
}

func parquetValue(v any, k kind) any {
	switch k {
	case kindFloat:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
		return v
	case kindInt, kindBool:
		return v
	case kindTime:
		if ts, ok := v.(time.Time); ok {
			return ts.Format(time.RFC3339)
		}
		return formatCell(v)
	default:
		return formatCell(v)
	}
}
