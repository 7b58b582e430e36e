package parquet

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
)

type measurement struct {
	Value int64 `parquet:"value"`
}

// stubRows feeds pre-built batches and then either io.EOF or a read error.
type stubRows struct {
	schema  *parquet.Schema
	batches [][]parquet.Row
	readErr error
	closed  bool
}

func (s *stubRows) ReadRows(buf []parquet.Row) (int, error) {
	if len(s.batches) == 0 {
		if s.readErr != nil {
			return 0, s.readErr
		}
		return 0, io.EOF
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return copy(buf, batch), nil
}

func (s *stubRows) Schema() *parquet.Schema { return s.schema }

func (s *stubRows) SeekToRow(int64) error { return nil }

func (s *stubRows) Close() error {
	s.closed = true
	return nil
}

func measurementBatch(schema *parquet.Schema, values ...int64) []parquet.Row {
	rows := make([]parquet.Row, len(values))
	for i, v := range values {
		rows[i] = schema.Deconstruct(nil, &measurement{Value: v})
	}
	return rows
}

func TestReadGroupRows(t *testing.T) {
	schema := parquet.SchemaOf(measurement{})
	rows := &stubRows{
		schema: schema,
		batches: [][]parquet.Row{
			measurementBatch(schema, 1, 2),
			measurementBatch(schema, 3),
		},
	}

	out, err := readGroupRows(rows, schema)
	if err != nil {
		t.Fatalf("readGroupRows() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("read %d rows, want 3", len(out))
	}
	if got := asInt64(out[2]["value"]); got != 3 {
		t.Errorf("last value = %d, want 3", got)
	}
	if !rows.closed {
		t.Error("row reader was not closed")
	}
}

func TestReadGroupRowsSurfacesReadErrors(t *testing.T) {
	// A mid-file failure must not be mistaken for end of data: returning
	// the rows read so far would silently truncate the table.
	schema := parquet.SchemaOf(measurement{})
	rows := &stubRows{
		schema:  schema,
		batches: [][]parquet.Row{measurementBatch(schema, 1)},
		readErr: errors.New("corrupt row group"),
	}

	_, err := readGroupRows(rows, schema)
	if err == nil {
		t.Fatal("readGroupRows() error = nil, want read failure")
	}
	if !strings.Contains(err.Error(), "corrupt row group") {
		t.Errorf("error = %v, want the underlying read failure", err)
	}
	if !rows.closed {
		t.Error("row reader was not closed after the failure")
	}
}
