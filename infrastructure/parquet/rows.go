// Package parquet adapts the dataset store ports to parquet files using
// dynamic schemas: column sets differ per dataset, so rows travel as
// map[string]any through the schema's Deconstruct/Reconstruct path instead
// of through generated structs.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// readAllRows reads every row of a parquet file into generic maps.
func readAllRows(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	schema := pf.Schema()

	var out []map[string]any
	for _, rg := range pf.RowGroups() {
		groupRows, err := readGroupRows(rg.Rows(), schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, groupRows...)
	}
	return out, nil
}

// readGroupRows drains one row group into generic maps. A read error other
// than io.EOF is returned, not treated as end of data.
func readGroupRows(rows parquet.Rows, schema *parquet.Schema) ([]map[string]any, error) {
	var out []map[string]any
	buf := make([]parquet.Row, 64)
	for {
		n, err := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			m := make(map[string]any)
			if rerr := schema.Reconstruct(&m, buf[i]); rerr != nil {
				rows.Close()
				return nil, fmt.Errorf("reconstruct row: %w", rerr)
			}
			out = append(out, m)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				rows.Close()
				return nil, fmt.Errorf("read rows: %w", err)
			}
			break
		}
	}
	if cerr := rows.Close(); cerr != nil {
		return nil, fmt.Errorf("close row reader: %w", cerr)
	}
	return out, nil
}

// normalizeValue flattens the value shapes Reconstruct produces (and callers
// hand us) into the small set the domain works with: float64, []float64,
// int64, string, bool.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case []any:
		vec := make([]float64, 0, len(v))
		for _, e := range v {
			f, ok := asFloat64(e)
			if !ok {
				return v
			}
			vec = append(vec, f)
		}
		return vec
	case []float32:
		vec := make([]float64, len(v))
		for i, e := range v {
			vec[i] = float64(e)
		}
		return vec
	case float32:
		return float64(v)
	case int, int32:
		return asInt64(v)
	case []byte:
		return string(v)
	default:
		return v
	}
}

// asStrings coerces a reconstructed list value into a string slice.
func asStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			switch s := e.(type) {
			case string:
				out = append(out, s)
			case []byte:
				out = append(out, string(s))
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func asFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
