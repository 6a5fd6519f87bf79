package driver

import (
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mimicsql/mimicsql"
)

// Rows implements driver.Rows over a result set. Because engine rows are
// maps, the column order is the sorted union of all field names, which
// keeps scans deterministic.
type Rows struct {
	cols []string
	rows []mimicsql.Row
	idx  int
}

func newRows(res *mimicsql.Result) *Rows {
	seen := map[string]struct{}{}
	for _, row := range res.Rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return &Rows{cols: cols, rows: res.Rows}
}

// Columns returns the sorted column names.
func (r *Rows) Columns() []string { return r.cols }

// Close releases the result set.
func (r *Rows) Close() error { return nil }

// Next copies the next row into dest or returns io.EOF.
func (r *Rows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	r.idx++
	for i, c := range r.cols {
		dest[i] = toDriverValue(row[c])
	}
	return nil
}

func toDriverValue(v any) driver.Value {
	switch t := v.(type) {
	case nil, bool, string, int64, float64, []byte:
		return t
	case time.Time:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Ensure Rows implements driver.Rows.
var _ driver.Rows = &Rows{}
