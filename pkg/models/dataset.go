package models

import (
	"fmt"
	"strconv"
	"time"
)

// Dataset is a named in-memory table: ordered column names plus rows of
// scalar cells. Cells hold string, float64, bool, time.Time, or nil for
// missing. A dataset is mutated only by the cleaning stage, which returns a
// new canonical copy; everything downstream treats it as read-only.
type Dataset struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`

	// DateColumns marks columns tagged as date-candidates during cleaning.
	DateColumns map[string]bool `json:"date_columns,omitempty"`

	// CoercionFailures records, per column, how many non-missing values
	// failed numeric coercion. A non-zero entry means the column was left
	// as text (ambiguous coercion degrades, it never errors).
	CoercionFailures map[string]int `json:"coercion_failures,omitempty"`
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnValues returns all cells of the named column in row order.
// Returns nil for an unknown column.
func (d *Dataset) ColumnValues(name string) []any {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]any, 0, len(d.Rows))
	for _, row := range d.Rows {
		values = append(values, row[idx])
	}
	return values
}

// IsDateColumn reports whether the column was tagged as a date-candidate.
func (d *Dataset) IsDateColumn(name string) bool {
	return d.DateColumns[name]
}

// FormatValue renders a cell as its canonical string form. Missing cells
// render as the empty string. The canonical form is what distinct-value
// sets and sample values are built from, so it must be stable across runs.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
