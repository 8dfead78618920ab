package model

import "fmt"

// QueryResult is the tabular outcome of running a query.
type QueryResult struct {
	// Columns are the result column names in order.
	Columns []string
	// Rows hold scalar values in column order. Text arrives as string, NULL as nil.
	Rows [][]any
}

// Empty reports whether the result has no columns, i.e. the statement produced no result set.
func (r *QueryResult) Empty() bool {
	return r == nil || len(r.Columns) == 0
}

// Len returns the number of rows.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Strings renders every row as text. NULL becomes the empty string.
func (r *QueryResult) Strings() [][]string {
	out := make([][]string, 0, r.Len())
	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		out = append(out, cells)
	}
	return out
}

// FormatValue renders a scalar the way the result grid shows it.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
