package record

import "strings"

// Row is an ordered tuple of cells, positionally matching a Header.
type Row []Cell

func (r Row) Clone() Row {
	return append(Row(nil), r...)
}

// CompareRows orders rows lexicographically, column by column. A row that
// is a strict prefix of the other sorts first. Rows from one table never
// mix kinds in a column, so a kind mismatch falls back to ordering by kind.
func CompareRows(a, b Row) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		c, err := Compare(a[i], b[i])
		if err != nil {
			if a[i].kind < b[i].kind {
				return -1
			}
			return 1
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Values converts the row to plain Go values.
func (r Row) Values() []any {
	out := make([]any, len(r))
	for i, c := range r {
		out[i] = c.Value()
	}
	return out
}

func (r Row) String() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.Literal()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
