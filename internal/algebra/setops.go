package algebra

import (
	"fmt"
	"slices"

	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

// mergeFunc combines two sorted, duplicate-free row lists.
type mergeFunc func(a, b []record.Row) []record.Row

// setOperation validates both operands, brings them into canonical column
// order and row order, and merges them. Operand tables are not modified.
func setOperation(left, right *table.Table, merge mergeFunc) (*table.Table, error) {
	if left.HasDuplicateColumns() {
		return nil, fmt.Errorf("%w: left operand", table.ErrDuplicateColumn)
	}
	if right.HasDuplicateColumns() {
		return nil, fmt.Errorf("%w: right operand", table.ErrDuplicateColumn)
	}

	lc, rc := left.Clone(), right.Clone()
	lc.SortColumns()
	rc.SortColumns()

	if !slices.Equal(lc.ColumnNames(), rc.ColumnNames()) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrHeaderMismatch, left.Header(), right.Header())
	}
	for i := 0; i < lc.ColumnCount(); i++ {
		if lc.ColumnType(i) != rc.ColumnType(i) {
			return nil, fmt.Errorf("%w: column %q is %s and %s", record.ErrKindMismatch,
				lc.ColumnNames()[i], lc.ColumnType(i), rc.ColumnType(i))
		}
	}

	a, b := lc.Transform(), rc.Transform()
	table.SortRows(a)
	table.SortRows(b)
	a, b = dedupSorted(a), dedupSorted(b)

	out := table.New(lc.Header())
	for _, row := range merge(a, b) {
		if err := out.InsertRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func dedupSorted(rows []record.Row) []record.Row {
	return slices.CompactFunc(rows, func(x, y record.Row) bool {
		return record.CompareRows(x, y) == 0
	})
}

func mergeUnion(a, b []record.Row) []record.Row {
	out := make([]record.Row, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := record.CompareRows(a[i], b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func mergeIntersect(a, b []record.Row) []record.Row {
	var out []record.Row
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := record.CompareRows(a[i], b[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func mergeMinus(a, b []record.Row) []record.Row {
	var out []record.Row
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) {
			return append(out, a[i:]...)
		}
		switch c := record.CompareRows(a[i], b[j]); {
		case c < 0:
			out = append(out, a[i])
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	return out
}
