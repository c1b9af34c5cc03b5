package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/record"
)

var (
	ErrArity           = qerr.New(qerr.ErrShape, "row arity does not match header")
	ErrUnknownColumn   = qerr.New(qerr.ErrResolution, "column was not found")
	ErrAmbiguousColumn = qerr.New(qerr.ErrShape, "column name is ambiguous")
	ErrDuplicateColumn = qerr.New(qerr.ErrShape, "table has column duplicates")
)

// Table is a strongly typed column set plus an ordered row store.
// Rows are kept in insertion order; every row matches the header.
type Table struct {
	header record.Header
	rows   []record.Row
}

func New(header record.Header) *Table {
	return &Table{header: header.Clone()}
}

// InsertRow appends a copy of cells. Nothing is stored on failure.
func (t *Table) InsertRow(cells record.Row) error {
	if len(cells) != len(t.header) {
		return fmt.Errorf("%w: want %d cells, got %d", ErrArity, len(t.header), len(cells))
	}
	for i, c := range cells {
		if c.Kind() != t.header[i].Kind {
			return fmt.Errorf("%w: column %q expects %s, got %s",
				record.ErrKindMismatch, t.header[i].Name, t.header[i].Kind, c.Kind())
		}
	}
	t.rows = append(t.rows, cells.Clone())
	return nil
}

func (t *Table) Header() record.Header { return t.header.Clone() }
func (t *Table) ColumnNames() []string  { return t.header.Names() }
func (t *Table) ColumnCount() int       { return len(t.header) }
func (t *Table) RowCount() int          { return len(t.rows) }

func (t *Table) ColumnType(i int) record.Kind {
	return t.header[i].Kind
}

// Row returns a copy of row i.
func (t *Table) Row(i int) record.Row {
	return t.rows[i].Clone()
}

// Scan calls fn for every row in insertion order. fn must not retain or
// modify the row.
func (t *Table) Scan(fn func(i int, row record.Row) error) error {
	for i, r := range t.rows {
		if err := fn(i, r); err != nil {
			return err
		}
	}
	return nil
}

// ColumnIndex returns the position of the column called name.
func (t *Table) ColumnIndex(name string) (int, error) {
	pos := -1
	for i, c := range t.header {
		if c.Name != name {
			continue
		}
		if pos >= 0 {
			return -1, fmt.Errorf("%w: %q", ErrAmbiguousColumn, name)
		}
		pos = i
	}
	if pos < 0 {
		return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return pos, nil
}

func (t *Table) HasDuplicateColumns() bool {
	seen := make(map[string]struct{}, len(t.header))
	for _, c := range t.header {
		if _, ok := seen[c.Name]; ok {
			return true
		}
		seen[c.Name] = struct{}{}
	}
	return false
}

// canonicalOrder returns header positions sorted by column name, then kind.
func (t *Table) canonicalOrder() []int {
	order := make([]int, len(t.header))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ca, cb := t.header[a], t.header[b]
		if c := strings.Compare(ca.Name, cb.Name); c != 0 {
			return c
		}
		return int(ca.Kind) - int(cb.Kind)
	})
	return order
}

// SortColumns rewrites the table into canonical column order and permutes
// every row to match.
func (t *Table) SortColumns() {
	order := t.canonicalOrder()
	if slices.IsSorted(order) {
		return
	}

	header := make(record.Header, len(order))
	for i, pos := range order {
		header[i] = t.header[pos]
	}
	for r, row := range t.rows {
		nr := make(record.Row, len(order))
		for i, pos := range order {
			nr[i] = row[pos]
		}
		t.rows[r] = nr
	}
	t.header = header
}

// HasIdenticalHeader compares canonical headers. Neither table is modified.
func (t *Table) HasIdenticalHeader(other *Table) bool {
	if len(t.header) != len(other.header) {
		return false
	}
	a, b := t.canonicalOrder(), other.canonicalOrder()
	for i := range a {
		if t.header[a[i]] != other.header[b[i]] {
			return false
		}
	}
	return true
}

// Transform returns value copies of all rows, detached from the table.
func (t *Table) Transform() []record.Row {
	out := make([]record.Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// SortRows orders rows by record.CompareRows.
func SortRows(rows []record.Row) {
	slices.SortStableFunc(rows, record.CompareRows)
}

func (t *Table) Clone() *Table {
	return &Table{header: t.header.Clone(), rows: t.Transform()}
}

// Rename changes the name of column old. The new name must not be taken.
func (t *Table) Rename(old, name string) error {
	pos, err := t.ColumnIndex(old)
	if err != nil {
		return err
	}
	if old == name {
		return nil
	}
	for _, c := range t.header {
		if c.Name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
	}
	t.header[pos].Name = name
	return nil
}
