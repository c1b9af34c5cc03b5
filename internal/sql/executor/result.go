package executor

import (
	"fmt"
	"io"

	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

// Result is the generic statement result returned to the caller.
type Result struct {
	Columns []string
	Kinds   []string
	Rows    [][]any

	// Message is set by meta commands that produce text instead of rows.
	Message string

	AffectedRows int64
}

func tableResult(t *table.Table) *Result {
	res := &Result{Columns: t.ColumnNames()}
	for _, c := range t.Header() {
		res.Kinds = append(res.Kinds, c.Kind.String())
	}
	_ = t.Scan(func(_ int, row record.Row) error {
		res.Rows = append(res.Rows, row.Values())
		return nil
	})
	res.AffectedRows = int64(len(res.Rows))
	return res
}

func gridResult(cols []string, rows [][]any) *Result {
	return &Result{Columns: cols, Rows: rows, AffectedRows: int64(len(rows))}
}

// Print writes the message, if any, followed by the rows as a grid.
func (r *Result) Print(w io.Writer) error {
	if r.Message != "" {
		if _, err := fmt.Fprintln(w, r.Message); err != nil {
			return err
		}
	}
	if len(r.Columns) == 0 {
		if r.Message == "" {
			_, err := fmt.Fprintf(w, "OK (%d affected)\n", r.AffectedRows)
			return err
		}
		return nil
	}

	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return table.FormatGrid(w, r.Columns, rows)
}
