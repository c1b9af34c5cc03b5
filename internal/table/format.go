package table

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Format renders the table as aligned text:
//
//	name | dept
//	-----+-----
//	Ann  | R&D
func (t *Table) Format(w io.Writer) error {
	cols := t.ColumnNames()
	cells := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = make([]string, len(row))
		for i, c := range row {
			cells[r][i] = c.String()
		}
	}
	return FormatGrid(w, cols, cells)
}

// FormatGrid renders a header and string cells in the Format layout.
func FormatGrid(w io.Writer, cols []string, rows [][]string) error {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
			}
		}
	}

	var b strings.Builder
	writeRow := func(values []string) {
		for i := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			v := ""
			if i < len(values) {
				v = values[i]
			}
			b.WriteString(padRight(v, widths[i]))
		}
		b.WriteByte('\n')
	}

	writeRow(cols)
	for i := range cols {
		if i > 0 {
			b.WriteString("-+-")
		}
		b.WriteString(strings.Repeat("-", widths[i]))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		writeRow(row)
	}
	fmt.Fprintf(&b, "(%d rows)\n", len(rows))

	_, err := io.WriteString(w, b.String())
	return err
}

func padRight(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
