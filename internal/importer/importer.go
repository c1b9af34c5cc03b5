// Package importer loads base tables from CSV files.
//
// The file layout is: line 1 holds the column kinds, line 2 the column
// names, and every following line one row. The table is named after the
// file's base name without extension.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuannm99/novarel/internal/catalog"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

var (
	ErrEmptyLine    = qerr.New(qerr.ErrSyntax, "empty line")
	ErrFieldCount   = qerr.New(qerr.ErrShape, "wrong number of fields")
	ErrEmptyName    = qerr.New(qerr.ErrSyntax, "empty column name")
	ErrNoRows       = qerr.New(qerr.ErrEmpty, "no data rows")
	ErrMissingLines = qerr.New(qerr.ErrSyntax, "missing header lines")
)

// LineError reports the 1-based line a CSV failure occurred on.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// TableName derives the catalog name from a file path.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// checkBlankLines rejects blank lines anywhere but at the very end, which
// encoding/csv would otherwise skip silently. Lines inside a quoted field
// are field content.
func checkBlankLines(data []byte, path string) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	line, blank := 0, 0
	quoted := false
	for sc.Scan() {
		line++
		text := sc.Text()
		wasQuoted := quoted
		if strings.Count(text, `"`)%2 == 1 {
			quoted = !quoted
		}
		if wasQuoted {
			continue
		}
		if strings.TrimSpace(text) == "" {
			if blank == 0 {
				blank = line
			}
			continue
		}
		if blank != 0 {
			return &LineError{Path: path, Line: blank, Err: ErrEmptyLine}
		}
	}
	return sc.Err()
}

// ReadTable parses a CSV document. path is only used in error messages.
func ReadTable(r io.Reader, path string) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importer: read %s: %w", path, err)
	}
	if err := checkBlankLines(data, path); err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	lineErr := func(line int, err error) error {
		return &LineError{Path: path, Line: line, Err: err}
	}

	var (
		header record.Header
		kinds  []record.Kind
		tbl    *table.Table
	)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, lineErr(pe.Line, qerr.New(qerr.ErrSyntax, pe.Err.Error()))
			}
			return nil, fmt.Errorf("importer: parse %s: %w", path, err)
		}
		line, _ := cr.FieldPos(0)

		switch {
		case kinds == nil:
			for _, f := range fields {
				k, err := record.ParseKind(strings.TrimSpace(f))
				if err != nil {
					return nil, lineErr(line, err)
				}
				kinds = append(kinds, k)
			}

		case tbl == nil:
			if len(fields) != len(kinds) {
				return nil, lineErr(line, fmt.Errorf("%w: %d names for %d kinds", ErrFieldCount, len(fields), len(kinds)))
			}
			for i, f := range fields {
				name := strings.TrimSpace(f)
				if name == "" {
					return nil, lineErr(line, ErrEmptyName)
				}
				if err := catalog.ValidateIdent(name); err != nil {
					return nil, lineErr(line, err)
				}
				header = append(header, record.Column{Name: name, Kind: kinds[i]})
			}
			tbl = table.New(header)
			if tbl.HasDuplicateColumns() {
				return nil, lineErr(line, table.ErrDuplicateColumn)
			}

		default:
			if len(fields) != len(kinds) {
				return nil, lineErr(line, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), len(kinds)))
			}
			row := make(record.Row, len(fields))
			for i, f := range fields {
				c, err := record.ParseCell(kinds[i], f)
				if err != nil {
					return nil, lineErr(line, fmt.Errorf("column %q: %w", header[i].Name, err))
				}
				row[i] = c
			}
			if err := tbl.InsertRow(row); err != nil {
				return nil, lineErr(line, err)
			}
		}
	}

	switch {
	case kinds == nil:
		return nil, lineErr(1, ErrMissingLines)
	case tbl == nil:
		return nil, lineErr(2, ErrMissingLines)
	case tbl.RowCount() == 0:
		return nil, lineErr(3, ErrNoRows)
	}
	return tbl, nil
}

// ImportFile reads path and inserts the table into db under its base name.
// It returns the name used.
func ImportFile(db *catalog.Database, path string) (string, error) {
	name := TableName(path)
	if err := catalog.ValidateIdent(name); err != nil {
		return "", fmt.Errorf("importer: table name from %s: %w", path, err)
	}
	if db.NameTaken(name) {
		return "", fmt.Errorf("%w: %q", catalog.ErrNameTaken, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	tbl, err := ReadTable(f, path)
	if err != nil {
		return "", err
	}
	if err := db.InsertTable(name, tbl); err != nil {
		return "", err
	}
	slog.Info("importer: table loaded", "table", name, "rows", tbl.RowCount(), "cols", tbl.ColumnCount())
	return name, nil
}
