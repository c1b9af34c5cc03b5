// Package catalog holds the session database: named base tables and named
// stored queries. A name identifies at most one entry across both maps.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tuannm99/novarel/internal/algebra"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/table"
)

var (
	ErrNameTaken    = qerr.New(qerr.ErrResolution, "name already taken")
	ErrInvalidName  = qerr.New(qerr.ErrSyntax, "invalid identifier")
	ErrClosed       = qerr.New(qerr.ErrResolution, "database is closed")
	ErrNilTableRef  = qerr.New(qerr.ErrShape, "nil table")
	ErrNilQueryNode = qerr.New(qerr.ErrShape, "nil query")
)

var _ algebra.Resolver = (*Database)(nil)

type Database struct {
	name    string
	tables  map[string]*table.Table
	queries map[string]*algebra.Query
	closed  bool
}

func New(name string) *Database {
	return &Database{
		name:    cases.Upper(language.Und).String(name),
		tables:  make(map[string]*table.Table),
		queries: make(map[string]*algebra.Query),
	}
}

func (db *Database) Name() string { return db.name }

// ValidateIdent checks the identifier rules shared by tables, queries and
// columns: a letter or '_' first, then letters, digits or '_'.
func ValidateIdent(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (db *Database) checkInsert(name string) error {
	if db.closed {
		return ErrClosed
	}
	if err := ValidateIdent(name); err != nil {
		return err
	}
	if db.NameTaken(name) {
		return fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	return nil
}

func (db *Database) InsertTable(name string, t *table.Table) error {
	if t == nil {
		return ErrNilTableRef
	}
	if err := db.checkInsert(name); err != nil {
		return err
	}
	db.tables[name] = t
	slog.Debug("catalog: table inserted", "db", db.name, "table", name, "rows", t.RowCount())
	return nil
}

// InsertQuery stores q under name and archives the name on the node.
func (db *Database) InsertQuery(name string, q *algebra.Query) error {
	if q == nil {
		return ErrNilQueryNode
	}
	if err := db.checkInsert(name); err != nil {
		return err
	}
	q.ArchiveQueryName(name)
	db.queries[name] = q
	slog.Debug("catalog: query inserted", "db", db.name, "query", name, "resolved", q.Resolved())
	return nil
}

func (db *Database) GetTable(name string) *table.Table    { return db.tables[name] }
func (db *Database) GetTableQ(name string) *algebra.Query { return db.queries[name] }

func (db *Database) TableExists(name string) bool {
	_, ok := db.tables[name]
	return ok
}

func (db *Database) QueryExists(name string) bool {
	_, ok := db.queries[name]
	return ok
}

func (db *Database) NameTaken(name string) bool {
	return db.TableExists(name) || db.QueryExists(name)
}

func (db *Database) TableNames() []string { return sortedKeys(db.tables) }
func (db *Database) QueryNames() []string { return sortedKeys(db.queries) }

// Close drops every table and query. Later inserts fail with ErrClosed.
func (db *Database) Close() error {
	if db.closed {
		return ErrClosed
	}
	db.tables = map[string]*table.Table{}
	db.queries = map[string]*algebra.Query{}
	db.closed = true
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
