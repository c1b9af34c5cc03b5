package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tuannm99/novarel/internal/algebra"
	"github.com/tuannm99/novarel/internal/catalog"
	"github.com/tuannm99/novarel/internal/importer"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/sql/parser"
	"github.com/tuannm99/novarel/internal/sql/planner"
)

var (
	ErrNotAQuery     = qerr.New(qerr.ErrResolution, "not a stored query")
	ErrNotAQueryStmt = qerr.New(qerr.ErrSyntax, "expected a query statement")
	ErrDuplicateDef  = qerr.New(qerr.ErrResolution, "query defined twice")
	ErrPathEscapes   = qerr.New(qerr.ErrResolution, "path leaves the data directory")
)

const helpText = `statements end with ';'
  [name =] OP(operand[, operand]) [clause]     evaluate, and store under name
  OP(...) [clause] SAVE AS name               same as "name = OP(...)"
operators:
  SELECTION(T) WHERE col rel value {AND ...}
  PROJECTION(T) COLUMNS a, b
  JOIN(A, B) WHERE a rel b {AND ...}
  NATURALJOIN(A, B)   CARTESIAN(A, B)
  UNION(A, B)   INTERSECT(A, B)   MINUS(A, B)
  ALIAS(T) [RENAME a AS b, ...]
  an operand is a table, a stored query or a parenthesized expression
relations: = == != <> < <= > >=
meta:
  TABLES;  QUERIES;  PRINT name;  SQL name;  HELP;
  IMPORT 'file.csv';  EXPORT 'file.yaml';  LOAD 'file.yaml';`

// Executor executes statements against one session catalog.
type Executor struct {
	DB *catalog.Database

	// Dir confines the file paths of IMPORT, EXPORT and LOAD: relative
	// paths are resolved against it and paths leaving it are rejected.
	// Empty means the process working directory, unconfined.
	Dir string
}

func NewExecutor(db *catalog.Database) *Executor {
	return &Executor{DB: db}
}

// ExecSQL is the top-level entry: statement string -> Result.
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	return e.exec(sql, false)
}

// ProcessQuery runs a single query statement. The query is evaluated and,
// when named, archived in the catalog. Any failure leaves the catalog as
// it was.
func (e *Executor) ProcessQuery(sql string) (*Result, error) {
	return e.exec(sql, true)
}

func (e *Executor) exec(sql string, queryOnly bool) (*Result, error) {
	res, err := e.run(sql, queryOnly)
	if err != nil {
		slog.Warn("executor: statement rejected",
			"db", e.DB.Name(),
			"category", qerr.CategoryOf(err).String(),
			"err", err,
		)
		return nil, err
	}
	return res, nil
}

func (e *Executor) run(sql string, queryOnly bool) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	if _, ok := stmt.(*parser.QueryStmt); queryOnly && !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotAQueryStmt, stmt)
	}
	plan, err := planner.BuildPlan(stmt)
	if err != nil {
		return nil, err
	}
	return e.execPlan(plan)
}

func (e *Executor) execPlan(p planner.Plan) (*Result, error) {
	switch plan := p.(type) {
	case *planner.QueryPlan:
		return e.execQuery(plan)
	case *planner.ListTablesPlan:
		return e.execListTables()
	case *planner.ListQueriesPlan:
		return e.execListQueries()
	case *planner.PrintPlan:
		return e.execPrint(plan)
	case *planner.ShowSQLPlan:
		return e.execShowSQL(plan)
	case *planner.ImportPlan:
		return e.execImport(plan)
	case *planner.ExportPlan:
		return e.execExport(plan)
	case *planner.LoadPlan:
		return e.execLoad(plan)
	case *planner.HelpPlan:
		return &Result{Message: helpText}, nil
	default:
		return nil, fmt.Errorf("executor: unsupported plan type %T", p)
	}
}

func (e *Executor) execQuery(p *planner.QueryPlan) (*Result, error) {
	if p.Name != "" && e.DB.NameTaken(p.Name) {
		return nil, fmt.Errorf("%w: %q", catalog.ErrNameTaken, p.Name)
	}
	if err := p.Query.Evaluate(e.DB); err != nil {
		if p.Name != "" {
			return nil, fmt.Errorf("query %q: %w", p.Name, err)
		}
		return nil, err
	}

	res := tableResult(p.Query.GetQueryResult())
	if p.Name == "" {
		return res, nil
	}
	if err := e.DB.InsertQuery(p.Name, p.Query); err != nil {
		return nil, err
	}
	slog.Info("executor: query archived", "db", e.DB.Name(), "query", p.Name, "rows", res.AffectedRows)
	res.Message = fmt.Sprintf("query %s saved", p.Name)
	return res, nil
}

func (e *Executor) execListTables() (*Result, error) {
	var rows [][]any
	for _, name := range e.DB.TableNames() {
		t := e.DB.GetTable(name)
		rows = append(rows, []any{name, t.Header().String(), int64(t.RowCount())})
	}
	return gridResult([]string{"table", "columns", "rows"}, rows), nil
}

func (e *Executor) execListQueries() (*Result, error) {
	var rows [][]any
	for _, name := range e.DB.QueryNames() {
		q := e.DB.GetTableQ(name)
		rows = append(rows, []any{name, q.Resolved(), q.SQL()})
	}
	return gridResult([]string{"query", "resolved", "sql"}, rows), nil
}

// execPrint shows a table or a stored query result, evaluating the query
// first if it was loaded unresolved.
func (e *Executor) execPrint(p *planner.PrintPlan) (*Result, error) {
	if t := e.DB.GetTable(p.Name); t != nil {
		return tableResult(t), nil
	}
	q := e.DB.GetTableQ(p.Name)
	if q == nil {
		return nil, fmt.Errorf("%w: %q", algebra.ErrUnknownOperand, p.Name)
	}
	if err := q.Evaluate(e.DB); err != nil {
		return nil, fmt.Errorf("query %q: %w", p.Name, err)
	}
	return tableResult(q.GetQueryResult()), nil
}

func (e *Executor) execShowSQL(p *planner.ShowSQLPlan) (*Result, error) {
	q := e.DB.GetTableQ(p.Name)
	if q == nil {
		if e.DB.TableExists(p.Name) {
			return nil, fmt.Errorf("%w: %q is a table", ErrNotAQuery, p.Name)
		}
		return nil, fmt.Errorf("%w: %q", algebra.ErrUnknownOperand, p.Name)
	}
	return &Result{Message: q.ExpandedSQL(e.DB)}, nil
}

// path resolves a statement-supplied file path inside Dir.
func (e *Executor) path(p string) (string, error) {
	if e.Dir == "" {
		return p, nil
	}
	rel := p
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(e.Dir, p)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrPathEscapes, p)
		}
		rel = r
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapes, p)
	}
	return filepath.Join(e.Dir, rel), nil
}

// seedPath resolves configured seed files, which are trusted.
func (e *Executor) seedPath(p string) string {
	if e.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Dir, p)
}

func (e *Executor) execImport(p *planner.ImportPlan) (*Result, error) {
	path, err := e.path(p.Path)
	if err != nil {
		return nil, err
	}
	name, err := importer.ImportFile(e.DB, path)
	if err != nil {
		return nil, err
	}
	t := e.DB.GetTable(name)
	return &Result{
		Message:      fmt.Sprintf("table %s imported %s", name, t.Header()),
		AffectedRows: int64(t.RowCount()),
	}, nil
}

func (e *Executor) execExport(p *planner.ExportPlan) (*Result, error) {
	path, err := e.path(p.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("executor: export: %w", err)
	}
	if err := e.DB.ExportQueries(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("executor: export: %w", err)
	}
	n := len(e.DB.QueryNames())
	return &Result{Message: fmt.Sprintf("%d queries exported to %s", n, p.Path), AffectedRows: int64(n)}, nil
}

func (e *Executor) execLoad(p *planner.LoadPlan) (*Result, error) {
	path, err := e.path(p.Path)
	if err != nil {
		return nil, err
	}
	return e.loadFile(path, p.Path)
}

func (e *Executor) loadFile(path, display string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("executor: load: %w", err)
	}
	defer func() { _ = f.Close() }()

	n, err := e.LoadQueries(f)
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("%d queries loaded from %s", n, display), AffectedRows: int64(n)}, nil
}

// LoadQueries registers the query definitions of an exported YAML document.
// Queries are stored unresolved and evaluated on first use, so they may
// refer to each other in any order. Either every definition is registered
// or none is.
func (e *Executor) LoadQueries(r io.Reader) (int, error) {
	doc, err := catalog.DecodeQueries(r)
	if err != nil {
		return 0, err
	}

	type pending struct {
		name string
		q    *algebra.Query
	}
	var defs []pending
	seen := make(map[string]struct{}, len(doc.Queries))
	for _, d := range doc.Queries {
		if err := catalog.ValidateIdent(d.Name); err != nil {
			return 0, err
		}
		if _, dup := seen[d.Name]; dup {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateDef, d.Name)
		}
		seen[d.Name] = struct{}{}
		if e.DB.NameTaken(d.Name) {
			return 0, fmt.Errorf("%w: %q", catalog.ErrNameTaken, d.Name)
		}

		expr, err := parser.ParseExpr(d.SQL)
		if err != nil {
			return 0, fmt.Errorf("query %q: %w", d.Name, err)
		}
		q, err := planner.Build(expr)
		if err != nil {
			return 0, fmt.Errorf("query %q: %w", d.Name, err)
		}
		defs = append(defs, pending{name: d.Name, q: q})
	}

	for _, d := range defs {
		if err := e.DB.InsertQuery(d.name, d.q); err != nil {
			return 0, err
		}
	}
	slog.Info("executor: queries loaded", "db", e.DB.Name(), "count", len(defs))
	return len(defs), nil
}

// Seed imports CSV files and query definition files into the catalog.
func (e *Executor) Seed(csvFiles, queryFiles []string) error {
	var errs []error
	for _, p := range csvFiles {
		if _, err := importer.ImportFile(e.DB, e.seedPath(p)); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range queryFiles {
		if _, err := e.loadFile(e.seedPath(p), p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
