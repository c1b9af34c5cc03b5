package parser

import "github.com/tuannm99/novarel/internal/algebra"

// Statement is the root interface for all statements.
type Statement interface {
	stmtNode()
}

// ----- queries -----

// QueryStmt is "[name =] expr". Name is empty for an ad-hoc query.
type QueryStmt struct {
	Name string
	Expr *OpExpr
}

func (*QueryStmt) stmtNode() {}

// OpExpr is one operator application. Only the clause that belongs to Op
// is populated.
type OpExpr struct {
	Op       string // canonical keyword, see algebra.Keyword*
	Operands []Operand
	Where    []algebra.Condition
	Columns  []string
	Renames  []algebra.Rename
}

// Operand is either a name or a parenthesized sub-expression.
type Operand struct {
	Name string
	Sub  *OpExpr
}

// ----- meta commands -----

type ListTablesStmt struct{}

func (*ListTablesStmt) stmtNode() {}

type ListQueriesStmt struct{}

func (*ListQueriesStmt) stmtNode() {}

type PrintStmt struct {
	Name string
}

func (*PrintStmt) stmtNode() {}

type ShowSQLStmt struct {
	Name string
}

func (*ShowSQLStmt) stmtNode() {}

type ImportStmt struct {
	Path string
}

func (*ImportStmt) stmtNode() {}

type ExportStmt struct {
	Path string
}

func (*ExportStmt) stmtNode() {}

type LoadStmt struct {
	Path string
}

func (*LoadStmt) stmtNode() {}

type HelpStmt struct{}

func (*HelpStmt) stmtNode() {}
