package planner

import (
	"fmt"

	"github.com/tuannm99/novarel/internal/algebra"
	"github.com/tuannm99/novarel/internal/sql/parser"
)

// BuildPlan builds an executable plan from an AST Statement.
func BuildPlan(stmt parser.Statement) (Plan, error) {
	switch s := stmt.(type) {
	case *parser.QueryStmt:
		q, err := Build(s.Expr)
		if err != nil {
			return nil, err
		}
		return &QueryPlan{Name: s.Name, Query: q}, nil
	case *parser.ListTablesStmt:
		return &ListTablesPlan{}, nil
	case *parser.ListQueriesStmt:
		return &ListQueriesPlan{}, nil
	case *parser.PrintStmt:
		return &PrintPlan{Name: s.Name}, nil
	case *parser.ShowSQLStmt:
		return &ShowSQLPlan{Name: s.Name}, nil
	case *parser.ImportStmt:
		return &ImportPlan{Path: s.Path}, nil
	case *parser.ExportStmt:
		return &ExportPlan{Path: s.Path}, nil
	case *parser.LoadStmt:
		return &LoadPlan{Path: s.Path}, nil
	case *parser.HelpStmt:
		return &HelpPlan{}, nil
	default:
		return nil, fmt.Errorf("planner: unsupported statement type %T", stmt)
	}
}

// Build turns an operator expression into an unresolved query tree.
// Parenthesized operands become child nodes owned by their parent; names
// stay references and are resolved when the tree is evaluated.
func Build(e *parser.OpExpr) (*algebra.Query, error) {
	if e == nil {
		return nil, algebra.ErrNilOperator
	}

	ops := make([]algebra.Operand, len(e.Operands))
	for i, o := range e.Operands {
		if o.Sub == nil {
			ops[i] = algebra.Ref(o.Name)
			continue
		}
		sub, err := Build(o.Sub)
		if err != nil {
			return nil, err
		}
		ops[i] = algebra.Nested(sub)
	}

	op, err := buildOperator(e, ops)
	if err != nil {
		return nil, err
	}
	return algebra.New(op), nil
}

func buildOperator(e *parser.OpExpr, ops []algebra.Operand) (algebra.Operator, error) {
	unary := len(ops) == 1
	binary := len(ops) == 2

	switch e.Op {
	case algebra.KeywordSelection:
		if unary {
			return &algebra.Selection{Source: ops[0], Where: e.Where}, nil
		}
	case algebra.KeywordProjection:
		if unary {
			return &algebra.Projection{Source: ops[0], Columns: e.Columns}, nil
		}
	case algebra.KeywordAlias:
		if unary {
			return &algebra.Alias{Source: ops[0], Renames: e.Renames}, nil
		}
	case algebra.KeywordJoin:
		if binary {
			return &algebra.Join{Left: ops[0], Right: ops[1], On: e.Where}, nil
		}
	case algebra.KeywordNaturalJoin:
		if binary {
			return &algebra.NaturalJoin{Left: ops[0], Right: ops[1]}, nil
		}
	case algebra.KeywordUnion:
		if binary {
			return &algebra.Union{Left: ops[0], Right: ops[1]}, nil
		}
	case algebra.KeywordIntersect:
		if binary {
			return &algebra.Intersect{Left: ops[0], Right: ops[1]}, nil
		}
	case algebra.KeywordMinus:
		if binary {
			return &algebra.Minus{Left: ops[0], Right: ops[1]}, nil
		}
	case algebra.KeywordCartesian:
		if binary {
			return &algebra.CartesianProduct{Left: ops[0], Right: ops[1]}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", parser.ErrUnknownOperator, e.Op)
	}
	return nil, fmt.Errorf("%w: %s with %d operand(s)", parser.ErrMissingOperand, e.Op, len(ops))
}
