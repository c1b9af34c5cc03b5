// Package algebra implements the relational-algebra operator nodes.
//
// A Query wraps one Operator, resolves its operands against a Resolver
// (normally the catalog), evaluates the algorithm into a fresh table and
// caches it. Operands are either references to catalog entries or nested
// sub-queries owned by the node.
package algebra

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/table"
)

var (
	ErrUnknownOperand    = qerr.New(qerr.ErrResolution, "table was not found")
	ErrCircularReference = qerr.New(qerr.ErrResolution, "circular query reference")
	ErrEmptyResult       = qerr.New(qerr.ErrEmpty, "the resulting query is empty")
	ErrNoCommonColumns   = qerr.New(qerr.ErrShape, "the tables do not share any columns")
	ErrHeaderMismatch    = qerr.New(qerr.ErrShape, "the tables have different headers")
	ErrNilOperator       = qerr.New(qerr.ErrSyntax, "query has no operator")
)

// Resolver looks names up in the catalog. GetTable and GetTableQ return nil
// when the name is not known.
type Resolver interface {
	GetTable(name string) *table.Table
	GetTableQ(name string) *Query
}

// Query is one operator node with its cached result.
type Query struct {
	op       Operator
	name     string
	result   *table.Table
	resolved bool
}

// New wraps op in an unresolved node. Until it is archived in a catalog the
// node carries a transient name.
func New(op Operator) *Query {
	return &Query{op: op, name: "~sub-" + uuid.NewString()}
}

func (q *Query) Operator() Operator { return q.op }
func (q *Query) Name() string       { return q.name }
func (q *Query) Resolved() bool     { return q.resolved }

// GetQueryResult returns the cached result, or nil before a successful
// Evaluate. Callers must not modify the table.
func (q *Query) GetQueryResult() *table.Table { return q.result }

// ArchiveQueryName records the name under which the node is stored.
func (q *Query) ArchiveQueryName(name string) { q.name = name }

// IsDerived is false for a pure alias passthrough.
func (q *Query) IsDerived() bool {
	_, alias := q.op.(*Alias)
	return !alias
}

// Evaluate resolves operands and computes the result. A resolved node is
// not recomputed. On failure nothing is cached and the node can be
// evaluated again later.
func (q *Query) Evaluate(r Resolver) error {
	return q.evaluate(r, make(map[string]struct{}))
}

func (q *Query) evaluate(r Resolver, visiting map[string]struct{}) error {
	if q.resolved {
		return nil
	}
	if q.op == nil {
		return ErrNilOperator
	}
	if _, ok := visiting[q.name]; ok {
		return fmt.Errorf("%w: %q", ErrCircularReference, q.name)
	}
	visiting[q.name] = struct{}{}
	defer delete(visiting, q.name)

	ev := evaluator{r: r, visiting: visiting}
	res, err := ev.run(q.op)
	if err != nil {
		return err
	}
	if res.RowCount() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyResult, q.op.Keyword())
	}

	q.result = res
	q.resolved = true
	slog.Debug("algebra: query evaluated",
		"query", q.name,
		"op", q.op.Keyword(),
		"rows", res.RowCount(),
		"cols", res.ColumnCount(),
	)
	return nil
}

type evaluator struct {
	r        Resolver
	visiting map[string]struct{}
}

// resolve returns the table an operand designates: a base table first,
// then a stored query (evaluated on demand), then a nested sub-query.
func (ev evaluator) resolve(o Operand) (*table.Table, error) {
	if o.Sub != nil {
		if err := o.Sub.evaluate(ev.r, ev.visiting); err != nil {
			return nil, err
		}
		return o.Sub.result, nil
	}

	if t := ev.r.GetTable(o.Name); t != nil {
		return t, nil
	}
	if sq := ev.r.GetTableQ(o.Name); sq != nil {
		if err := sq.evaluate(ev.r, ev.visiting); err != nil {
			return nil, fmt.Errorf("query %q: %w", o.Name, err)
		}
		return sq.result, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperand, o.Name)
}

func (ev evaluator) resolvePair(left, right Operand) (*table.Table, *table.Table, error) {
	lt, err := ev.resolve(left)
	if err != nil {
		return nil, nil, err
	}
	rt, err := ev.resolve(right)
	if err != nil {
		return nil, nil, err
	}
	return lt, rt, nil
}

func (ev evaluator) run(op Operator) (*table.Table, error) {
	switch o := op.(type) {
	case *Selection:
		src, err := ev.resolve(o.Source)
		if err != nil {
			return nil, err
		}
		return selection(src, o.Where)

	case *Projection:
		src, err := ev.resolve(o.Source)
		if err != nil {
			return nil, err
		}
		return projection(src, o.Columns)

	case *Alias:
		src, err := ev.resolve(o.Source)
		if err != nil {
			return nil, err
		}
		return alias(src, o.Renames)

	case *CartesianProduct:
		lt, rt, err := ev.resolvePair(o.Left, o.Right)
		if err != nil {
			return nil, err
		}
		return join(lt, rt, nil)

	case *Join:
		lt, rt, err := ev.resolvePair(o.Left, o.Right)
		if err != nil {
			return nil, err
		}
		return join(lt, rt, o.On)

	case *NaturalJoin:
		lt, rt, err := ev.resolvePair(o.Left, o.Right)
		if err != nil {
			return nil, err
		}
		return naturalJoin(lt, rt)

	case *Union:
		lt, rt, err := ev.resolvePair(o.Left, o.Right)
		if err != nil {
			return nil, err
		}
		return setOperation(lt, rt, mergeUnion)

	case *Intersect:
		lt, rt, err := ev.resolvePair(o.Left, o.Right)
		if err != nil {
			return nil, err
		}
		return setOperation(lt, rt, mergeIntersect)

	case *Minus:
		lt, rt, err := ev.resolvePair(o.Left, o.Right)
		if err != nil {
			return nil, err
		}
		return setOperation(lt, rt, mergeMinus)

	default:
		return nil, fmt.Errorf("algebra: unsupported operator %T", op)
	}
}
