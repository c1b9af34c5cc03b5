package algebra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

var ErrUnknownRelation = qerr.New(qerr.ErrSyntax, "invalid comparison operator")

// Relation is a comparison operator of a condition.
type Relation uint8

const (
	RelEq Relation = iota
	RelNe
	RelLt
	RelLe
	RelGt
	RelGe
)

var relationSymbols = map[string]Relation{
	"=":  RelEq,
	"==": RelEq,
	"!=": RelNe,
	"<>": RelNe,
	"<":  RelLt,
	"<=": RelLe,
	">":  RelGt,
	">=": RelGe,
}

func ParseRelation(sym string) (Relation, error) {
	r, ok := relationSymbols[sym]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRelation, sym)
	}
	return r, nil
}

// IsRelationChar reports whether c may appear in a relation symbol.
func IsRelationChar(c byte) bool {
	return strings.IndexByte("=!<>~", c) >= 0
}

func (r Relation) String() string {
	switch r {
	case RelEq:
		return "="
	case RelNe:
		return "!="
	case RelLt:
		return "<"
	case RelLe:
		return "<="
	case RelGt:
		return ">"
	case RelGe:
		return ">="
	default:
		return "?"
	}
}

func (r Relation) holds(c int) bool {
	switch r {
	case RelEq:
		return c == 0
	case RelNe:
		return c != 0
	case RelLt:
		return c < 0
	case RelLe:
		return c <= 0
	case RelGt:
		return c > 0
	case RelGe:
		return c >= 0
	default:
		return false
	}
}

// Term is the right-hand side of a condition: a column name or a raw
// literal (kept verbatim, converted to the column kind at evaluation).
type Term struct {
	Column  string
	Literal string
}

func (t Term) IsColumn() bool { return t.Column != "" }

func (t Term) String() string {
	if t.IsColumn() {
		return t.Column
	}
	return t.Literal
}

// Condition is one "operand relation operand" triple.
type Condition struct {
	Column string
	Rel    Relation
	Right  Term
}

func (c Condition) String() string {
	return c.Column + " " + c.Rel.String() + " " + c.Right.String()
}

func renderConditions(conds []Condition) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// predicate is a condition bound to row positions.
type predicate struct {
	left     int
	rel      Relation
	right    int // -1 when comparing against constant
	constant record.Cell
}

func (p predicate) match(row record.Row) (bool, error) {
	rhs := p.constant
	if p.right >= 0 {
		rhs = row[p.right]
	}
	c, err := record.Compare(row[p.left], rhs)
	if err != nil {
		return false, err
	}
	return p.rel.holds(c), nil
}

func matchAll(preds []predicate, row record.Row) (bool, error) {
	for _, p := range preds {
		ok, err := p.match(row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// bindConditions resolves conditions against left and right. Left-hand
// names bind to left, or to right when left has no such column; column
// terms bind to right. Right positions are shifted by offset in the
// combined row. For a single-table selection pass the same table twice
// with offset 0.
func bindConditions(conds []Condition, left, right *table.Table, offset int) ([]predicate, error) {
	preds := make([]predicate, 0, len(conds))
	for _, c := range conds {
		li, kind, err := bindLeft(c.Column, left, right, offset)
		if err != nil {
			return nil, err
		}
		p := predicate{left: li, rel: c.Rel, right: -1}

		if c.Right.IsColumn() {
			ri, err := right.ColumnIndex(c.Right.Column)
			if err != nil {
				return nil, err
			}
			if right.ColumnType(ri) != kind {
				return nil, fmt.Errorf("%w: %q is %s, %q is %s", record.ErrKindMismatch,
					c.Column, kind, c.Right.Column, right.ColumnType(ri))
			}
			p.right = ri + offset
		} else {
			cell, err := record.ParseCell(kind, c.Right.Literal)
			if err != nil {
				return nil, fmt.Errorf("condition %q: %w", c.String(), err)
			}
			p.constant = cell
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func bindLeft(name string, left, right *table.Table, offset int) (int, record.Kind, error) {
	li, err := left.ColumnIndex(name)
	if err == nil {
		return li, left.ColumnType(li), nil
	}
	if right == left || !errors.Is(err, table.ErrUnknownColumn) {
		return -1, 0, err
	}
	ri, rerr := right.ColumnIndex(name)
	if rerr != nil {
		return -1, 0, err
	}
	return ri + offset, right.ColumnType(ri), nil
}
