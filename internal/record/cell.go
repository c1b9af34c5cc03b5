package record

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tuannm99/novarel/internal/qerr"
)

var (
	ErrKindMismatch = qerr.New(qerr.ErrShape, "cell kinds differ")
	ErrBadConstant  = qerr.New(qerr.ErrSyntax, "unable to convert constant to column type")
)

// Cell is a single typed scalar. Only the field matching Kind is meaningful.
type Cell struct {
	kind Kind
	i64  int64
	f64  float64
	s    string
}

func Text(s string) Cell    { return Cell{kind: KindText, s: s} }
func Int(i int64) Cell      { return Cell{kind: KindInt, i64: i} }
func Double(f float64) Cell { return Cell{kind: KindDouble, f64: f} }

func (c Cell) Kind() Kind        { return c.kind }
func (c Cell) AsText() string    { return c.s }
func (c Cell) AsInt() int64      { return c.i64 }
func (c Cell) AsDouble() float64 { return c.f64 }

// Value returns the Go value held by the cell (string, int64 or float64).
func (c Cell) Value() any {
	switch c.kind {
	case KindInt:
		return c.i64
	case KindDouble:
		return c.f64
	default:
		return c.s
	}
}

// Compare orders two cells of the same kind.
func Compare(a, b Cell) (int, error) {
	if a.kind != b.kind {
		return 0, fmt.Errorf("%w: %s vs %s", ErrKindMismatch, a.kind, b.kind)
	}
	switch a.kind {
	case KindInt:
		return cmp.Compare(a.i64, b.i64), nil
	case KindDouble:
		return cmp.Compare(a.f64, b.f64), nil
	default:
		return strings.Compare(a.s, b.s), nil
	}
}

func Equal(a, b Cell) bool {
	c, err := Compare(a, b)
	return err == nil && c == 0
}

// String is the display form used by table rendering.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i64, 10)
	case KindDouble:
		return strconv.FormatFloat(c.f64, 'g', -1, 64)
	default:
		return c.s
	}
}

// Literal renders the cell as a constant of the query language.
func (c Cell) Literal() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i64, 10)
	case KindDouble:
		s := strconv.FormatFloat(c.f64, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return strconv.Quote(c.s)
	}
}

// ParseCell converts raw text into a cell of the given kind.
// Quoted text is accepted for every kind and unquoted before conversion.
func ParseCell(kind Kind, raw string) (Cell, error) {
	raw = strings.TrimSpace(raw)
	if s, ok := unquote(raw); ok {
		if kind == KindText {
			return Text(s), nil
		}
		raw = s
	}

	switch kind {
	case KindText:
		return Text(raw), nil
	case KindInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Cell{}, fmt.Errorf("%w: %q is not an int", ErrBadConstant, raw)
		}
		return Int(i), nil
	case KindDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Cell{}, fmt.Errorf("%w: %q is not a double", ErrBadConstant, raw)
		}
		return Double(f), nil
	default:
		return Cell{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// unquote strips matching single or double quotes. Double-quoted text
// follows Go escaping so that Literal output round-trips.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		if u, err := strconv.Unquote(s); err == nil {
			return u, true
		}
		return s[1 : len(s)-1], true
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1], true
	}
	return "", false
}

// IsQuoted reports whether raw is a quoted literal.
func IsQuoted(raw string) bool {
	_, ok := unquote(strings.TrimSpace(raw))
	return ok
}
