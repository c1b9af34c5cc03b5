package record

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novarel/internal/qerr"
)

// Kind is the type tag of a Cell. The set is closed.
type Kind uint8

const (
	KindText Kind = iota
	KindInt
	KindDouble
)

var ErrUnknownKind = qerr.New(qerr.ErrSyntax, "unknown column type")

func (k Kind) String() string {
	switch k {
	case KindText:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a type name from a CSV header to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return KindText, nil
	case "int", "integer":
		return KindInt, nil
	case "double", "float":
		return KindDouble, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

type Column struct {
	Name string
	Kind Kind
}

// Header is the ordered column list of a table.
type Header []Column

func (h Header) Names() []string {
	out := make([]string, len(h))
	for i, c := range h {
		out[i] = c.Name
	}
	return out
}

func (h Header) Clone() Header {
	return append(Header(nil), h...)
}

func (h Header) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.Name + ":" + c.Kind.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
