// Package qerr holds the failure taxonomy shared by the engine packages.
//
// Every concrete error returned by the engine wraps exactly one of the
// category sentinels below, so callers can branch with errors.Is or ask
// for the Category.
package qerr

import (
	"errors"
	"fmt"
)

var (
	ErrResolution = errors.New("novarel: name resolution error")
	ErrShape      = errors.New("novarel: shape error")
	ErrEmpty      = errors.New("novarel: empty result")
	ErrSyntax     = errors.New("novarel: syntax error")
)

type Category uint8

const (
	CategoryNone Category = iota
	CategoryResolution
	CategoryShape
	CategoryEmpty
	CategorySyntax
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryResolution:
		return "resolution"
	case CategoryShape:
		return "shape"
	case CategoryEmpty:
		return "empty"
	case CategorySyntax:
		return "syntax"
	default:
		return "other"
	}
}

// New returns a sentinel error that belongs to category base.
func New(base error, msg string) error {
	return fmt.Errorf("%w: %s", base, msg)
}

// CategoryOf reports which category err belongs to.
func CategoryOf(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrResolution):
		return CategoryResolution
	case errors.Is(err, ErrShape):
		return CategoryShape
	case errors.Is(err, ErrEmpty):
		return CategoryEmpty
	case errors.Is(err, ErrSyntax):
		return CategorySyntax
	default:
		return CategoryOther
	}
}
