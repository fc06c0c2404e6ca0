package kernel

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every recoverable failure of the fold core.
type ErrorKind int

const (
	KindUnknown        ErrorKind = iota
	GeometryDegenerate           // coincident points, zero-length lines, bisector-less pairs
	NoSolution                   // an axiom construction has no real or admissible root
	InvalidFold                  // the fold would be illegal or does not touch the paper
)

func (k ErrorKind) String() string {
	switch k {
	case GeometryDegenerate:
		return "geometry degenerate"
	case NoSolution:
		return "no solution"
	case InvalidFold:
		return "invalid fold"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the structured outcome returned instead of a value when a
// construction or fold cannot proceed.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "axiom 5" or "fold"
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is matches sentinel errors of the same kind, so callers can write
// errors.Is(err, kernel.ErrInvalidFold).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrGeometryDegenerate = &Error{Kind: GeometryDegenerate}
	ErrNoSolution         = &Error{Kind: NoSolution}
	ErrInvalidFold        = &Error{Kind: InvalidFold}
)

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
