package dag

import (
	"fmt"

	"github.com/fabrique-build/fabrique/src/ast"
)

// Kind classifies an Error the way §7 of the specification enumerates the
// error taxonomy. Kind is never used to decide evaluator behaviour, only to
// annotate diagnostics for the caller.
type Kind int

const (
	// KindSemantic covers undefined names, redefinition, wrong argument
	// count, invalid operator operands, and similar.
	KindSemantic Kind = iota
	// KindType covers subtype-check failures: an argument or operand whose
	// type is not a subtype of what was required.
	KindType
	// KindOS covers plugin load failures and import path resolution
	// failures.
	KindOS
	// KindAssertion covers internal invariant violations that should never
	// occur on well-formed input.
	KindAssertion
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type error"
	case KindOS:
		return "OS error"
	case KindAssertion:
		return "assertion failure"
	default:
		return "semantic error"
	}
}

// An Error carries the source range(s) responsible, the way every error in
// the teacher's asp.errorStack does, plus an optional second range for
// two-span diagnostics (e.g. "argument here, parameter declared there").
type Error struct {
	Kind    Kind
	Range   ast.Range
	Second  *ast.Range
	Message string
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Errorf constructs a semantic Error at the given range.
func Errorf(r ast.Range, format string, args ...interface{}) *Error {
	return &Error{Kind: KindSemantic, Range: r, Message: fmt.Sprintf(format, args...)}
}

// TypeErrorf constructs a KindType Error at the given range.
func TypeErrorf(r ast.Range, format string, args ...interface{}) *Error {
	return &Error{Kind: KindType, Range: r, Message: fmt.Sprintf(format, args...)}
}

// TypeErrorAt is like TypeErrorf but also records the range of the
// conflicting declaration (e.g. the formal parameter a bad argument was
// checked against).
func TypeErrorAt(r, second ast.Range, format string, args ...interface{}) *Error {
	return &Error{Kind: KindType, Range: r, Second: &second, Message: fmt.Sprintf(format, args...)}
}

// AssertionFailuref constructs a KindAssertion Error.
func AssertionFailuref(r ast.Range, format string, args ...interface{}) *Error {
	return &Error{Kind: KindAssertion, Range: r, Message: fmt.Sprintf(format, args...)}
}
