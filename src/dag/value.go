// Package dag implements Fabrique's runtime values and the build graph
// (DAG) they accumulate into. Every Value overrides a fixed operator set
// (§4.3); the default, provided by the unsupported struct embedded into each
// variant, is to report a semantic error, mirroring the way the teacher's
// pyObject.Operator panics by default and only concrete types override the
// cases they actually support (src/parse/asp/objects.go).
package dag

import (
	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A Value is any first-class Fabrique runtime value: Boolean, Integer,
// String, File, List, Record, Rule, Build, Function, Target, or
// TypeReference.
type Value interface {
	// Type returns this value's type, as constructed from the Context that
	// built it.
	Type() *fabtype.Type
	// Range returns the source range this value was produced from.
	Range() ast.Range
	// String renders the value for diagnostics and pretty-printing.
	String() string
	// IsTruthy reports whether this value is truthy in a boolean context.
	IsTruthy() bool
	// Field projects a named field off this value (record/file field
	// access, §4.6 NameReference). ok is false if the value has no fields
	// or doesn't have one of this name.
	Field(name string) (Value, bool)

	operators
}

// operators is the fixed operator set every Value overrides (§4.3). Each
// method takes the source range of the operator application itself, for
// diagnostics. The base implementation (see unsupported below) returns a
// semantic error for every one of them; concrete types override only the
// operators the data model actually assigns them.
type operators interface {
	Negate(at ast.Range) (Value, *Error)
	Not(at ast.Range) (Value, *Error)
	Add(at ast.Range, other Value) (Value, *Error)
	Subtract(at ast.Range, other Value) (Value, *Error)
	MultiplyBy(at ast.Range, other Value) (Value, *Error)
	DivideBy(at ast.Range, other Value) (Value, *Error)
	PrefixWith(at ast.Range, other Value) (Value, *Error)
	And(at ast.Range, other Value) (Value, *Error)
	Or(at ast.Range, other Value) (Value, *Error)
	Xor(at ast.Range, other Value) (Value, *Error)
	Equals(at ast.Range, other Value) (Value, *Error)
}

// unsupported is embedded into every concrete Value type to provide the
// "throw semantic error" default for every operator it doesn't itself
// override. selfType is filled in by each embedder's constructor so the
// error message names the right type.
type unsupported struct {
	selfType string
}

func (u unsupported) unsupportedOp(at ast.Range, op string) *Error {
	return Errorf(at, "operator %s not supported on type %s", op, u.selfType)
}

func (u unsupported) Negate(at ast.Range) (Value, *Error)      { return nil, u.unsupportedOp(at, "negate") }
func (u unsupported) Not(at ast.Range) (Value, *Error)         { return nil, u.unsupportedOp(at, "not") }
func (u unsupported) Add(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "+")
}
func (u unsupported) Subtract(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "-")
}
func (u unsupported) MultiplyBy(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "*")
}
func (u unsupported) DivideBy(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "/")
}
func (u unsupported) PrefixWith(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "prefix")
}
func (u unsupported) And(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "and")
}
func (u unsupported) Or(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "or")
}
func (u unsupported) Xor(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "xor")
}

// Equals, like every other operator here, reports a semantic error by
// default. Types that support equality (String's byte-exact, bounded
// comparison; Record's field-wise equality; and so on) override it.
func (u unsupported) Equals(at ast.Range, _ Value) (Value, *Error) {
	return nil, u.unsupportedOp(at, "==")
}

// noFields is embeddable by any Value variant that exposes no fields at
// all (Boolean, Integer, Function, TypeReference).
type noFields struct{}

func (noFields) Field(string) (Value, bool) { return nil, false }
