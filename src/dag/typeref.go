package dag

import (
	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A TypeReference is a first-class value wrapping a Type, produced by a
// `type` declaration (§3, §9 resolved Open Question: type declarations are
// ordinary values that can be stored and passed around like any other).
type TypeReference struct {
	noFields
	unsupported
	rng ast.Range
	ctx *fabtype.Context
	typ *fabtype.Type // the wrapper type, i.e. fabtype's "type" constructor
	Ref *fabtype.Type // the type this value refers to
}

// NewTypeReference constructs a TypeReference wrapping ref.
func NewTypeReference(ctx *fabtype.Context, at ast.Range, ref *fabtype.Type) *TypeReference {
	return &TypeReference{unsupported: unsupported{"type"}, rng: at, ctx: ctx, typ: ctx.TypeType(), Ref: ref}
}

func (t *TypeReference) Type() *fabtype.Type { return t.typ }
func (t *TypeReference) Range() ast.Range    { return t.rng }
func (t *TypeReference) IsTruthy() bool      { return true }
func (t *TypeReference) String() string      { return t.Ref.String() }

func (t *TypeReference) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*TypeReference)
	return NewBoolean(t.ctx, at, ok && o.Ref == t.Ref), nil
}
