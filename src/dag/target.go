package dag

import (
	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A Target is a named handle to one or more Files — usually a Build's
// outputs, but also usable as a plain alias for Files or another Target
// (§9: "any value whose type has files and which is bound at the top level
// becomes a Target").
type Target struct {
	unsupported
	rng   ast.Range
	ctx   *fabtype.Context
	typ   *fabtype.Type
	name  string
	files []*File
}

// NewTarget constructs a Target with the given name and backing files.
func NewTarget(ctx *fabtype.Context, at ast.Range, name string, typ *fabtype.Type, files []*File) *Target {
	return &Target{unsupported: unsupported{"target"}, rng: at, ctx: ctx, typ: typ, name: name, files: files}
}

func (t *Target) Type() *fabtype.Type { return t.typ }
func (t *Target) Range() ast.Range    { return t.rng }
func (t *Target) IsTruthy() bool      { return true }
func (t *Target) String() string      { return "<target " + t.name + ">" }
func (t *Target) Name() string        { return t.name }
func (t *Target) Files() []*File      { return t.files }

func (t *Target) canonicalOutput() (Value, *Error) {
	if len(t.files) == 1 {
		return t.files[0], nil
	}
	vals := make([]Value, len(t.files))
	elem := t.ctx.Nil()
	for i, f := range t.files {
		vals[i] = f
		elem = elem.Supertype(f.Type())
	}
	return NewList(t.ctx, t.rng, elem, vals), nil
}

func (t *Target) Field(name string) (Value, bool) {
	out, err := t.canonicalOutput()
	if err != nil {
		return nil, false
	}
	return out.Field(name)
}

func (t *Target) Add(at ast.Range, other Value) (Value, *Error) {
	out, err := t.canonicalOutput()
	if err != nil {
		return nil, err
	}
	return out.Add(at, other)
}

func (t *Target) PrefixWith(at ast.Range, other Value) (Value, *Error) {
	out, err := t.canonicalOutput()
	if err != nil {
		return nil, err
	}
	return out.PrefixWith(at, other)
}

func (t *Target) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Target)
	return NewBoolean(t.ctx, at, ok && o.name == t.name), nil
}
