package dag

import (
	"strings"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A List is an ordered sequence of Values whose element type is uniform up
// to supertype (§3). An empty list's element type is the context's nil
// type, making it a subtype of every list type.
type List struct {
	noFields
	unsupported
	typ  *fabtype.Type
	rng  ast.Range
	ctx  *fabtype.Context
	Vals []Value
}

// NewList constructs a List value. elemType should already be the join of
// every element's type (the caller — src/eval's List-node evaluation —
// computes this by folding Supertype across the elements, per §4.6).
func NewList(ctx *fabtype.Context, at ast.Range, elemType *fabtype.Type, vals []Value) *List {
	if elemType == nil {
		elemType = ctx.Nil()
	}
	return &List{unsupported: unsupported{"list"}, typ: ctx.ListOf(elemType), rng: at, ctx: ctx, Vals: vals}
}

func (l *List) Type() *fabtype.Type { return l.typ }
func (l *List) Range() ast.Range    { return l.rng }
func (l *List) IsTruthy() bool      { return len(l.Vals) > 0 }
func (l *List) Len() int            { return len(l.Vals) }
func (l *List) Item(i int) Value    { return l.Vals[i] }

func (l *List) String() string {
	parts := make([]string, len(l.Vals))
	for i, v := range l.Vals {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Add implements list concatenation (list + list) and scalar element-wise
// add (list + elem -> list), decided by whether other's type fits as an
// element or as another list (§4.3).
func (l *List) Add(at ast.Range, other Value) (Value, *Error) {
	if o, ok := other.(*List); ok {
		joined := append(append([]Value{}, l.Vals...), o.Vals...)
		elem := l.elemType().Supertype(o.elemType())
		return NewList(l.ctx, at, elem, joined), nil
	}
	if len(l.Vals) == 0 || other.Type().IsSubtype(l.elemType()) || l.elemType().IsSubtype(other.Type()) {
		out := make([]Value, len(l.Vals))
		for i, v := range l.Vals {
			sum, err := v.Add(at, other)
			if err != nil {
				return nil, err
			}
			out[i] = sum
		}
		elem := l.elemType().Supertype(other.Type())
		if !elem.Valid() {
			elem = other.Type()
		}
		return NewList(l.ctx, at, elem, out), nil
	}
	return nil, Errorf(at, "cannot add list of %s and %s", l.elemType(), other.Type())
}

// PrefixWith implements the symmetric case of scalar add: elem <> list.
func (l *List) PrefixWith(at ast.Range, other Value) (Value, *Error) {
	if o, ok := other.(*List); ok {
		joined := append(append([]Value{}, o.Vals...), l.Vals...)
		elem := l.elemType().Supertype(o.elemType())
		return NewList(l.ctx, at, elem, joined), nil
	}
	out := make([]Value, len(l.Vals))
	for i, v := range l.Vals {
		p, err := v.PrefixWith(at, other)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	elem := l.elemType().Supertype(other.Type())
	if !elem.Valid() {
		elem = other.Type()
	}
	return NewList(l.ctx, at, elem, out), nil
}

func (l *List) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*List)
	if !ok || len(o.Vals) != len(l.Vals) {
		return NewBoolean(l.ctx, at, false), nil
	}
	for i, v := range l.Vals {
		eq, err := v.Equals(at, o.Vals[i])
		if err != nil {
			return nil, err
		}
		if !eq.IsTruthy() {
			return NewBoolean(l.ctx, at, false), nil
		}
	}
	return NewBoolean(l.ctx, at, true), nil
}

func (l *List) elemType() *fabtype.Type {
	if params := l.typ.Params(); len(params) == 1 {
		return params[0]
	}
	return l.ctx.Nil()
}
