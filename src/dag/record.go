package dag

import (
	"strings"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A Record is a mapping from field name to Value. Field order is tracked
// only for pretty-printing (§3); field access and the record's Type are
// both keyed by name.
type Record struct {
	unsupported
	typ    *fabtype.Type
	rng    ast.Range
	ctx    *fabtype.Context
	order  []string
	fields map[string]Value
}

// NewRecord constructs a Record from fields evaluated in declaration order.
func NewRecord(ctx *fabtype.Context, at ast.Range, order []string, fields map[string]Value) *Record {
	fts := make([]fabtype.Field, len(order))
	for i, name := range order {
		fts[i] = fabtype.Field{Name: name, Type: fields[name].Type()}
	}
	return &Record{
		unsupported: unsupported{"record"},
		typ:         ctx.RecordType(fts),
		rng:         at,
		ctx:         ctx,
		order:       order,
		fields:      fields,
	}
}

func (r *Record) Type() *fabtype.Type { return r.typ }
func (r *Record) Range() ast.Range    { return r.rng }
func (r *Record) IsTruthy() bool      { return len(r.fields) > 0 }

func (r *Record) String() string {
	parts := make([]string, len(r.order))
	for i, name := range r.order {
		parts[i] = name + " = " + r.fields[name].String()
	}
	return "record {" + strings.Join(parts, ", ") + "}"
}

func (r *Record) Field(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Order returns the field names in declaration order.
func (r *Record) Order() []string { return append([]string{}, r.order...) }

func (r *Record) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Record)
	if !ok || len(o.fields) != len(r.fields) {
		return NewBoolean(r.ctx, at, false), nil
	}
	for name, v := range r.fields {
		ov, ok := o.fields[name]
		if !ok {
			return NewBoolean(r.ctx, at, false), nil
		}
		eq, err := v.Equals(at, ov)
		if err != nil {
			return nil, err
		}
		if !eq.IsTruthy() {
			return NewBoolean(r.ctx, at, false), nil
		}
	}
	return NewBoolean(r.ctx, at, true), nil
}
