package dag

import (
	"strconv"
	"strings"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// maxStringLen bounds the byte-exact comparison used by String.Equals, so
// that a string carrying an embedded NUL can't be used to smuggle a
// pathological comparison cost (§4.3, §8: "compares full byte length, not
// C-string length").
const maxStringLen = 1 << 20

// A Boolean is a primitive true/false value.
type Boolean struct {
	noFields
	unsupported
	typ  *fabtype.Type
	rng  ast.Range
	Val  bool
}

// NewBoolean constructs a Boolean value.
func NewBoolean(ctx *fabtype.Context, at ast.Range, v bool) *Boolean {
	return &Boolean{unsupported: unsupported{"bool"}, typ: ctx.Bool(), rng: at, Val: v}
}

func (b *Boolean) Type() *fabtype.Type { return b.typ }
func (b *Boolean) Range() ast.Range    { return b.rng }
func (b *Boolean) IsTruthy() bool      { return b.Val }
func (b *Boolean) String() string {
	if b.Val {
		return "true"
	}
	return "false"
}

func (b *Boolean) Not(at ast.Range) (Value, *Error) {
	return &Boolean{unsupported: b.unsupported, typ: b.typ, rng: at, Val: !b.Val}, nil
}

func (b *Boolean) And(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Boolean)
	if !ok {
		return nil, Errorf(at, "cannot 'and' bool with %s", other.Type())
	}
	return &Boolean{unsupported: b.unsupported, typ: b.typ, rng: at, Val: b.Val && o.Val}, nil
}

func (b *Boolean) Or(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Boolean)
	if !ok {
		return nil, Errorf(at, "cannot 'or' bool with %s", other.Type())
	}
	return &Boolean{unsupported: b.unsupported, typ: b.typ, rng: at, Val: b.Val || o.Val}, nil
}

func (b *Boolean) Xor(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Boolean)
	if !ok {
		return nil, Errorf(at, "cannot 'xor' bool with %s", other.Type())
	}
	return &Boolean{unsupported: b.unsupported, typ: b.typ, rng: at, Val: b.Val != o.Val}, nil
}

func (b *Boolean) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Boolean)
	return &Boolean{unsupported: b.unsupported, typ: b.typ, rng: at, Val: ok && b.Val == o.Val}, nil
}

// An Integer is a primitive 64-bit signed integer value.
type Integer struct {
	noFields
	unsupported
	typ *fabtype.Type
	rng ast.Range
	Val int64
}

// NewInteger constructs an Integer value.
func NewInteger(ctx *fabtype.Context, at ast.Range, v int64) *Integer {
	return &Integer{unsupported: unsupported{"int"}, typ: ctx.Int(), rng: at, Val: v}
}

func (i *Integer) Type() *fabtype.Type { return i.typ }
func (i *Integer) Range() ast.Range    { return i.rng }
func (i *Integer) IsTruthy() bool      { return i.Val != 0 }
func (i *Integer) String() string      { return strconv.FormatInt(i.Val, 10) }

func (i *Integer) Negate(at ast.Range) (Value, *Error) {
	return &Integer{unsupported: i.unsupported, typ: i.typ, rng: at, Val: -i.Val}, nil
}

func (i *Integer) Add(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Integer)
	if !ok {
		return nil, Errorf(at, "cannot add int and %s", other.Type())
	}
	return &Integer{unsupported: i.unsupported, typ: i.typ, rng: at, Val: i.Val + o.Val}, nil
}

func (i *Integer) Subtract(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Integer)
	if !ok {
		return nil, Errorf(at, "cannot subtract %s from int", other.Type())
	}
	return &Integer{unsupported: i.unsupported, typ: i.typ, rng: at, Val: i.Val - o.Val}, nil
}

func (i *Integer) MultiplyBy(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Integer)
	if !ok {
		return nil, Errorf(at, "cannot multiply int and %s", other.Type())
	}
	return &Integer{unsupported: i.unsupported, typ: i.typ, rng: at, Val: i.Val * o.Val}, nil
}

func (i *Integer) DivideBy(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Integer)
	if !ok {
		return nil, Errorf(at, "cannot divide int by %s", other.Type())
	}
	if o.Val == 0 {
		return nil, Errorf(at, "division by zero")
	}
	return &Integer{unsupported: i.unsupported, typ: i.typ, rng: at, Val: i.Val / o.Val}, nil
}

func (i *Integer) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Integer)
	return &Boolean{unsupported: unsupported{"bool"}, typ: i.typ.Ctx().Bool(), rng: at, Val: ok && i.Val == o.Val}, nil
}

// A String is a primitive text value.
type String struct {
	noFields
	unsupported
	typ *fabtype.Type
	rng ast.Range
	Val string
}

// NewString constructs a String value.
func NewString(ctx *fabtype.Context, at ast.Range, v string) *String {
	return &String{unsupported: unsupported{"string"}, typ: ctx.String(), rng: at, Val: v}
}

func (s *String) Type() *fabtype.Type { return s.typ }
func (s *String) Range() ast.Range    { return s.rng }
func (s *String) IsTruthy() bool      { return s.Val != "" }
func (s *String) String() string      { return s.Val }

func (s *String) Add(at ast.Range, other Value) (Value, *Error) {
	switch o := other.(type) {
	case *String:
		return &String{unsupported: s.unsupported, typ: s.typ, rng: at, Val: s.Val + o.Val}, nil
	case *File:
		// string + file -> file, per File.onAddTo/onPrefixWith (§4.2).
		return o.prefixedWith(at, s.Val)
	}
	return nil, Errorf(at, "cannot add string and %s", other.Type())
}

func (s *String) PrefixWith(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*String)
	if !ok {
		return nil, Errorf(at, "cannot prefix string with %s", other.Type())
	}
	return &String{unsupported: s.unsupported, typ: s.typ, rng: at, Val: o.Val + s.Val}, nil
}

// Equals is byte-exact, bounded by maxStringLen so an embedded NUL can't be
// used to make the comparison look shorter than it is (it compares full Go
// string length, not a C-string's NUL-terminated length).
func (s *String) Equals(at ast.Range, other Value) (Value, *Error) {
	boolType := s.typ.Ctx().Bool()
	o, ok := other.(*String)
	if !ok {
		return &Boolean{unsupported: unsupported{"bool"}, typ: boolType, rng: at, Val: false}, nil
	}
	a, b := s.Val, o.Val
	if len(a) > maxStringLen {
		a = a[:maxStringLen]
	}
	if len(b) > maxStringLen {
		b = b[:maxStringLen]
	}
	return &Boolean{unsupported: unsupported{"bool"}, typ: boolType, rng: at, Val: strings.Compare(a, b) == 0}, nil
}
