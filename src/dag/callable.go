package dag

import (
	"strings"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A Param is one formal parameter of a Callable: a name, a required type,
// and an optional default value.
type Param struct {
	Name    string
	Type    *fabtype.Type
	Default Value // nil if the parameter is required
}

// A Callable is anything that can be applied to a name->Value argument map:
// a Rule or a Function (§3 "Callable").
type Callable interface {
	Value
	Params() []Param
	AllowExtraArgs() bool
	// Invoke applies already-named, already-type-checked arguments. Callers
	// (src/eval's Call-node evaluation) are responsible for running
	// NameArguments and the subtype check first (§4.6); Invoke itself
	// trusts its input.
	Invoke(at ast.Range, args map[string]Value) (Value, *Error)
}

// A Body is the deferred evaluation of a Function's body expression against
// a child of its captured lexical scope. src/eval supplies the concrete
// implementation (closing over the scope chain) so this package needs no
// dependency on the evaluator (§9: scopes are reference-counted and own the
// closure-capture invariant, which lives entirely in src/eval).
type Body interface {
	Invoke(args map[string]Value) (Value, *Error)
}

// BodyFunc adapts a plain Go function to the Body interface, used for
// natively-implemented builtins (print, fields, type, string, file,
// import, ...).
type BodyFunc func(args map[string]Value) (Value, *Error)

// Invoke implements Body.
func (f BodyFunc) Invoke(args map[string]Value) (Value, *Error) { return f(args) }

// A Function is a first-class callable value: either a native builtin or a
// closure over a body expression and its definition-site scope (§3, §4.6
// "Function literal"). Calling it resolves free names through the captured
// scope, never through the caller's — that capture is what src/eval's Body
// implementation closes over.
type Function struct {
	noFields
	unsupported
	typ            *fabtype.Type
	rng            ast.Range
	ctx            *fabtype.Context
	name           string
	params         []Param
	resultType     *fabtype.Type
	body           Body
	allowExtraArgs bool
}

// NewFunction constructs a Function value.
func NewFunction(ctx *fabtype.Context, at ast.Range, name string, params []Param, resultType *fabtype.Type, body Body, allowExtraArgs bool) *Function {
	paramTypes := make([]*fabtype.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	return &Function{
		unsupported:    unsupported{"function"},
		typ:            ctx.FunctionType(paramTypes, resultType),
		rng:            at,
		ctx:            ctx,
		name:           name,
		params:         params,
		resultType:     resultType,
		body:           body,
		allowExtraArgs: allowExtraArgs,
	}
}

func (f *Function) Type() *fabtype.Type     { return f.typ }
func (f *Function) Range() ast.Range        { return f.rng }
func (f *Function) IsTruthy() bool          { return true }
func (f *Function) String() string          { return "<function " + f.name + ">" }
func (f *Function) Name() string            { return f.name }
func (f *Function) Params() []Param         { return f.params }
func (f *Function) AllowExtraArgs() bool    { return f.allowExtraArgs }
func (f *Function) ResultType() *fabtype.Type { return f.resultType }

// Invoke calls the function body with already-named arguments.
func (f *Function) Invoke(at ast.Range, args map[string]Value) (Value, *Error) {
	result, err := f.body.Invoke(args)
	if err != nil {
		return nil, err
	}
	if f.resultType != nil && f.resultType.Valid() && !result.Type().IsSubtype(f.resultType) {
		return nil, TypeErrorf(at, "function %s returned %s, expected %s", f.name, result.Type(), f.resultType)
	}
	return result, nil
}

// joinParamNames is used by diagnostics that list a callable's signature.
func joinParamNames(params []Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
