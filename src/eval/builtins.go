package eval

import (
	logging "gopkg.in/op/go-logging.v1"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

var log = logging.MustGetLogger("eval")

// BuiltinScope constructs the fixed set of names injected ahead of the
// scope chain for every evaluation (§6 "Built-in scope injection"): srcroot
// and buildroot as File constants, plus the print/fields/type/string
// builtin functions. import() is handled as its own AST node
// (ast.ImportExpr), not a Function value here, since it needs the Resolver
// and the current subdir, neither of which a plain builtin closure has
// access to. subdir and args are likewise not builtins: they vary per file
// and per import, so evaluateModule binds them in an imported file's scope.
// Nothing binds them for the root file; there, subdir falls back to
// Context.Lookup's default and args is undefined.
func BuiltinScope(tc *fabtype.Context, srcroot, buildroot string) map[string]dag.Value {
	return map[string]dag.Value{
		"srcroot":   dag.NewFile(tc, ast.Range{}, srcroot, "", true, fabtype.TagNone),
		"buildroot": dag.NewFile(tc, ast.Range{}, buildroot, "", true, fabtype.TagOut),
		"print":     newPrintBuiltin(tc),
		"fields":    newFieldsBuiltin(tc),
		"type":      newTypeBuiltin(tc),
		"string":    newStringBuiltin(tc),
	}
}

func newPrintBuiltin(tc *fabtype.Context) *dag.Function {
	params := []dag.Param{{Name: "value"}}
	body := dag.BodyFunc(func(args map[string]dag.Value) (dag.Value, *dag.Error) {
		v := args["value"]
		log.Notice(v.String())
		return v, nil
	})
	return dag.NewFunction(tc, ast.Range{}, "print", params, nil, body, false)
}

// fields() exposes a record's declared field names in declaration order,
// mirroring the teacher's asp dir() builtin.
func newFieldsBuiltin(tc *fabtype.Context) *dag.Function {
	params := []dag.Param{{Name: "value"}}
	resultType := tc.ListOf(tc.String())
	body := dag.BodyFunc(func(args map[string]dag.Value) (dag.Value, *dag.Error) {
		v := args["value"]
		rec, ok := v.(*dag.Record)
		if !ok {
			return nil, dag.Errorf(v.Range(), "fields() requires a record, got %s", v.Type())
		}
		order := rec.Order()
		vals := make([]dag.Value, len(order))
		for i, name := range order {
			vals[i] = dag.NewString(tc, v.Range(), name)
		}
		return dag.NewList(tc, v.Range(), tc.String(), vals), nil
	})
	return dag.NewFunction(tc, ast.Range{}, "fields", params, resultType, body, false)
}

// type() returns a first-class TypeReference to its argument's runtime
// type, letting build logic branch on a value's shape (§6).
func newTypeBuiltin(tc *fabtype.Context) *dag.Function {
	params := []dag.Param{{Name: "value"}}
	resultType := tc.TypeType()
	body := dag.BodyFunc(func(args map[string]dag.Value) (dag.Value, *dag.Error) {
		v := args["value"]
		return dag.NewTypeReference(tc, v.Range(), v.Type()), nil
	})
	return dag.NewFunction(tc, ast.Range{}, "type", params, resultType, body, false)
}

// string() renders any value the same way diagnostics and pretty-printing
// do, letting build logic build up messages and filenames from non-string
// values.
func newStringBuiltin(tc *fabtype.Context) *dag.Function {
	params := []dag.Param{{Name: "value"}}
	resultType := tc.String()
	body := dag.BodyFunc(func(args map[string]dag.Value) (dag.Value, *dag.Error) {
		v := args["value"]
		return dag.NewString(tc, v.Range(), v.String()), nil
	})
	return dag.NewFunction(tc, ast.Range{}, "string", params, resultType, body, false)
}
