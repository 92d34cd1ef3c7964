package eval

import (
	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// resolveType turns a type expression from the AST into a canonical Type,
// going through the TypeContext's single Find entrypoint for every named
// constructor (§4.6) and handling the two structural constructors (function,
// record) directly, since TypeContext.Find only round-trips already-built
// parameter lists for those. A nil TypeExpr means "unconstrained" and
// resolves to a nil *fabtype.Type, not the context's Nil() — the two are
// different: Nil() is itself a real (if special) type, Go nil means "skip
// the subtype check entirely" (see checkArgTypes in args.go).
func resolveType(tc *fabtype.Context, at ast.Range, te *ast.TypeExpr) (*fabtype.Type, *dag.Error) {
	if te == nil {
		return nil, nil
	}
	switch te.Name {
	case "function":
		params := make([]*fabtype.Type, len(te.FuncParams))
		for i, p := range te.FuncParams {
			t, err := resolveType(tc, at, p)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		var result *fabtype.Type
		if te.FuncResult != nil {
			r, err := resolveType(tc, at, te.FuncResult)
			if err != nil {
				return nil, err
			}
			result = r
		}
		return tc.FunctionType(params, result), nil
	case "record":
		fields := make([]fabtype.Field, len(te.Fields))
		for i, f := range te.Fields {
			t, err := resolveType(tc, at, f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = fabtype.Field{Name: f.Name, Type: t}
		}
		return tc.RecordType(fields), nil
	default:
		if len(te.Params) == 0 {
			return tc.Find(te.Name), nil
		}
		params := make([]*fabtype.Type, len(te.Params))
		for i, p := range te.Params {
			t, err := resolveType(tc, at, p)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		return tc.Find(te.Name, params...), nil
	}
}
