package eval

import (
	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
)

// evaluatedArg is one call-site argument after its expression has been
// evaluated but before it has been matched against a parameter.
type evaluatedArg struct {
	Name  string // empty for a positional argument
	Value dag.Value
	Pos   ast.Range
}

// nameArguments implements the §4.6 binding algorithm: positional arguments
// fill parameters left to right, named arguments fill by name, a missing
// required parameter with no default is an error, and any argument left
// over once every parameter is filled is an error unless the callable
// declares AllowExtraArgs, in which case it is accepted and discarded —
// allow_extra_args exists so a rule signature can grow a parameter without
// breaking older call sites, not to smuggle data past the declared
// signature.
func nameArguments(at ast.Range, callable dag.Callable, args []evaluatedArg) (map[string]dag.Value, *dag.Error) {
	params := callable.Params()
	named := map[string]dag.Value{}
	namedPos := map[string]ast.Range{}
	var positional []evaluatedArg
	seenNamed := false
	for _, a := range args {
		if a.Name == "" {
			if seenNamed {
				return nil, dag.Errorf(a.Pos, "positional argument follows keyword argument")
			}
			positional = append(positional, a)
			continue
		}
		seenNamed = true
		if _, dup := named[a.Name]; dup {
			return nil, dag.Errorf(a.Pos, "argument '%s' given more than once", a.Name)
		}
		named[a.Name] = a.Value
		namedPos[a.Name] = a.Pos
	}

	result := make(map[string]dag.Value, len(params))
	argPos := make(map[string]ast.Range, len(params))
	pi := 0
	for _, p := range params {
		if pi < len(positional) {
			if _, ok := named[p.Name]; ok {
				return nil, dag.Errorf(namedPos[p.Name], "argument '%s' given both positionally and by name", p.Name)
			}
			result[p.Name] = positional[pi].Value
			argPos[p.Name] = positional[pi].Pos
			pi++
			continue
		}
		if v, ok := named[p.Name]; ok {
			result[p.Name] = v
			argPos[p.Name] = namedPos[p.Name]
			delete(named, p.Name)
			continue
		}
		if p.Default != nil {
			result[p.Name] = p.Default
			continue
		}
		return nil, dag.Errorf(at, "missing required argument '%s'", p.Name)
	}

	if pi < len(positional) && !callable.AllowExtraArgs() {
		return nil, dag.Errorf(positional[pi].Pos, "too many positional arguments (got %d, want %d)", len(positional), len(params))
	}
	for name, pos := range namedPos {
		if _, stillPending := named[name]; !stillPending {
			continue
		}
		if !callable.AllowExtraArgs() {
			return nil, dag.Errorf(pos, "unexpected keyword argument '%s'", name)
		}
	}

	if err := checkArgTypes(params, result, argPos); err != nil {
		return nil, err
	}
	return result, nil
}

// checkArgTypes enforces that every bound argument's type is a subtype of
// its parameter's declared type (§4.6 "argument type-checking"). A nil
// parameter type means unconstrained and is skipped. Each error is anchored
// to the offending argument's own source range, not the call as a whole
// (§8 scenario 5), so a caret can point at the argument that's wrong.
func checkArgTypes(params []dag.Param, bound map[string]dag.Value, argPos map[string]ast.Range) *dag.Error {
	for _, p := range params {
		if p.Type == nil || !p.Type.Valid() {
			continue
		}
		v, ok := bound[p.Name]
		if !ok {
			continue
		}
		if !v.Type().IsSubtype(p.Type) {
			return dag.TypeErrorf(argPos[p.Name], "argument '%s' has type %s, expected %s", p.Name, v.Type(), p.Type)
		}
	}
	return nil
}
