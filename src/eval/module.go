package eval

import (
	"sort"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
)

// EvaluateProgram evaluates every top-level statement of prog in order
// against scope. When topLevel is true (the root file being built, as
// opposed to a submodule pulled in via import()), each ValueDecl binding
// that carries files is additionally promoted to a Target (§9 resolved Open
// Question).
func EvaluateProgram(ctx *Context, scope *Scope, prog *ast.Program, topLevel bool) *dag.Error {
	for _, stmt := range prog.Statements {
		if err := evaluateStatement(ctx, scope, stmt, topLevel); err != nil {
			return err
		}
	}
	return nil
}

func evaluateStatement(ctx *Context, scope *Scope, stmt ast.Node, topLevel bool) *dag.Error {
	decl, ok := stmt.(*ast.ValueDecl)
	if !ok {
		_, err := Evaluate(ctx, scope, stmt)
		return err
	}
	if _, err := Evaluate(ctx, scope, decl); err != nil {
		return err
	}
	if !topLevel {
		return nil
	}
	v, ok := scope.localLookup(decl.Name)
	if !ok {
		return dag.AssertionFailuref(decl.Range(), "top-level name '%s' vanished after its own declaration", decl.Name)
	}
	return ctx.Builder.AddTopLevel(decl.Range(), decl.Name, v)
}

// evaluateModule evaluates an imported submodule's Program under a fresh
// child of the root scope — never the importer's lexical scope, so a
// submodule can't see its importer's locals (§4.7) — reserving `args` (a
// Record built from the import's keyword arguments) and `subdir` (the
// submodule's own directory) before running its statements. The returned
// Value is a Record of the submodule's own top-level bindings, giving the
// importer dotted access to them (`m := import("foo"); m.bar`).
func (c *Context) evaluateModule(path string, prog *ast.Program, args map[string]dag.Value, subdir string) (dag.Value, *dag.Error) {
	guard := c.EnterScope(path, c.stack[0])
	defer guard.Exit()
	sc := c.CurrentScope()

	argNames := make([]string, 0, len(args))
	for k := range args {
		argNames = append(argNames, k)
	}
	sort.Strings(argNames)
	sc.define("args", dag.NewRecord(c.Types, ast.Range{}, argNames, args))
	sc.define("subdir", dag.NewString(c.Types, ast.Range{}, subdir))

	if err := EvaluateProgram(c, sc, prog, false); err != nil {
		return nil, err
	}

	var exportNames []string
	for name := range sc.bindings {
		if name == "args" || name == "subdir" {
			continue
		}
		exportNames = append(exportNames, name)
	}
	sort.Strings(exportNames)
	exports := make(map[string]dag.Value, len(exportNames))
	for _, name := range exportNames {
		exports[name] = sc.bindings[name]
	}
	return dag.NewRecord(c.Types, ast.Range{}, exportNames, exports), nil
}
