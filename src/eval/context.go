package eval

import (
	"strings"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
	"github.com/fabrique-build/fabrique/src/fabtype"
	"github.com/fabrique-build/fabrique/src/plugin"
)

// A Context owns the scope stack and the DAGBuilder for one evaluation
// (§4.5). It is not safe for concurrent use: evaluation is strictly
// single-threaded (§5).
type Context struct {
	Types   *fabtype.Context
	Builder *dag.Builder

	builtins map[string]dag.Value
	stack    []*Scope
	names    []string // fully-qualified-name deque, see Evaluating()

	// Resolver resolves import() calls; nil disables imports entirely (§4.7).
	Resolver *plugin.Resolver

	// imported memoizes already-evaluated submodules by resolved path, so a
	// diamond of imports evaluates each submodule exactly once (§4.7).
	imported map[string]dag.Value

	// ParseSource parses a resolved module path into a Program. Parsing
	// itself is outside this module's scope (§1); this hook is how the host
	// supplies it so import() can pull in another Fabrique file. Leaving it
	// nil makes any module-kind import fail with an OS error.
	ParseSource func(path string) (*ast.Program, error)
}

// NewContext creates an EvalContext with the given builtin scope injected
// at the root (§6 "Built-in scope injection").
func NewContext(types *fabtype.Context, builder *dag.Builder, builtins map[string]dag.Value) *Context {
	return &Context{
		Types:    types,
		Builder:  builder,
		builtins: builtins,
		stack:    []*Scope{newScope("<root>", nil)},
		imported: map[string]dag.Value{},
	}
}

// top returns the current (innermost) scope.
func (c *Context) top() *Scope { return c.stack[len(c.stack)-1] }

// A ScopeGuard pops the scope it was returned from on Exit. Callers must
// call Exit on every exit path, including error returns — `defer
// guard.Exit()` immediately after EnterScope is the idiomatic pattern,
// mirroring the teacher's scope-guard-on-every-exit-path requirement (§5).
type ScopeGuard struct {
	ctx   *Context
	depth int
}

// Exit pops the scope stack back to the depth it was at when the guard was
// created. It is idempotent.
func (g *ScopeGuard) Exit() {
	if len(g.ctx.stack) > g.depth {
		g.ctx.stack = g.ctx.stack[:g.depth]
	}
}

// EnterScope pushes a fresh scope named name. If parent is non-nil it
// becomes the new scope's parent (used when invoking a Function so free
// names resolve against its captured definition-site scope rather than the
// caller's); otherwise the current stack top is the parent.
func (c *Context) EnterScope(name string, parent *Scope) *ScopeGuard {
	p := parent
	if p == nil {
		p = c.top()
	}
	depth := len(c.stack)
	c.stack = append(c.stack, newScope(name, p))
	return &ScopeGuard{ctx: c, depth: depth}
}

// CurrentScope exposes the current scope, e.g. for a FunctionLiteral to
// snapshot as its captured scope.
func (c *Context) CurrentScope() *Scope { return c.top() }

// QualifiedName returns the dotted name built from the Evaluating() stack,
// used to give anonymous builder products (rules, targets) canonical names.
func (c *Context) QualifiedName(leaf string) string {
	if len(c.names) == 0 {
		return leaf
	}
	return strings.Join(c.names, ".") + "." + leaf
}

// CurrentName returns the fully-qualified dotted name of the declaration
// currently being evaluated, used to self-name a Rule or Function built
// from an anonymous literal (§4.5, §4.6).
func (c *Context) CurrentName() string {
	if len(c.names) == 0 {
		return "<anonymous>"
	}
	return strings.Join(c.names, ".")
}

// A NameGuard pops the fully-qualified-name deque on Exit.
type NameGuard struct {
	ctx   *Context
	depth int
}

// Exit pops the name deque back to where it was.
func (g *NameGuard) Exit() {
	if len(g.ctx.names) > g.depth {
		g.ctx.names = g.ctx.names[:g.depth]
	}
}

// Evaluating pushes name onto the fully-qualified-name deque for the
// duration of evaluating one top-level declaration (§4.5).
func (c *Context) Evaluating(name string) *NameGuard {
	depth := len(c.names)
	c.names = append(c.names, name)
	return &NameGuard{ctx: c, depth: depth}
}

// Define binds name in the current scope. Duplicate binding in the same
// scope is fatal (§3 invariants); the value is also registered in the
// builder under its fully-qualified dotted name (§4.5).
func (c *Context) Define(at ast.Range, name string, v dag.Value) *dag.Error {
	if !c.top().define(name, v) {
		return dag.Errorf(at, "name '%s' is already defined in this scope", name)
	}
	c.Builder.DefineVariable(c.QualifiedName(name), v)
	return nil
}

// Lookup resolves name: first against builtins, then by walking the scope
// chain bottom-up from the given scope (or the current scope, if nil).
// If otherwise undefined, `builddir` resolves to an empty output File and
// `subdir` to an empty String (not a File) (§4.5).
func (c *Context) Lookup(scope *Scope, at ast.Range, name string) (dag.Value, *dag.Error) {
	if v, ok := c.builtins[name]; ok {
		return v, nil
	}
	s := scope
	if s == nil {
		s = c.top()
	}
	if v, ok := s.lookup(name); ok {
		return v, nil
	}
	// A file/module that never rebinds subdir/builddir (the common case for
	// the root file) still needs a sane default: subdir is the empty string,
	// builddir an empty generated-file placeholder (§4.5).
	if name == "subdir" {
		return dag.NewString(c.Types, at, ""), nil
	}
	if name == "builddir" {
		return c.Builder.NewFile(at, "", "", false, fabtype.TagOut), nil
	}
	return nil, dag.Errorf(at, "name '%s' is not defined", name)
}
