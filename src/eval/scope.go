// Package eval implements EvalContext: the lexical-scope stack, name
// resolution, builtin injection, and the evaluate(ctx) dispatch for every
// AST node (§4.5, §4.6). It is grounded on the teacher's asp.scope
// (src/parse/asp/interpreter.go) — a parent-linked lexical scope walked
// bottom-up on Lookup, captured by value (a Go pointer) at function
// definition so closures resolve free names against their definition site
// rather than their call site.
package eval

import (
	"github.com/fabrique-build/fabrique/src/dag"
)

// A Scope is a named map of bindings with an optional parent, forming a
// resolution tree (§3 GLOSSARY). Unlike the teacher's scope, which is
// reference-counted explicitly via shared_ptr semantics carried over from
// its source language, a Go *Scope needs no manual refcounting: the
// garbage collector keeps a captured parent chain alive for exactly as
// long as any Function still references it, which is the same guarantee
// §5's "Scopes are reference-counted" describes.
type Scope struct {
	name     string
	parent   *Scope
	bindings map[string]dag.Value
}

// newScope constructs a scope with the given name and parent (nil for the
// root scope).
func newScope(name string, parent *Scope) *Scope {
	return &Scope{name: name, parent: parent, bindings: map[string]dag.Value{}}
}

// localLookup looks up name only in this scope, not its ancestors. Used for
// duplicate-definition checks and for checking whether a function argument
// has already been bound.
func (s *Scope) localLookup(name string) (dag.Value, bool) {
	v, ok := s.bindings[name]
	return v, ok
}

// lookup walks this scope and its ancestors bottom-up.
func (s *Scope) lookup(name string) (dag.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// define binds name in this scope. Returns false if name is already bound
// here (redefinition within a single scope is a SemanticException, §3
// invariants).
func (s *Scope) define(name string, v dag.Value) bool {
	if _, exists := s.bindings[name]; exists {
		return false
	}
	s.bindings[name] = v
	return true
}

// Name returns this scope's name, used to build fully-qualified dotted
// names for anonymous builder products (§4.5 "evaluating").
func (s *Scope) Name() string { return s.name }
