// Package plugin implements Fabrique's import/plugin resolver (§4.7): the
// order in which `import(name, ...)` is resolved, and the contract a host
// plugin must satisfy. It is grounded on the teacher's subinclude
// resolution (src/parse/asp/subinclude.go) and on §9's "Global state"
// re-architecture note: the plugin registry is modelled as an explicit
// value passed into the evaluator, not a package-level singleton, so tests
// can inject fakes.
package plugin

import (
	"fmt"

	"github.com/fabrique-build/fabrique/src/dag"
)

// A Plugin is a host-provided or dynamically-loaded collaborator queried at
// import time. Given a Builder and an argument map it must return a Record
// whose Type fully describes the members it exposes (§6 "Plugin
// contract"); failing that contract is a semantic error surfaced at import
// time, not a panic.
type Plugin interface {
	Name() string
	Invoke(b *dag.Builder, args map[string]dag.Value) (*dag.Record, error)
}

// A SourceLoader is the file-I/O collaborator this package delegates to; the
// concrete filesystem glue is out of this module's scope (§1).
type SourceLoader interface {
	// ReadFile returns the file's contents and true if it exists and is
	// readable.
	ReadFile(path string) ([]byte, bool)
	// HasFabfile reports whether dir contains a `fabfile`.
	HasFabfile(dir string) bool
	// Join joins path components using the host's path conventions.
	Join(parts ...string) string
	// IsAbs reports whether path is an absolute path.
	IsAbs(path string) bool
}

// A DynamicLoader loads a plugin by name from platform-specific plugin
// search paths (§4.7 resolution step 5). It is a separate collaborator
// because dynamic loading (dlopen, a subprocess protocol, ...) is
// inherently platform-specific and outside the evaluator's concern.
type DynamicLoader interface {
	Load(name string, searchPaths []string) (Plugin, error)
}

// A Registry is the process-wide collection of registered plugins. It is an
// explicit value rather than a singleton (§9).
type Registry struct {
	plugins     map[string]Plugin
	searchPaths []string
	dynamic     DynamicLoader
}

// NewRegistry constructs an empty Registry. dynamic may be nil, in which
// case resolution step 5 (dynamic loading) always fails.
func NewRegistry(searchPaths []string, dynamic DynamicLoader) *Registry {
	return &Registry{plugins: map[string]Plugin{}, searchPaths: searchPaths, dynamic: dynamic}
}

// Register adds p to the registry under its own Name().
func (r *Registry) Register(p Plugin) {
	r.plugins[p.Name()] = p
}

// Lookup returns a registered plugin by name.
func (r *Registry) Lookup(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// LoadDynamic attempts to load a plugin by name from the configured search
// paths, registering it on success so subsequent imports hit Lookup
// instead.
func (r *Registry) LoadDynamic(name string) (Plugin, error) {
	if r.dynamic == nil {
		return nil, fmt.Errorf("no dynamic plugin loader configured")
	}
	p, err := r.dynamic.Load(name, r.searchPaths)
	if err != nil {
		return nil, err
	}
	r.Register(p)
	return p, nil
}

// A ResolutionKind distinguishes the two outcomes of resolving an import.
type ResolutionKind int

const (
	// ResolutionModule means the import names a Fabrique source file to be
	// re-parsed and re-evaluated under a fresh child scope.
	ResolutionModule ResolutionKind = iota
	// ResolutionPlugin means the import names a host plugin to invoke
	// directly.
	ResolutionPlugin
)

// A Resolution is the outcome of resolving one import() call.
type Resolution struct {
	Kind   ResolutionKind
	Path   string // set when Kind == ResolutionModule
	Plugin Plugin // set when Kind == ResolutionPlugin
}

// A Resolver implements the §4.7 resolution order:
//  1. name as an absolute path to a Fabrique file;
//  2. name as a path relative to SrcRoot joined with the current subdir;
//  3. a directory (found the same way) containing a `fabfile`;
//  4. a registered plugin by name;
//  5. a dynamically-loaded plugin by name from the registry's search paths.
type Resolver struct {
	Loader   SourceLoader
	Registry *Registry
	SrcRoot  string
}

// Resolve implements the resolution order above, returning an OS-kind error
// (in the sense of §7) if every step fails.
func (r *Resolver) Resolve(name, subdir string) (*Resolution, error) {
	if r.Loader.IsAbs(name) {
		if _, ok := r.Loader.ReadFile(name); ok {
			return &Resolution{Kind: ResolutionModule, Path: name}, nil
		}
	}
	rel := r.Loader.Join(r.SrcRoot, subdir, name)
	if _, ok := r.Loader.ReadFile(rel); ok {
		return &Resolution{Kind: ResolutionModule, Path: rel}, nil
	}
	dir := r.Loader.Join(r.SrcRoot, subdir, name)
	if r.Loader.HasFabfile(dir) {
		return &Resolution{Kind: ResolutionModule, Path: r.Loader.Join(dir, "fabfile")}, nil
	}
	if p, ok := r.Registry.Lookup(name); ok {
		return &Resolution{Kind: ResolutionPlugin, Plugin: p}, nil
	}
	if p, err := r.Registry.LoadDynamic(name); err == nil {
		return &Resolution{Kind: ResolutionPlugin, Plugin: p}, nil
	}
	return nil, fmt.Errorf("cannot resolve import %q: not a file, fabfile directory, or known plugin", name)
}
