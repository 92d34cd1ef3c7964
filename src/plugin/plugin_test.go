package plugin

import (
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabrique-build/fabrique/src/dag"
)

type fakeLoader struct {
	files map[string]bool
	dirs  map[string]bool
}

func (f *fakeLoader) ReadFile(p string) ([]byte, bool) {
	ok := f.files[p]
	if !ok {
		return nil, false
	}
	return []byte("contents"), true
}

func (f *fakeLoader) HasFabfile(dir string) bool { return f.dirs[dir] }
func (f *fakeLoader) Join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return path.Join(kept...)
}
func (f *fakeLoader) IsAbs(p string) bool { return strings.HasPrefix(p, "/") }

type fakePlugin struct{ name string }

func (p *fakePlugin) Name() string { return p.name }
func (p *fakePlugin) Invoke(b *dag.Builder, args map[string]dag.Value) (*dag.Record, error) {
	return nil, nil
}

func TestResolveAbsolutePath(t *testing.T) {
	loader := &fakeLoader{files: map[string]bool{"/abs/foo.fab": true}}
	r := &Resolver{Loader: loader, Registry: NewRegistry(nil, nil), SrcRoot: "/src"}
	res, err := r.Resolve("/abs/foo.fab", "")
	assert.Nil(t, err)
	assert.Equal(t, ResolutionModule, res.Kind)
	assert.Equal(t, "/abs/foo.fab", res.Path)
}

func TestResolveRelativeToSrcRootAndSubdir(t *testing.T) {
	loader := &fakeLoader{files: map[string]bool{"/src/pkg/foo.fab": true}}
	r := &Resolver{Loader: loader, Registry: NewRegistry(nil, nil), SrcRoot: "/src"}
	res, err := r.Resolve("foo.fab", "pkg")
	assert.Nil(t, err)
	assert.Equal(t, ResolutionModule, res.Kind)
}

func TestResolveFabfileDirectory(t *testing.T) {
	loader := &fakeLoader{files: map[string]bool{}, dirs: map[string]bool{"/src/pkg/sub": true}}
	r := &Resolver{Loader: loader, Registry: NewRegistry(nil, nil), SrcRoot: "/src"}
	res, err := r.Resolve("sub", "pkg")
	assert.Nil(t, err)
	assert.Equal(t, ResolutionModule, res.Kind)
	assert.True(t, strings.HasSuffix(res.Path, "fabfile"))
}

func TestResolveRegisteredPlugin(t *testing.T) {
	loader := &fakeLoader{files: map[string]bool{}, dirs: map[string]bool{}}
	reg := NewRegistry(nil, nil)
	reg.Register(&fakePlugin{name: "go_rules"})
	r := &Resolver{Loader: loader, Registry: reg, SrcRoot: "/src"}
	res, err := r.Resolve("go_rules", "")
	assert.Nil(t, err)
	assert.Equal(t, ResolutionPlugin, res.Kind)
	assert.Equal(t, "go_rules", res.Plugin.Name())
}

type fakeDynamicLoader struct{}

func (fakeDynamicLoader) Load(name string, searchPaths []string) (Plugin, error) {
	if name == "known_dynamic" {
		return &fakePlugin{name: name}, nil
	}
	return nil, fmt.Errorf("plugin %s not found", name)
}

func TestResolveDynamicallyLoadedPlugin(t *testing.T) {
	loader := &fakeLoader{files: map[string]bool{}, dirs: map[string]bool{}}
	reg := NewRegistry([]string{"/plugins"}, fakeDynamicLoader{})
	r := &Resolver{Loader: loader, Registry: reg, SrcRoot: "/src"}
	res, err := r.Resolve("known_dynamic", "")
	assert.Nil(t, err)
	assert.Equal(t, ResolutionPlugin, res.Kind)

	_, ok := reg.Lookup("known_dynamic")
	assert.True(t, ok, "a dynamically loaded plugin should be registered for next time")
}

func TestResolveFailsWhenNothingMatches(t *testing.T) {
	loader := &fakeLoader{files: map[string]bool{}, dirs: map[string]bool{}}
	r := &Resolver{Loader: loader, Registry: NewRegistry(nil, nil), SrcRoot: "/src"}
	_, err := r.Resolve("nonexistent", "")
	assert.NotNil(t, err)
}
