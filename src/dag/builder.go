package dag

import (
	"runtime"
	"sort"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A Builder is the accumulator and factory for every value the evaluator
// produces: files, builds, rules, variables, and targets (§4.4). It is
// owned by a single EvalContext and is not safe for concurrent use, mirroring
// the teacher's BuildGraph/BuildTarget factories (src/core/graph.go,
// src/parse/asp/targets.go createTarget) collapsed onto one accumulator per
// the single-threaded evaluator design of §5.
type Builder struct {
	ctx *fabtype.Context

	files     []*File
	builds    []*Build
	rules     map[string]*Rule
	variables map[string]Value
	targets   map[string]*Target
	topLevel  []TopLevelTarget

	mkdirRule *Rule
}

// A TopLevelTarget records one top-level `name = expr` binding in
// declaration order (§3 DAG: "list of (name, Value) top-level targets").
type TopLevelTarget struct {
	Name  string
	Value Value
}

// NewBuilder constructs an empty Builder for the given TypeContext.
func NewBuilder(ctx *fabtype.Context) *Builder {
	return &Builder{
		ctx:       ctx,
		rules:     map[string]*Rule{},
		variables: map[string]Value{},
		targets:   map[string]*Target{},
	}
}

// NewFile constructs a File and retains it in the accumulator.
func (b *Builder) NewFile(at ast.Range, filename, subdir string, absolute bool, tag string) *File {
	f := NewFile(b.ctx, at, filename, subdir, absolute, tag)
	b.files = append(b.files, f)
	return f
}

// NewRule constructs a Rule, requiring at least one file[out]-bearing
// parameter (§4.6 Action/Rule construction), and retains it under name.
func (b *Builder) NewRule(at ast.Range, name, command, description string, params []Param, resultType *fabtype.Type) (*Rule, *Error) {
	r := NewRule(b.ctx, at, name, command, description, params, resultType, b)
	if !r.HasOutputParam() {
		return nil, Errorf(at, "action %s declares no file[out] parameter", name)
	}
	if _, exists := b.rules[name]; exists {
		return nil, Errorf(at, "rule %s is already defined", name)
	}
	b.rules[name] = r
	return r, nil
}

// newBuild is called by Rule.Invoke; it retains the Build in creation
// order, which is also the order backends iterate builds() in (§4.8, §5
// Determinism).
func (b *Builder) newBuild(at ast.Range, r *Rule, inputs, outputs []*File, args map[string]Value) *Build {
	bd := &Build{unsupported: unsupported{"build"}, rng: at, ctx: b.ctx, Rule: r, Inputs: inputs, Outputs: outputs, Arguments: args}
	b.builds = append(b.builds, bd)
	return bd
}

// DefineVariable records a top-level variable binding.
func (b *Builder) DefineVariable(name string, v Value) {
	b.variables[name] = v
}

// DefineTarget records a named Target.
func (b *Builder) DefineTarget(t *Target) {
	b.targets[t.Name()] = t
}

// AddTopLevel records a top-level binding in declaration order, and — per
// the resolved Open Question in §9 — promotes it to a Target if its type
// carries files and it isn't already one.
func (b *Builder) AddTopLevel(at ast.Range, name string, v Value) *Error {
	b.topLevel = append(b.topLevel, TopLevelTarget{Name: name, Value: v})
	b.DefineVariable(name, v)
	if t, ok := v.(*Target); ok {
		b.DefineTarget(t)
		return nil
	}
	files := valueFiles(v)
	if len(files) == 0 {
		return nil
	}
	t := NewTarget(b.ctx, at, name, v.Type(), files)
	b.DefineTarget(t)
	return nil
}

// valueFiles extracts the files backing a value that "has files" — a File,
// a Build's outputs, or a list of such.
func valueFiles(v Value) []*File {
	switch val := v.(type) {
	case *File:
		return []*File{val}
	case *Build:
		return val.Outputs
	case *Target:
		return val.files
	case *List:
		var out []*File
		for _, e := range val.Vals {
			out = append(out, valueFiles(e)...)
		}
		return out
	default:
		return nil
	}
}

// mkdirCommand is the platform-specific create-directory command template
// used by directory synthesis below.
func mkdirCommand() string {
	if runtime.GOOS == "windows" {
		return "cmd /c if not exist \"${dir}\" mkdir \"${dir}\""
	}
	return "mkdir -p ${dir}"
}

// synthesizeDirectories walks every generated file's directory chain and
// ensures each directory appears exactly once as a generated File with a
// Build invoking a canonical mkdir rule (§4.4 "Directory synthesis").
func (b *Builder) synthesizeDirectories() {
	seen := map[string]bool{}
	var dirFiles []*File
	for _, f := range b.files {
		if !f.Generated() {
			continue
		}
		for dir := f.dirComponent(); dir != "" && dir != "." && !seen[dir]; dir = parentDir(dir) {
			seen[dir] = true
			dirFiles = append(dirFiles, b.mkdirFile(dir))
		}
	}
	sort.Slice(dirFiles, func(i, j int) bool { return dirFiles[i].FullName() < dirFiles[j].FullName() })
	for _, df := range dirFiles {
		b.mkdirBuild(df)
	}
}

func parentDir(dir string) string {
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' {
			return dir[:i]
		}
	}
	return ""
}

func (b *Builder) mkdirFile(dir string) *File {
	f := NewFile(b.ctx, ast.Range{}, dir, "", false, fabtype.TagOut)
	_ = f.MarkGenerated(ast.Range{})
	b.files = append(b.files, f)
	return f
}

func (b *Builder) mkdirBuild(dir *File) {
	if b.mkdirRule == nil {
		params := []Param{{Name: "dir", Type: b.ctx.OutputFile()}}
		b.mkdirRule = NewRule(b.ctx, ast.Range{}, "_fabrique_mkdir", mkdirCommand(), "create directory", params, b.ctx.OutputFile(), b)
		b.rules[b.mkdirRule.name] = b.mkdirRule
	}
	build := &Build{
		unsupported: unsupported{"build"},
		ctx:         b.ctx,
		Rule:        b.mkdirRule,
		Outputs:     []*File{dir},
		Arguments:   map[string]Value{"dir": dir},
	}
	// Directory-creation builds must precede the builds that depend on them
	// (§8 scenario 6); synthesizeDirectories runs before dedup/assembly, so
	// prepending here keeps them ahead of every compile build already
	// recorded.
	b.builds = append([]*Build{build}, b.builds...)
}

// AddRegeneration records the dependency of a generated build script on the
// Fabrique source files that produced it (§4.4 "Regeneration step"). It
// creates a console-pool "_fabrique_regenerate" rule whose command is
// "<cmd> ${rootInput}".
func (b *Builder) AddRegeneration(cmd string, rootInput *File, otherInputs []*File, output *File) {
	params := []Param{
		{Name: "rootInput", Type: b.ctx.InputFile()},
		{Name: "otherInputs", Type: b.ctx.ListOf(b.ctx.InputFile())},
		{Name: "output", Type: b.ctx.ListOf(b.ctx.OutputFile())},
	}
	r := NewRule(b.ctx, ast.Range{}, "_fabrique_regenerate", cmd+" ${rootInput}", "regenerate build files", params, b.ctx.OutputFile(), b)
	b.rules[r.name] = r
	_ = output.MarkGenerated(ast.Range{})
	others := make([]Value, len(otherInputs))
	for i, f := range otherInputs {
		others[i] = f
	}
	args := map[string]Value{
		"rootInput":   rootInput,
		"otherInputs": NewList(b.ctx, ast.Range{}, b.ctx.InputFile(), others),
		"output":      output,
	}
	b.newBuild(ast.Range{}, r, append([]*File{rootInput}, otherInputs...), []*File{output}, args)
}

// dedupFiles sorts files by full name and drops duplicates by full-name
// equality (§4.4 "File deduplication").
func (b *Builder) dedupFiles() []*File {
	sorted := append([]*File{}, b.files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FullName() < sorted[j].FullName() })
	out := sorted[:0:0]
	var last string
	first := true
	for _, f := range sorted {
		if first || f.FullName() != last {
			out = append(out, f)
			last = f.FullName()
			first = false
		}
	}
	return out
}

// checkTargetFileConflicts enforces: no two Targets may share a name with a
// File whose filename differs; a Target named `foo` that itself produces
// file `foo` is allowed (§3 invariants, §4.4 "Target/file conflict check").
func (b *Builder) checkTargetFileConflicts(files []*File) *Error {
	for _, f := range files {
		t, ok := b.targets[f.Basename()]
		if !ok {
			continue
		}
		ownsIt := false
		for _, tf := range t.files {
			if tf.FullName() == f.FullName() {
				ownsIt = true
				break
			}
		}
		if !ownsIt {
			return Errorf(ast.Range{}, "target %s conflicts with file %s", t.Name(), f.FullName())
		}
	}
	return nil
}

// DAG runs the post-processing transforms (directory synthesis, file
// dedup, conflict checking) and returns the immutable result (§4.4, §4.8).
func (b *Builder) DAG() (*DAG, *Error) {
	b.synthesizeDirectories()
	files := b.dedupFiles()
	if err := b.checkTargetFileConflicts(files); err != nil {
		return nil, err
	}
	rules := make(map[string]*Rule, len(b.rules))
	for k, v := range b.rules {
		rules[k] = v
	}
	variables := make(map[string]Value, len(b.variables))
	for k, v := range b.variables {
		variables[k] = v
	}
	targets := make(map[string]*Target, len(b.targets))
	for k, v := range b.targets {
		targets[k] = v
	}
	return &DAG{
		files:         files,
		builds:        append([]*Build{}, b.builds...),
		rules:         rules,
		variables:     variables,
		targets:       targets,
		topLevel:      append([]TopLevelTarget{}, b.topLevel...),
	}, nil
}
