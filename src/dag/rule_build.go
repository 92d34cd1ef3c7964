package dag

import (
	"strings"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A Rule is a command template plus a parameter signature describing how to
// transform inputs into outputs (§3, GLOSSARY). Calling it (via Invoke)
// constructs a Build.
type Rule struct {
	noFields
	unsupported
	typ         *fabtype.Type
	rng         ast.Range
	ctx         *fabtype.Context
	name        string
	command     string // contains ${param} placeholders
	description string
	params      []Param
	resultType  *fabtype.Type
	builder     *Builder
}

// NewRule constructs a Rule. At least one parameter must carry a
// file[out]-containing type (§4.6 "Action/Rule construction"); callers are
// expected to have checked that before calling this.
func NewRule(ctx *fabtype.Context, at ast.Range, name, command, description string, params []Param, resultType *fabtype.Type, b *Builder) *Rule {
	paramTypes := make([]*fabtype.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	return &Rule{
		unsupported: unsupported{"rule"},
		typ:         ctx.FunctionType(paramTypes, resultType),
		rng:         at,
		ctx:         ctx,
		name:        name,
		command:     command,
		description: description,
		params:      params,
		resultType:  resultType,
		builder:     b,
	}
}

func (r *Rule) Type() *fabtype.Type  { return r.typ }
func (r *Rule) Range() ast.Range     { return r.rng }
func (r *Rule) IsTruthy() bool       { return true }
func (r *Rule) String() string       { return "<rule " + r.name + ">" }
func (r *Rule) Name() string         { return r.name }
func (r *Rule) Command() string      { return r.command }
func (r *Rule) Description() string  { return r.description }
func (r *Rule) Params() []Param      { return r.params }
func (r *Rule) AllowExtraArgs() bool { return false }

// HasOutputParam reports whether this rule declares at least one parameter
// whose type contains file[out] (directly, or as a list[file[out]]), which
// §4.6 requires before an action literal can become a Rule.
func (r *Rule) HasOutputParam() bool {
	for _, p := range r.params {
		if typeContainsOutputFile(p.Type) {
			return true
		}
	}
	return false
}

func typeContainsOutputFile(t *fabtype.Type) bool {
	if t == nil {
		return false
	}
	if t.Name() == fabtype.NameFile && t.Tag() == fabtype.TagOut {
		return true
	}
	if t.Name() == fabtype.NameList {
		for _, p := range t.Params() {
			if typeContainsOutputFile(p) {
				return true
			}
		}
	}
	return false
}

// Invoke applies this rule to already-named, already-type-checked
// arguments, producing a Build. Files bound to file[out] parameters are
// marked generated (§3 invariants); the resulting Build's inputs/outputs are
// collected from every file[in]/file[out]-typed argument, flattening lists.
func (r *Rule) Invoke(at ast.Range, args map[string]Value) (Value, *Error) {
	var inputs, outputs []*File
	for _, p := range r.params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		files := flattenFiles(v)
		if typeContainsOutputFile(p.Type) {
			for _, f := range files {
				if err := f.MarkGenerated(at); err != nil {
					return nil, err
				}
			}
			outputs = append(outputs, files...)
		} else {
			inputs = append(inputs, files...)
		}
	}
	if len(outputs) == 0 {
		return nil, Errorf(at, "build of rule %s has no output files", r.name)
	}
	b := r.builder.newBuild(at, r, inputs, outputs, args)
	return b, nil
}

func flattenFiles(v Value) []*File {
	switch val := v.(type) {
	case *File:
		return []*File{val}
	case *List:
		var out []*File
		for _, e := range val.Vals {
			out = append(out, flattenFiles(e)...)
		}
		return out
	default:
		return nil
	}
}

// A Build is the concrete invocation of a Rule with specific file arguments
// (§3, GLOSSARY). When assigned to a name at the top level it is promoted
// to a Target (resolved Open Question in §9).
type Build struct {
	unsupported
	rng       ast.Range
	ctx       *fabtype.Context
	Rule      *Rule
	Inputs    []*File
	Outputs   []*File
	Arguments map[string]Value
}

func (b *Build) Type() *fabtype.Type { return b.Rule.resultType }
func (b *Build) Range() ast.Range    { return b.rng }
func (b *Build) IsTruthy() bool      { return true }

func (b *Build) String() string {
	names := make([]string, len(b.Outputs))
	for i, o := range b.Outputs {
		names[i] = o.FullName()
	}
	return "<build " + b.Rule.name + " -> " + strings.Join(names, ", ") + ">"
}

func (b *Build) Field(name string) (Value, bool) {
	out, err := b.canonicalOutput()
	if err != nil {
		return nil, false
	}
	return out.Field(name)
}

// canonicalOutput forwards operators to the Build's single output file, or
// to a list of its outputs, per §4.3 "Builds forward operators to their
// canonical output value".
func (b *Build) canonicalOutput() (Value, *Error) {
	if len(b.Outputs) == 1 {
		return b.Outputs[0], nil
	}
	vals := make([]Value, len(b.Outputs))
	elem := b.ctx.Nil()
	for i, o := range b.Outputs {
		vals[i] = o
		elem = elem.Supertype(o.Type())
	}
	return NewList(b.ctx, b.rng, elem, vals), nil
}

func (b *Build) Add(at ast.Range, other Value) (Value, *Error) {
	out, err := b.canonicalOutput()
	if err != nil {
		return nil, err
	}
	return out.Add(at, other)
}

func (b *Build) PrefixWith(at ast.Range, other Value) (Value, *Error) {
	out, err := b.canonicalOutput()
	if err != nil {
		return nil, err
	}
	return out.PrefixWith(at, other)
}

func (b *Build) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*Build)
	return NewBoolean(b.ctx, at, ok && o == b), nil
}
