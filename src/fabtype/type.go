// Package fabtype implements Fabrique's structural type system: a
// hash-consed registry of Type values (TypeContext) plus the subtype
// lattice, join (supertype) computation, and per-operator result rules.
//
// The type itself decides every relation and every operator's result type;
// callers (the evaluator in src/eval, the DAG values in src/dag) never
// switch on a type's name to decide legality. This mirrors the way the
// teacher's asp.pyFunc.validateType checks an argument's dynamic type tag
// against a declared set, generalised here into a full subtype lattice with
// joins, parametric types, and row-polymorphic records.
package fabtype

import (
	"sort"
	"strings"
)

// Tag names the two built-in file flavours. An untagged file is both an
// input and an output candidate; file[in] and file[out] are incomparable.
const (
	TagNone = ""
	TagIn   = "in"
	TagOut  = "out"
)

// Names of the built-in (non-user) type constructors.
const (
	NameNil      = "<nil>"
	NameBool     = "bool"
	NameInt      = "int"
	NameString   = "string"
	NameFile     = "file"
	NameList     = "list"
	NameFunction = "function"
	NameRecord   = "record"
	NameType     = "type"
)

// A Type is value-equal and canonicalised by (name, parameter tuple) within
// its owning Context: two Types built with the same shape from the same
// Context are the identical *Type, so equality is pointer equality.
type Type struct {
	ctx    *Context
	name   string
	params []*Type // type parameters, e.g. the T in list[T], or the tag in file[in]
	fields []Field // declared fields, for record types only; preserves declaration order
	// funcParams/funcResult hold the signature for function types; kept
	// separate from params because a function's arity varies independently
	// of its name.
	funcParams []*Type
	funcResult *Type
}

// A Field is one declared field of a record type.
type Field struct {
	Name string
	Type *Type
}

// Name returns the type constructor name, e.g. "int", "file", "list", or a
// user-defined name.
func (t *Type) Name() string { return t.name }

// Ctx returns the Context that owns (and canonicalises) this Type. Used by
// src/dag when an operator needs to construct a Boolean result type without
// otherwise threading a Context through.
func (t *Type) Ctx() *Context { return t.ctx }

// Params returns the type's parameters (e.g. the element type of a list, or
// the tag of a file).
func (t *Type) Params() []*Type { return t.params }

// Valid reports whether this is a real type, as opposed to the context's
// distinguished nil type.
func (t *Type) Valid() bool { return t != nil && t.name != NameNil }

// Tag returns the file tag ("in"/"out"/"") for a file type, or "" for any
// other type.
func (t *Type) Tag() string {
	if t.name != NameFile || len(t.params) == 0 {
		return TagNone
	}
	return t.params[0].name
}

// String renders the type the way Fabrique source would write it.
func (t *Type) String() string {
	switch t.name {
	case NameNil:
		return "<nil>"
	case NameList:
		if len(t.params) == 1 {
			return "list[" + t.params[0].String() + "]"
		}
		return "list"
	case NameFile:
		if tag := t.Tag(); tag != TagNone {
			return "file[" + tag + "]"
		}
		return "file"
	case NameFunction:
		parts := make([]string, len(t.funcParams))
		for i, p := range t.funcParams {
			parts[i] = p.String()
		}
		res := "nil"
		if t.funcResult != nil {
			res = t.funcResult.String()
		}
		return "function(" + strings.Join(parts, ", ") + ") -> " + res
	case NameRecord:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return "record[" + strings.Join(parts, ", ") + "]"
	default:
		return t.name
	}
}

// Fields returns the ordered field map for a type that has fields (records
// declare their own; files expose a fixed universal set via src/dag, which
// this package does not know about). For any other type it returns nil.
func (t *Type) Fields() []Field {
	if t.name != NameRecord {
		return nil
	}
	return t.fields
}

// fieldType looks up a single declared field by name.
func (t *Type) fieldType(name string) (*Type, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// IsSubtype reports whether t ≤ other under the lattice described in the
// data model: reflexive on name+parameters, covariant in list element and
// function return, contravariant in function parameters, width/depth
// subtyping on records, and the two file-tag special cases.
func (t *Type) IsSubtype(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	if t.name == NameNil {
		return true // nil (and empty list) is a subtype of everything
	}
	if other.name == NameNil {
		return false
	}
	if t == other {
		return true
	}
	switch {
	case t.name == NameFile && other.name == NameFile:
		// untagged ≤ file[in] and untagged ≤ file[out]; file[in] and
		// file[out] are otherwise incomparable; file[x] ≤ file[x].
		if t.Tag() == TagNone {
			return true
		}
		return t.Tag() == other.Tag()
	case t.name == NameList && other.name == NameList:
		if len(t.params) == 0 {
			return true // empty list (nil element type) is a subtype of any list
		}
		return len(other.params) != 0 && t.params[0].IsSubtype(other.params[0])
	case t.name == NameFunction && other.name == NameFunction:
		if len(t.funcParams) != len(other.funcParams) {
			return false
		}
		for i := range t.funcParams {
			// contravariant: other's param must be acceptable wherever t's is
			if !other.funcParams[i].IsSubtype(t.funcParams[i]) {
				return false
			}
		}
		return t.funcResult.IsSubtype(other.funcResult)
	case t.name == NameRecord && other.name == NameRecord:
		if len(t.fields) == 0 {
			return true // record[] is a subtype of every record type
		}
		for _, of := range other.fields {
			tf, ok := t.fieldType(of.Name)
			if !ok || !tf.IsSubtype(of.Type) {
				return false
			}
		}
		return true
	default:
		return t.name == other.name && sameParams(t.params, other.params)
	}
}

func sameParams(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Supertype returns the least upper bound of t and other, or the context's
// nil type if none exists.
func (t *Type) Supertype(other *Type) *Type {
	if t == nil || other == nil {
		return nil
	}
	if t == other {
		return t
	}
	if t.name == NameNil {
		return other
	}
	if other.name == NameNil {
		return t
	}
	switch {
	case t.name == NameFile && other.name == NameFile:
		if t.Tag() == other.Tag() {
			return t
		}
		// untagged file is below both tags; file[in] and file[out] have no join.
		if t.Tag() == TagNone {
			return other
		}
		if other.Tag() == TagNone {
			return t
		}
		return t.ctx.nilType
	case t.name == NameList && other.name == NameList:
		if len(t.params) == 0 {
			return other
		}
		if len(other.params) == 0 {
			return t
		}
		elem := t.params[0].Supertype(other.params[0])
		if !elem.Valid() {
			return t.ctx.nilType
		}
		return t.ctx.ListOf(elem)
	case t.name == NameRecord && other.name == NameRecord:
		return t.ctx.recordJoin(t, other)
	default:
		if t.name == other.name && sameParams(t.params, other.params) {
			return t
		}
		return t.ctx.nilType
	}
}

// recordJoin computes the row-intersection of two record types: the result
// has exactly the fields present (by name) in both, each recursively joined.
// A field whose join doesn't exist is dropped from the result, matching "the
// row-intersection, field-wise recursed" from the data model.
func (c *Context) recordJoin(a, b *Type) *Type {
	var fields []Field
	for _, af := range a.fields {
		if bf, ok := b.fieldType(af.Name); ok {
			j := af.Type.Supertype(bf)
			if j.Valid() {
				fields = append(fields, Field{Name: af.Name, Type: j})
			}
		}
	}
	return c.RecordType(fields)
}

// onAddTo returns the result type of `other + t`, i.e. this type's
// contribution when it appears on the right of `+`, or nil if unsupported.
// The evaluator tries both orderings (§4.2): `a + b` first asks b.onAddTo(a),
// falling back to a's own handling if that fails.
func (t *Type) onAddTo(other *Type) *Type {
	switch t.name {
	case NameFile:
		if other.name == NameString {
			return t // file + string, string + file both yield file
		}
	case NameString:
		if other.name == NameFile {
			return other
		}
	case NameList:
		if other.name == NameList {
			return t.Supertype(other)
		}
		// scalar add: list + elem -> list, decided by the lattice
		if len(t.params) != 0 && other.IsSubtype(t.params[0]) {
			return t
		}
	}
	return nil
}

// onMultiply mirrors onAddTo for the `*` operator. Fabrique only defines
// multiplication between two integers; there is no cross-type rule, but the
// hook exists so a user type could define one.
func (t *Type) onMultiply(other *Type) *Type {
	if t.name == NameInt && other.name == NameInt {
		return t
	}
	return nil
}

// onPrefixWith returns the result type of `other <> t` where t is being
// prefixed onto other (string/file concatenation, or list prefix).
func (t *Type) onPrefixWith(other *Type) *Type {
	switch t.name {
	case NameFile:
		if other.name == NameString {
			return t
		}
	case NameString:
		if other.name == NameFile {
			return other
		}
	case NameList:
		if other.name == NameList {
			return t.Supertype(other)
		}
	}
	return nil
}

// OnAddTo, OnMultiply, OnPrefixWith are the exported forms of the operator
// hooks, used by src/dag and src/eval without needing package-internal
// access.
func (t *Type) OnAddTo(other *Type) *Type      { return t.onAddTo(other) }
func (t *Type) OnMultiply(other *Type) *Type   { return t.onMultiply(other) }
func (t *Type) OnPrefixWith(other *Type) *Type { return t.onPrefixWith(other) }

// key canonicalises a (name, params, funcParams, funcResult, fields) shape
// into a string suitable for use as a map key in the owning Context.
func key(name string, params, funcParams []*Type, funcResult *Type, fields []Field) string {
	var b strings.Builder
	b.WriteString(name)
	for _, p := range params {
		b.WriteByte('<')
		b.WriteString(p.key())
		b.WriteByte('>')
	}
	if funcResult != nil || len(funcParams) != 0 {
		b.WriteByte('(')
		for _, p := range funcParams {
			b.WriteString(p.key())
			b.WriteByte(',')
		}
		b.WriteString(")->")
		if funcResult != nil {
			b.WriteString(funcResult.key())
		}
	}
	if len(fields) != 0 {
		sorted := append([]Field(nil), fields...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		b.WriteByte('{')
		for _, f := range sorted {
			b.WriteString(f.Name)
			b.WriteByte(':')
			b.WriteString(f.Type.key())
			b.WriteByte(';')
		}
		b.WriteByte('}')
	}
	return b.String()
}

func (t *Type) key() string {
	if t == nil {
		return "<nil>"
	}
	return key(t.name, t.params, t.funcParams, t.funcResult, t.fields)
}
