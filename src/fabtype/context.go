package fabtype

// A Context is the single-owner, hash-consed registry for all Types built
// during one compilation. It is not safe for concurrent use, matching the
// evaluator's single-threaded design (§5) — callers needing isolation
// simply create a fresh Context per compilation, the way the teacher's
// TypeContext-equivalent constructs (the asp interpreter's per-file scope
// state) are scoped to one parse.
type Context struct {
	types   map[string]*Type
	nilType *Type

	boolType   *Type
	intType    *Type
	stringType *Type
	fileType   *Type
	inFile     *Type
	outFile    *Type
	typeType   *Type
}

// NewContext creates a fresh TypeContext with its primitive types registered.
func NewContext() *Context {
	c := &Context{types: map[string]*Type{}}
	c.nilType = c.intern(&Type{ctx: c, name: NameNil})
	c.boolType = c.intern(&Type{ctx: c, name: NameBool})
	c.intType = c.intern(&Type{ctx: c, name: NameInt})
	c.stringType = c.intern(&Type{ctx: c, name: NameString})
	c.typeType = c.intern(&Type{ctx: c, name: NameType})
	tagIn := c.intern(&Type{ctx: c, name: TagIn})
	tagOut := c.intern(&Type{ctx: c, name: TagOut})
	c.fileType = c.intern(&Type{ctx: c, name: NameFile})
	c.inFile = c.intern(&Type{ctx: c, name: NameFile, params: []*Type{tagIn}})
	c.outFile = c.intern(&Type{ctx: c, name: NameFile, params: []*Type{tagOut}})
	return c
}

func (c *Context) intern(t *Type) *Type {
	k := t.key()
	if existing, ok := c.types[k]; ok {
		return existing
	}
	c.types[k] = t
	return t
}

// Nil returns the distinguished "no type" — subtype of everything, with
// Valid() == false.
func (c *Context) Nil() *Type { return c.nilType }

// Bool, Int, String, File, InputFile, OutputFile, Type return the
// convenience primitive types.
func (c *Context) Bool() *Type       { return c.boolType }
func (c *Context) Int() *Type        { return c.intType }
func (c *Context) String() *Type     { return c.stringType }
func (c *Context) File() *Type       { return c.fileType }
func (c *Context) InputFile() *Type  { return c.inFile }
func (c *Context) OutputFile() *Type { return c.outFile }
func (c *Context) TypeType() *Type   { return c.typeType }

// ListOf returns (constructing if necessary) the canonical list[elem] type.
func (c *Context) ListOf(elem *Type) *Type {
	return c.intern(&Type{ctx: c, name: NameList, params: []*Type{elem}})
}

// EmptyList returns the type of an empty list literal: list[nil].
func (c *Context) EmptyList() *Type {
	return c.ListOf(c.nilType)
}

// FunctionType returns the canonical function(params...) -> result type.
func (c *Context) FunctionType(params []*Type, result *Type) *Type {
	return c.intern(&Type{ctx: c, name: NameFunction, funcParams: params, funcResult: result})
}

// RecordType returns the canonical record type with the given fields. Field
// order is not significant to canonicalisation (two records with the same
// fields in different declaration order are the same type); the returned
// Type keeps the field order of the first construction of that record shape.
func (c *Context) RecordType(fields []Field) *Type {
	return c.intern(&Type{ctx: c, name: NameRecord, fields: fields})
}

// EmptyRecord returns record[], the subtype of every record type.
func (c *Context) EmptyRecord() *Type {
	return c.RecordType(nil)
}

// UserType returns (constructing if necessary) a nominal user-defined type
// with no structure of its own beyond its name — used for opaque host types
// such as plugin-exposed handles.
func (c *Context) UserType(name string) *Type {
	return c.intern(&Type{ctx: c, name: name})
}

// Find resolves a named, possibly-parametric type, constructing it on
// demand. If name isn't one of the built-in constructors it's treated as a
// user type name. This is the single entrypoint TypeExpr resolution (§4.6)
// goes through.
func (c *Context) Find(name string, params ...*Type) *Type {
	switch name {
	case NameBool:
		return c.boolType
	case NameInt:
		return c.intType
	case NameString:
		return c.stringType
	case NameType:
		return c.typeType
	case NameFile:
		switch {
		case len(params) == 0:
			return c.fileType
		case len(params) == 1 && params[0] == nil:
			return c.fileType
		}
		tag := params[0].name
		if tag != TagIn && tag != TagOut {
			return c.nilType
		}
		if tag == TagIn {
			return c.inFile
		}
		return c.outFile
	case NameList:
		if len(params) != 1 {
			return c.EmptyList()
		}
		return c.ListOf(params[0])
	case NameRecord:
		return c.EmptyRecord()
	case NameNil:
		return c.nilType
	default:
		if len(params) == 0 {
			return c.UserType(name)
		}
		return c.intern(&Type{ctx: c, name: name, params: params})
	}
}

// Parameterise applies type parameters to a base type, e.g. turning the bare
// `list` constructor into `list[int]`, or `file` into `file[in]`. It
// kind-checks: list takes exactly one parameter, file takes zero or one (and
// that one must be the literal tag "in" or "out").
func (t *Type) Parameterise(params []*Type) *Type {
	switch t.name {
	case NameList:
		if len(params) != 1 {
			return t.ctx.nilType
		}
		return t.ctx.ListOf(params[0])
	case NameFile:
		if len(params) == 0 {
			return t
		}
		return t.ctx.Find(NameFile, params[0])
	default:
		return t.ctx.nilType
	}
}
