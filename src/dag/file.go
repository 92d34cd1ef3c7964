package dag

import (
	"path"
	"path/filepath"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

// A File represents an input or generated path. Its generated flag is
// monotone (§3 invariants): once set, File.MarkGenerated refuses to unset
// it, and an absolute-path File can never be marked generated at all.
type File struct {
	unsupported
	typ *fabtype.Type
	rng ast.Range
	ctx *fabtype.Context

	filename   string // path relative to Subdirectory, or absolute if Absolute
	subdir     string
	absolute   bool
	generated  bool
	attributes map[string]Value
}

// NewFile constructs a File. tag should be fabtype.TagNone/"in"/"out" to
// select the file's static type. The tag does not mark the file generated:
// every new File starts ungenerated, and MarkGenerated (called by Build
// construction for file[out] arguments, §4.6, invariants) sets the flag.
func NewFile(ctx *fabtype.Context, at ast.Range, filename, subdir string, absolute bool, tag string) *File {
	f := &File{
		unsupported: unsupported{"file"},
		typ:         ctx.Find(fabtype.NameFile, typeTagParam(ctx, tag)),
		rng:         at,
		ctx:         ctx,
		filename:    filename,
		subdir:      subdir,
		absolute:    absolute,
		attributes:  map[string]Value{},
	}
	return f
}

func typeTagParam(ctx *fabtype.Context, tag string) *fabtype.Type {
	if tag == fabtype.TagNone {
		return nil
	}
	return ctx.UserType(tag)
}

func (f *File) Type() *fabtype.Type { return f.typ }
func (f *File) Range() ast.Range    { return f.rng }
func (f *File) IsTruthy() bool      { return f.FullName() != "" }
func (f *File) String() string      { return f.FullName() }

// FullName returns the file's path, joining Subdirectory and Filename
// unless the file is absolute.
func (f *File) FullName() string {
	if f.absolute {
		return f.filename
	}
	if f.subdir == "" {
		return f.filename
	}
	return path.Join(f.subdir, f.filename)
}

// Basename returns the filename without any directory component.
func (f *File) Basename() string { return path.Base(f.filename) }

// Extension returns the file's extension, including the leading dot.
func (f *File) Extension() string { return filepath.Ext(f.filename) }

// Name is the filename relative to its subdirectory, i.e. without the
// subdirectory prefix.
func (f *File) Name() string { return f.filename }

// Subdir returns this file's subdirectory.
func (f *File) Subdir() string { return f.subdir }

// Generated reports whether this file is an output of some Build.
func (f *File) Generated() bool { return f.generated }

// Absolute reports whether this file carries an absolute path.
func (f *File) Absolute() bool { return f.absolute }

// MarkGenerated marks this file as generated. It is an error (not a panic)
// to mark an absolute-path file generated, and marking an already-generated
// file is a harmless no-op (the flag is monotone).
func (f *File) MarkGenerated(at ast.Range) *Error {
	if f.generated {
		return nil
	}
	if f.absolute {
		return Errorf(at, "absolute-path file %s cannot be a build output", f.filename)
	}
	f.generated = true
	return nil
}

// SetAttribute attaches a user-supplied attribute (from extra keyword
// arguments to file(), §3 "File... attributes"); it does not overwrite the
// universal fixed fields.
func (f *File) SetAttribute(name string, v Value) {
	f.attributes[name] = v
}

func (f *File) Field(name string) (Value, bool) {
	switch name {
	case "basename":
		return NewString(f.ctx, f.rng, f.Basename()), true
	case "extension":
		return NewString(f.ctx, f.rng, f.Extension()), true
	case "name":
		return NewString(f.ctx, f.rng, f.Name()), true
	case "fullName":
		return NewString(f.ctx, f.rng, f.FullName()), true
	case "generated":
		return NewBoolean(f.ctx, f.rng, f.generated), true
	case "subdir":
		return NewString(f.ctx, f.rng, f.subdir), true
	}
	if v, ok := f.attributes[name]; ok {
		return v, true
	}
	return nil, false
}

// Add implements file + string and file + file is not defined; only the
// string-concatenation form exists (§4.2: File's onAddTo(string) yields
// file).
func (f *File) Add(at ast.Range, other Value) (Value, *Error) {
	s, ok := other.(*String)
	if !ok {
		return nil, Errorf(at, "cannot add file and %s", other.Type())
	}
	nf := *f
	nf.rng = at
	nf.filename = f.filename + s.Val
	nf.attributes = copyAttrs(f.attributes)
	return &nf, nil
}

// PrefixWith implements string <> file concatenation (prefix onto the
// filename, keeping the subdirectory).
func (f *File) PrefixWith(at ast.Range, other Value) (Value, *Error) {
	s, ok := other.(*String)
	if !ok {
		return nil, Errorf(at, "cannot prefix file with %s", other.Type())
	}
	return f.prefixedWith(at, s.Val)
}

func (f *File) prefixedWith(at ast.Range, prefix string) (Value, *Error) {
	nf := *f
	nf.rng = at
	nf.filename = prefix + f.filename
	nf.attributes = copyAttrs(f.attributes)
	return &nf, nil
}

func (f *File) Equals(at ast.Range, other Value) (Value, *Error) {
	o, ok := other.(*File)
	eq := ok && o.FullName() == f.FullName()
	return NewBoolean(f.ctx, at, eq), nil
}

func copyAttrs(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// dirComponent returns the directory component of a generated file's full name,
// or "" if it lives at the root. Used by DAGBuilder's directory synthesis.
func (f *File) dirComponent() string {
	dir := path.Dir(f.FullName())
	if dir == "." {
		return ""
	}
	return dir
}
