package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

func TestIntegerArithmetic(t *testing.T) {
	tc := fabtype.NewContext()
	a := NewInteger(tc, ast.Range{}, 4)
	b := NewInteger(tc, ast.Range{}, 3)

	sum, err := a.Add(ast.Range{}, b)
	assert.Nil(t, err)
	assert.Equal(t, int64(7), sum.(*Integer).Val)

	_, divErr := a.DivideBy(ast.Range{}, NewInteger(tc, ast.Range{}, 0))
	assert.NotNil(t, divErr)

	_, typeErr := a.Add(ast.Range{}, NewString(tc, ast.Range{}, "x"))
	assert.NotNil(t, typeErr)
}

func TestBooleanLogic(t *testing.T) {
	tc := fabtype.NewContext()
	tru := NewBoolean(tc, ast.Range{}, true)
	fls := NewBoolean(tc, ast.Range{}, false)

	and, _ := tru.And(ast.Range{}, fls)
	assert.False(t, and.IsTruthy())

	xor, _ := tru.Xor(ast.Range{}, fls)
	assert.True(t, xor.IsTruthy())

	not, _ := tru.Not(ast.Range{})
	assert.False(t, not.IsTruthy())
}

func TestStringEqualityIsByteExact(t *testing.T) {
	tc := fabtype.NewContext()
	a := NewString(tc, ast.Range{}, "a\x00b")
	b := NewString(tc, ast.Range{}, "a\x00b")
	c := NewString(tc, ast.Range{}, "a")

	eq, err := a.Equals(ast.Range{}, b)
	assert.Nil(t, err)
	assert.True(t, eq.IsTruthy())

	neq, err := a.Equals(ast.Range{}, c)
	assert.Nil(t, err)
	assert.False(t, neq.IsTruthy())
}

func TestStringPlusFileYieldsFile(t *testing.T) {
	tc := fabtype.NewContext()
	prefix := NewString(tc, ast.Range{}, "gen_")
	f := NewFile(tc, ast.Range{}, "main.go", "pkg", false, fabtype.TagNone)

	v, err := prefix.Add(ast.Range{}, f)
	assert.Nil(t, err)
	result, ok := v.(*File)
	assert.True(t, ok)
	assert.Equal(t, "gen_main.go", result.Name())
	assert.Equal(t, "pkg", result.Subdir())
}

func TestFileGeneratedFlagIsMonotone(t *testing.T) {
	tc := fabtype.NewContext()
	f := NewFile(tc, ast.Range{}, "out.txt", "", false, fabtype.TagOut)
	assert.Nil(t, f.MarkGenerated(ast.Range{}))
	assert.True(t, f.Generated())
	assert.Nil(t, f.MarkGenerated(ast.Range{}), "marking twice is a no-op, not an error")

	abs := NewFile(tc, ast.Range{}, "/etc/passwd", "", true, fabtype.TagNone)
	assert.NotNil(t, abs.MarkGenerated(ast.Range{}))
	assert.False(t, abs.Generated())
}

func TestFileFieldProjection(t *testing.T) {
	tc := fabtype.NewContext()
	f := NewFile(tc, ast.Range{}, "main.go", "src/foo", false, fabtype.TagNone)
	ext, ok := f.Field("extension")
	assert.True(t, ok)
	assert.Equal(t, ".go", ext.String())

	base, ok := f.Field("basename")
	assert.True(t, ok)
	assert.Equal(t, "main.go", base.String())

	_, ok = f.Field("nonexistent")
	assert.False(t, ok)
}

func TestFileSetAttributeExposedAsField(t *testing.T) {
	tc := fabtype.NewContext()
	f := NewFile(tc, ast.Range{}, "main.go", "src/foo", false, fabtype.TagNone)
	f.SetAttribute("license", NewString(tc, ast.Range{}, "MIT"))

	v, ok := f.Field("license")
	assert.True(t, ok)
	assert.Equal(t, "MIT", v.(*String).Val)
}

func TestFileAttributesSurviveAddAndPrefixWith(t *testing.T) {
	tc := fabtype.NewContext()
	f := NewFile(tc, ast.Range{}, "main", "src", false, fabtype.TagNone)
	f.SetAttribute("license", NewString(tc, ast.Range{}, "MIT"))

	added, err := f.Add(ast.Range{}, NewString(tc, ast.Range{}, ".go"))
	assert.Nil(t, err)
	v, ok := added.(*File).Field("license")
	assert.True(t, ok)
	assert.Equal(t, "MIT", v.(*String).Val)

	prefixed, perr := f.PrefixWith(ast.Range{}, NewString(tc, ast.Range{}, "gen_"))
	assert.Nil(t, perr)
	v, ok = prefixed.(*File).Field("license")
	assert.True(t, ok)
	assert.Equal(t, "MIT", v.(*String).Val)
}
