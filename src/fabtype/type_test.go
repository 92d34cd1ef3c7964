package fabtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveSubtyping(t *testing.T) {
	c := NewContext()
	assert.True(t, c.Int().IsSubtype(c.Int()))
	assert.False(t, c.Int().IsSubtype(c.String()))
	assert.True(t, c.Nil().IsSubtype(c.Int()))
	assert.False(t, c.Int().IsSubtype(c.Nil()))
}

func TestFileTagSubtyping(t *testing.T) {
	c := NewContext()
	assert.True(t, c.File().IsSubtype(c.InputFile()))
	assert.True(t, c.File().IsSubtype(c.OutputFile()))
	assert.False(t, c.InputFile().IsSubtype(c.OutputFile()))
	assert.False(t, c.OutputFile().IsSubtype(c.InputFile()))
	assert.True(t, c.InputFile().IsSubtype(c.InputFile()))
}

func TestListCovariance(t *testing.T) {
	c := NewContext()
	ints := c.ListOf(c.Int())
	assert.True(t, c.EmptyList().IsSubtype(ints))
	assert.True(t, c.EmptyList().IsSubtype(c.ListOf(c.String())))
	assert.False(t, ints.IsSubtype(c.ListOf(c.String())))
}

func TestFunctionVariance(t *testing.T) {
	c := NewContext()
	// Untagged file ≤ file[in] and file ≤ file[out], so
	// function(file[in]) -> file should be a subtype of function(file) -> file[out],
	// i.e. contravariant in params, covariant in result.
	narrow := c.FunctionType([]*Type{c.InputFile()}, c.File())
	wide := c.FunctionType([]*Type{c.File()}, c.OutputFile())
	assert.True(t, narrow.IsSubtype(wide))
	assert.False(t, wide.IsSubtype(narrow))
}

func TestRecordWidthDepthSubtyping(t *testing.T) {
	c := NewContext()
	wide := c.RecordType([]Field{{Name: "a", Type: c.Int()}, {Name: "b", Type: c.Int()}})
	narrow := c.RecordType([]Field{{Name: "a", Type: c.Int()}})
	assert.True(t, wide.IsSubtype(narrow), "extra fields should still satisfy the narrower type")
	assert.False(t, narrow.IsSubtype(wide), "missing field must fail")
	assert.True(t, c.EmptyRecord().IsSubtype(narrow))
}

func TestSupertypeCommutativeAndReflexive(t *testing.T) {
	c := NewContext()
	a := c.ListOf(c.Int())
	b := c.ListOf(c.String())
	j1 := a.Supertype(b)
	j2 := b.Supertype(a)
	assert.Equal(t, j1, j2)
	assert.Equal(t, a, a.Supertype(a))
	// list[int] and list[string] have no join; where one exists, it is
	// above both arguments.
	assert.False(t, j1.Valid())
	in := c.InputFile()
	assert.True(t, in.IsSubtype(in.Supertype(c.File())))
}

func TestRecordJoinIsFieldwiseIntersection(t *testing.T) {
	c := NewContext()
	r1 := c.RecordType([]Field{{Name: "a", Type: c.Int()}, {Name: "b", Type: c.String()}})
	r2 := c.RecordType([]Field{{Name: "a", Type: c.Int()}, {Name: "c", Type: c.Bool()}})
	j := r1.Supertype(r2)
	fields := j.Fields()
	assert.Len(t, fields, 1)
	assert.Equal(t, "a", fields[0].Name)
}

func TestCanonicalisationIsPointerEquality(t *testing.T) {
	c := NewContext()
	a := c.ListOf(c.Int())
	b := c.ListOf(c.Int())
	assert.True(t, a == b, "structurally identical list types must be the same pointer")

	r1 := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	r2 := c.RecordType([]Field{{Name: "x", Type: c.Int()}})
	assert.True(t, r1 == r2)
}

func TestOperatorResultRules(t *testing.T) {
	c := NewContext()
	assert.Equal(t, c.File(), c.File().OnAddTo(c.String()))
	assert.Equal(t, c.File(), c.String().OnAddTo(c.File()))
	assert.Nil(t, c.Int().OnAddTo(c.String()))
	assert.Equal(t, c.Int(), c.Int().OnMultiply(c.Int()))
}

func TestParameterise(t *testing.T) {
	c := NewContext()
	listCtor := c.Find(NameList)
	assert.Equal(t, c.ListOf(c.Int()), listCtor.Parameterise([]*Type{c.Int()}))

	fileCtor := c.Find(NameFile)
	assert.Equal(t, c.InputFile(), fileCtor.Parameterise([]*Type{c.UserType(TagIn)}))
}
