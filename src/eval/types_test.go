package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

func TestResolveTypeNilMeansUnconstrained(t *testing.T) {
	tc := fabtype.NewContext()
	typ, err := resolveType(tc, ast.Range{}, nil)
	assert.Nil(t, err)
	assert.Nil(t, typ, "unconstrained must be Go nil, distinct from tc.Nil()")
}

func TestResolveTypeNamed(t *testing.T) {
	tc := fabtype.NewContext()
	typ, err := resolveType(tc, ast.Range{}, &ast.TypeExpr{Name: "int"})
	assert.Nil(t, err)
	assert.Equal(t, tc.Int(), typ)
}

func TestResolveTypeParametric(t *testing.T) {
	tc := fabtype.NewContext()
	typ, err := resolveType(tc, ast.Range{}, &ast.TypeExpr{
		Name:   "list",
		Params: []*ast.TypeExpr{{Name: "int"}},
	})
	assert.Nil(t, err)
	assert.Equal(t, tc.ListOf(tc.Int()), typ)
}

func TestResolveTypeFunction(t *testing.T) {
	tc := fabtype.NewContext()
	typ, err := resolveType(tc, ast.Range{}, &ast.TypeExpr{
		Name:       "function",
		FuncParams: []*ast.TypeExpr{{Name: "file", Params: []*ast.TypeExpr{{Name: fabtype.TagIn}}}},
		FuncResult: &ast.TypeExpr{Name: "file", Params: []*ast.TypeExpr{{Name: fabtype.TagOut}}},
	})
	assert.Nil(t, err)
	assert.Equal(t, tc.FunctionType([]*fabtype.Type{tc.InputFile()}, tc.OutputFile()), typ)
}

func TestResolveTypeRecord(t *testing.T) {
	tc := fabtype.NewContext()
	typ, err := resolveType(tc, ast.Range{}, &ast.TypeExpr{
		Name:   "record",
		Fields: []ast.RecordFieldType{{Name: "x", Type: &ast.TypeExpr{Name: "int"}}},
	})
	assert.Nil(t, err)
	assert.Equal(t, tc.RecordType([]fabtype.Field{{Name: "x", Type: tc.Int()}}), typ)
}
