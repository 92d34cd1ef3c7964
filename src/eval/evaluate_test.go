package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

func newTestContext() (*Context, *Scope) {
	tc := fabtype.NewContext()
	builder := dag.NewBuilder(tc)
	ctx := NewContext(tc, builder, map[string]dag.Value{})
	return ctx, ctx.CurrentScope()
}

func intLit(v int64) *ast.Literal   { return &ast.Literal{Int: &v} }
func boolLit(v bool) *ast.Literal   { return &ast.Literal{Bool: &v} }
func strLit(v string) *ast.Literal  { return &ast.Literal{String: &v} }

func TestEvaluateLiterals(t *testing.T) {
	ctx, scope := newTestContext()
	v, err := Evaluate(ctx, scope, intLit(5))
	assert.Nil(t, err)
	assert.Equal(t, int64(5), v.(*dag.Integer).Val)

	v, err = Evaluate(ctx, scope, strLit("hi"))
	assert.Nil(t, err)
	assert.Equal(t, "hi", v.(*dag.String).Val)

	v, err = Evaluate(ctx, scope, boolLit(true))
	assert.Nil(t, err)
	assert.True(t, v.IsTruthy())
}

func TestEvaluateBinaryOpAdd(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.BinaryOp{Op: ast.OpAdd, Left: intLit(2), Right: intLit(3)}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	assert.Equal(t, int64(5), v.(*dag.Integer).Val)
}

func TestEvaluateComparisonOperators(t *testing.T) {
	ctx, scope := newTestContext()
	lt := &ast.BinaryOp{Op: ast.OpLessThan, Left: intLit(2), Right: intLit(3)}
	v, err := Evaluate(ctx, scope, lt)
	assert.Nil(t, err)
	assert.True(t, v.IsTruthy())

	ne := &ast.BinaryOp{Op: ast.OpNotEquals, Left: intLit(2), Right: intLit(3)}
	v, err = Evaluate(ctx, scope, ne)
	assert.Nil(t, err)
	assert.True(t, v.IsTruthy())
}

func TestEvaluateConditional(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.Conditional{Condition: boolLit(true), Then: intLit(1), Else: intLit(2)}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), v.(*dag.Integer).Val)
}

func TestEvaluateNameReferenceAndFieldProjection(t *testing.T) {
	ctx, scope := newTestContext()
	rec := dag.NewRecord(ctx.Types, ast.Range{}, []string{"x"}, map[string]dag.Value{"x": dag.NewInteger(ctx.Types, ast.Range{}, 7)})
	assert.Nil(t, ctx.Define(ast.Range{}, "r", rec))

	node := &ast.NameReference{Components: []string{"r", "x"}}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	assert.Equal(t, int64(7), v.(*dag.Integer).Val)
}

func TestEvaluateListExprFoldsElementType(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.ListExpr{Elements: []ast.Node{intLit(1), intLit(2)}}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	list := v.(*dag.List)
	assert.Equal(t, 2, list.Len())
}

func TestEvaluateForeachCollectsResults(t *testing.T) {
	ctx, scope := newTestContext()
	source := &ast.ListExpr{Elements: []ast.Node{intLit(1), intLit(2), intLit(3)}}
	node := &ast.Foreach{
		Name:   "x",
		Source: source,
		Body:   &ast.BinaryOp{Op: ast.OpMultiply, Left: &ast.NameReference{Components: []string{"x"}}, Right: intLit(10)},
	}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	list := v.(*dag.List)
	assert.Equal(t, int64(10), list.Item(0).(*dag.Integer).Val)
	assert.Equal(t, int64(30), list.Item(2).(*dag.Integer).Val)
}

func TestEvaluateFunctionLiteralAndCall(t *testing.T) {
	ctx, scope := newTestContext()
	fn := &ast.FunctionLiteral{
		Params: []ast.Param{{Name: "n"}},
		Body:   &ast.BinaryOp{Op: ast.OpAdd, Left: &ast.NameReference{Components: []string{"n"}}, Right: intLit(1)},
	}
	call := &ast.Call{
		Target: fn,
		Args:   []ast.CallArg{{Value: intLit(41)}},
	}
	v, err := Evaluate(ctx, scope, call)
	assert.Nil(t, err)
	assert.Equal(t, int64(42), v.(*dag.Integer).Val)
}

func TestEvaluateValueDeclDuplicateIsError(t *testing.T) {
	ctx, scope := newTestContext()
	decl := &ast.ValueDecl{Name: "x", Value: intLit(1)}
	_, err := Evaluate(ctx, scope, decl)
	assert.Nil(t, err)
	_, err = Evaluate(ctx, scope, decl)
	assert.NotNil(t, err, "redefining a name in the same scope must fail")
}

func TestEvaluateActionExprRequiresExplicitParamTypes(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.ActionExpr{
		Command: strLit("cc ${out}"),
		Params:  []ast.Param{{Name: "out"}},
	}
	_, err := Evaluate(ctx, scope, node)
	assert.NotNil(t, err, "action parameters must have explicit types")
}

func TestEvaluateFilenameLiteralSetsAttributesFromExtraKwargs(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.FilenameLiteral{
		Name:  strLit("a.c"),
		Attrs: []ast.CallArg{{Name: "license", Value: strLit("MIT")}},
	}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	f := v.(*dag.File)
	license, ok := f.Field("license")
	assert.True(t, ok)
	assert.Equal(t, "MIT", license.(*dag.String).Val)
}

func TestEvaluateFilenameLiteralRejectsPositionalAttribute(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.FilenameLiteral{
		Name:  strLit("a.c"),
		Attrs: []ast.CallArg{{Value: strLit("MIT")}},
	}
	_, err := Evaluate(ctx, scope, node)
	assert.NotNil(t, err)
}

func TestEvaluateActionExprProducesRule(t *testing.T) {
	ctx, scope := newTestContext()
	node := &ast.ActionExpr{
		Command:    strLit("cc ${out}"),
		Params:     []ast.Param{{Name: "out", Type: &ast.TypeExpr{Name: "file", Params: []*ast.TypeExpr{{Name: fabtype.TagOut}}}}},
		ResultType: &ast.TypeExpr{Name: "file", Params: []*ast.TypeExpr{{Name: fabtype.TagOut}}},
	}
	v, err := Evaluate(ctx, scope, node)
	assert.Nil(t, err)
	_, ok := v.(*dag.Rule)
	assert.True(t, ok)
}
