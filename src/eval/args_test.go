package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

func echoFunction(tc *fabtype.Context, params []dag.Param, allowExtra bool) *dag.Function {
	body := dag.BodyFunc(func(args map[string]dag.Value) (dag.Value, *dag.Error) {
		return dag.NewBoolean(tc, ast.Range{}, true), nil
	})
	return dag.NewFunction(tc, ast.Range{}, "echo", params, nil, body, allowExtra)
}

func TestNameArgumentsPositionalThenNamed(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}, {Name: "b", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	args := []evaluatedArg{
		{Name: "", Value: dag.NewInteger(tc, ast.Range{}, 1)},
		{Name: "b", Value: dag.NewInteger(tc, ast.Range{}, 2)},
	}
	bound, err := nameArguments(ast.Range{}, fn, args)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), bound["a"].(*dag.Integer).Val)
	assert.Equal(t, int64(2), bound["b"].(*dag.Integer).Val)
}

func TestNameArgumentsMissingRequired(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	_, err := nameArguments(ast.Range{}, fn, nil)
	assert.NotNil(t, err)
}

func TestNameArgumentsDefaultFillsGap(t *testing.T) {
	tc := fabtype.NewContext()
	def := dag.NewInteger(tc, ast.Range{}, 9)
	params := []dag.Param{{Name: "a", Type: tc.Int(), Default: def}}
	fn := echoFunction(tc, params, false)
	bound, err := nameArguments(ast.Range{}, fn, nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(9), bound["a"].(*dag.Integer).Val)
}

func TestNameArgumentsDuplicateNamedIsError(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	args := []evaluatedArg{
		{Name: "a", Value: dag.NewInteger(tc, ast.Range{}, 1)},
		{Name: "a", Value: dag.NewInteger(tc, ast.Range{}, 2)},
	}
	_, err := nameArguments(ast.Range{}, fn, args)
	assert.NotNil(t, err)
}

func TestNameArgumentsPositionalAndNamedConflict(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	args := []evaluatedArg{
		{Name: "", Value: dag.NewInteger(tc, ast.Range{}, 1)},
		{Name: "a", Value: dag.NewInteger(tc, ast.Range{}, 2)},
	}
	_, err := nameArguments(ast.Range{}, fn, args)
	assert.NotNil(t, err)
}

func TestNameArgumentsExtraRejectedWithoutAllowExtra(t *testing.T) {
	tc := fabtype.NewContext()
	fn := echoFunction(tc, nil, false)
	args := []evaluatedArg{{Name: "", Value: dag.NewInteger(tc, ast.Range{}, 1)}}
	_, err := nameArguments(ast.Range{}, fn, args)
	assert.NotNil(t, err)
}

func TestNameArgumentsExtraDiscardedWithAllowExtra(t *testing.T) {
	tc := fabtype.NewContext()
	fn := echoFunction(tc, nil, true)
	args := []evaluatedArg{
		{Name: "", Value: dag.NewInteger(tc, ast.Range{}, 1)},
		{Name: "unexpected", Value: dag.NewInteger(tc, ast.Range{}, 2)},
	}
	bound, err := nameArguments(ast.Range{}, fn, args)
	assert.Nil(t, err)
	assert.Empty(t, bound, "extra args must be discarded, not forwarded")
}

func TestNameArgumentsTypeMismatchIsError(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	args := []evaluatedArg{{Name: "a", Value: dag.NewString(tc, ast.Range{}, "x")}}
	_, err := nameArguments(ast.Range{}, fn, args)
	assert.NotNil(t, err)
}

func TestNameArgumentsTypeMismatchIsAnchoredToTheArgument(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	callPos := ast.Range{From: ast.Position{Line: 1}}
	argPos := ast.Range{From: ast.Position{Line: 5}}
	args := []evaluatedArg{{Name: "a", Value: dag.NewString(tc, ast.Range{}, "x"), Pos: argPos}}
	_, err := nameArguments(callPos, fn, args)
	assert.NotNil(t, err)
	assert.Equal(t, argPos, err.Range, "the caret must point at the argument, not the whole call")
}

func TestNameArgumentsPositionalAfterKeywordIsError(t *testing.T) {
	tc := fabtype.NewContext()
	params := []dag.Param{{Name: "a", Type: tc.Int()}, {Name: "b", Type: tc.Int()}}
	fn := echoFunction(tc, params, false)
	args := []evaluatedArg{
		{Name: "b", Value: dag.NewInteger(tc, ast.Range{}, 2)},
		{Name: "", Value: dag.NewInteger(tc, ast.Range{}, 1)},
	}
	_, err := nameArguments(ast.Range{}, fn, args)
	assert.NotNil(t, err, "a positional argument after a keyword argument must be rejected, not silently bound to 'a'")
}
