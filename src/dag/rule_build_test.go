package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/fabtype"
)

func TestRuleInvokeMarksOutputsGenerated(t *testing.T) {
	tc := fabtype.NewContext()
	b := NewBuilder(tc)
	params := []Param{
		{Name: "src", Type: tc.InputFile()},
		{Name: "out", Type: tc.OutputFile()},
	}
	rule, err := b.NewRule(ast.Range{}, "compile", "cc ${src} -o ${out}", "", params, tc.OutputFile())
	assert.Nil(t, err)

	src := b.NewFile(ast.Range{}, "main.c", "", false, fabtype.TagNone)
	out := b.NewFile(ast.Range{}, "main.o", "", false, fabtype.TagOut)

	v, invokeErr := rule.Invoke(ast.Range{}, map[string]Value{"src": src, "out": out})
	assert.Nil(t, invokeErr)

	build, ok := v.(*Build)
	assert.True(t, ok)
	assert.True(t, out.Generated())
	assert.Equal(t, []*File{out}, build.Outputs)
	assert.Equal(t, []*File{src}, build.Inputs)
}

func TestRuleInvokeRequiresAtLeastOneOutput(t *testing.T) {
	tc := fabtype.NewContext()
	b := NewBuilder(tc)
	params := []Param{{Name: "out", Type: tc.OutputFile()}}
	rule, err := b.NewRule(ast.Range{}, "compile", "cc -o ${out}", "", params, tc.OutputFile())
	assert.Nil(t, err)

	_, invokeErr := rule.Invoke(ast.Range{}, map[string]Value{})
	assert.NotNil(t, invokeErr)
}

func TestBuildForwardsOperatorsToCanonicalOutput(t *testing.T) {
	tc := fabtype.NewContext()
	b := NewBuilder(tc)
	params := []Param{{Name: "out", Type: tc.OutputFile()}}
	rule, _ := b.NewRule(ast.Range{}, "compile", "cc -o ${out}", "", params, tc.OutputFile())
	out := b.NewFile(ast.Range{}, "main.o", "", false, fabtype.TagOut)
	v, _ := rule.Invoke(ast.Range{}, map[string]Value{"out": out})
	build := v.(*Build)

	ext, ok := build.Field("extension")
	assert.True(t, ok)
	assert.Equal(t, ".o", ext.String())
}
