package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/intern"
)

func TestCompileSimpleExpressionStatement(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("1 + 2;"), strings)
	require.Zero(t, errs.Len())
	require.NotNil(t, fn)
	assert.Contains(t, fn.Chunk.Code, byte(chunk.OpAdd))
	assert.Contains(t, fn.Chunk.Code, byte(chunk.OpPop))
}

func TestCompileConstReassignmentIsCompileTimeErrorForLocals(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("{ const x = 1; x = 2; }"), strings)
	assert.Nil(t, fn)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.List()[0].Message, "Can't assign to 'const' variable.")
}

func TestCompileConstWithoutInitializerErrors(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("const x;"), strings)
	assert.Nil(t, fn)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.List()[0].Message, "must be initialized")
}

func TestCompileUndefinedLocalSelfReferenceErrors(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("{ let x = x; }"), strings)
	assert.Nil(t, fn)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.List()[0].Message, "own initializer")
}

func TestCompileBreakOutsideLoopErrors(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("break;"), strings)
	assert.Nil(t, fn)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.List()[0].Message, "outside of a loop")
}

func TestCompileReturnAtTopLevelErrors(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("return 1;"), strings)
	assert.Nil(t, fn)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.List()[0].Message, "top-level code")
}

func TestCompileFunctionDeclarationEmitsClosure(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("fun add(a, b) { return a + b; }"), strings)
	require.Zero(t, errs.Len())
	require.NotNil(t, fn)
	assert.Contains(t, fn.Chunk.Code, byte(chunk.OpClosure))
}

func TestCompileClassIsRejected(t *testing.T) {
	strings := intern.New()
	fn, errs := compiler.Compile([]byte("class Foo {}"), strings)
	assert.Nil(t, fn)
	require.Equal(t, 1, errs.Len())
	assert.Contains(t, errs.List()[0].Message, "Classes are not supported.")
}

func TestErrorMessageFormat(t *testing.T) {
	strings := intern.New()
	_, errs := compiler.Compile([]byte("1 +;"), strings)
	require.NotZero(t, errs.Len())
	assert.Regexp(t, `^\[line 1\] Error at `, errs.List()[0].Error())
}
