package vm_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ember/lang/value"
	"github.com/mna/ember/lang/vm"
)

func run(t *testing.T, src string) (stdout, stderr string, result vm.Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	machine := vm.New(&out, &errOut)
	res, err := machine.Interpret([]byte(src))
	if err != nil {
		errOut.WriteString(err.Error())
	}
	return out.String(), errOut.String(), res
}

func TestArithmeticPrecedence(t *testing.T) {
	out, _, res := run(t, "print 1 + 2 * 3;")
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "7", out)
}

func TestStringConcatenation(t *testing.T) {
	out, _, res := run(t, `println "foo" + "bar";`)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "foobar\n", out)
}

func TestStringInterpolation(t *testing.T) {
	out, _, res := run(t, `let x = 3; println "x is ${x} and doubled is ${x * 2}.";`)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "x is 3 and doubled is 6.\n", out)
}

func TestGlobalConstReassignmentIsRuntimeError(t *testing.T) {
	_, errOut, res := run(t, "const x = 1; x = 2;")
	assert.Equal(t, vm.RuntimeError, res)
	assert.Contains(t, errOut, "Can't assign to constant variable 'x'.")
}

func TestGlobalRedeclarationIsRuntimeError(t *testing.T) {
	_, errOut, res := run(t, "let x = 1; let x = 2;")
	assert.Equal(t, vm.RuntimeError, res)
	assert.Contains(t, errOut, "Variable 'x' already defined.")
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, errOut, res := run(t, "print y;")
	assert.Equal(t, vm.RuntimeError, res)
	assert.Contains(t, errOut, "Undefined variable 'y'.")
}

func TestClosuresCaptureByReference(t *testing.T) {
	src := `
	fun makeCounter() {
		let count = 0;
		fun increment() {
			count = count + 1;
			return count;
		}
		return increment;
	}
	let counter = makeCounter();
	println counter();
	println counter();
	println counter();
	`
	out, _, res := run(t, src)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestSwitchStatementNoFallthrough(t *testing.T) {
	src := `
	let x = 2;
	switch (x) {
	case 1:
		println "one";
	case 2:
		println "two";
	case 3:
		println "three";
	default:
		println "other";
	}
	`
	out, _, res := run(t, src)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "two\n", out)
}

func TestForLoopWithBreakAndContinue(t *testing.T) {
	src := `
	let sum = 0;
	for (let i = 0; i < 10; i = i + 1) {
		if (i == 5) { break; }
		if (i % 2 == 0) { continue; }
		sum = sum + i;
	}
	println sum;
	`
	out, _, res := run(t, src)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "4\n", out) // 1 + 3, loop breaks at i == 5
}

func TestLogicalAndOrShortCircuit(t *testing.T) {
	src := `
	fun sideEffect(v) { println "called"; return v; }
	println false and sideEffect(true);
	println true or sideEffect(false);
	println true and sideEffect(true);
	`
	out, _, res := run(t, src)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "false\ntrue\ncalled\ntrue\n", out)
}

func TestTernaryIsRightAssociative(t *testing.T) {
	out, _, res := run(t, "println true ? 1 : false ? 2 : 3;")
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "1\n", out)
}

func TestNativeClockReturnsNumber(t *testing.T) {
	out, _, res := run(t, `println type(clock());`)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "number\n", out)
}

func TestNativeLenAndStr(t *testing.T) {
	out, _, res := run(t, `println len("hello"); println str(42);`)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "5\n42\n", out)
}

func TestCallArityMismatchIsRuntimeError(t *testing.T) {
	_, errOut, res := run(t, "fun f(a, b) { return a + b; } f(1);")
	assert.Equal(t, vm.RuntimeError, res)
	assert.Contains(t, errOut, "Expected 2 arguments but got 1.")
}

func TestCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, errOut, res := run(t, "let x = 1; x();")
	assert.Equal(t, vm.RuntimeError, res)
	assert.Contains(t, errOut, "can only call functions and classes.")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	src := `
	fun inner() { return 1 + "a"; }
	fun outer() { return inner(); }
	outer();
	`
	_, errOut, res := run(t, src)
	assert.Equal(t, vm.RuntimeError, res)
	assert.Contains(t, errOut, "Operands must be two numbers or two strings.")
	assert.True(t, strings.Contains(errOut, "in inner"))
	assert.True(t, strings.Contains(errOut, "in outer"))
	assert.True(t, strings.Contains(errOut, "in script"))
}

func TestCompileErrorReportsBeforeRunning(t *testing.T) {
	_, errOut, res := run(t, "let x = ;")
	assert.Equal(t, vm.CompileError, res)
	assert.Contains(t, errOut, "Error at ';'")
}

func TestGlobalsPersistAcrossInterpretCalls(t *testing.T) {
	var out bytes.Buffer
	machine := vm.New(&out, &out)

	res, err := machine.Interpret([]byte("let x = 10;"))
	require.NoError(t, err)
	require.Equal(t, vm.Ok, res)

	res, err = machine.Interpret([]byte("println x + 5;"))
	require.NoError(t, err)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "15\n", out.String())
}

func TestEqualityAcrossTypesIsAlwaysFalse(t *testing.T) {
	out, _, res := run(t, `println 1 == "1"; println nil == false;`)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "false\nfalse\n", out)
}

func TestDefineNativeExtensionPoint(t *testing.T) {
	var out bytes.Buffer
	machine := vm.New(&out, &out)
	machine.DefineNative("triple", func(args []value.Value) (value.Value, error) {
		n, ok := args[0].(value.Number)
		if !ok {
			return nil, fmt.Errorf("triple() argument must be a number")
		}
		return n * 3, nil
	})

	res, err := machine.Interpret([]byte("println triple(4);"))
	require.NoError(t, err)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "12\n", out.String())
}

func TestTypeAndStrResultsAreInterned(t *testing.T) {
	out, _, res := run(t, `
	println type(1) == type(2);
	println str(1) == str(1);
	`)
	require.Equal(t, vm.Ok, res)
	assert.Equal(t, "true\ntrue\n", out)
}
