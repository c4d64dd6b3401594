package vm

import (
	"fmt"
	"io"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/debug"
	"github.com/mna/ember/lang/value"
)

// disassembleTree prints fn's chunk and recurses into any nested
// function constants, so EMBER_DEBUG_PRINT_CODE shows every function
// compiled from one source, not just the top-level script.
func disassembleTree(w io.Writer, fn *value.Function) {
	name := "<script>"
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	debug.Disassemble(w, &fn.Chunk, name)
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*value.Function); ok {
			disassembleTree(w, nested)
		}
	}
}

// traceStack prints the current operand stack followed by the next
// instruction to be executed, gated behind DebugTraceExecution
// (EMBER_DEBUG_TRACE_EXECUTION). It is the runtime counterpart of the
// static EMBER_DEBUG_PRINT_CODE listing, which lives in lang/debug.
func (vm *VM) traceStack() {
	frame := &vm.frames[vm.frameCount-1]

	fmt.Fprint(vm.Stderr, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.Stderr, "[ %s ]", vm.stack[i].String())
	}
	fmt.Fprintln(vm.Stderr)

	fn := frame.closure.Function
	line := 0
	if frame.ip < len(fn.Chunk.Lines) {
		line = fn.Chunk.Lines[frame.ip]
	}
	op := chunk.Op(fn.Chunk.Code[frame.ip])
	fmt.Fprintf(vm.Stderr, "%04d %4d %s\n", frame.ip, line, op)
}
