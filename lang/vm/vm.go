// Package vm implements the stack-based bytecode interpreter: value
// representation is supplied by lang/value, the globals/intern tables by
// lang/table and lang/intern; this package adds call-frame discipline,
// closure and upvalue lifecycle, arithmetic, and the dispatch loop.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/dolthub/swiss"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/debug"
	"github.com/mna/ember/lang/intern"
	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

// FramesMax bounds call-stack depth; StackMax is the fixed operand-stack
// size, chosen to avoid dynamic stack growth.
const (
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// callFrame is the activation record of an in-flight call. slotsBase is
// the index into vm.stack of this frame's slot 0 (the callee itself);
// locals grow upward from slotsBase+1.
type callFrame struct {
	closure   *value.Closure
	ip        int
	slotsBase int
}

// VM is the bytecode interpreter. A zero value is not ready to use;
// construct one with New. The VM, its globals table and its string
// intern table are meant to be reused across multiple Interpret calls:
// globals and interned strings accumulate across REPL inputs within one
// session, the way a long-lived process would.
type VM struct {
	stack      [StackMax]value.Value
	stackTop   int
	frames     [FramesMax]callFrame
	frameCount int

	globals     table.Table
	strings     *intern.Strings
	openUpvalue *value.Upvalue // head of the open-upvalue list, highest slot first

	natives *swiss.Map[string, *value.Native]

	Stdout io.Writer
	Stderr io.Writer

	// DebugTraceExecution, when true, prints the stack and the next
	// instruction before every dispatch.
	DebugTraceExecution bool
	// DebugPrintCode, when true, disassembles every compiled function
	// (and dumps the globals table) before running it.
	DebugPrintCode bool
}

// Globals exposes the VM's globals table for the debug package's
// listing and for tests.
func (vm *VM) Globals() *table.Table { return &vm.globals }

// New constructs a VM with its globals/intern tables and standard native
// registrations ready.
func New(stdout, stderr io.Writer) *VM {
	vm := &VM{
		strings: intern.New(),
		natives: swiss.NewMap[string, *value.Native](4),
		Stdout:  stdout,
		Stderr:  stderr,
	}
	vm.defineStandardNatives()
	return vm
}

// Strings exposes the VM's intern table so the compiler can share it
// when compiling source destined for this VM.
func (vm *VM) Strings() *intern.Strings { return vm.strings }

// DefineNative registers a host-implemented callable under name,
// available to scripts as a global function.
func (vm *VM) DefineNative(name string, fn value.NativeFn) {
	native := value.NewNative(name, fn)
	vm.natives.Put(name, native)
	vm.globals.Set(vm.strings.Intern(name), native, true)
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalue = nil
}

// Interpret compiles and runs source. The VM's globals and intern table
// persist across calls, so repeated REPL input builds on earlier
// definitions.
func (vm *VM) Interpret(source []byte) (Result, error) {
	fn, errs := compiler.Compile(source, vm.strings)
	if fn == nil {
		return CompileError, errs.Err()
	}

	if vm.DebugPrintCode {
		disassembleTree(vm.Stderr, fn)
		debug.Globals(vm.Stderr, &vm.globals)
	}

	closure := value.NewClosure(fn)
	vm.push(closure)
	vm.callValue(closure, 0) //nolint:errcheck // arity 0 call on a freshly compiled script never errors

	res, err := vm.run()
	if err != nil {
		vm.resetStack()
		return RuntimeError, err
	}
	return res, nil
}

func (vm *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	frames := make([]Frame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Function
		line := 0
		if fr.ip-1 >= 0 && fr.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[fr.ip-1]
		}
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars
		}
		frames = append(frames, Frame{Line: line, Function: name})
	}
	return &RuntimeErr{Message: msg, Frames: frames}
}

func (vm *VM) run() (Result, error) {
	frame := &vm.frames[vm.frameCount-1]
	code := frame.closure.Function.Chunk.Code

	readByte := func() byte {
		b := code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() uint16 {
		hi, lo := code[frame.ip], code[frame.ip+1]
		frame.ip += 2
		return uint16(hi)<<8 | uint16(lo)
	}
	readConstant := func() value.Value {
		idx := int(readByte())
		return frame.closure.Function.Chunk.Constants[idx].(value.Value)
	}
	readConstantLong := func() value.Value {
		idx := int(readByte())<<16 | int(readByte())<<8 | int(readByte())
		return frame.closure.Function.Chunk.Constants[idx].(value.Value)
	}
	readString := func() *value.String { return readConstant().(*value.String) }

	for {
		if vm.DebugTraceExecution {
			vm.traceStack()
		}

		op := chunk.Op(readByte())
		switch op {
		case chunk.OpConstant:
			vm.push(readConstant())
		case chunk.OpConstantLong:
			vm.push(readConstantLong())
		case chunk.OpNil:
			vm.push(value.Nil{})
		case chunk.OpTrue:
			vm.push(value.Bool(true))
		case chunk.OpFalse:
			vm.push(value.Bool(false))
		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[frame.slotsBase+slot])
		case chunk.OpSetLocal:
			slot := int(readByte())
			vm.stack[frame.slotsBase+slot] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := readString()
			v, _, ok := vm.globals.Get(name)
			if !ok {
				return RuntimeError, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case chunk.OpDefineConstGlobal, chunk.OpDefineLetGlobal:
			name := readString()
			isConst := op == chunk.OpDefineConstGlobal
			if !vm.globals.Set(name, vm.peek(0), isConst) {
				return RuntimeError, vm.runtimeError("Variable '%s' already defined.", name.Chars)
			}
			vm.pop()
		case chunk.OpSetGlobal:
			name := readString()
			_, isConst, ok := vm.globals.Get(name)
			if !ok {
				return RuntimeError, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			if isConst {
				return RuntimeError, vm.runtimeError("Can't assign to constant variable '%s'.", name.Chars)
			}
			vm.globals.Set(name, vm.peek(0), false)

		case chunk.OpGetUpvalue:
			slot := int(readByte())
			vm.push(*frame.closure.Upvalues[slot].Location)
		case chunk.OpSetUpvalue:
			slot := int(readByte())
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case chunk.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case chunk.OpEqualPreserve:
			b := vm.pop()
			a := vm.peek(0)
			vm.push(value.Bool(value.Equal(a, b)))

		case chunk.OpGreater:
			res, err := vm.numberCompare(func(a, b float64) bool { return a > b })
			if err != nil {
				return RuntimeError, err
			}
			vm.push(res)
		case chunk.OpLess:
			res, err := vm.numberCompare(func(a, b float64) bool { return a < b })
			if err != nil {
				return RuntimeError, err
			}
			vm.push(res)

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return RuntimeError, err
			}
		case chunk.OpSubtract:
			if err := vm.numberBinOp(func(a, b float64) float64 { return a - b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpMultiply:
			if err := vm.numberBinOp(func(a, b float64) float64 { return a * b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpDivide:
			if err := vm.numberBinOp(func(a, b float64) float64 { return a / b }); err != nil {
				return RuntimeError, err
			}
		case chunk.OpModulo:
			if err := vm.numberBinOp(math.Mod); err != nil {
				return RuntimeError, err
			}

		case chunk.OpNot:
			vm.push(value.Bool(!vm.pop().Truthy()))
		case chunk.OpNegative:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return RuntimeError, vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)
		case chunk.OpToString:
			vm.push(vm.strings.Intern(canonicalString(vm.pop())))

		case chunk.OpPrint:
			fmt.Fprint(vm.Stdout, canonicalString(vm.pop()))
		case chunk.OpPrintln:
			fmt.Fprintln(vm.Stdout, canonicalString(vm.pop()))

		case chunk.OpJump:
			offset := readShort()
			frame.ip += int(offset)
		case chunk.OpJumpIfFalse:
			offset := readShort()
			if !vm.peek(0).Truthy() {
				frame.ip += int(offset)
			}
		case chunk.OpLoop:
			offset := readShort()
			frame.ip -= int(offset)

		case chunk.OpCall:
			argc := int(readByte())
			callee := vm.peek(argc)
			if err := vm.callValue(callee, argc); err != nil {
				return RuntimeError, err
			}
			frame = &vm.frames[vm.frameCount-1]
			code = frame.closure.Function.Chunk.Code

		case chunk.OpClosure:
			idx := int(readByte())
			fn := frame.closure.Function.Chunk.Constants[idx].(*value.Function)
			cl := value.NewClosure(fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte() != 0
				index := int(readByte())
				if isLocal {
					cl.Upvalues[i] = vm.captureUpvalue(frame.slotsBase + index)
				} else {
					cl.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(cl)

		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case chunk.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slotsBase)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop() // the top-level script closure
				return Ok, nil
			}
			vm.stackTop = frame.slotsBase
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]
			code = frame.closure.Function.Chunk.Code

		default:
			return RuntimeError, vm.runtimeError("unknown opcode %d", op)
		}
	}
}
