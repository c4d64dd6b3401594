package vm

import (
	"unsafe"

	"github.com/mna/ember/lang/value"
)

// callValue dispatches a CALL opcode against whatever is on the stack at
// slot stackTop-1-argc: a Closure pushes a new call frame, a Native runs
// immediately and replaces the callee+args with its result.
func (vm *VM) callValue(callee value.Value, argc int) error {
	switch fn := callee.(type) {
	case *value.Closure:
		return vm.call(fn, argc)
	case *value.Native:
		return vm.callNative(fn, argc)
	default:
		return vm.runtimeError("can only call functions and classes.")
	}
}

func (vm *VM) call(closure *value.Closure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("Stack overflow.")
	}

	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slotsBase = vm.stackTop - argc - 1
	return nil
}

func (vm *VM) callNative(native *value.Native, argc int) error {
	argsBase := vm.stackTop - argc
	args := make([]value.Value, argc)
	copy(args, vm.stack[argsBase:vm.stackTop])

	result, err := native.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}

	vm.stackTop = argsBase - 1 // drop the callee and its arguments
	vm.push(result)
	return nil
}

// stackSlotOf recovers the index into vm.stack that a live *value.Value
// pointer refers to, by pointer arithmetic against the stack array's
// base address. Used to keep the open-upvalue list ordered by stack
// address and to find where to stop when closing upvalues.
func (vm *VM) stackSlotOf(p *value.Value) int {
	base := unsafe.Pointer(&vm.stack[0])
	off := uintptr(unsafe.Pointer(p)) - uintptr(base)
	return int(off / unsafe.Sizeof(vm.stack[0]))
}

// captureUpvalue returns an open upvalue pointing at stack slot, reusing
// an existing one from the VM's open-upvalue list if one already
// captures that exact slot. The list is kept sorted by descending stack
// address so closeUpvalues can walk it linearly from the top of stack
// downward.
func (vm *VM) captureUpvalue(slot int) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalue
	for cur != nil && vm.stackSlotOf(cur.Location) > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && vm.stackSlotOf(cur.Location) == slot {
		return cur
	}

	created := value.NewUpvalue(&vm.stack[slot])
	created.Next = cur
	if prev == nil {
		vm.openUpvalue = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue that refers to slot lastSlot
// or higher, moving their values off the stack and into the upvalue
// objects themselves before those stack slots are discarded.
func (vm *VM) closeUpvalues(lastSlot int) {
	for vm.openUpvalue != nil && vm.stackSlotOf(vm.openUpvalue.Location) >= lastSlot {
		uv := vm.openUpvalue
		uv.Close()
		vm.openUpvalue = uv.Next
	}
}
