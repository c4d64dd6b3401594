package vm

import (
	"fmt"
	"time"

	"github.com/mna/ember/lang/value"
)

// defineStandardNatives registers clock(), the standard library's one
// required native, plus three small extension-point natives (len, type,
// str) that exercise the same registration path. DefineNative records
// each one in the VM's swiss.Map registry (so it can be listed or looked
// up by name independently of the globals table) and installs it as a
// global binding, since GET_GLOBAL is the only lookup path the bytecode
// has for calling it.
func (vm *VM) defineStandardNatives() {
	vm.DefineNative("clock", nativeClock)
	vm.DefineNative("len", nativeLen)
	vm.DefineNative("type", func(args []value.Value) (value.Value, error) {
		return nativeType(vm, args)
	})
	vm.DefineNative("str", func(args []value.Value) (value.Value, error) {
		return nativeStr(vm, args)
	})
}

func nativeClock(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("clock() takes no arguments")
	}
	return value.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}

func nativeLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len() takes exactly one argument")
	}
	s, ok := args[0].(*value.String)
	if !ok {
		return nil, fmt.Errorf("len() argument must be a string")
	}
	return value.Number(len(s.Chars)), nil
}

func nativeType(vm *VM, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("type() takes exactly one argument")
	}
	var name string
	switch args[0].(type) {
	case value.Nil:
		name = "nil"
	case value.Bool:
		name = "bool"
	case value.Number:
		name = "number"
	case *value.String:
		name = "string"
	case *value.Closure, *value.Native:
		name = "function"
	default:
		name = "unknown"
	}
	return vm.strings.Intern(name), nil
}

func nativeStr(vm *VM, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str() takes exactly one argument")
	}
	return vm.strings.Intern(canonicalString(args[0])), nil
}
