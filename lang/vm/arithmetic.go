package vm

import "github.com/mna/ember/lang/value"

// add implements OpAdd's two valid forms: two numbers add arithmetically,
// two strings concatenate. Any other pairing is a runtime error.
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)

	if an, ok := a.(value.Number); ok {
		if bn, ok := b.(value.Number); ok {
			vm.pop()
			vm.pop()
			vm.push(an + bn)
			return nil
		}
	}
	if as, ok := a.(*value.String); ok {
		if bs, ok := b.(*value.String); ok {
			vm.pop()
			vm.pop()
			vm.push(vm.strings.Intern(as.Chars + bs.Chars))
			return nil
		}
	}
	return vm.runtimeError("Operands must be two numbers or two strings.")
}

func (vm *VM) numberBinOp(op func(a, b float64) float64) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(op(float64(a), float64(b))))
	return nil
}

func (vm *VM) numberCompare(op func(a, b float64) bool) (value.Value, error) {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return nil, vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	return value.Bool(op(float64(a), float64(b))), nil
}
