// Package value defines Ember's runtime value representation: the tagged
// sum of {nil, bool, number, heap object}, rendered in Go as a small
// sealed interface rather than a C union.
package value

import "strconv"

// Value is any value that can live on the VM stack or in a constant pool:
// Nil, Bool, Number, or an Object implementation.
type Value interface {
	String() string
	// Truthy implements the language's truthiness rule: nil and false are
	// falsey, everything else (including 0 and "") is truthy.
	Truthy() bool
}

// Nil is the singleton absent value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Truthy() bool   { return false }

// Bool is the boolean value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Truthy() bool { return bool(b) }

// Number is an IEEE-754 double.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', 6, 64) }
func (Number) Truthy() bool     { return true }

// Equal implements the language's equality rule: values of differing
// concrete Go type are unconditionally unequal, strings compare by
// interned identity, and everything else compares by Go equality.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case *String:
		bv, ok := b.(*String)
		// Interning guarantees identity <=> content equality; comparing the
		// pointer is both correct and the documented fast path.
		return ok && av == bv
	default:
		return a == b
	}
}
