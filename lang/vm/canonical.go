package vm

import "github.com/mna/ember/lang/value"

// canonicalString renders a value the way PRINT, PRINTLN and TOSTRING
// show it: nil/true/false as their literal spelling, numbers in C %g
// style (six significant digits), strings as their raw characters,
// and every other object kind as the fixed string "unknown" rather than
// a debug-style representation.
// This is distinct from a value's String() method, which callers other
// than these three operations use for disassembly and error messages
// (e.g. "<fn foo>").
func canonicalString(v value.Value) string {
	switch vv := v.(type) {
	case value.Nil:
		return "nil"
	case value.Bool:
		return vv.String()
	case value.Number:
		return vv.String()
	case *value.String:
		return vv.Chars
	default:
		return "unknown"
	}
}
