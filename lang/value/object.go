package value

import "github.com/mna/ember/lang/chunk"

// ObjKind tags the concrete heap-object type behind an Object header.
type ObjKind byte

const (
	ObjKindString ObjKind = iota
	ObjKindFunction
	ObjKindNative
	ObjKindClosure
	ObjKindUpvalue
)

// Object is any heap-allocated value. All object kinds embed objHeader,
// which carries the kind tag and a next pointer for an intrusive
// allocation list. No code in this module links objects into such a
// list: every next pointer stays nil, there is no bulk release at VM
// shutdown, and objects are reclaimed by the Go garbage collector.
type Object interface {
	Value
	Kind() ObjKind
	objNext() Object
	setObjNext(o Object)
}

type objHeader struct {
	kind ObjKind
	next Object
}

func (h *objHeader) Kind() ObjKind       { return h.kind }
func (h *objHeader) objNext() Object     { return h.next }
func (h *objHeader) setObjNext(o Object) { h.next = o }

// LinkNext and Next set and read an object's allocation-list pointer
// without leaking objHeader outside the package; the VM does not call
// them.
func LinkNext(o, next Object) { o.setObjNext(next) }
func Next(o Object) Object    { return o.objNext() }

// String is an immutable, interned byte buffer. Equality between two
// String objects is always reference equality: construction through
// Intern guarantees that equal content always yields the same pointer.
type String struct {
	objHeader
	Chars string
	Hash  uint32
}

func (s *String) String() string { return s.Chars }
func (s *String) Truthy() bool   { return true }

// FNVHash computes the 32-bit FNV-1a hash used for string interning and
// table probing.
func FNVHash(s string) uint32 {
	const (
		offsetBasis = 2166136261
		prime       = 16777619
	)
	h := uint32(offsetBasis)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// NewString constructs an un-interned String object. Callers that need
// the interning guarantee should go through (*intern.Strings).Intern
// instead, which the compiler and the VM share and which calls this
// constructor only for content not interned before.
func NewString(chars string) *String {
	return &String{objHeader: objHeader{kind: ObjKindString}, Chars: chars, Hash: FNVHash(chars)}
}

// Function is the immutable, compile-time representation of a function:
// its arity, how many upvalues it captures, its compiled Chunk, and an
// optional name (nil for the implicit top-level script function).
type Function struct {
	objHeader
	Arity        int
	UpvalueCount int
	Chunk        chunk.Chunk
	Name         *String
}

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}
func (f *Function) Truthy() bool { return true }

// NewFunction allocates a Function with an empty chunk, ready for the
// compiler to emit into.
func NewFunction() *Function {
	return &Function{objHeader: objHeader{kind: ObjKindFunction}}
}

// NativeFn is a host-implemented callable: it receives the argument
// slice and returns a result value or an error message.
type NativeFn func(args []Value) (Value, error)

// Native wraps a host function so it can appear as a Value and be
// invoked through the same CALL opcode path as a Closure.
type Native struct {
	objHeader
	Name string
	Fn   NativeFn
}

func (n *Native) String() string { return "<native fn " + n.Name + ">" }
func (n *Native) Truthy() bool   { return true }

func NewNative(name string, fn NativeFn) *Native {
	return &Native{objHeader: objHeader{kind: ObjKindNative}, Name: name, Fn: fn}
}

// Upvalue captures a single local variable for a closure. While open,
// Location points into a live VM stack slot; Close moves the value into
// Closed and retargets Location at it.
type Upvalue struct {
	objHeader
	Location *Value
	Closed   Value
	Next     *Upvalue // next-lower (by stack address) open upvalue
}

func (u *Upvalue) String() string { return "upvalue" }
func (u *Upvalue) Truthy() bool   { return true }

func NewUpvalue(slot *Value) *Upvalue {
	u := &Upvalue{objHeader: objHeader{kind: ObjKindUpvalue}}
	u.Location = slot
	return u
}

// IsOpen reports whether the upvalue still refers to a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close moves the current value into the upvalue itself and retargets
// Location there, transitioning the upvalue from open to closed.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Closure is the only runtime form of a callable function: a Function
// plus the concrete Upvalue references it closed over. Plain Function
// objects never appear on the VM stack.
type Closure struct {
	objHeader
	Function *Function
	Upvalues []*Upvalue
}

func (c *Closure) String() string { return c.Function.String() }
func (c *Closure) Truthy() bool   { return true }

func NewClosure(fn *Function) *Closure {
	return &Closure{
		objHeader: objHeader{kind: ObjKindClosure},
		Function:  fn,
		Upvalues:  make([]*Upvalue, fn.UpvalueCount),
	}
}
