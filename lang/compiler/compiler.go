// Package compiler implements Ember's single-pass Pratt-style compiler:
// it parses and emits bytecode in the same pass, resolving lexical
// scopes and upvalue captures as it goes. There is no intermediate AST.
package compiler

import (
	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/intern"
	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/mna/ember/lang/value"
)

// FunctionKind distinguishes the implicit top-level script function from
// a user-declared one; it gates what RETURN at the top level means and
// (when classes are added) would gate method-specific behavior. Classes
// are reserved as keywords but not otherwise implemented.
type FunctionKind int

const (
	FunctionKindScript FunctionKind = iota
	FunctionKindFunction
)

const maxLocals = 256
const maxUpvalues = 256

type local struct {
	name       string
	depth      int // -1 while uninitialized
	isConst    bool
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// loop tracks the innermost enclosing loop so break/continue can be
// compiled; continueOffset is the LOOP target for `continue`, and
// breakJumps collects pending JUMP addresses for `break`, patched once
// the loop statement finishes emitting.
type loop struct {
	enclosing      *loop
	continueOffset int
	breakJumps     []int
	scopeDepth     int
}

// funcCompiler holds the per-function compilation state; one is pushed
// per nested `fun`, forming a stack of compiler frames that mirrors the
// nesting of function declarations in the source being compiled.
type funcCompiler struct {
	enclosing  *funcCompiler
	function   *value.Function
	kind       FunctionKind
	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
}

// Compiler drives the single-pass compilation of one source file.
type Compiler struct {
	scan      *scanner.Scanner
	strings   *intern.Strings
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errs      ErrorList
	fc        *funcCompiler
	loop      *loop
}

// Compile compiles source into a top-level script Function. strings is
// the shared intern table (see package intern) that the resulting
// constant pool's string literals and identifiers are drawn from. On
// failure the returned Function is nil and the ErrorList is non-empty.
func Compile(source []byte, strings *intern.Strings) (*value.Function, *ErrorList) {
	c := &Compiler{scan: scanner.New(source), strings: strings}
	c.pushFuncCompiler(FunctionKindScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endFuncCompiler()

	if c.hadError {
		return nil, &c.errs
	}
	return fn, &c.errs
}

func (c *Compiler) pushFuncCompiler(kind FunctionKind, name string) {
	fn := value.NewFunction()
	if name != "" {
		fn.Name = c.strings.Intern(name)
	}
	fc := &funcCompiler{enclosing: c.fc, function: fn, kind: kind}
	// Slot 0 is reserved for the callee itself.
	fc.locals = append(fc.locals, local{name: "", depth: 0})
	c.fc = fc
}

func (c *Compiler) endFuncCompiler() *value.Function {
	c.emitReturn()
	fn := c.fc.function
	fn.UpvalueCount = len(c.fc.upvalues)
	c.fc = c.fc.enclosing
	return fn
}

func (c *Compiler) currentChunk() *chunk.Chunk { return &c.fc.function.Chunk }

// --- token stream helpers ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scan.Next()
		if c.current.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting ---

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(&c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(&c.previous, msg) }

func (c *Compiler) errorAt(tok *token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errs.add(&Error{
		Line:    tok.Line,
		AtEnd:   tok.Kind == token.EOF,
		Lexeme:  tok.Lexeme,
		Message: msg,
	})
	c.hadError = true
}

func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.LET, token.CONST, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.PRINTLN, token.RETURN, token.SWITCH:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---

func (c *Compiler) emitByte(b byte)  { c.currentChunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op chunk.Op) { c.currentChunk().WriteOp(op, c.previous.Line) }

func (c *Compiler) emitOps(ops ...chunk.Op) {
	for _, op := range ops {
		c.emitOp(op)
	}
}

func (c *Compiler) emitReturn() {
	c.emitOp(chunk.OpNil)
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) makeConstant(v value.Value) int {
	idx := c.currentChunk().AddConstant(v)
	if idx > chunk.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v value.Value) {
	c.currentChunk().WriteConstant(c.makeConstant(v), c.previous.Line)
}

// emitJump writes a jump opcode followed by a two-byte placeholder
// operand and returns the offset of that placeholder for later patching.
func (c *Compiler) emitJump(op chunk.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > chunk.MaxJump {
		c.error("Too much code to jump over.")
	}
	code := c.currentChunk().Code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > chunk.MaxJump {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}
