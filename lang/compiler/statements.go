package compiler

import (
	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/token"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.LET):
		c.varDeclaration(false)
	case c.match(token.CONST):
		c.varDeclaration(true)
	case c.check(token.CLASS):
		c.advance()
		c.error("Classes are not supported.")
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

// parseVariable consumes the declared name, declares it as a local (if
// in a non-global scope) and returns the constant-pool index to use for
// DEFINE_*_GLOBAL if this turns out to be a global.
func (c *Compiler) parseVariable(errMsg string, isConst bool) int {
	c.consume(token.IDENT, errMsg)
	name := c.previous.Lexeme
	c.declareVariable(name, isConst)
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global int, isConst bool) {
	if c.fc.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	op := chunk.OpDefineLetGlobal
	if isConst {
		op = chunk.OpDefineConstGlobal
	}
	c.emitOp(op)
	c.emitByte(byte(global))
}

func (c *Compiler) varDeclaration(isConst bool) {
	errMsg := "Expect variable name."
	global := c.parseVariable(errMsg, isConst)

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		if isConst {
			c.error("'const' variable must be initialized.")
		}
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global, isConst)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.", false)
	c.markInitialized()
	c.function(FunctionKindFunction)
	c.defineVariable(global, false)
}

func (c *Compiler) function(kind FunctionKind) {
	name := c.previous.Lexeme
	c.pushFuncCompiler(kind, name)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fc.function.Arity++
			if c.fc.function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			c.parseVariable("Expect parameter name.", false)
			c.defineVariable(0, false)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	upvalues := append([]upvalueRef(nil), c.fc.upvalues...)
	fn := c.endFuncCompiler()

	// CLOSURE's constant operand is a single byte, like CONSTANT: function
	// literals are comparatively rare next to string/number constants, so
	// the 256-function-per-chunk ceiling this implies is not worth a long
	// variant.
	idx := c.makeConstant(fn)
	if idx > 0xff {
		c.error("Too many constants in one chunk.")
	}
	c.emitOp(chunk.OpClosure)
	c.emitByte(byte(idx))
	for _, uv := range upvalues {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.index)
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement(false)
	case c.match(token.PRINTLN):
		c.printStatement(true)
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.SWITCH):
		c.switchStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement(newline bool) {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	if newline {
		c.emitOp(chunk.OpPrintln)
	} else {
		c.emitOp(chunk.OpPrint)
	}
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) returnStatement() {
	if c.fc.kind == FunctionKindScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(chunk.OpReturn)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)

	l := &loop{enclosing: c.loop, continueOffset: loopStart, scopeDepth: c.fc.scopeDepth}
	c.loop = l

	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)

	c.patchBreaks(l)
	c.loop = l.enclosing
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.LET):
		c.varDeclaration(false)
	case c.match(token.CONST):
		c.varDeclaration(true)
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	l := &loop{enclosing: c.loop, continueOffset: loopStart, scopeDepth: c.fc.scopeDepth}
	c.loop = l

	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		l.continueOffset = loopStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}

	c.patchBreaks(l)
	c.loop = l.enclosing
	c.endScope()
}

func (c *Compiler) patchBreaks(l *loop) {
	for _, addr := range l.breakJumps {
		c.patchJump(addr)
	}
}

func (c *Compiler) breakStatement() {
	if c.loop == nil {
		c.error("Can't use 'break' outside of a loop.")
		c.consume(token.SEMICOLON, "Expect ';' after 'break'.")
		return
	}
	c.consume(token.SEMICOLON, "Expect ';' after 'break'.")
	c.closeLoopLocals(c.loop.scopeDepth)
	jump := c.emitJump(chunk.OpJump)
	c.loop.breakJumps = append(c.loop.breakJumps, jump)
}

func (c *Compiler) continueStatement() {
	if c.loop == nil {
		c.error("Can't use 'continue' outside of a loop.")
		c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
		return
	}
	c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
	c.closeLoopLocals(c.loop.scopeDepth)
	c.emitLoop(c.loop.continueOffset)
}

// closeLoopLocals pops (or closes, if captured) every local declared
// more deeply than the loop's own scope, without touching the compiler's
// tracked local list: break/continue jump out of those scopes but the
// block(s) they're nested in still need to close them normally when
// their own endScope runs.
func (c *Compiler) closeLoopLocals(loopDepth int) {
	for i := len(c.fc.locals) - 1; i >= 0 && c.fc.locals[i].depth > loopDepth; i-- {
		if c.fc.locals[i].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
	}
}

func (c *Compiler) switchStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'switch'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after switch value.")
	c.consume(token.LBRACE, "Expect '{' before switch body.")

	var exitJumps []int
	for c.match(token.CASE) {
		c.expression()
		c.consume(token.COLON, "Expect ':' after case value.")
		c.emitOp(chunk.OpEqualPreserve)
		next := c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop) // the comparison bool
		c.emitOp(chunk.OpPop) // the switch value
		for !c.check(token.CASE) && !c.check(token.DEFAULT) && !c.check(token.RBRACE) {
			c.statement()
		}
		exitJumps = append(exitJumps, c.emitJump(chunk.OpJump))
		c.patchJump(next)
		c.emitOp(chunk.OpPop) // the comparison bool
	}

	if c.match(token.DEFAULT) {
		c.consume(token.COLON, "Expect ':' after 'default'.")
		c.emitOp(chunk.OpPop) // the switch value
		for !c.check(token.RBRACE) {
			c.statement()
		}
		exitJumps = append(exitJumps, c.emitJump(chunk.OpJump))
	} else {
		c.emitOp(chunk.OpPop) // the switch value, no default taken
	}

	c.consume(token.RBRACE, "Expect '}' after switch body.")
	for _, j := range exitJumps {
		c.patchJump(j)
	}
}
