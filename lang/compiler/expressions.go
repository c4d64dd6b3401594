package compiler

import (
	"strconv"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/token"
	"github.com/mna/ember/lang/value"
)

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	c.emitConstant(c.strings.Intern(c.previous.Lexeme))
}

func (c *Compiler) interpolation(canAssign bool) {
	first := true
	for {
		lit := c.previous.Lexeme
		if lit != "" {
			c.emitConstant(c.strings.Intern(lit))
			if !first {
				c.emitOp(chunk.OpAdd)
			}
			first = false
		}

		c.expression()
		c.emitOp(chunk.OpToString)
		if !first {
			c.emitOp(chunk.OpAdd)
		}
		first = false

		if c.current.Kind == token.INTERPOLATION {
			c.advance()
			continue
		}

		c.consume(token.STRING, "Expect end of string interpolation.")
		if c.previous.Lexeme != "" {
			c.emitConstant(c.strings.Intern(c.previous.Lexeme))
			c.emitOp(chunk.OpAdd)
		}
		return
	}
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(chunk.OpFalse)
	case token.NIL:
		c.emitOp(chunk.OpNil)
	case token.TRUE:
		c.emitOp(chunk.OpTrue)
	}
}

func (c *Compiler) unary(canAssign bool) {
	kind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch kind {
	case token.BANG:
		c.emitOp(chunk.OpNot)
	case token.MINUS:
		c.emitOp(chunk.OpNegative)
	}
}

func (c *Compiler) binary(canAssign bool) {
	kind := c.previous.Kind
	rule := c.ruleFor(kind)
	c.parsePrecedence(rule.precedence + 1)

	switch kind {
	case token.BANG_EQUAL:
		c.emitOps(chunk.OpEqual, chunk.OpNot)
	case token.EQUAL_EQUAL:
		c.emitOp(chunk.OpEqual)
	case token.GREATER:
		c.emitOp(chunk.OpGreater)
	case token.GREATER_EQUAL:
		c.emitOps(chunk.OpLess, chunk.OpNot)
	case token.LESS:
		c.emitOp(chunk.OpLess)
	case token.LESS_EQUAL:
		c.emitOps(chunk.OpGreater, chunk.OpNot)
	case token.PLUS:
		c.emitOp(chunk.OpAdd)
	case token.MINUS:
		c.emitOp(chunk.OpSubtract)
	case token.STAR:
		c.emitOp(chunk.OpMultiply)
	case token.SLASH:
		c.emitOp(chunk.OpDivide)
	case token.PERCENT:
		c.emitOp(chunk.OpModulo)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// ternary compiles `a ? b : c`, right-associative.
func (c *Compiler) ternary(canAssign bool) {
	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precConditional)
	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)
	c.consume(token.COLON, "Expect ':' after then-branch of ternary expression.")
	c.parsePrecedence(precAssignment)
	c.patchJump(elseJump)
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argc)
}

func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitOp(chunk.OpCall)
	c.emitByte(argc)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.Op
	var arg int
	var isConst bool

	if idx, cst, err := resolveLocal(c.fc, name); err != nil {
		c.error(err.Error())
		return
	} else if idx != -1 {
		getOp, setOp, arg, isConst = chunk.OpGetLocal, chunk.OpSetLocal, idx, cst
	} else if idx, cst, err := resolveUpvalue(c.fc, name); err != nil {
		c.error(err.Error())
		return
	} else if idx != -1 {
		getOp, setOp, arg, isConst = chunk.OpGetUpvalue, chunk.OpSetUpvalue, idx, cst
	} else {
		arg = c.identifierConstant(name)
		if arg > 0xff {
			c.error("Too many global names referenced.")
		}
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.EQUAL) {
		if isConst {
			c.error("Can't assign to 'const' variable.")
		}
		c.expression()
		c.emitOp(setOp)
		c.emitByte(byte(arg))
		return
	}

	c.emitOp(getOp)
	c.emitByte(byte(arg))
}
