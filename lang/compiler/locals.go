package compiler

import "github.com/mna/ember/lang/chunk"

func (c *Compiler) beginScope() { c.fc.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fc.scopeDepth--
	fc := c.fc
	for len(fc.locals) > 0 && fc.locals[len(fc.locals)-1].depth > fc.scopeDepth {
		if fc.locals[len(fc.locals)-1].isCaptured {
			c.emitOp(chunk.OpCloseUpvalue)
		} else {
			c.emitOp(chunk.OpPop)
		}
		fc.locals = fc.locals[:len(fc.locals)-1]
	}
}

// identifierConstant interns tok's lexeme and returns its constant-pool
// index, for use as a global-variable name operand.
func (c *Compiler) identifierConstant(tok string) int {
	return c.makeConstant(c.strings.Intern(tok))
}

func (c *Compiler) declareVariable(name string, isConst bool) {
	if c.fc.scopeDepth == 0 {
		return
	}
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		l := &c.fc.locals[i]
		if l.depth != -1 && l.depth < c.fc.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name, isConst)
}

func (c *Compiler) addLocal(name string, isConst bool) {
	if len(c.fc.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fc.locals = append(c.fc.locals, local{name: name, depth: -1, isConst: isConst})
}

func (c *Compiler) markInitialized() {
	if c.fc.scopeDepth == 0 {
		return
	}
	c.fc.locals[len(c.fc.locals)-1].depth = c.fc.scopeDepth
}

// resolveLocal scans fc's locals from the top (innermost first) for a
// matching name, returning its slot index or -1.
func resolveLocal(fc *funcCompiler, name string) (int, bool, error) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.name == name {
			if l.depth == -1 {
				return -1, false, errUninitializedLocal
			}
			return i, l.isConst, nil
		}
	}
	return -1, false, nil
}

var errUninitializedLocal = errLocalInit{}

type errLocalInit struct{}

func (errLocalInit) Error() string { return "Can't read local variable in its own initializer." }

// resolveUpvalue searches the chain of enclosing funcCompilers for name,
// adding an upvalue entry to every function between the declaring scope
// and the current one, and marking the captured local so the compiler
// emits CLOSE_UPVALUE (not POP) when its scope ends.
func resolveUpvalue(fc *funcCompiler, name string) (int, bool, error) {
	if fc.enclosing == nil {
		return -1, false, nil
	}

	if idx, isConst, err := resolveLocal(fc.enclosing, name); err != nil {
		return -1, false, err
	} else if idx != -1 {
		fc.enclosing.locals[idx].isCaptured = true
		return addUpvalue(fc, byte(idx), true), isConst, nil
	}

	if idx, isConst, err := resolveUpvalue(fc.enclosing, name); err != nil {
		return -1, false, err
	} else if idx != -1 {
		return addUpvalue(fc, byte(idx), false), isConst, nil
	}

	return -1, false, nil
}

func addUpvalue(fc *funcCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= maxUpvalues {
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}
