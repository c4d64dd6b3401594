package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/ember/lang/vm"
)

// Run compiles and executes the script at args[0] to completion.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return ExitIOError
	}

	machine := vm.New(stdio.Stdout, stdio.Stderr)
	machine.DebugPrintCode = c.cfg.DebugPrintCode
	machine.DebugTraceExecution = c.cfg.DebugTraceExecution

	return runSource(ctx, stdio, machine, source)
}

func runSource(_ context.Context, stdio mainer.Stdio, machine *vm.VM, source []byte) mainer.ExitCode {
	switch result, err := machine.Interpret(source); result {
	case vm.Ok:
		return ExitOk
	case vm.CompileError:
		fmt.Fprintln(stdio.Stderr, err)
		return ExitCompileError
	case vm.RuntimeError:
		fmt.Fprintln(stdio.Stderr, err)
		return ExitRuntimeError
	default:
		fmt.Fprintln(stdio.Stderr, err)
		return ExitRuntimeError
	}
}
