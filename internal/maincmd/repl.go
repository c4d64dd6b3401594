package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mna/mainer"

	"github.com/mna/ember/lang/vm"
)

// Repl starts an interactive read-eval-print loop: each line is
// compiled and run against the same VM instance, so globals and
// interned strings persist across inputs within one session. Input is
// always read from stdin; args is ignored, so no file is run before the
// REPL starts.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	machine := vm.New(stdio.Stdout, stdio.Stderr)
	machine.DebugPrintCode = c.cfg.DebugPrintCode
	machine.DebugTraceExecution = c.cfg.DebugTraceExecution

	scanner := bufio.NewScanner(stdio.Stdin)
	bufSize := c.cfg.StdinBuffer
	if bufSize < 1 {
		bufSize = 1024
	}
	scanner.Buffer(make([]byte, bufSize), bufSize)

	for {
		select {
		case <-ctx.Done():
			return ExitOk
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
				fmt.Fprintln(stdio.Stderr, err)
				return ExitIOError
			}
			return ExitOk
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// errors are reported to stderr but never end the session: a bad
		// line should not prevent later ones from running.
		runSource(ctx, stdio, machine, line)
	}
}
