// Package debug implements the static bytecode disassembler gated behind
// EMBER_DEBUG_PRINT_CODE: a human-readable listing of a compiled
// function's instructions, used to inspect compiler output without a
// debugger attached.
package debug

import (
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

// Disassemble writes a full listing of ch to w, labeled name, one
// instruction per line.
func Disassemble(w io.Writer, ch *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(ch.Code); {
		offset = disassembleInstruction(w, ch, offset)
	}
}

func disassembleInstruction(w io.Writer, ch *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && ch.Lines[offset] == ch.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", ch.Lines[offset])
	}

	op := chunk.Op(ch.Code[offset])
	switch op {
	case chunk.OpConstant:
		return constantInstruction(w, op, ch, offset)
	case chunk.OpConstantLong:
		return constantLongInstruction(w, op, ch, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpGetUpvalue, chunk.OpSetUpvalue, chunk.OpCall:
		return byteInstruction(w, op, ch, offset)
	case chunk.OpGetGlobal, chunk.OpSetGlobal, chunk.OpDefineConstGlobal, chunk.OpDefineLetGlobal:
		return constantInstruction(w, op, ch, offset)
	case chunk.OpJump, chunk.OpJumpIfFalse:
		return jumpInstruction(w, op, ch, offset, 1)
	case chunk.OpLoop:
		return jumpInstruction(w, op, ch, offset, -1)
	case chunk.OpClosure:
		return closureInstruction(w, ch, offset)
	default:
		fmt.Fprintln(w, op)
		return offset + 1
	}
}

func constantInstruction(w io.Writer, op chunk.Op, ch *chunk.Chunk, offset int) int {
	idx := ch.Code[offset+1]
	fmt.Fprintf(w, "%-20s %4d '%v'\n", op, idx, ch.Constants[idx])
	return offset + 2
}

func constantLongInstruction(w io.Writer, op chunk.Op, ch *chunk.Chunk, offset int) int {
	idx := int(ch.Code[offset+1])<<16 | int(ch.Code[offset+2])<<8 | int(ch.Code[offset+3])
	fmt.Fprintf(w, "%-20s %4d '%v'\n", op, idx, ch.Constants[idx])
	return offset + 4
}

func byteInstruction(w io.Writer, op chunk.Op, ch *chunk.Chunk, offset int) int {
	slot := ch.Code[offset+1]
	fmt.Fprintf(w, "%-20s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op chunk.Op, ch *chunk.Chunk, offset, sign int) int {
	jump := int(ch.Code[offset+1])<<8 | int(ch.Code[offset+2])
	fmt.Fprintf(w, "%-20s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func closureInstruction(w io.Writer, ch *chunk.Chunk, offset int) int {
	idx := ch.Code[offset+1]
	fn := ch.Constants[idx].(*value.Function)
	fmt.Fprintf(w, "%-20s %4d %v\n", chunk.OpClosure, idx, fn)
	offset += 2
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := ch.Code[offset] != 0
		index := ch.Code[offset+1]
		kind := "upvalue"
		if isLocal {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}

// Globals writes every currently-bound global name and its value to w,
// sorted for deterministic output across runs.
func Globals(w io.Writer, t *table.Table) {
	snapshot := t.Snapshot()
	sorted := maps.Keys(snapshot)
	slices.Sort(sorted)
	for _, name := range sorted {
		fmt.Fprintf(w, "%s = %v\n", name, snapshot[name])
	}
}
