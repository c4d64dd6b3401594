package debug_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ember/lang/chunk"
	"github.com/mna/ember/lang/debug"
	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

func TestDisassembleConstantAndReturn(t *testing.T) {
	var c chunk.Chunk
	idx := c.AddConstant(value.Number(1))
	c.WriteConstant(idx, 1)
	c.WriteOp(chunk.OpReturn, 1)

	var buf bytes.Buffer
	debug.Disassemble(&buf, &c, "test")

	out := buf.String()
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "CONSTANT")
	assert.Contains(t, out, "RETURN")
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	var c chunk.Chunk
	c.WriteOp(chunk.OpJump, 1)
	c.Write(0, 1)
	c.Write(2, 1)
	c.WriteOp(chunk.OpNil, 1)
	c.WriteOp(chunk.OpReturn, 1)

	var buf bytes.Buffer
	debug.Disassemble(&buf, &c, "jump")
	assert.Contains(t, buf.String(), "-> 5")
}

func TestGlobalsListingIsSorted(t *testing.T) {
	var tb table.Table
	tb.Set(value.NewString("zebra"), value.Number(1), false)
	tb.Set(value.NewString("apple"), value.Number(2), false)
	tb.Set(value.NewString("mango"), value.Number(3), false)

	var buf bytes.Buffer
	debug.Globals(&buf, &tb)

	out := buf.String()
	require.Contains(t, out, "apple")
	appleIdx := indexOf(out, "apple")
	mangoIdx := indexOf(out, "mango")
	zebraIdx := indexOf(out, "zebra")
	assert.True(t, appleIdx < mangoIdx)
	assert.True(t, mangoIdx < zebraIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
