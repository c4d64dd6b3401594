package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ember/lang/chunk"
)

func TestWriteConstantShortForm(t *testing.T) {
	var c chunk.Chunk
	idx := c.AddConstant("x")
	c.WriteConstant(idx, 1)

	require.Len(t, c.Code, 2)
	assert.Equal(t, chunk.OpConstant, chunk.Op(c.Code[0]))
	assert.Equal(t, byte(idx), c.Code[1])
}

func TestWriteConstantLongForm(t *testing.T) {
	var c chunk.Chunk
	var idx int
	for i := 0; i < 300; i++ {
		idx = c.AddConstant(i)
	}
	c.Code = nil
	c.Lines = nil
	c.WriteConstant(idx, 1)

	require.Len(t, c.Code, 4)
	assert.Equal(t, chunk.OpConstantLong, chunk.Op(c.Code[0]))
	got := int(c.Code[1])<<16 | int(c.Code[2])<<8 | int(c.Code[3])
	assert.Equal(t, idx, got)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "ADD", chunk.OpAdd.String())
	assert.Equal(t, "UNKNOWN", chunk.Op(255).String())
}

func TestWriteTracksLines(t *testing.T) {
	var c chunk.Chunk
	c.WriteOp(chunk.OpNil, 3)
	c.WriteOp(chunk.OpReturn, 4)
	assert.Equal(t, []int{3, 4}, c.Lines)
}
