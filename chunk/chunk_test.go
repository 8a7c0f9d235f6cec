package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nilan/value"
)

func TestWriteOpAndOperand(t *testing.T) {
	var c Chunk
	idx := c.AddConstant(value.Number(1.5))
	c.WriteOp(OpConstant, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(OpReturn, 1)

	assert.Equal(t, []byte{byte(OpConstant), byte(idx), byte(OpReturn)}, c.Code)
	assert.Equal(t, []int{1, 1, 1}, c.Lines)
}

func TestAddConstantReturnsIndex(t *testing.T) {
	var c Chunk
	i0 := c.AddConstant(value.Number(1))
	i1 := c.AddConstant(value.Number(2))
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
}

func TestDisassembleRendersConstantAndLines(t *testing.T) {
	var c Chunk
	idx := c.AddConstant(value.Number(3))
	c.WriteOp(OpConstant, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(OpReturn, 2)

	out := c.Disassemble("test")
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "'3'")
	assert.Contains(t, out, "OP_RETURN")
}

func TestOpStringUnknownFallback(t *testing.T) {
	assert.Equal(t, "OP_UNKNOWN(255)", Op(255).String())
}
