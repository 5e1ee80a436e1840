package bitops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestReverseKnownValues(t *testing.T) {
	assert.Equal(t, byte(0x00), Reverse(0x00))
	assert.Equal(t, byte(0xFF), Reverse(0xFF))
	assert.Equal(t, byte(0x01), Reverse(0x80))
	assert.Equal(t, byte(0xC0), Reverse(0x03))
}

func TestReverseIsSelfInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := byte(rapid.IntRange(0, 255).Draw(rt, "b"))
		assert.Equal(t, b, Reverse(Reverse(b)))
	})
}

func TestReverseBytesIntoMatchesReverseBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(rt, "in")
		dst := make([]byte, len(in))
		ReverseBytesInto(dst, in)
		assert.Equal(t, ReverseBytes(in), dst)
	})
}
