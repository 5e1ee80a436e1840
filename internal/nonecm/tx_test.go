package nonecm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTXBufferDoesNotStarveBeforeRelease(t *testing.T) {
	b := NewTXBuffer()
	_, ok := b.GetBit()
	assert.False(t, ok, "empty, unreleased buffer must signal hold rather than return a fabricated bit")
}

func TestTXBufferDrainsPushedBytesLSBFirst(t *testing.T) {
	b := NewTXBuffer()
	b.Push([]byte{0xA5})

	var bits []int
	for i := 0; i < 8; i++ {
		bit, ok := b.GetBit()
		assert.True(t, ok)
		bits = append(bits, bit)
	}
	assert.Equal(t, []int{1, 0, 1, 0, 0, 1, 0, 1}, bits)

	_, ok := b.GetBit()
	assert.False(t, ok, "buffer exhausted and still unreleased")
}

func TestTXBufferReleaseDrainsRemainderThenStarves(t *testing.T) {
	b := NewTXBuffer()
	b.PushFinal([]byte{0xFF})
	b.Release()

	for i := 0; i < 8; i++ {
		bit, ok := b.GetBit()
		assert.True(t, ok)
		assert.Equal(t, 1, bit)
	}
	_, ok := b.GetBit()
	assert.False(t, ok, "even released, an empty queue has nothing left to give")
}

func TestTXBufferResetClearsQueueAndReleaseLatch(t *testing.T) {
	b := NewTXBuffer()
	b.Push([]byte{0x01, 0x02})
	b.Release()
	b.Reset()

	assert.Equal(t, 0, b.Len())
	_, ok := b.GetBit()
	assert.False(t, ok, "nothing is left to send after Reset")
	assert.False(t, b.released, "Reset clears the release latch")
}

func TestTXBufferLenTracksQueuedWholeBytes(t *testing.T) {
	b := NewTXBuffer()
	b.Push([]byte{1, 2, 3})
	assert.Equal(t, 3, b.Len())

	for i := 0; i < 8; i++ {
		b.GetBit()
	}
	assert.Equal(t, 2, b.Len())
}
