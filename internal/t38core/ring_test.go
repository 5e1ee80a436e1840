package t38core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingStartsEmpty(t *testing.T) {
	r := NewRing(4)
	assert.True(t, r.Empty())
}

func TestRingAdvanceHeadThenTailEmpties(t *testing.T) {
	r := NewRing(4)
	head := r.Head()
	head.kind = slotData
	r.AdvanceHead()
	assert.False(t, r.Empty())

	r.AdvanceTail()
	assert.True(t, r.Empty())
}

func TestRingResetClearsSlots(t *testing.T) {
	r := NewRing(4)
	r.Head().kind = slotIndicator
	r.AdvanceHead()
	r.Reset()
	assert.True(t, r.Empty())
	assert.True(t, r.Tail().IsEmpty())
}

func TestRingMinimumCapacityIsFour(t *testing.T) {
	r := NewRing(1)
	assert.Len(t, r.slots, 4)
}
