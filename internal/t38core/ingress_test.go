package t38core

import (
	"testing"

	"github.com/pstn-t38/gateway/internal/t30"
	"github.com/stretchr/testify/assert"
)

type fakeNonECM struct {
	pushed   [][]byte
	final    []byte
	released int
}

func (f *fakeNonECM) Push(data []byte)      { f.pushed = append(f.pushed, append([]byte{}, data...)) }
func (f *fakeNonECM) PushFinal(data []byte) { f.final = append([]byte{}, data...) }
func (f *fakeNonECM) Release()              { f.released++ }

type fakeRestarter struct{ calls int }

func (f *fakeRestarter) RestartRXModem() { f.calls++ }

func newTestIngress() (*Ingress, *Ring, *fakeNonECM, *fakeRestarter) {
	ring := NewRing(4)
	editor := t30.NewEditor()
	mode := t30.NewState(t30.SupportV17|t30.SupportV29|t30.SupportV27ter, true)
	nonECM := &fakeNonECM{}
	restart := &fakeRestarter{}
	return NewIngress(ring, editor, mode, nonECM, restart, nil), ring, nonECM, restart
}

func TestAppendHDLCDataBitReversesIntoHead(t *testing.T) {
	in, ring, _, _ := newTestIngress()

	// 0x80 on the wire (LSB-first) represents 0x01 decoded.
	in.ProcessRxData(DataV27ter2400, FieldHDLCData, []byte{0x80, 0x40})
	assert.Equal(t, []byte{0x01, 0x02}, ring.Head().Payload())
}

func TestDuplicateFCSOKIsSuppressed(t *testing.T) {
	in, ring, _, _ := newTestIngress()

	in.ProcessRxData(DataV21, FieldHDLCData, []byte{0xFF, 0xC0, 0x80})
	in.ProcessRxData(DataV21, FieldHDLCFCSOK, nil)
	assert.False(t, ring.Empty(), "one finalized frame advanced the head")

	before := ring.in
	in.ProcessRxData(DataV21, FieldHDLCFCSOK, nil)
	assert.Equal(t, before, ring.in, "repeated terminal field must not finalize a second frame")
}

func TestMissingDataSuppressesModeObserver(t *testing.T) {
	in, _, _, restart := newTestIngress()

	in.MarkMissing()
	in.ProcessRxData(DataV21, FieldHDLCData, []byte{0xFF, 0xC0, 0x84}) // CFR bit-reversed
	in.ProcessRxData(DataV21, FieldHDLCFCSOK, nil)

	assert.Zero(t, restart.calls, "tainted frame must not drive a restart from CFR observation")
}

func TestIndicatorIngressEnqueuesAndAdvancesPastInProgressSlot(t *testing.T) {
	in, ring, _, _ := newTestIngress()

	in.ProcessRxData(DataV21, FieldHDLCData, []byte{0xFF})
	in.ProcessRxIndicator(IndicatorV21Preamble)

	// Walking from tail: first the in-progress HDLC slot, then the
	// queued indicator.
	assert.True(t, ring.Tail().IsData())
}

func TestNonECMSigEndReleasesBuffer(t *testing.T) {
	in, _, nonECM, _ := newTestIngress()

	in.ProcessRxData(DataV29_9600, FieldT4NonECMData, []byte{0x01, 0x02})
	in.ProcessRxData(DataV29_9600, FieldT4NonECMSigEnd, []byte{0x03})

	assert.Equal(t, []byte{0x03}, nonECM.final)
	assert.Equal(t, 1, nonECM.released)
}

func TestHDLCSigEndDuringNonECMForcesFlush(t *testing.T) {
	in, _, nonECM, _ := newTestIngress()

	in.ProcessRxData(DataV29_9600, FieldT4NonECMData, []byte{0x01})
	in.ProcessRxData(DataV29_9600, FieldHDLCSigEnd, nil)

	assert.Equal(t, 1, nonECM.released, "a buggy peer's HDLC_SIG_END during non-ECM must flush it")
}
