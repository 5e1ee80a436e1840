package hdlc

import (
	"testing"

	"github.com/pstn-t38/gateway/internal/bitops"
	"github.com/pstn-t38/gateway/internal/crc16"
	"github.com/pstn-t38/gateway/internal/t30"
	"github.com/pstn-t38/gateway/internal/t38core"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type fakeSink struct {
	dataFields []fakeDataField
	indicators []t38core.IndicatorKind
}

type fakeDataField struct {
	field   t38core.FieldType
	payload []byte
}

func (f *fakeSink) SendIndicator(kind t38core.IndicatorKind, txCount int) {
	f.indicators = append(f.indicators, kind)
}

func (f *fakeSink) SendData(dataType t38core.DataType, field t38core.FieldType, payload []byte, txCount int) {
	f.dataFields = append(f.dataFields, fakeDataField{field, append([]byte{}, payload...)})
}

// stuff bit-stuffs a raw (unstuffed) bit sequence: insert a 0 after five
// consecutive 1 bits, mirroring standard HDLC transparency.
func stuffBits(bits []int) []int {
	out := make([]int, 0, len(bits)+len(bits)/5+1)
	ones := 0
	for _, b := range bits {
		out = append(out, b)
		if b == 1 {
			ones++
			if ones == 5 {
				out = append(out, 0)
				ones = 0
			}
		} else {
			ones = 0
		}
	}
	return out
}

func bytesToBits(data []byte) []int {
	bits := make([]int, 0, len(data)*8)
	for _, b := range data {
		for i := 0; i < 8; i++ {
			bits = append(bits, int((b>>uint(i))&1))
		}
	}
	return bits
}

var flagRawBits = []int{0, 1, 1, 1, 1, 1, 1, 0}

func newTestReceiver(sink *fakeSink) *Receiver {
	editor := t30.NewEditor()
	mode := t30.NewState(t30.SupportV17|t30.SupportV29|t30.SupportV27ter, true)
	r := NewReceiver(sink, editor, mode, nil)
	r.SetDataType(t38core.DataV21)
	r.SetOctetsPerDataPacket(1)
	return r
}

func preambleBits() []int {
	var bits []int
	for i := 0; i < FramingOKThreshold; i++ {
		bits = append(bits, flagRawBits...)
	}
	return bits
}

func feedFrame(r *Receiver, payload []byte) {
	frame := crc16.Append(payload)
	bits := append(preambleBits(), stuffBits(bytesToBits(frame))...)
	bits = append(bits, flagRawBits...)
	for _, b := range bits {
		r.PutBit(b)
	}
}

func TestHDLCRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 1, 30).Draw(rt, "payload")

		sink := &fakeSink{}
		r := newTestReceiver(sink)
		feedFrame(r, payload)

		var got []byte
		okCount := 0
		for _, f := range sink.dataFields {
			switch f.field {
			case t38core.FieldHDLCData:
				got = append(got, bitops.ReverseBytes(f.payload)...)
			case t38core.FieldHDLCFCSOK:
				okCount++
			}
		}
		assert.Equal(t, payload, got)
		assert.Equal(t, 1, okCount)
	})
}

func TestHDLCSingleBitFlipRejected(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	frame := crc16.Append(payload)
	preamble := preambleBits()
	bits := append(append([]int{}, preamble...), stuffBits(bytesToBits(frame))...)
	bits = append(bits, flagRawBits...)

	// Flip one data bit, well clear of the flag sequences.
	flipIdx := len(preamble) + 3
	bits[flipIdx] ^= 1

	sink := &fakeSink{}
	r := newTestReceiver(sink)
	for _, b := range bits {
		r.PutBit(b)
	}

	sawBad, sawOK := false, false
	for _, f := range sink.dataFields {
		if f.field == t38core.FieldHDLCFCSBad {
			sawBad = true
		}
		if f.field == t38core.FieldHDLCFCSOK {
			sawOK = true
		}
	}
	assert.True(t, sawBad)
	assert.False(t, sawOK)
}

func TestTwoOctetDelay(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	sink := &fakeSink{}
	r := newTestReceiver(sink)
	feedFrame(r, payload)

	total := 0
	for _, f := range sink.dataFields {
		if f.field == t38core.FieldHDLCData {
			total += len(f.payload)
		}
	}
	assert.Equal(t, len(payload), total)
}

func TestV21PreambleIndicatorAnnouncedOnFraming(t *testing.T) {
	sink := &fakeSink{}
	r := newTestReceiver(sink)
	for _, b := range preambleBits() {
		r.PutBit(b)
	}
	assert.Contains(t, sink.indicators, t38core.IndicatorV21Preamble)
}
