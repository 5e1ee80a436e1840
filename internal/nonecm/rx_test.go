package nonecm

import (
	"testing"

	"github.com/pstn-t38/gateway/internal/t38core"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type fakeSink struct {
	dataFields []fakeField
	indicators []t38core.IndicatorKind
}

type fakeField struct {
	field   t38core.FieldType
	payload []byte
}

func (f *fakeSink) SendIndicator(kind t38core.IndicatorKind, txCount int) {
	f.indicators = append(f.indicators, kind)
}

func (f *fakeSink) SendData(dataType t38core.DataType, field t38core.FieldType, payload []byte, txCount int) {
	f.dataFields = append(f.dataFields, fakeField{field, append([]byte{}, payload...)})
}

func feedBits(r *Receiver, bits []int) {
	for _, b := range bits {
		r.PutBit(b)
	}
}

func bytesToBits(data []byte) []int {
	var bits []int
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, int((b>>uint(i))&1))
		}
	}
	return bits
}

func TestPlainSinkPacksOctetsInOrder(t *testing.T) {
	sink := &fakeSink{}
	r := NewReceiver(sink, false)
	r.SetOctetsPerDataPacket(2)

	feedBits(r, bytesToBits([]byte{0xAA, 0x55}))

	assert.Len(t, sink.dataFields, 1)
	assert.Equal(t, []byte{0xAA, 0x55}, sink.dataFields[0].payload)
}

func TestFillBitRemovalDropsLongZeroRuns(t *testing.T) {
	sink := &fakeSink{}
	r := NewReceiver(sink, true)
	r.SetOctetsPerDataPacket(1)

	// 14 zero bits after the 0xFFFF seed satisfy (bit_stream & 0x3FFF)==0;
	// every zero past the first 14 should be dropped rather than packed.
	for i := 0; i < 14; i++ {
		r.PutBit(0)
	}
	for i := 0; i < 40; i++ {
		r.PutBit(0)
	}
	r.PutBit(1)

	assert.Less(t, r.inBits, 14+40+1, "excess fill zeros must not all reach the bit counter path")
}

func TestFillBitRemovalSafetyValveFlushes(t *testing.T) {
	sink := &fakeSink{}
	r := NewReceiver(sink, true)
	r.SetOctetsPerDataPacket(2)

	for i := 0; i < 14; i++ {
		r.PutBit(0)
	}
	// Push well past the 2*8*octets_per_data_packet (32-bit) safety
	// threshold while still in a zero run, forcing a flush of the one
	// buffered octet even though the two-octet packet is not full.
	for i := 0; i < 50; i++ {
		r.PutBit(0)
	}

	assert.NotEmpty(t, sink.dataFields, "safety valve must flush to bound row latency")
}

func TestPushResidueFlushesPartialOctetAndAnnouncesSigEnd(t *testing.T) {
	sink := &fakeSink{}
	r := NewReceiver(sink, false)
	r.SetOctetsPerDataPacket(4)

	feedBits(r, bytesToBits([]byte{0xF0})[:4]) // 4 bits: 1111

	r.PushResidue()
	assert.Len(t, sink.dataFields, 1)
	assert.Equal(t, t38core.FieldT4NonECMSigEnd, sink.dataFields[0].field)
	assert.Equal(t, []byte{0xF0}, sink.dataFields[0].payload, "partial octet left-justified, zero padded")
}

func TestCarrierDownAnnouncesNoSignal(t *testing.T) {
	sink := &fakeSink{}
	r := NewReceiver(sink, false)
	r.CarrierDown()
	assert.Contains(t, sink.indicators, t38core.IndicatorNoSignal)
}

func TestPlainSinkRoundTripsArbitraryBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 1, 20).Draw(rt, "payload")

		sink := &fakeSink{}
		r := NewReceiver(sink, false)
		r.SetOctetsPerDataPacket(len(payload))
		feedBits(r, bytesToBits(payload))

		var got []byte
		for _, f := range sink.dataFields {
			got = append(got, f.payload...)
		}
		assert.Equal(t, payload, got)
	})
}
