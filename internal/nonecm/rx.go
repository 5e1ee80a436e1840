// Package nonecm implements the non-ECM bit path described in §4.3: the
// receive-side sinks that pack demodulated bits into T4_NON_ECM_DATA
// fields (optionally stripping T.4 EOL fill bits), and the transmit-side
// buffer that does the reverse for the packet-to-audio direction.
package nonecm

import "github.com/pstn-t38/gateway/internal/t38core"

// Sink is the IFP output contract, shared with the hdlc package.
type Sink interface {
	SendIndicator(kind t38core.IndicatorKind, txCount int)
	SendData(dataType t38core.DataType, field t38core.FieldType, payload []byte, txCount int)
}

// Receiver packs non-ECM bits into T4_NON_ECM_DATA fields, with optional
// fill-bit removal (§4.3).
type Receiver struct {
	sink     Sink
	dataType t38core.DataType

	removeFill bool

	bitStream uint16
	bitNo     int

	data                [256]byte
	dataPtr             int
	octetsPerDataPacket int

	bitsAbsorbed int
	inBits       int
	outOctets    int
}

// NewReceiver returns a Receiver. removeFill selects the fill-stripping
// sink (the "configurable" half of the public fill_bit_removal option).
func NewReceiver(sink Sink, removeFill bool) *Receiver {
	r := &Receiver{sink: sink, removeFill: removeFill}
	r.Reset()
	return r
}

// SetDataType selects the T.38 data type finished fields are tagged with.
func (r *Receiver) SetDataType(dt t38core.DataType) { r.dataType = dt }

// SetOctetsPerDataPacket configures the packetisation size.
func (r *Receiver) SetOctetsPerDataPacket(n int) {
	if n < 1 {
		n = 1
	}
	r.octetsPerDataPacket = n
}

// Reset reinitializes the assembly buffer, per to_t38_buffer_init: the
// bit_stream history is seeded all-ones so fill-bit detection does not
// fire on the very first bits of a fresh buffer.
func (r *Receiver) Reset() {
	r.dataPtr = 0
	r.bitStream = 0xFFFF
	r.bitNo = 0
	r.inBits = 0
	r.outOctets = 0
}

// PutBit feeds one decoded bit. With fill removal disabled this is the
// plain sink; with it enabled, EOL runs of 14+ zero bits are thinned.
func (r *Receiver) PutBit(bit int) {
	if r.removeFill {
		r.putBitRemoveFill(bit)
		return
	}
	r.putBitPlain(bit)
}

func (r *Receiver) putBitPlain(bit int) {
	r.inBits++
	bit &= 1
	r.bitStream = (r.bitStream << 1) | uint16(bit)
	r.bitNo++
	if r.bitNo >= 8 {
		r.appendOctet()
	}
}

func (r *Receiver) putBitRemoveFill(bit int) {
	r.bitsAbsorbed++
	bit &= 1

	if r.bitStream&0x3FFF == 0 && bit == 0 {
		if r.bitsAbsorbed > 2*8*r.octetsPerDataPacket {
			r.push()
		}
		return
	}

	r.bitStream = (r.bitStream << 1) | uint16(bit)
	r.bitNo++
	if r.bitNo >= 8 {
		r.appendOctet()
	}
}

func (r *Receiver) appendOctet() {
	if r.dataPtr < len(r.data) {
		r.data[r.dataPtr] = byte(r.bitStream)
		r.dataPtr++
	}
	if r.dataPtr >= r.octetsPerDataPacket {
		r.push()
	}
	r.bitNo = 0
}

func (r *Receiver) push() {
	if r.dataPtr == 0 {
		return
	}
	r.sink.SendData(r.dataType, t38core.FieldT4NonECMData, r.data[:r.dataPtr], t38core.DataTxCount)
	r.outOctets += r.dataPtr
	r.inBits += r.bitsAbsorbed
	r.bitsAbsorbed = 0
	r.dataPtr = 0
}

// PushResidue flushes whatever partial octet remains (left-justified,
// zero-padded) as a T4_NON_ECM_SIG_END field, on carrier loss.
func (r *Receiver) PushResidue() {
	if r.bitNo != 0 && r.dataPtr < len(r.data) {
		r.data[r.dataPtr] = byte(r.bitStream << uint(8-r.bitNo))
		r.dataPtr++
	}
	r.sink.SendData(r.dataType, t38core.FieldT4NonECMSigEnd, r.data[:r.dataPtr], t38core.DataEndTxCount)
	r.outOctets += r.dataPtr
	r.inBits += r.bitsAbsorbed
	r.dataPtr = 0
	r.bitNo = 0
}

// CarrierDown implements the PUTBIT_CARRIER_DOWN status transition: flush
// the residue, announce NO_SIGNAL. The caller is responsible for
// restarting the RX modem afterwards (§4.7).
func (r *Receiver) CarrierDown() {
	r.PushResidue()
	r.sink.SendIndicator(t38core.IndicatorNoSignal, t38core.IndicatorTxCount)
}

// Stats exposes the running byte/bit counters for the gateway's
// aggregate Stats struct.
func (r *Receiver) Stats() (inBits, outOctets int) {
	return r.inBits, r.outOctets
}
