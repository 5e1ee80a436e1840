// Package hdlc implements the bit-level HDLC framer that sits between a
// demodulator and the T.38 packet side: flag/abort detection, bit
// destuffing, progressive CRC, the two-octet output delay, and (on the
// egress side) the ring-draining transmitter that feeds a modulator.
package hdlc

import (
	"github.com/pstn-t38/gateway/internal/bitops"
	"github.com/pstn-t38/gateway/internal/crc16"
	"github.com/pstn-t38/gateway/internal/t30"
	"github.com/pstn-t38/gateway/internal/t38core"
)

// FramingOKThreshold is the number of back-to-back flags required before
// the receiver trusts it has found preamble.
const FramingOKThreshold = 5

// MaxFrameLen bounds the frame buffer; matches t38core.MaxHDLCLen.
const MaxFrameLen = t38core.MaxHDLCLen

// Sink receives the IFP data/indicator output of the receiver: the two
// primitives the contract allows (§6).
type Sink interface {
	SendIndicator(kind t38core.IndicatorKind, txCount int)
	SendData(dataType t38core.DataType, field t38core.FieldType, payload []byte, txCount int)
}

// FrameObserver mirrors t38core.FrameObserver without importing it back;
// both are satisfied by the same function value.
type FrameObserver func(frame []byte, fromModemSide bool)

// Receiver implements §4.2: the bit-level HDLC RX state machine run on
// the audio-to-T38 path. One Receiver exists per direction the gateway
// demodulates V.21 or a fast modem on (in practice: the audio side).
type Receiver struct {
	sink     Sink
	editor   *t30.Editor
	mode     *t30.State
	observer FrameObserver

	dataType t38core.DataType

	rawBitStream uint32
	byteInProg   byte
	numBits      int

	flagsSeen          int
	framingOKAnnounced bool

	buffer [MaxFrameLen]byte
	length int
	crc    uint16

	dataScratch        [MaxFrameLen]byte
	dataPtr            int
	octetsPerDataPacket int

	rxCRCErrors    int
	rxLengthErrors int
	rxFrames       int
	rxAborts       int
}

// NewReceiver wires a Receiver against its IFP sink, the shared message
// editor and mode controller, and an optional frame observer.
func NewReceiver(sink Sink, editor *t30.Editor, mode *t30.State, observer FrameObserver) *Receiver {
	r := &Receiver{sink: sink, editor: editor, mode: mode, observer: observer}
	r.Reset()
	return r
}

// SetDataType selects which T.38 data type completed frames/data fields
// are tagged with — T.38 DATA_V21 while in the control phase, the
// negotiated fast type once image data starts.
func (r *Receiver) SetDataType(dt t38core.DataType) {
	r.dataType = dt
}

// SetOctetsPerDataPacket configures how many octets accumulate in the
// scratch buffer before one HDLC_DATA field is emitted; see
// OctetsPerDataPacket below for how callers derive it from a bit rate.
func (r *Receiver) SetOctetsPerDataPacket(n int) {
	if n < 1 {
		n = 1
	}
	r.octetsPerDataPacket = n
}

// OctetsPerDataPacket computes octets = MS_PER_TX_CHUNK*bit_rate/8000,
// clamped to a minimum of 1, per §4.2.
func OctetsPerDataPacket(bitRate int) int {
	const msPerTxChunk = 30
	octets := msPerTxChunk * bitRate / 8000
	if octets < 1 {
		octets = 1
	}
	return octets
}

// Reset reinitializes the receiver's framing state, as done on carrier-up
// and on modem restart (§4.7).
func (r *Receiver) Reset() {
	r.rawBitStream = 0
	r.length = 0
	r.numBits = 0
	r.flagsSeen = 0
	r.framingOKAnnounced = false
	r.crc = crc16.Init
	r.dataPtr = 0
}

// PutBit feeds one demodulated bit (LSB-first as received on the wire)
// into the receiver.
func (r *Receiver) PutBit(bit int) {
	r.rawBitStream = (r.rawBitStream << 1) | uint32(bit&1)

	if r.rawBitStream&0x3F == 0x3E {
		if r.rawBitStream&0x40 != 0 {
			r.flagOrAbort()
		}
		return
	}

	r.numBits++
	if !r.framingOKAnnounced {
		return
	}

	r.byteInProg = (r.byteInProg >> 1) | byte((r.rawBitStream&0x01)<<7)
	if r.numBits != 8 {
		return
	}
	r.numBits = 0

	if r.length >= len(r.buffer) {
		r.rxLengthErrors++
		r.flagsSeen = FramingOKThreshold - 1
		r.length = 0
		return
	}

	r.buffer[r.length] = r.byteInProg
	r.crc = crc16.Update(r.crc, r.byteInProg)
	r.length++
	if r.length <= 2 {
		return
	}

	if r.dataType == t38core.DataV21 {
		r.editor.EditByte(t30.FromModem, r.buffer[:r.length], r.mode.SupportedModems, r.mode.ECMAllowed)
	}

	r.dataPtr++
	if r.dataPtr >= r.octetsPerDataPacket {
		start := r.length - 2 - r.dataPtr
		bitops.ReverseBytesInto(r.dataScratch[:r.dataPtr], r.buffer[start:start+r.dataPtr])
		r.sink.SendData(r.dataType, t38core.FieldHDLCData, r.dataScratch[:r.dataPtr], t38core.DataTxCount)
		r.dataPtr = 0
	}
}

// flagOrAbort implements rx_flag_or_abort: dispatch on whether the raw
// stream's high bit marks this as an HDLC abort or a flag.
func (r *Receiver) flagOrAbort() {
	if r.rawBitStream&0x80 != 0 {
		r.rxAborts++
		if r.flagsSeen < FramingOKThreshold {
			r.flagsSeen = 0
		} else {
			r.flagsSeen = FramingOKThreshold - 1
		}
	} else if r.flagsSeen >= FramingOKThreshold {
		if r.length > 0 {
			r.finishFrame()
		}
	} else {
		if r.numBits != 7 {
			r.flagsSeen = 0
		}
		r.flagsSeen++
		if r.flagsSeen >= FramingOKThreshold && !r.framingOKAnnounced {
			if r.dataType == t38core.DataV21 {
				r.sink.SendIndicator(t38core.IndicatorV21Preamble, t38core.IndicatorTxCount)
			}
			r.framingOKAnnounced = true
		}
	}

	r.length = 0
	r.numBits = 0
	r.crc = crc16.Init
	r.dataPtr = 0
	r.editor.ResetFrame(t30.FromModem)
}

func (r *Receiver) finishFrame() {
	if r.length < 2 {
		r.rxLengthErrors++
		return
	}

	if r.dataPtr > 0 {
		start := r.length - 2 - r.dataPtr
		bitops.ReverseBytesInto(r.dataScratch[:r.dataPtr], r.buffer[start:start+r.dataPtr])
		r.sink.SendData(r.dataType, t38core.FieldHDLCData, r.dataScratch[:r.dataPtr], t38core.DataTxCount)
	}

	misaligned := r.numBits != 7
	badCRC := r.crc != crc16.GoodResidue
	if misaligned || badCRC {
		r.rxCRCErrors++
		if r.length > 2 {
			r.sink.SendData(r.dataType, t38core.FieldHDLCFCSBad, nil, t38core.DataTxCount)
		}
		return
	}

	r.rxFrames++
	frame := r.buffer[:r.length-2]
	if r.dataType == t38core.DataV21 {
		// The bool return only matters for packet-side CFR (§4.6); the
		// audio side never restarts its own RX modem from a frame it
		// just decoded.
		r.mode.Observe(frame, true)
		if r.observer != nil {
			r.observer(frame, true)
		}
	} else {
		r.mode.MarkShortTrainingProven()
	}

	r.sink.SendData(r.dataType, t38core.FieldHDLCFCSOK, nil, t38core.DataTxCount)
}

// CarrierUp resets the receiver and clears the preamble-announced latch,
// per the PUTBIT_CARRIER_UP status (§4.2).
func (r *Receiver) CarrierUp() {
	r.rawBitStream = 0
	r.length = 0
	r.numBits = 0
	r.flagsSeen = 0
	r.framingOKAnnounced = false
}

// CarrierDown reports whether a SIG_END/NO_SIGNAL pair should be emitted
// (true only if framing had been announced), and clears the latch.
func (r *Receiver) CarrierDown() (announced bool) {
	announced = r.framingOKAnnounced
	if announced {
		r.sink.SendData(r.dataType, t38core.FieldHDLCSigEnd, nil, t38core.DataEndTxCount)
		r.sink.SendIndicator(t38core.IndicatorNoSignal, t38core.IndicatorTxCount)
		r.framingOKAnnounced = false
	}
	return announced
}

// TrainingSucceeded behaves like preamble having been announced, per
// PUTBIT_TRAINING_SUCCEEDED: fast modems don't send V.21-style flags, so
// the receiver is told to trust the channel immediately.
func (r *Receiver) TrainingSucceeded() {
	r.framingOKAnnounced = true
	r.Reset()
	r.framingOKAnnounced = true
}

// Stats exposes the receiver's running error/frame counters for the
// gateway's aggregate Stats struct.
func (r *Receiver) Stats() (crcErrors, lengthErrors, frames, aborts int) {
	return r.rxCRCErrors, r.rxLengthErrors, r.rxFrames, r.rxAborts
}
