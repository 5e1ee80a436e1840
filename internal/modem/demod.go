package modem

// Demodulator is the sample-in/bit-out contract a V.17, V.27ter, V.29 or
// V.21-FSK kernel presents to the gateway. The kernels themselves are
// out of scope; this is the seam the router and the gateway hold onto.
type Demodulator interface {
	// Restart reinitializes training state for a new receive attempt at
	// the given bit rate (ignored by the fixed-rate V.21 FSK demod).
	Restart(bitRate int, shortTrain bool)
	// Process demodulates one block of 16-bit linear PCM samples,
	// delivering every resulting BitEvent to sink in order.
	Process(samples []int16, sink Sink)
	// SignalPower reports the last-measured receive level in dBm0, for
	// logging only.
	SignalPower() float64
}

// Modulator is the sample-out contract a TX kernel presents: it pulls
// bits from its configured bit source and fills an audio buffer.
type Modulator interface {
	Restart(bitRate int, shortTrain bool, useTEP bool)
	// SetBitSource rewires which bit source the modulator pulls from,
	// mirroring set_get_bit in the original modem collaborator contract
	// (§6). The gateway passes the HDLC transmitter; the non-ECM TX
	// buffer's GetBit has a different signature and is not a BitSource.
	SetBitSource(src BitSource)
	// Process fills buf with up to len(buf) samples, returning how many
	// were produced and whether the modulator has nothing left to send
	// (its bit source went idle mid-buffer) — the signal the egress
	// side uses to advance set_next_tx_type.
	Process(buf []int16) (n int, drained bool)
}

// BitSource is what a Modulator pulls from — in this repository, the HDLC
// transmitter.
type BitSource interface {
	GetBit() int
}

// dummyDemod is the "dummy RX" sentinel from the design note (§9): when
// installed, it discards samples instead of running a real demodulator,
// modelling the gateway intentionally muting its own receiver while it
// is the one transmitting.
type dummyDemod struct{}

func (dummyDemod) Restart(int, bool)     {}
func (dummyDemod) Process([]int16, Sink) {}
func (dummyDemod) SignalPower() float64  { return 0 }

// Dummy is the shared dummy-RX sentinel instance.
var Dummy Demodulator = dummyDemod{}
