package t38core

// UnderflowAction tells the audio-egress HDLC transmitter what to do
// once it has exhausted the bits of its current frame, per §4.5.
type UnderflowAction int

const (
	// ActionIdle: the new tail slot is empty; do nothing, the
	// modulator free-runs on flag idles until something stops it.
	ActionIdle UnderflowAction = iota
	// ActionSendNullFrame: the new tail slot is a queued indicator;
	// send a null (zero-length) HDLC frame to wind the modulator
	// down so SetNextTxType can pick up the indicator.
	ActionSendNullFrame
	// ActionStartNextFrame: the new tail slot is a data frame already
	// authorized for output; start clocking its bits out immediately.
	ActionStartNextFrame
)

// Egress implements §4.5 (the underflow handler) and the indicator half
// of §4.4 (set_next_tx_type).
type Egress struct {
	ring *Ring
}

// NewEgress wraps ring with the audio-side consumer logic.
func NewEgress(ring *Ring) *Egress {
	return &Egress{ring: ring}
}

// Underflow is called when the HDLC transmitter runs out of bits for the
// slot it was draining. proceeded is whether that slot carried
// FlagProceedWithOutput (the sender had authorized its emission); only
// then does the tail actually advance.
func (e *Egress) Underflow(proceeded bool) UnderflowAction {
	if proceeded {
		e.ring.AdvanceTail()
	}

	tail := e.ring.Tail()
	switch {
	case tail.IsEmpty():
		return ActionIdle
	case tail.IsIndicator():
		return ActionSendNullFrame
	case tail.IsData() && tail.Has(FlagProceedWithOutput):
		return ActionStartNextFrame
	default:
		return ActionIdle
	}
}

// CurrentData returns the tail slot's frame bytes and whether they
// should be transmitted with a deliberately bad CRC, for the HDLC
// transmitter to start clocking out after ActionStartNextFrame.
func (e *Egress) CurrentData() (payload []byte, corrupt bool) {
	tail := e.ring.Tail()
	return tail.Payload(), tail.Has(FlagCorruptCRC)
}

// SetNextTxType dequeues one indicator from the ring tail, if the tail
// is currently an indicator slot, advancing past it. ok is false if
// there is nothing queued to switch to.
func (e *Egress) SetNextTxType() (kind IndicatorKind, ok bool) {
	tail := e.ring.Tail()
	if !tail.IsIndicator() {
		return 0, false
	}
	kind = tail.indicator
	e.ring.AdvanceTail()
	return kind, true
}

// FlagsPerFastIndicator returns the count of HDLC preamble flags to
// transmit before a fast-modem frame, per §4.4: 200ms worth at the
// modem's bit rate, i.e. bitRate/40.
func FlagsPerFastIndicator(bitRate int) int {
	return bitRate / 40
}
