package hdlc

import (
	"github.com/pstn-t38/gateway/internal/crc16"
	"github.com/pstn-t38/gateway/internal/t38core"
)

const flagOctet = 0x7E

// flagBits is the on-wire bit pattern of an HDLC flag, LSB first:
// 0x7E = 01111110, transmitted bit 0 first.
var flagBits = bitsOf(flagOctet)

func bitsOf(octet byte) [8]int {
	var bits [8]int
	for i := 0; i < 8; i++ {
		bits[i] = int((octet >> uint(i)) & 1)
	}
	return bits
}

// Transmitter implements the egress half of §4.2/§4.5: it bit-stuffs and
// CRCs whatever frame the ring hands it, drains it bit by bit to a
// modulator, and asks the Egress ring for the next frame (or null-frame,
// or idle) when it runs dry.
type Transmitter struct {
	egress *t38core.Egress

	pending   []int // queued output bits not yet consumed by GetBit
	ones      int   // consecutive 1-bits emitted, for stuffing
	lastWasProceeded bool
}

// NewTransmitter wraps the ring's Egress with the bit-level HDLC coder.
func NewTransmitter(egress *t38core.Egress) *Transmitter {
	return &Transmitter{egress: egress}
}

// LoadFrame queues payload (the T.30 frame, CRC not yet appended) for
// transmission: opening flag, bit-stuffed payload+CRC, closing flag. A
// nil/empty payload transmits just a flag-delimited empty frame (used to
// wind a modulator down before an indicator takes effect).
func (tx *Transmitter) LoadFrame(payload []byte, corruptCRC bool) {
	var frame []byte
	if len(payload) > 0 {
		crc := crc16.Block(payload) ^ 0xFFFF
		if corruptCRC {
			// The transmitted FCS is normally the complement; flipping it
			// again sends the uncomplemented register, which the
			// receiver's residue check rejects.
			crc ^= 0xFFFF
		}
		frame = make([]byte, len(payload)+2)
		copy(frame, payload)
		frame[len(payload)] = byte(crc)
		frame[len(payload)+1] = byte(crc >> 8)
	}

	tx.pending = append(tx.pending, flagBits[:]...)
	tx.ones = 0
	for _, b := range frame {
		tx.appendStuffedOctet(b)
	}
	tx.pending = append(tx.pending, flagBits[:]...)
	tx.ones = 0
}

// LoadPreamble queues count extra flag octets ahead of whatever the ring
// authorizes next, e.g. the 200ms of HDLC preamble flags set_next_tx_type
// configures before a fast-modem frame (§4.4: bitRate/40 flags).
func (tx *Transmitter) LoadPreamble(count int) {
	for i := 0; i < count; i++ {
		tx.pending = append(tx.pending, flagBits[:]...)
	}
	tx.ones = 0
}

func (tx *Transmitter) appendStuffedOctet(b byte) {
	for i := 0; i < 8; i++ {
		bit := int((b >> uint(i)) & 1)
		tx.pending = append(tx.pending, bit)
		if bit == 1 {
			tx.ones++
			if tx.ones == 5 {
				tx.pending = append(tx.pending, 0)
				tx.ones = 0
			}
		} else {
			tx.ones = 0
		}
	}
}

// GetBit pulls the next bit to modulate. When the queue runs dry it
// consults the ring's Egress for what to do next (§4.5): start the next
// authorized frame, send a null frame to shut down for an indicator
// change, or idle on flags.
func (tx *Transmitter) GetBit() int {
	if len(tx.pending) == 0 {
		tx.refill()
	}
	if len(tx.pending) == 0 {
		// Nothing queued and the ring has nothing either: idle on
		// flags so the line stays framed.
		tx.pending = append(tx.pending, flagBits[:]...)
	}
	bit := tx.pending[0]
	tx.pending = tx.pending[1:]
	return bit
}

func (tx *Transmitter) refill() {
	action := tx.egress.Underflow(tx.lastWasProceeded)
	switch action {
	case t38core.ActionStartNextFrame:
		payload, corrupt := tx.egress.CurrentData()
		tx.LoadFrame(payload, corrupt)
		tx.lastWasProceeded = true
	case t38core.ActionSendNullFrame:
		tx.LoadFrame(nil, false)
		tx.lastWasProceeded = false
	default:
		tx.lastWasProceeded = false
	}
}
