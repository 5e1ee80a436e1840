package t38core

import (
	"github.com/pstn-t38/gateway/internal/bitops"
	"github.com/pstn-t38/gateway/internal/t30"
)

// NonECMSink is the non-ECM-to-modem buffer's inbound face, implemented
// by internal/nonecm. Kept as an interface here so t38core never imports
// nonecm (nonecm imports t38core for the ring/type vocabulary instead).
type NonECMSink interface {
	Push(data []byte)
	PushFinal(data []byte)
	Release()
}

// RestartNotifier lets ingress ask the gateway to restart the RX modem,
// e.g. when CFR arrives from the packet side (§4.6).
type RestartNotifier interface {
	RestartRXModem()
}

// FrameObserver is the optional real_time_frame_handler collaborator
// (§6): called with every complete V.21 frame, in each direction.
type FrameObserver func(frame []byte, fromModemSide bool)

// Ingress implements §4.4: the single process_rx_data/process_rx_indicator
// entry points that move T.38 IFP fields into the HDLC ring or the
// non-ECM buffer.
type Ingress struct {
	ring     *Ring
	editor   *t30.Editor
	mode     *t30.State
	nonECM   NonECMSink
	restart  RestartNotifier
	observer FrameObserver

	// De-duplication: some peers resend terminal fields with bumped
	// sequence numbers but identical content. Track the last
	// (data type, field type) pair and act only on change.
	lastDataType  DataType
	lastFieldType FieldType
	haveLast      bool

	fieldClass fieldClass

	// currentIndicator mirrors current_rx_indicator: the last indicator
	// enqueued toward the audio side, so onSigEnd only synthesizes a
	// NO_SIGNAL indicator when the carrier wasn't already down.
	currentIndicator IndicatorKind
}

type fieldClass int

const (
	fieldClassNone fieldClass = iota
	fieldClassHDLC
	fieldClassNonECM
)

// NewIngress wires an Ingress against its ring, message editor, mode
// controller, non-ECM sink and optional restart/observer collaborators.
func NewIngress(ring *Ring, editor *t30.Editor, mode *t30.State, nonECM NonECMSink, restart RestartNotifier, observer FrameObserver) *Ingress {
	return &Ingress{ring: ring, editor: editor, mode: mode, nonECM: nonECM, restart: restart, observer: observer}
}

// ProcessRxData implements the single IFP-data entry point described in
// §4.4.
func (in *Ingress) ProcessRxData(dataType DataType, field FieldType, payload []byte) {
	switch field {
	case FieldHDLCData:
		in.fieldClass = fieldClassHDLC
		in.appendHDLCData(dataType, payload)

	case FieldHDLCFCSOK, FieldHDLCFCSOKSigEnd:
		if in.duplicate(dataType, field) {
			return
		}
		in.finalizeHDLC(dataType, false)
		if field == FieldHDLCFCSOKSigEnd {
			in.onSigEnd()
		}

	case FieldHDLCFCSBad, FieldHDLCFCSBadSigEnd:
		if in.duplicate(dataType, field) {
			return
		}
		in.finalizeHDLC(dataType, true)
		if field == FieldHDLCFCSBadSigEnd {
			in.onSigEnd()
		}

	case FieldHDLCSigEnd:
		if in.duplicate(dataType, field) {
			return
		}
		in.onSigEnd()

	case FieldT4NonECMData:
		in.fieldClass = fieldClassNonECM
		if in.nonECM != nil {
			in.nonECM.Push(payload)
		}

	case FieldT4NonECMSigEnd:
		if in.duplicate(dataType, field) {
			return
		}
		if in.nonECM != nil {
			if len(payload) > 0 {
				in.nonECM.PushFinal(payload)
			}
			in.nonECM.Release()
		}

	case FieldCMMessage, FieldJMMessage, FieldCIMessage:
		// Logged by the caller; nothing to act on here.

	case FieldV34Rate:
		// Rate is recorded by the caller from the raw payload; no
		// core state depends on it.
	}
}

// ProcessRxIndicator implements §4.4's indicator ingress: advance the
// ring head past any in-progress slot and enqueue the new indicator.
func (in *Ingress) ProcessRxIndicator(kind IndicatorKind) {
	head := in.ring.Head()
	if !head.IsEmpty() {
		head = in.ring.AdvanceHead()
	}
	head.kind = slotIndicator
	head.indicator = kind
	in.ring.AdvanceHead()

	in.currentIndicator = kind
	in.haveLast = false
	in.fieldClass = fieldClassNone
}

func (in *Ingress) duplicate(dataType DataType, field FieldType) bool {
	if in.haveLast && in.lastDataType == dataType && in.lastFieldType == field {
		return true
	}
	in.lastDataType, in.lastFieldType, in.haveLast = dataType, field, true
	return false
}

func (in *Ingress) appendHDLCData(dataType DataType, payload []byte) {
	head := in.ring.Head()
	if !head.IsData() {
		// Missing indicator: synthesize one so the slot has a type
		// before frame bytes land in it.
		if !head.IsEmpty() {
			head = in.ring.AdvanceHead()
		}
		head.kind = slotData
		head.dataType = dataType
	}

	reversed := bitops.ReverseBytes(payload)
	if dataType == DataV21 {
		for i := range reversed {
			if head.length >= len(head.payload) {
				break
			}
			head.length++
			head.payload[head.length-1] = reversed[i]
			in.editor.EditByte(t30.FromPacket, head.payload[:head.length], in.mode.SupportedModems, in.mode.ECMAllowed)
		}
	} else {
		for _, b := range reversed {
			if head.length >= len(head.payload) {
				break
			}
			head.payload[head.length] = b
			head.length++
		}
	}

	if head.length >= HDLCStartBufferLevel {
		head.flags |= FlagProceedWithOutput
	}
}

func (in *Ingress) finalizeHDLC(dataType DataType, corrupt bool) {
	head := in.ring.Head()
	if !head.IsData() {
		head.kind = slotData
		head.dataType = dataType
	}
	head.flags |= FlagFinished
	if corrupt {
		head.flags |= FlagCorruptCRC
	}

	if dataType == DataV21 && !head.Has(FlagMissingData) && !corrupt {
		restart := in.mode.Observe(head.Payload(), false)
		if in.observer != nil {
			in.observer(head.Payload(), false)
		}
		if restart && in.restart != nil {
			in.restart.RestartRXModem()
		}
	}

	in.pumpOutFinalHDLC()
}

// pumpOutFinalHDLC advances the ring head past the just-finalized slot,
// and if that leaves head == tail also kicks off transmission of it
// (there was nothing else queued ahead of it to drain first).
func (in *Ingress) pumpOutFinalHDLC() {
	wasTail := in.ring.out == in.ring.in
	in.ring.AdvanceHead()
	if wasTail {
		in.ring.Tail().flags |= FlagProceedWithOutput
	}
}

// onSigEnd implements the SIG_END half of §4.4: the carrier dropped, so
// the in-progress slot is closed out and, unless NO_SIGNAL is already
// the current indicator, a NO_SIGNAL indicator is synthesized so the
// audio-side TX chain winds the modulator down to silence instead of
// free-running on flags (mirrors queue_missing_indicator(s, T38_DATA_NONE),
// guarded the same way the original guards on current_rx_indicator).
func (in *Ingress) onSigEnd() {
	head := in.ring.Head()
	if !head.IsEmpty() {
		in.ring.AdvanceHead()
	}
	if in.fieldClass == fieldClassNonECM && in.nonECM != nil {
		in.nonECM.Release()
	}
	in.fieldClass = fieldClassNone

	if in.currentIndicator != IndicatorNoSignal {
		in.ProcessRxIndicator(IndicatorNoSignal)
	}
}

// MarkMissing implements the rx_missing inbound primitive (§6, §7): a
// gap in the transport's sequence numbers taints the in-progress slot so
// ModeController does not trust it, though the frame is still relayed.
func (in *Ingress) MarkMissing() {
	in.ring.Head().flags |= FlagMissingData
}
