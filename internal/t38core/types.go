// Package t38core implements the packet-side plumbing shared by the HDLC
// and non-ECM bit paths: the IFP field/indicator vocabulary, the bounded
// HDLC-to-modem ring, and the ingress/egress state machines that move
// frames between the T.38 transport and the audio-side modulators.
//
// Everything here is pure bookkeeping. The actual UDPTL/TCP transport and
// IFP wire framing live outside this package; t38core only ever calls two
// primitives on its Transport collaborator: SendIndicator and SendData.
package t38core

// DataType identifies which modem/rate produced or should consume a run
// of IFP data fields, mirroring the T.38 t38_data_type enumeration.
type DataType int

const (
	DataNone DataType = iota
	DataV21
	DataV27ter2400
	DataV27ter4800
	DataV29_7200
	DataV29_9600
	DataV17_7200
	DataV17_9600
	DataV17_12000
	DataV17_14400
)

func (d DataType) String() string {
	switch d {
	case DataV21:
		return "V21"
	case DataV27ter2400:
		return "V27ter2400"
	case DataV27ter4800:
		return "V27ter4800"
	case DataV29_7200:
		return "V29_7200"
	case DataV29_9600:
		return "V29_9600"
	case DataV17_7200:
		return "V17_7200"
	case DataV17_9600:
		return "V17_9600"
	case DataV17_12000:
		return "V17_12000"
	case DataV17_14400:
		return "V17_14400"
	default:
		return "none"
	}
}

// FieldType is the IFP field-type enumeration: which kind of payload a
// DataType carries.
type FieldType int

const (
	FieldHDLCData FieldType = iota
	FieldHDLCFCSOK
	FieldHDLCFCSOKSigEnd
	FieldHDLCFCSBad
	FieldHDLCFCSBadSigEnd
	FieldHDLCSigEnd
	FieldT4NonECMData
	FieldT4NonECMSigEnd
	FieldCMMessage
	FieldJMMessage
	FieldCIMessage
	FieldV34Rate
)

// IndicatorKind is the T.38 indicator vocabulary: modem-state transitions
// announced out-of-band from data.
type IndicatorKind int

const (
	IndicatorNoSignal IndicatorKind = iota
	IndicatorCNG
	IndicatorCED
	IndicatorV21Preamble
	IndicatorV27ter2400Training
	IndicatorV27ter4800Training
	IndicatorV29_7200Training
	IndicatorV29_9600Training
	IndicatorV17_7200ShortTraining
	IndicatorV17_7200LongTraining
	IndicatorV17_9600ShortTraining
	IndicatorV17_9600LongTraining
	IndicatorV17_12000ShortTraining
	IndicatorV17_12000LongTraining
	IndicatorV17_14400ShortTraining
	IndicatorV17_14400LongTraining
	IndicatorV8ANSam
	IndicatorV8Signal
)

// Redundancy multipliers for outbound fields, per §6 of the contract this
// package implements against.
const (
	IndicatorTxCount = 3
	DataTxCount      = 1
	DataEndTxCount   = 3
)

// MaxHDLCLen bounds a single HDLC frame's payload, matching the T.38
// recommendation's maximum HDLC buffer size.
const MaxHDLCLen = 260

// HDLCStartBufferLevel is the number of bytes a ring slot must accumulate
// before the transmitter is allowed to start draining it; this buys a
// little elasticity against jitter on the packet side.
const HDLCStartBufferLevel = 8

// Transport is the outbound collaborator: the IFP/UDPTL layer outside
// this package's scope. Implementations must not block.
type Transport interface {
	SendIndicator(kind IndicatorKind, txCount int)
	SendData(dataType DataType, field FieldType, payload []byte, txCount int)
}

// V34Rate records the negotiated V.34 rate reported by a V34RATE IFP
// field. The core logs it; it does not otherwise act on it.
type V34Rate struct {
	TxRate int
	RxRate int
}
