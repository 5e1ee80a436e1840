package gateway

import (
	"github.com/pstn-t38/gateway/internal/hdlc"
	"github.com/pstn-t38/gateway/internal/modem"
	"github.com/pstn-t38/gateway/internal/t30"
	"github.com/pstn-t38/gateway/internal/t38core"
)

// RestartRXModem implements §4.7. It is invoked on carrier-down in
// either direction (via the HDLC/non-ECM receivers' CarrierDown, wired
// through rx.go) and from the packet side when a CFR arrives from the
// packet side (via t38core.RestartNotifier).
func (g *GatewayState) RestartRXModem() {
	g.core.hdlcRX.Reset()
	g.core.hdlcRX.SetDataType(t38core.DataV21)
	g.core.hdlcRX.SetOctetsPerDataPacket(hdlc.OctetsPerDataPacket(300))
	g.core.currentDataType = t38core.DataV21
	g.core.nonECMRX.Reset()

	fastSink, v21Sink := g.selectRXSinks()

	fastPair := g.audio.modems.fastPair(g.core.mode.FastModem)
	g.audio.fastPair = fastPair

	fastDemod := fastPair.Demod
	if fastDemod == nil {
		fastDemod = modem.Dummy
	}
	v21Demod := g.audio.modems.V21Demod
	if v21Demod == nil {
		v21Demod = modem.Dummy
	}

	g.audio.router.SetOnNarrow(func(toFast bool) { g.onRXNarrow(toFast) })
	g.audio.router.StartDualRX(fastDemod, fastSink, v21Demod, v21Sink, g.core.mode.FastBitRate, g.core.mode.ShortTrain)
}

// selectRXSinks picks the fast-path bit sink per §4.7: ECM frames (even
// at high speed) still go through the shared HDLC assembler; non-ECM
// image data goes to the fill-stripping or plain non-ECM sink depending
// on configuration. The V.21 sink is always the HDLC assembler.
func (g *GatewayState) selectRXSinks() (fastSink, v21Sink modem.Sink) {
	v21Sink = gatewayRXSink{g: g, inner: modem.HDLCSink{RX: g.core.hdlcRX}}

	if g.core.mode.ImageDataMode && g.core.mode.ECMMode {
		fastSink = gatewayRXSink{g: g, inner: modem.HDLCSink{RX: g.core.hdlcRX}}
		return fastSink, v21Sink
	}
	fastSink = gatewayRXSink{g: g, inner: modem.NonECMSink{RX: g.core.nonECMRX}}
	return fastSink, v21Sink
}

// onRXNarrow is called by the router once dual reception resolves to a
// single demodulator. When it resolves to the fast side, this is the
// audio-to-T38 analogue of set_fast_packetisation: switch the shared
// assemblers' tag and octet size to the negotiated fast rate and
// announce the matching training indicator.
func (g *GatewayState) onRXNarrow(toFast bool) {
	if !toFast {
		return
	}
	dt, octets, ind := fastPacketisation(g.core.mode.FastModem, g.core.mode.FastBitRate, g.core.mode.ShortTrain)
	g.core.currentDataType = dt
	g.core.hdlcRX.SetDataType(dt)
	g.core.hdlcRX.SetOctetsPerDataPacket(octets)
	g.core.nonECMRX.SetDataType(dt)
	g.core.nonECMRX.SetOctetsPerDataPacket(octets)
	g.packet.transport.SendIndicator(ind, t38core.IndicatorTxCount)
}

// fastPacketisation maps a (fast modem, bit rate, short-train) triple to
// the T.38 data type, the audio-to-T38 packetisation size, and the
// training indicator to announce, per set_fast_packetisation.
func fastPacketisation(fm t30.FastModem, bitRate int, shortTrain bool) (t38core.DataType, int, t38core.IndicatorKind) {
	octets := hdlc.OctetsPerDataPacket(bitRate)
	switch fm {
	case t30.FastModemV17:
		switch bitRate {
		case 7200:
			return t38core.DataV17_7200, octets, shortTrainInd(shortTrain, t38core.IndicatorV17_7200ShortTraining, t38core.IndicatorV17_7200LongTraining)
		case 9600:
			return t38core.DataV17_9600, octets, shortTrainInd(shortTrain, t38core.IndicatorV17_9600ShortTraining, t38core.IndicatorV17_9600LongTraining)
		case 12000:
			return t38core.DataV17_12000, octets, shortTrainInd(shortTrain, t38core.IndicatorV17_12000ShortTraining, t38core.IndicatorV17_12000LongTraining)
		default:
			return t38core.DataV17_14400, octets, shortTrainInd(shortTrain, t38core.IndicatorV17_14400ShortTraining, t38core.IndicatorV17_14400LongTraining)
		}
	case t30.FastModemV27ter:
		if bitRate == 2400 {
			// The original's TX side gives both V27TER_2400/4800 TRAINING
			// indicators a bit rate of 2400 (§9 open question); this
			// mapping, like indicatorModem, uses 4800 for the 4800 case
			// instead — see DESIGN.md.
			return t38core.DataV27ter2400, octets, t38core.IndicatorV27ter2400Training
		}
		return t38core.DataV27ter4800, octets, t38core.IndicatorV27ter4800Training
	case t30.FastModemV29:
		if bitRate == 7200 {
			return t38core.DataV29_7200, octets, t38core.IndicatorV29_7200Training
		}
		return t38core.DataV29_9600, octets, t38core.IndicatorV29_9600Training
	default:
		return t38core.DataV21, octets, t38core.IndicatorV21Preamble
	}
}

func shortTrainInd(short bool, shortInd, longInd t38core.IndicatorKind) t38core.IndicatorKind {
	if short {
		return shortInd
	}
	return longInd
}
