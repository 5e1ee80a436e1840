package gateway

import (
	"github.com/pstn-t38/gateway/internal/modem"
	"github.com/pstn-t38/gateway/internal/t38core"
)

// msToSamples converts milliseconds to an 8kHz sample count.
func msToSamples(ms int) int { return ms * 8 }

// gatewayRXSink decorates the HDLC/non-ECM bit sinks with the gateway-
// level reaction to a carrier-down status: restart the RX modem (§4.7)
// and, during TCF, arm the 75ms predictive-training timer (§4.2, §5).
type gatewayRXSink struct {
	g     *GatewayState
	inner modem.Sink
}

func (s gatewayRXSink) Handle(ev modem.BitEvent) {
	s.inner.Handle(ev)
	if ev.Kind != modem.EventCarrierDown {
		return
	}
	s.g.RestartRXModem()
	if s.g.core.mode.TCFModePredictableModemStart == 2 {
		s.g.core.samplesToTimeout = msToSamples(75)
		s.g.core.mode.TCFModePredictableModemStart = 1
	}
}

// Rx is the public audio entry point (§6): 16-bit signed linear PCM at
// 8kHz. It services the TCF predictive-training timer, then dispatches
// the block to the modem router.
func (g *GatewayState) Rx(samples []int16) int {
	if g.core.samplesToTimeout > 0 {
		g.core.samplesToTimeout -= len(samples)
		if g.core.samplesToTimeout <= 0 && g.core.mode.TCFModePredictableModemStart == 1 {
			g.announceTraining()
		}
	}
	g.audio.router.ProcessSamples(samples)
	return 0
}

// announceTraining implements announce_training: predictively switch
// the audio-to-T38 packetisation to the negotiated fast rate and
// announce its training indicator before the real demodulator has
// actually trained (S3).
func (g *GatewayState) announceTraining() {
	dt, octets, ind := fastPacketisation(g.core.mode.FastModem, g.core.mode.FastBitRate, g.core.mode.ShortTrain)
	g.core.currentDataType = dt
	g.core.hdlcRX.SetDataType(dt)
	g.core.hdlcRX.SetOctetsPerDataPacket(octets)
	g.core.nonECMRX.SetDataType(dt)
	g.core.nonECMRX.SetOctetsPerDataPacket(octets)
	g.packet.transport.SendIndicator(ind, t38core.IndicatorTxCount)
}

// SetRxActive implements set_rx_active (§4.1): mute or unmute the
// receiver without disturbing which demodulator(s) are installed,
// e.g. while the gateway itself is transmitting.
func (g *GatewayState) SetRxActive(active bool) {
	g.audio.router.SetRxActive(active)
}
