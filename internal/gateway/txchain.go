package gateway

import (
	"github.com/pstn-t38/gateway/internal/modem"
	"github.com/pstn-t38/gateway/internal/t38core"
)

// indicatorModem maps a queued T.38 indicator to the modulator and
// parameters set_next_tx_type would install, per §4.4: "dequeues one
// indicator, selects the modem, pre-loads silence, then installs the
// matching modulator as a deferred (next) TX handler."
func (g *GatewayState) indicatorModem(kind t38core.IndicatorKind) (mod modem.Modulator, bitRate int, shortTrain bool) {
	m := g.audio.modems
	switch kind {
	case t38core.IndicatorNoSignal:
		return m.Silence, 0, false
	case t38core.IndicatorV21Preamble, t38core.IndicatorCNG, t38core.IndicatorCED:
		return m.V21Mod, 300, false
	case t38core.IndicatorV27ter2400Training:
		return m.V27ter.Mod, 2400, false
	case t38core.IndicatorV27ter4800Training:
		return m.V27ter.Mod, 4800, false
	case t38core.IndicatorV29_7200Training:
		return m.V29.Mod, 7200, false
	case t38core.IndicatorV29_9600Training:
		return m.V29.Mod, 9600, false
	case t38core.IndicatorV17_7200ShortTraining:
		return m.V17.Mod, 7200, true
	case t38core.IndicatorV17_7200LongTraining:
		return m.V17.Mod, 7200, false
	case t38core.IndicatorV17_9600ShortTraining:
		return m.V17.Mod, 9600, true
	case t38core.IndicatorV17_9600LongTraining:
		return m.V17.Mod, 9600, false
	case t38core.IndicatorV17_12000ShortTraining:
		return m.V17.Mod, 12000, true
	case t38core.IndicatorV17_12000LongTraining:
		return m.V17.Mod, 12000, false
	case t38core.IndicatorV17_14400ShortTraining:
		return m.V17.Mod, 14400, true
	case t38core.IndicatorV17_14400LongTraining:
		return m.V17.Mod, 14400, false
	default:
		return m.Silence, 0, false
	}
}

// advanceToNextHandler implements set_next_tx_type in full: a staged
// txNext handler, if one is already queued, is promoted to txCurrent
// immediately (and RX is unmuted or muted depending on whether the
// promoted handler is silence or a real modem). Only when nothing is
// staged does it fall through to dequeueIndicator, which installs a new
// handler pair from the ring.
func (g *GatewayState) advanceToNextHandler() bool {
	if g.audio.txNext != nil {
		g.audio.txCurrent = g.audio.txNext
		g.audio.txNext = nil
		g.SetRxActive(g.audio.txCurrent == g.audio.modems.Silence)
		return true
	}
	return g.dequeueIndicator()
}

// dequeueIndicator implements the ring-dequeue half of set_next_tx_type:
// pull one indicator from the ring tail, restart its modulator, and
// install it as the deferred next handler behind a leading silence gap
// (silence_gen_alter's 75ms pre-roll), rather than switching to it
// immediately — the real handler only takes over on a later
// advanceToNextHandler call, once the current (silence) handler has
// drained. For NO_SIGNAL (silence) nothing is staged: the indefinite
// silence handler is installed directly as the current handler. For every
// other modulator, V.21 included, preamble flags are pre-loaded so the
// promoted modulator has something to clock the instant it takes over.
func (g *GatewayState) dequeueIndicator() bool {
	kind, ok := g.packet.egress.SetNextTxType()
	if !ok {
		return false
	}

	mod, bitRate, shortTrain := g.indicatorModem(kind)
	if mod == nil {
		mod = g.audio.modems.Silence
	}

	if mod != g.audio.modems.Silence {
		mod.Restart(bitRate, shortTrain, g.cfg.TEPMode)
		mod.SetBitSource(g.packet.hdlcTX)
		flags := t38core.FlagsPerFastIndicator(max(bitRate, 300))
		g.packet.hdlcTX.LoadPreamble(flags)
	}

	g.audio.txSilenceSamples = msToSamples(75)
	g.audio.modems.Silence.Restart(0, false, false)
	// The silence handler preceding a real modem gets a finite 75ms
	// pre-roll so it reports drained and the chain advances on its own;
	// a silence handler installed for NO_SIGNAL itself stays indefinite.
	if durationSetter, ok := g.audio.modems.Silence.(silenceDuration); ok {
		if mod == g.audio.modems.Silence {
			durationSetter.SetDuration(0)
		} else {
			durationSetter.SetDuration(g.audio.txSilenceSamples)
		}
	}
	g.audio.txCurrent = g.audio.modems.Silence
	if mod == g.audio.modems.Silence {
		g.audio.txNext = nil
	} else {
		g.audio.txNext = mod
	}
	g.SetRxActive(true)
	return true
}

// silenceDuration is satisfied by *modem.SilenceModulator; a host
// supplying its own silence generator can skip it, in which case the
// pre-roll gap just runs indefinitely until the next TX underflow asks
// again.
type silenceDuration interface {
	SetDuration(samples int)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
