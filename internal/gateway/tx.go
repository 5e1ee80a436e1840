package gateway

// Tx is the public audio-out entry point (§6): fills buf with 16-bit
// signed linear PCM at 8kHz, returning how many samples were produced
// (before any idle padding). It mirrors t38_gateway_tx's underflow loop:
// the current handler is drained first; if it comes up short,
// advanceToNextHandler is tried once to pull in whatever is already
// staged or newly dequeued, and the (possibly just-promoted) handler is
// asked to fill the remainder; if it is STILL short after that, a second
// advanceToNextHandler pass is made (matching the original's trailing
// silence_gen_set(0) + retry) before giving up on real samples for this
// call and, if configured, padding the rest with silence.
func (g *GatewayState) Tx(buf []int16) int {
	if g.audio.txCurrent == nil {
		g.audio.txCurrent = g.audio.modems.Silence
		g.SetRxActive(true)
	}

	// Parked in silence with nothing staged: poll the ring once per
	// call for newly queued work, rather than waiting on a drain signal
	// that an indefinitely idle silence handler would never produce.
	if g.audio.txCurrent == g.audio.modems.Silence && g.audio.txNext == nil {
		g.dequeueIndicator()
	}

	n, drained := g.audio.txCurrent.Process(buf)
	if drained && n < len(buf) {
		if g.advanceToNextHandler() {
			more, _ := g.audio.txCurrent.Process(buf[n:])
			n += more
		}
		if n < len(buf) {
			g.audio.txSilenceSamples = 0
			g.advanceToNextHandler()
		}
	}

	if g.cfg.TransmitOnIdle {
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		return len(buf)
	}
	return n
}
