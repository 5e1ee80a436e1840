package modem

// rxMode tags which demodulator(s) currently receive live samples. This
// is the explicit tagged variant the design note asks for in place of
// raw function-pointer swapping.
type rxMode int

const (
	rxDummy rxMode = iota
	rxDual
	rxFastOnly
	rxV21Only
)

// Router is the ModemRouter (§4.1): it feeds inbound audio to the
// selected fast demodulator and the V.21 demodulator in parallel while
// training is unresolved, then narrows to whichever one actually locked
// on, and can be silenced entirely (the "dummy RX" variant) while the
// gateway itself is transmitting.
type Router struct {
	dc *DCRestore

	fast     Demodulator
	fastSink Sink
	v21      Demodulator
	v21Sink  Sink

	mode          rxMode
	dummied       bool // set_rx_active(false): handler muted regardless of mode
	signalPresent bool
	trained       bool
	trainFailed   bool

	// onNarrow, if set, is called when the router collapses from dual
	// reception to a single demodulator; the gateway uses it to switch
	// packetisation and announce training.
	onNarrow func(toFast bool)
}

// NewRouter returns a Router with no demodulators installed yet; call
// StartDualRX once the gateway knows the fast modem to race against
// V.21 (driven by restart_rx_modem, §4.7).
func NewRouter() *Router {
	return &Router{dc: NewDCRestore(), mode: rxDummy}
}

// SetOnNarrow installs the optional narrow-down observer.
func (r *Router) SetOnNarrow(fn func(toFast bool)) { r.onNarrow = fn }

// StartDualRX installs the fast/V.21 pair and restarts both
// demodulators, per restart_rx_modem's "installs a dual-RX handler that
// forwards every sample block to both the fast demod and the V.21
// demod" (§4.7). bitRate/shortTrain are passed to the fast demodulator
// only; V.21 FSK ignores them.
func (r *Router) StartDualRX(fast Demodulator, fastSink Sink, v21 Demodulator, v21Sink Sink, bitRate int, shortTrain bool) {
	r.fast, r.fastSink = fast, fastSink
	r.v21, r.v21Sink = v21, v21Sink
	r.signalPresent = false
	r.trained = false
	r.trainFailed = false
	r.mode = rxDual
	r.dummied = false
	r.fast.Restart(bitRate, shortTrain)
	r.v21.Restart(0, false)
}

// SetRxActive implements set_rx_active: swap between the installed
// dispatch handler and the dummy (no-op) receiver, without disturbing
// which dispatch mode will resume once reactivated.
func (r *Router) SetRxActive(active bool) {
	r.dummied = !active
}

// setMode implements set_rx_handler: install a narrowed single-demod
// mode unless the router is currently dummied, in which case the change
// is dropped and the previous mode stays in force on reactivation.
func (r *Router) setMode(m rxMode) {
	if r.dummied {
		return
	}
	r.mode = m
}

// ProcessSamples DC-restores the block in place, then dispatches it to
// whichever demodulator(s) are currently live, narrowing down as soon as
// training resolves one way or the other.
func (r *Router) ProcessSamples(samples []int16) {
	r.dc.ApplyInto(samples)

	if r.dummied || r.mode == rxDummy {
		return
	}

	switch r.mode {
	case rxDual:
		r.fast.Process(samples, r.interceptingSink(r.fastSink, true))
		r.v21.Process(samples, r.interceptingSink(r.v21Sink, false))
		r.resolveNarrowing()
	case rxFastOnly:
		r.fast.Process(samples, r.fastSink)
	case rxV21Only:
		r.v21.Process(samples, r.v21Sink)
	}
}

// interceptingSink wraps a downstream sink so the router observes
// carrier/training status without the bit path needing to know a router
// exists.
func (r *Router) interceptingSink(downstream Sink, fromFast bool) Sink {
	return SinkFunc(func(ev BitEvent) {
		switch ev.Kind {
		case EventCarrierUp:
			r.signalPresent = true
		case EventTrainingSucceeded:
			if fromFast {
				r.trained = true
			}
		case EventTrainingFailed:
			if fromFast {
				r.trainFailed = true
			}
		}
		downstream.Handle(ev)
	})
}

// resolveNarrowing implements the collapse rule from §4.1: once a
// signal is present, keep running dual until the fast side either
// trains (narrow to fast) or explicitly reports a failed/fallback
// training attempt (narrow to V.21); an unresolved fast attempt with no
// signal yet keeps both demodulators running.
func (r *Router) resolveNarrowing() {
	if !r.signalPresent {
		return
	}
	switch {
	case r.trained:
		r.setMode(rxFastOnly)
		if r.onNarrow != nil {
			r.onNarrow(true)
		}
	case r.trainFailed:
		r.setMode(rxV21Only)
		if r.onNarrow != nil {
			r.onNarrow(false)
		}
	}
}

// Trained reports whether the fast demodulator has completed training
// in the current receive attempt.
func (r *Router) Trained() bool { return r.trained }

// SignalPresent reports whether either demodulator has declared carrier.
func (r *Router) SignalPresent() bool { return r.signalPresent }
