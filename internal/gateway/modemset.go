package gateway

import (
	"github.com/pstn-t38/gateway/internal/modem"
	"github.com/pstn-t38/gateway/internal/t30"
)

// FastModemPair is one fast modem's demod/mod collaborator pair. There is
// one pair per modem, not per bit rate (e.g. the V.17 pair handles
// 7200/9600/12000/14400 — the real kernel negotiates the rate internally
// via Restart).
type FastModemPair struct {
	Demod modem.Demodulator
	Mod   modem.Modulator
}

// ModemSet is every DSP collaborator the gateway drives (§6's "Modem
// collaborator" contract), injected at construction since the kernels
// themselves are out of scope here. A host process wires in its actual
// V.17/V.27ter/V.29/V.21-FSK/silence implementations.
type ModemSet struct {
	V17     FastModemPair
	V27ter  FastModemPair
	V29     FastModemPair
	V21Demod modem.Demodulator
	V21Mod   modem.Modulator
	Silence  modem.Modulator
}

func (m ModemSet) fastPair(fm t30.FastModem) FastModemPair {
	switch fm {
	case t30.FastModemV17:
		return m.V17
	case t30.FastModemV27ter:
		return m.V27ter
	case t30.FastModemV29:
		return m.V29
	default:
		return FastModemPair{}
	}
}
