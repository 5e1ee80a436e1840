package gateway

import (
	"fmt"

	"github.com/pstn-t38/gateway/internal/hdlc"
	"github.com/pstn-t38/gateway/internal/modem"
	"github.com/pstn-t38/gateway/internal/nonecm"
	"github.com/pstn-t38/gateway/internal/t30"
	"github.com/pstn-t38/gateway/internal/t38core"
)

// AudioSide owns the modem ensemble, the router that demuxes inbound
// samples to it, and the currently (and next-queued) TX handler, per §3.
type AudioSide struct {
	modems   ModemSet
	router   *modem.Router
	fastPair FastModemPair

	txCurrent  modem.Modulator
	txNext     modem.Modulator
	txSilenceSamples int
}

// PacketSide owns the T.38 ring, the ingress/egress state machines and
// the non-ECM TX buffer. The per-direction NSX policy lives in the
// t30.Editor that CoreState holds.
type PacketSide struct {
	ring      *t38core.Ring
	ingress   *t38core.Ingress
	egress    *t38core.Egress
	transport t38core.Transport
	nonECMTX  *nonecm.TXBuffer
	hdlcTX    *hdlc.Transmitter

	rxIndicator t38core.IndicatorKind
}

// CoreState owns the ModeController, message editor, the shared HDLC
// assembler (serving both the V.21 control channel and ECM image
// frames), the non-ECM receive sink, and the running stats, per §3.
type CoreState struct {
	mode   *t30.State
	editor *t30.Editor

	hdlcRX   *hdlc.Receiver
	nonECMRX *nonecm.Receiver

	// currentDataType mirrors current_tx_data_type in the original: it
	// tags which T.38 data type the audio-to-T38 path is currently
	// emitting under, toggled between V21 and the fast rate as training
	// resolves (set_slow_packetisation / set_fast_packetisation).
	currentDataType t38core.DataType

	samplesToTimeout int
	observer         t38core.FrameObserver

	fillBitRemoval bool
}

// GatewayState is the top-level aggregate: one instance per fax call.
type GatewayState struct {
	cfg    Config
	audio  AudioSide
	packet PacketSide
	core   CoreState
}

// New wires a GatewayState per §3/§6. transport is the outbound T.38
// collaborator; modems is the injected DSP kernel ensemble (out of
// scope to implement here — §1's explicit non-goal). A nil transport
// is a construction-time misuse (§7), not untrusted input, so New
// rejects it instead of constructing a gateway that would panic on its
// first SendIndicator/SendData call.
func New(cfg Config, transport t38core.Transport, modems ModemSet, observer FrameObserver) (*GatewayState, error) {
	if transport == nil {
		return nil, fmt.Errorf("gateway: transport must not be nil")
	}
	if cfg.RingCapacity < 4 {
		cfg.RingCapacity = 4
	}

	mode := t30.NewState(cfg.SupportedModems, cfg.ECMAllowed)
	editor := t30.NewEditor()
	editor.SetNSXSuppression(t30.FromPacket, t30.NSXPolicy{PayloadBytes: cfg.NSXFromT38.PayloadBytes, Overwrite: cfg.NSXFromT38.Overwrite})
	editor.SetNSXSuppression(t30.FromModem, t30.NSXPolicy{PayloadBytes: cfg.NSXFromModem.PayloadBytes, Overwrite: cfg.NSXFromModem.Overwrite})

	ring := t38core.NewRing(cfg.RingCapacity)
	nonECMTX := nonecm.NewTXBuffer()

	g := &GatewayState{cfg: cfg}
	g.core = CoreState{
		mode:           mode,
		editor:         editor,
		fillBitRemoval: cfg.FillBitRemoval,
		observer:       observer,
	}
	g.core.hdlcRX = hdlc.NewReceiver(transport, editor, mode, func(frame []byte, fromModemSide bool) {
		if g.core.observer != nil {
			g.core.observer(frame, fromModemSide)
		}
	})
	g.core.nonECMRX = nonecm.NewReceiver(transport, cfg.FillBitRemoval)

	g.packet = PacketSide{
		ring:      ring,
		transport: transport,
		nonECMTX:  nonECMTX,
	}
	g.packet.egress = t38core.NewEgress(ring)
	g.packet.hdlcTX = hdlc.NewTransmitter(g.packet.egress)
	g.packet.ingress = t38core.NewIngress(ring, editor, mode, nonECMTX, g, func(frame []byte, fromModemSide bool) {
		if g.core.observer != nil {
			g.core.observer(frame, fromModemSide)
		}
	})

	g.audio = AudioSide{
		modems: modems,
		router: modem.NewRouter(),
	}

	g.RestartRXModem()
	return g, nil
}

// Config returns the configuration the gateway was constructed with.
func (g *GatewayState) Config() Config { return g.cfg }

// Mode exposes the ModeController state for read-only inspection (tests,
// logging); mutation happens only through Observe.
func (g *GatewayState) Mode() *t30.State { return g.core.mode }

// ProcessRxData forwards an inbound IFP data field to the T.38 ingress
// path (§4.4, §6).
func (g *GatewayState) ProcessRxData(dataType t38core.DataType, field t38core.FieldType, payload []byte) {
	g.packet.ingress.ProcessRxData(dataType, field, payload)
}

// ProcessRxIndicator forwards an inbound IFP indicator to the T.38
// ingress path (§4.4).
func (g *GatewayState) ProcessRxIndicator(kind t38core.IndicatorKind) {
	if kind == g.packet.rxIndicator {
		return
	}
	g.packet.rxIndicator = kind
	g.packet.ingress.ProcessRxIndicator(kind)
}

// MarkMissing implements the rx_missing inbound primitive (§6, §7).
func (g *GatewayState) MarkMissing() { g.packet.ingress.MarkMissing() }

// Stats snapshots the gateway's counters; see stats.go.
