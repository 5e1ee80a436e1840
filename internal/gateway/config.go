// Package gateway wires the T.30 mode controller, the HDLC and non-ECM
// bit paths, the T.38 ring and the modem router into the single
// GatewayState a host process drives with Rx/Tx sample blocks and
// ProcessRxData/ProcessRxIndicator IFP fields.
package gateway

import (
	"github.com/pstn-t38/gateway/internal/t30"
	"github.com/pstn-t38/gateway/internal/t38core"
)

// NSXDirectionConfig is one direction's entry in the nsx_suppression
// table (§6): PayloadBytes is "suppress up to N payload bytes", the
// semantic field the design note (§9) asks for in place of the
// original's len+3 internal representation.
type NSXDirectionConfig struct {
	PayloadBytes int
	Overwrite    [t30.MaxNSXSuppression]byte
}

// Config is the gateway's public configuration surface (§6). It is the
// YAML-loadable shape a host process deserializes before calling New.
type Config struct {
	SupportedModems t30.SupportMask `yaml:"supported_modems"`
	ECMAllowed      bool            `yaml:"ecm_allowed"`
	TransmitOnIdle  bool            `yaml:"transmit_on_idle"`
	TEPMode         bool            `yaml:"tep_mode"`
	FillBitRemoval  bool            `yaml:"fill_bit_removal"`

	NSXFromT38    NSXDirectionConfig `yaml:"nsx_suppression_from_t38"`
	NSXFromModem  NSXDirectionConfig `yaml:"nsx_suppression_from_modem"`
	RingCapacity  int                `yaml:"ring_capacity"`
}

// DefaultConfig returns the configuration the original gateway starts
// with: every fast modem supported, ECM allowed, no NSX suppression.
func DefaultConfig() Config {
	return Config{
		SupportedModems: t30.SupportV17 | t30.SupportV27ter | t30.SupportV29,
		ECMAllowed:      true,
		RingCapacity:    8,
	}
}

// FrameObserver is the real_time_frame_handler collaborator (§6): called
// with every complete V.21 frame, per direction.
type FrameObserver = t38core.FrameObserver
