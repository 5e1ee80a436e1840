package modem

import (
	"github.com/pstn-t38/gateway/internal/hdlc"
	"github.com/pstn-t38/gateway/internal/nonecm"
)

// HDLCSink adapts an *hdlc.Receiver to the BitEvent contract, dispatching
// status events to its CarrierUp/CarrierDown/TrainingSucceeded methods
// and data bits to PutBit.
type HDLCSink struct {
	RX *hdlc.Receiver
}

func (s HDLCSink) Handle(ev BitEvent) {
	switch ev.Kind {
	case EventBit:
		s.RX.PutBit(ev.Bit)
	case EventCarrierUp:
		s.RX.CarrierUp()
	case EventCarrierDown:
		s.RX.CarrierDown()
	case EventTrainingSucceeded:
		s.RX.TrainingSucceeded()
	}
}

// NonECMSink adapts an *nonecm.Receiver to the BitEvent contract. It has
// no distinct carrier-up or training-succeeded behaviour of its own
// (the gateway resets it directly on modem restart instead), so only
// data bits and carrier-down are forwarded.
type NonECMSink struct {
	RX *nonecm.Receiver
}

func (s NonECMSink) Handle(ev BitEvent) {
	switch ev.Kind {
	case EventBit:
		s.RX.PutBit(ev.Bit)
	case EventCarrierDown:
		s.RX.CarrierDown()
	}
}
