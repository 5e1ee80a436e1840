// Package lineiface drives the analogue line-interface hardware a host
// process needs to operate a PSTN fax line: the hook-relay and ring-detect
// GPIO pair, and a serial-controlled DAA board's modem control lines.
// Neither the DSP modem kernels nor the line hardware itself are part of
// this gateway's core (§1's non-goal); this package is the seam a host
// binds real hardware to.
package lineiface

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// HookRelay drives the off-hook/on-hook relay and watches the ring-detect
// input, the two GPIO lines a line-interface board exposes for call
// supervision.
type HookRelay struct {
	hook gpio.PinOut
	ring gpio.PinIn
}

// Init initializes the host's GPIO drivers. Callers invoke it once before
// OpenHookRelay; it is idempotent.
func Init() error {
	_, err := host.Init()
	return err
}

// OpenHookRelay resolves the named hook-control and ring-detect pins
// (board-specific names such as "GPIO17"/"GPIO27") and configures them
// for output/input respectively.
func OpenHookRelay(hookPin, ringPin string) (*HookRelay, error) {
	hook := gpioreg.ByName(hookPin)
	if hook == nil {
		return nil, fmt.Errorf("lineiface: unknown hook pin %q", hookPin)
	}
	ring := gpioreg.ByName(ringPin)
	if ring == nil {
		return nil, fmt.Errorf("lineiface: unknown ring pin %q", ringPin)
	}
	if err := hook.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("lineiface: configure hook pin: %w", err)
	}
	if err := ring.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("lineiface: configure ring pin: %w", err)
	}
	return &HookRelay{hook: hook, ring: ring}, nil
}

// GoOffHook closes the line relay, seizing the line.
func (h *HookRelay) GoOffHook() error { return h.hook.Out(gpio.High) }

// GoOnHook opens the line relay, releasing the line.
func (h *HookRelay) GoOnHook() error { return h.hook.Out(gpio.Low) }

// RingDetected reports the instantaneous ring-detect input level.
func (h *HookRelay) RingDetected() bool { return h.ring.Read() == gpio.High }

// WaitForRing blocks until the ring-detect input transitions, or the pin
// driver reports no event (see gpio.PinIn.WaitForEdge), returning whether
// a genuine edge was observed.
func (h *HookRelay) WaitForRing() bool {
	return h.ring.WaitForEdge(-1)
}
