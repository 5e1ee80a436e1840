package lineiface

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// DAA wraps a serial-controlled Data Access Arrangement board: a device
// that uses the RS-232 modem control lines (DTR for off-hook, CTS/DCD for
// ring and carrier status) instead of a dedicated relay board.
type DAA struct {
	port *serial.Port
}

// OpenDAA opens the DAA's control serial port. Only the modem control
// lines are used; no bytes are exchanged over the data path.
func OpenDAA(device string) (*DAA, error) {
	opts := serial.NewOptions().SetReadTimeout(200 * time.Millisecond)
	port, err := serial.Open(device, opts)
	if err != nil {
		return nil, fmt.Errorf("lineiface: open DAA port %s: %w", device, err)
	}
	return &DAA{port: port}, nil
}

// Close releases the underlying serial port.
func (d *DAA) Close() error { return d.port.Close() }

// GoOffHook asserts DTR, the DAA's off-hook/seize-line signal.
func (d *DAA) GoOffHook() error { return d.port.EnableModemLines(serial.TIOCM_DTR) }

// GoOnHook deasserts DTR, releasing the line.
func (d *DAA) GoOnHook() error { return d.port.DisableModemLines(serial.TIOCM_DTR) }

// RingDetected reports the DAA's ring-indicator line (CTS on most
// boards).
func (d *DAA) RingDetected() (bool, error) {
	lines, err := d.port.GetModemLines()
	if err != nil {
		return false, err
	}
	return lines&serial.TIOCM_CTS != 0, nil
}

// CarrierDetected reports the DAA's line-carrier-present indicator (DCD).
func (d *DAA) CarrierDetected() (bool, error) {
	lines, err := d.port.GetModemLines()
	if err != nil {
		return false, err
	}
	return lines&serial.TIOCM_CAR != 0, nil
}
