// Package audioio opens a live full-duplex audio stream for a host
// process to drive a GatewayState's Rx/Tx with, using
// github.com/gordonklaus/portaudio — the cross-platform analogue of the
// teacher's own direct ALSA capture/playback loop, without tying a host
// to Linux/ALSA specifically.
package audioio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// SampleRate is the fixed 8kHz linear PCM rate every modem and HDLC path
// in this module assumes.
const SampleRate = 8000

// Stream wraps a full-duplex portaudio.Stream sized for one fax line's
// worth of mono 16-bit samples per block.
type Stream struct {
	pa  *portaudio.Stream
	in  []int16
	out []int16
}

// Open initializes the portaudio host API (idempotent to call once per
// process) and opens the default input/output devices full-duplex, with
// framesPerBuffer samples per Rx/Tx round.
func Open(framesPerBuffer int) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audioio: initialize: %w", err)
	}

	s := &Stream{
		in:  make([]int16, framesPerBuffer),
		out: make([]int16, framesPerBuffer),
	}

	stream, err := portaudio.OpenDefaultStream(1, 1, SampleRate, framesPerBuffer, s.in, s.out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audioio: open default stream: %w", err)
	}
	s.pa = stream
	return s, nil
}

// Start begins streaming.
func (s *Stream) Start() error { return s.pa.Start() }

// Stop halts streaming without closing the device.
func (s *Stream) Stop() error { return s.pa.Stop() }

// Close stops the stream and releases the portaudio host API.
func (s *Stream) Close() error {
	err := s.pa.Close()
	portaudio.Terminate()
	return err
}

// ReadWrite blocks for one audio round: it captures one block of input
// samples into rx (calling the gateway's Rx) and, via the tx callback,
// fills the output block the stream will play. tx receives the output
// buffer to fill and returns the number of samples actually produced;
// the remainder is left as whatever rx/tx left behind (callers using
// Config.TransmitOnIdle get full silence padding from GatewayState.Tx
// itself).
func (s *Stream) ReadWrite(rx func(samples []int16), tx func(buf []int16) int) error {
	if err := s.pa.Read(); err != nil {
		return fmt.Errorf("audioio: read: %w", err)
	}
	rx(s.in)
	tx(s.out)
	if err := s.pa.Write(); err != nil {
		return fmt.Errorf("audioio: write: %w", err)
	}
	return nil
}
