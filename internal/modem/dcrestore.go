package modem

// DCRestore is the one-pole DC-offset blocker run over every inbound
// sample before it reaches either demodulator (§4.1). It tracks a slow
// running estimate of the signal's DC bias and subtracts it.
type DCRestore struct {
	bias int32
}

// NewDCRestore returns a filter with no accumulated bias.
func NewDCRestore() *DCRestore { return &DCRestore{} }

// Restore updates the bias estimate from amp and returns the
// bias-corrected sample.
func (f *DCRestore) Restore(amp int16) int16 {
	f.bias += (int32(amp)<<10 - f.bias) >> 10
	corrected := int32(amp) - (f.bias >> 10)
	switch {
	case corrected > 32767:
		corrected = 32767
	case corrected < -32768:
		corrected = -32768
	}
	return int16(corrected)
}

// ApplyInto DC-restores samples in place.
func (f *DCRestore) ApplyInto(samples []int16) {
	for i, amp := range samples {
		samples[i] = f.Restore(amp)
	}
}

// Reset clears the bias estimate, e.g. on modem restart.
func (f *DCRestore) Reset() { f.bias = 0 }
