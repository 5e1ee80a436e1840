package gateway

// Stats aggregates the running counters scattered across the bit-path
// receivers and the mode controller into one snapshot, a supplemented
// feature the distilled spec's "statistics" line item otherwise left
// unspecified.
type Stats struct {
	HDLCCRCErrors    int
	HDLCLengthErrors int
	HDLCFrames       int
	HDLCAborts       int

	NonECMInBits    int
	NonECMOutOctets int

	PagesConfirmed int
}

// Stats snapshots the gateway's current counters.
func (g *GatewayState) Stats() Stats {
	crcErrors, lengthErrors, frames, aborts := g.core.hdlcRX.Stats()
	inBits, outOctets := g.core.nonECMRX.Stats()
	return Stats{
		HDLCCRCErrors:    crcErrors,
		HDLCLengthErrors: lengthErrors,
		HDLCFrames:       frames,
		HDLCAborts:       aborts,
		NonECMInBits:     inBits,
		NonECMOutOctets:  outOctets,
		PagesConfirmed:   g.core.mode.PagesConfirmed,
	}
}
