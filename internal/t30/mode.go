package t30

// FastModem identifies which high-speed image modem is currently selected.
type FastModem int

const (
	FastModemNone FastModem = iota
	FastModemV17
	FastModemV27ter
	FastModemV29
)

func (m FastModem) String() string {
	switch m {
	case FastModemV17:
		return "V17"
	case FastModemV27ter:
		return "V27ter"
	case FastModemV29:
		return "V29"
	default:
		return "none"
	}
}

// SupportMask is a bitmask of which fast modems the gateway advertises,
// matching T30_SUPPORT_V17/V27TER/V29 in the original protocol stack.
type SupportMask int

const (
	SupportV27ter SupportMask = 1 << iota
	SupportV29
	SupportV17
)

// fastModemCandidates maps the DISBIT6|DISBIT5|DISBIT4|DISBIT3 nibble
// of a DCS/DTC byte 4 to a (bit rate, modem) pair, ordered fastest first.
// Only the mode controller's DCS handling uses it; the message editor
// clamps the DIS nibble with its own switch.
type fastModemCandidate struct {
	rate  int
	modem FastModem
	bits  byte
}

var fastModemTable = []fastModemCandidate{
	{14400, FastModemV17, DISBIT6},
	{12000, FastModemV17, DISBIT6 | DISBIT4},
	{9600, FastModemV17, DISBIT6 | DISBIT3},
	{9600, FastModemV29, DISBIT3},
	{7200, FastModemV17, DISBIT6 | DISBIT4 | DISBIT3},
	{7200, FastModemV29, DISBIT4 | DISBIT3},
	{4800, FastModemV27ter, DISBIT4},
	{2400, FastModemV27ter, 0},
}

// minimumScanLineTimesMs indexes by (byte5 & (DISBIT7|DISBIT6|DISBIT5))>>4.
var minimumScanLineTimesMs = [8]int{20, 5, 10, 0, 40, 0, 0, 0}

// State holds every variable in §3's "ModeController variables" list.
// It is owned by CoreState and mutated only from the single thread
// driving the gateway (§5).
type State struct {
	SupportedModems SupportMask

	FastModem   FastModem
	FastBitRate int

	ShortTrain    bool
	ECMMode       bool
	ECMAllowed    bool
	ImageDataMode bool
	MinRowBits    int

	// TCFModePredictableModemStart: 0 = not in TCF, 1 = timer armed
	// waiting to fire, 2 = armed to be set up on next V.21 carrier-down.
	TCFModePredictableModemStart int
	SamplesToTimeout             int

	PagesConfirmed int
	CountPageOnMCF bool
}

// NewState returns a freshly initialised ModeController state with the
// given supported-modem mask and ECM permission.
func NewState(supported SupportMask, ecmAllowed bool) *State {
	return &State{
		SupportedModems: supported,
		ECMAllowed:      ecmAllowed,
	}
}

// ResetForRetrain puts the negotiation-phase flags back to their
// TCF-pending defaults, per §3 Lifecycles: DCS/DTC (re-entering
// negotiation) and RTN/RTP (TCF retry) both do this.
func (s *State) ResetForRetrain() {
	s.ImageDataMode = false
	s.ShortTrain = false
}

// MarkShortTrainingProven is called by the HDLC receiver whenever any
// non-V.21 frame passes CRC: a successful high-speed frame is proof the
// short-training handshake works (§4.2 bullet 4).
func (s *State) MarkShortTrainingProven() {
	s.ShortTrain = true
}

// Observe implements §4.6's ModeController decision table. It is called
// once per complete, CRC-good V.21 frame. fromModemSide is true when the
// frame was decoded off the analogue (audio) side; false when it arrived
// already HDLC-framed from the packet side. CFR/DCS handling differs by
// direction.
func (s *State) Observe(frame []byte, fromModemSide bool) (restartRXModem bool) {
	if len(frame) < 3 {
		return false
	}
	fcf := FCF(frame[2])

	s.TCFModePredictableModemStart = 0

	switch {
	case matchesFCF(fcf, FCF_CFR):
		s.ImageDataMode = true
		s.ShortTrain = true
		if !fromModemSide {
			restartRXModem = true
		}

	case matchesFCF(fcf, FCF_RTN, FCF_RTP):
		s.ResetForRetrain()

	case matchesFCF(fcf, FCF_CTR):
		s.ShortTrain = false

	case matchesFCF(fcf, FCF_DTC, FCF_DCS):
		s.observeDCS(frame, fromModemSide)

	case matchesFCF(fcf, FCF_PPS):
		// PPS wraps a sub-command in byte 3; only arm page counting when
		// that sub-command is itself one of the post-page commands.
		if len(frame) >= 4 && IsPostPageCommand(FCF(frame[3])) {
			s.CountPageOnMCF = true
		}

	case matchesFCF(fcf, FCF_MCF):
		if s.CountPageOnMCF {
			s.PagesConfirmed++
			s.CountPageOnMCF = false
		}

	default:
		if IsPostPageCommand(fcf) {
			s.CountPageOnMCF = true
		}
	}

	return restartRXModem
}

func (s *State) observeDCS(frame []byte, fromModemSide bool) {
	if len(frame) >= 5 {
		nibble := frame[4] & (DISBIT6 | DISBIT5 | DISBIT4 | DISBIT3)
		for _, c := range fastModemTable {
			if c.bits == nibble {
				s.FastBitRate = c.rate
				s.FastModem = c.modem
				break
			}
		}
	}
	if len(frame) >= 6 {
		j := (frame[5] & (DISBIT7 | DISBIT6 | DISBIT5)) >> 4
		s.MinRowBits = s.FastBitRate * minimumScanLineTimesMs[j] / 1000
	}
	if len(frame) >= 7 {
		s.ECMMode = frame[6]&DISBIT3 != 0
	}

	s.ImageDataMode = false
	s.ShortTrain = false

	if fromModemSide {
		s.TCFModePredictableModemStart = 2
	}
}
