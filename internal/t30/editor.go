package t30

// MaxNSXSuppression bounds how many payload bytes (beyond the 3-byte
// HDLC/T.30 header) an NSF/NSC/NSS suppression policy can overwrite.
const MaxNSXSuppression = 10

// Direction distinguishes which side of the gateway a frame is being
// edited on its way from, for the purposes of per-direction policy
// (NSX suppression length, corrupt-current-frame state).
type Direction int

const (
	FromModem Direction = iota
	FromPacket
)

// NSXPolicy configures suppression of a non-standard-facilities frame
// for one direction. A zero-value policy (PayloadBytes == 0) disables
// suppression: matching frames pass through untouched.
type NSXPolicy struct {
	// PayloadBytes is how many bytes after the 3-byte header get
	// overwritten, 0..MaxNSXSuppression-3.
	PayloadBytes int
	// Overwrite holds the replacement bytes; only the first
	// PayloadBytes entries are used. Left zero, this reproduces the
	// original gateway's {0xFF, 0, 0, ...} mangling pattern once
	// DefaultOverwrite is applied.
	Overwrite [MaxNSXSuppression]byte
}

// DefaultOverwrite is the classic mangling pattern: a non-zero first
// byte (so the frame is unambiguously corrupted) followed by zeros.
var DefaultOverwrite = [MaxNSXSuppression]byte{0xFF}

// Editor implements §4.6's MessageEditor: inline, byte-by-byte rewriting
// of DIS/DCS capability bits, and suppression of NSF/NSC/NSS frames.
// One Editor instance edits both directions, since the only per-direction
// state is the NSX policy and the "currently corrupting" flag.
type Editor struct {
	nsx     [2]NSXPolicy
	corrupt [2]bool
}

// NewEditor returns an Editor with NSX suppression disabled in both
// directions.
func NewEditor() *Editor {
	return &Editor{}
}

// SetNSXSuppression installs the suppression policy for one direction.
// An all-zero Overwrite pattern is filled in with DefaultOverwrite.
func (e *Editor) SetNSXSuppression(dir Direction, policy NSXPolicy) {
	if policy.Overwrite == ([MaxNSXSuppression]byte{}) {
		policy.Overwrite = DefaultOverwrite
	}
	e.nsx[dir] = policy
}

// ResetFrame clears the "corrupt current frame" flag for dir. The HDLC
// receiver calls this once per frame, at the flag/abort boundary, before
// any bytes of the next frame arrive (§3 invariant on per-frame reset).
func (e *Editor) ResetFrame(dir Direction) {
	e.corrupt[dir] = false
}

// EditByte is invoked after every newly received V.21 frame octet, both
// directions, mirroring edit_control_messages() in the original gateway.
// buf is the frame accumulated so far, including the byte that just
// arrived at buf[len(buf)-1]; EditByte may rewrite that trailing byte in
// place. It must be called after the octet has already been folded into
// the running CRC (§3 invariant 3): editing must never retroactively
// change a CRC value already computed over the unedited byte.
func (e *Editor) EditByte(dir Direction, buf []byte, supportedModems SupportMask, ecmAllowed bool) {
	length := len(buf)
	if length == 0 {
		return
	}

	if e.corrupt[dir] {
		policy := e.nsx[dir]
		if length <= policy.PayloadBytes+3 {
			buf[length-1] = overwriteByte(policy, length)
		}
		return
	}

	if length < 3 {
		return
	}
	fcf := FCF(buf[2])

	switch length {
	case 3:
		switch fcf {
		case FCF_NSF, FCF_NSC, FCF_NSS:
			if e.nsx[dir].PayloadBytes > 0 {
				e.corrupt[dir] = true
			}
		}

	case 5:
		if fcf == FCF_DIS {
			clampFastModemBits(buf, supportedModems)
		}

	case 7:
		if fcf == FCF_DIS && !ecmAllowed {
			buf[6] &= ^(DISBIT3 | DISBIT7)
		}
	}
}

func overwriteByte(policy NSXPolicy, length int) byte {
	idx := length - 4
	if idx < 0 || idx >= len(policy.Overwrite) {
		return 0
	}
	return policy.Overwrite[idx]
}

// clampFastModemBits masks DISBIT6/5/4/3 of byte 4 (the fast-modem
// advert) to the intersection with supportedModems, rewriting reserved
// combinations to V.27ter+V.29 (V.27ter alone when V.29 is unsupported).
func clampFastModemBits(buf []byte, supportedModems SupportMask) {
	nibble := buf[4] & (DISBIT6 | DISBIT5 | DISBIT4 | DISBIT3)
	switch nibble {
	case 0, DISBIT4:
		// V.27ter only; always supported.
	case DISBIT3, DISBIT4 | DISBIT3:
		if supportedModems&SupportV29 == 0 {
			buf[4] &^= DISBIT3
		}
	case DISBIT6 | DISBIT4 | DISBIT3:
		if supportedModems&SupportV17 == 0 {
			buf[4] &^= DISBIT6
		}
		if supportedModems&SupportV29 == 0 {
			buf[4] &^= DISBIT3
		}
	default:
		// Reserved/unused combinations collapse to V.27ter+V.29.
		buf[4] &^= DISBIT6 | DISBIT5
		buf[4] |= DISBIT4 | DISBIT3
		if supportedModems&SupportV29 == 0 {
			buf[4] &^= DISBIT3
		}
	}
}
