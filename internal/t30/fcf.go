// Package t30 implements the slice of ITU-T T.30 signalling understanding
// the gateway core needs: enough to classify a received HDLC frame by its
// Facsimile Control Field (FCF), rewrite the capability bits the gateway
// cannot honestly proxy, and track which modem/ECM mode the two ends have
// agreed on. It does not implement T.30 call control itself — no timers,
// no retries; that is the job of the T.30 stacks running on either side
// of the gateway, which the core simply observes in passing.
package t30

// FCF is the Facsimile Control Field, the frame-type byte found at offset
// 2 of every HDLC-framed T.30 control frame.
type FCF byte

const (
	FCF_DIS FCF = 0x01 // Digital Identification Signal
	FCF_CSI FCF = 0x02
	FCF_NSF FCF = 0x04 // Non-Standard Facilities
	FCF_CIG FCF = 0x06
	FCF_NSC FCF = 0x08 // Non-Standard Facilities Command
	FCF_PWD FCF = 0x0A
	FCF_SEP FCF = 0x0C
	FCF_PSA FCF = 0x0E
	FCF_CIA FCF = 0x10
	FCF_ISP FCF = 0x12
	FCF_DTC FCF = 0x81 // Digital Transmit Command
	FCF_CSA FCF = 0x82
	FCF_NSS FCF = 0x84 // Non-Standard Facilities Set-up
	FCF_CIG2 FCF = 0x86
	FCF_PWD2 FCF = 0x8A
	FCF_SEP2 FCF = 0x8C
	FCF_PSA2 FCF = 0x8E
	FCF_CIA2 FCF = 0x90
	FCF_ISP2 FCF = 0x92
	FCF_DCS  FCF = 0x41 // Digital Command Signal
	FCF_TSI  FCF = 0x42
	FCF_CFR  FCF = 0x21 // Confirmation to Receive
	FCF_FTT  FCF = 0x22 // Failure To Train
	FCF_CTS  FCF = 0x23
	FCF_EOM  FCF = 0x2F // End Of Message
	FCF_MPS  FCF = 0x2D // Multi-Page Signal
	FCF_EOP  FCF = 0x2C // End Of Procedure
	FCF_PRI_EOM FCF = 0x6F
	FCF_PRI_MPS FCF = 0x6D
	FCF_PRI_EOP FCF = 0x6C
	FCF_EOS  FCF = 0x28 // End Of Selection
	FCF_PPS  FCF = 0x7D // Partial Page Signal
	FCF_MCF  FCF = 0x31 // Message Confirmation
	FCF_RTP  FCF = 0x33 // Retrain Positive
	FCF_RTN  FCF = 0x32 // Retrain Negative
	FCF_PIP  FCF = 0x35
	FCF_PIN  FCF = 0x36
	FCF_CTC  FCF = 0x39 // Continue To Correct
	FCF_CTR  FCF = 0x3A // Response for Continue To Correct
	FCF_PPR  FCF = 0x3D
	FCF_DCN  FCF = 0x3F // Disconnect
	FCF_CRP  FCF = 0x38
	FCF_FCD  FCF = 0x60
	FCF_RCP  FCF = 0x61
)

// DIS/DCS bit masks, byte 4 (fast-modem advert) and byte 6 (ECM/T.6).
const (
	DISBIT1 byte = 0x01
	DISBIT2 byte = 0x02
	DISBIT3 byte = 0x04
	DISBIT4 byte = 0x08
	DISBIT5 byte = 0x10
	DISBIT6 byte = 0x20
	DISBIT7 byte = 0x40
	DISBIT8 byte = 0x80
)

// matchesFCF reports whether fcf equals any of want once the final-frame
// bit (bit 0, set on some commands to mark the last frame of a multi-frame
// exchange) is masked off, so e.g. a DCS sent with that bit set is still
// recognised as DCS.
func matchesFCF(fcf FCF, want ...FCF) bool {
	masked := fcf &^ 1
	for _, w := range want {
		if masked == w&^1 {
			return true
		}
	}
	return false
}

// IsPostPageCommand reports whether fcf is one of the post-page commands
// (MPS/EOM/EOP/EOS, including the "priority" variants) that arms page
// counting on the next MCF. Used both directly on a top-level FCF and on
// the sub-command byte wrapped inside a PPS frame.
func IsPostPageCommand(fcf FCF) bool {
	return matchesFCF(fcf, FCF_MPS, FCF_EOM, FCF_EOP, FCF_EOS,
		FCF_PRI_MPS, FCF_PRI_EOM, FCF_PRI_EOP)
}
