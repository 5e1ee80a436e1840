// Package bitops holds the small bit-twiddling helpers shared by the HDLC
// and non-ECM bit paths: wire order on an HDLC link is LSB-first, while
// T.38 IFP fields carry octets MSB-first, so every boundary between the
// two needs a reversal.
package bitops

// reverseTable[b] is b with its bits reversed.
var reverseTable = func() [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		b := byte(i)
		var r byte
		for n := 0; n < 8; n++ {
			r <<= 1
			r |= b & 1
			b >>= 1
		}
		t[i] = r
	}
	return t
}()

// Reverse returns b with its bit order reversed.
func Reverse(b byte) byte {
	return reverseTable[b]
}

// ReverseBytes returns a new slice with every byte of in bit-reversed.
// It does not reverse the order of the bytes themselves.
func ReverseBytes(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = reverseTable[b]
	}
	return out
}

// ReverseBytesInto writes the bit-reversed form of in into dst, which must
// be at least len(in) bytes. It is used on the hot HDLC-receive path to
// avoid an allocation per emitted chunk.
func ReverseBytesInto(dst, in []byte) {
	for i, b := range in {
		dst[i] = reverseTable[b]
	}
}
