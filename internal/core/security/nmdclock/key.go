package nmdclock

import (
	"fmt"
	"strings"
)

// escapedBytes are the raw byte values that cannot appear literally in
// a $Key line and must be escaped as "/%DCNddd%/" (ddd: the byte's
// three-digit decimal value).
var escapedBytes = map[byte]bool{0: true, 5: true, 36: true, 96: true, 124: true, 126: true}

// MakeKey computes the $Key value for a received lock, per the legacy
// NMDC lock/key challenge: a running XOR against the previous byte,
// nibble-swapped, with the first byte folded against the last, then
// escaped for the small set of bytes the wire format can't carry raw.
func MakeKey(lock string) string {
	if lock == "" {
		return ""
	}

	raw := []byte(lock)
	n := len(raw)
	out := make([]byte, n)

	out[0] = nibbleSwap(raw[0] ^ 5)
	for i := 1; i < n; i++ {
		out[i] = nibbleSwap(raw[i] ^ raw[i-1])
	}
	out[0] = out[0] ^ out[n-1]

	var b strings.Builder
	for _, v := range out {
		if escapedBytes[v] {
			fmt.Fprintf(&b, "/%%DCN%03d%%/", v)
		} else {
			b.WriteByte(v)
		}
	}
	return b.String()
}

func nibbleSwap(v byte) byte {
	return (v >> 4) | (v << 4)
}
