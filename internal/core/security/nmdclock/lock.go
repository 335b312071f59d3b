package nmdclock

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// extendedProtocolMarker prefixes a generated lock to advertise support
// for $Supports; peers that recognise it reply with their own
// $Supports before $Direction/$Key.
const extendedProtocolMarker = "EXTENDEDPROTOCOL"

// lockBodyLen is the number of random bytes appended after the marker.
const lockBodyLen = 16

// pkIdentifier is sent as the Pk= parameter alongside the lock.
const pkIdentifier = "peerconnd"

// GenerateLock returns a fresh (lock, pk) pair for an outbound or
// inbound $Lock line. lock always carries the extended-protocol marker
// since this implementation always advertises $Supports.
func GenerateLock() (lock, pk string) {
	buf := make([]byte, lockBodyLen)
	_, _ = rand.Read(buf)

	var b strings.Builder
	b.WriteString(extendedProtocolMarker)
	for _, c := range buf {
		// keep the body in the printable, non-escaped ASCII range the
		// wire format expects (0x21-0x7a, avoiding the $Key escape set).
		v := '!' + (c % 90)
		if escapedBytes[v] {
			v++
		}
		b.WriteByte(v)
	}
	return b.String(), pkIdentifier
}

// IsExtendedProtocol reports whether a peer's lock advertises the
// extended-protocol marker, per §4.3.1 ("if the lock encodes an
// extended protocol marker, send $Supports").
func IsExtendedProtocol(lock string) bool {
	return strings.HasPrefix(lock, extendedProtocolMarker)
}

// FormatLockLine renders the wire form of $Lock, optionally including
// Ref= when the lock is sent to identify the originating hub.
func FormatLockLine(lock, pk, hubURL string) string {
	if hubURL == "" {
		return fmt.Sprintf("$Lock %s Pk=%s", lock, pk)
	}
	return fmt.Sprintf("$Lock %s Pk=%sRef=%s", lock, pk, hubURL)
}
