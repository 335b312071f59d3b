package connmgr

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/dep2p/peerconnd/internal/core/transport/tcp"
	"github.com/dep2p/peerconnd/pkg/types"
)

// UserConnection is a single TCP endpoint, owning its socket, role/
// capability flags, handshake state, last-activity timestamp, and its
// identifying token/hubURL/UserRef (§3).
type UserConnection struct {
	mu sync.Mutex

	Socket tcp.Socket
	Secure bool

	hasUser bool
	user    types.UserRef
	Token   string
	HubURL  string
	Encoding string

	Flags UCFlags
	State UCState

	lastActivity time.Time
	Number       uint32 // uniform random, used only for NMDC direction tie-break

	nick string // peer's $MyNick, set once known

	closeOnce sync.Once
	closed    chan struct{}
}

// newUserConnection wraps an accepted or dialed socket into a fresh UC.
// incoming sets FLAG_INCOMING and starts at SUPNICK; outbound UCs start
// at CONNECT (§4.3).
func newUserConnection(sock tcp.Socket, incoming bool) *UserConnection {
	uc := &UserConnection{
		Socket:       sock,
		Secure:       sock.Secure(),
		lastActivity: time.Now(),
		Number:       randomNumber(),
		closed:       make(chan struct{}),
	}
	if incoming {
		uc.Flags = uc.Flags.Set(FlagIncoming)
		uc.State = StateSupNick
	} else {
		uc.State = StateConnect
	}
	return uc
}

func randomNumber() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:]) % 32768
}

// User returns the attached UserRef, if any.
func (uc *UserConnection) User() (types.UserRef, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.user, uc.hasUser
}

// SetUser attaches a UserRef to the connection (set once the handshake
// resolves who the peer is).
func (uc *UserConnection) SetUser(u types.UserRef) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.user = u
	uc.hasUser = true
}

// Touch records I/O activity, restarting the inactivityTimeout window
// checked by the 1-minute idle sweep.
func (uc *UserConnection) Touch() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.lastActivity = time.Now()
}

// IdleSince reports how long it has been since the last recorded
// activity.
func (uc *UserConnection) IdleSince(now time.Time) time.Duration {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return now.Sub(uc.lastActivity)
}

// Close closes the underlying socket exactly once and signals Done().
func (uc *UserConnection) Close() error {
	var err error
	uc.closeOnce.Do(func() {
		err = uc.Socket.Close()
		close(uc.closed)
	})
	return err
}

// Done returns a channel closed once the UC has been closed.
func (uc *UserConnection) Done() <-chan struct{} {
	return uc.closed
}

// RemoteIP returns the peer's IP address as a string, or "" if
// unavailable.
func (uc *UserConnection) RemoteIP() string {
	addr := uc.Socket.RemoteAddr()
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
