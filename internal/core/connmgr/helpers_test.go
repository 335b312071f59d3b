package connmgr

import (
	"net"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/peerconnd/internal/core/transport/tcp"
	"github.com/dep2p/peerconnd/pkg/interfaces"
	"github.com/dep2p/peerconnd/pkg/types"
)

// makeTestUserRef derives a stand-in UserRef from a nick, the same way
// an NMDC peer's identity is derived from (nick, hubURL).
func makeTestUserRef(nick string) types.UserRef {
	return types.UserRefFromNick(nick, "dchub://test-hub")
}

// noopEmitter discards every event published through it; used by tests
// that build a Coordinator without a real event bus wired in.
type noopEmitter struct{}

func (noopEmitter) Emit(event interface{}) error { return nil }
func (noopEmitter) Close() error                 { return nil }

// fakeBus is the minimal interfaces.EventBus a test Coordinator needs:
// every Emitter() call succeeds and hands back a discarding emitter.
type fakeBus struct{}

func (fakeBus) Subscribe(eventType interface{}, opts ...interfaces.SubscriptionOpt) (interfaces.Subscription, error) {
	return nil, nil
}

func (fakeBus) Emitter(eventType interface{}, opts ...interfaces.EmitterOpt) (interfaces.Emitter, error) {
	return noopEmitter{}, nil
}

func (fakeBus) GetAllEventTypes() []interface{} { return nil }

// testConfig returns a Config with every timing constant small enough
// for tests to not sleep for real wall-clock seconds/minutes.
func testConfig() Config {
	return Config{
		TCPPort:        41200,
		TLSPort:        41201,
		BindAddress:    "127.0.0.1",
		DownConnPerSec: 10,
	}
}

// newTestCoordinator builds a Coordinator wired to fakeBus and a
// controllable mock clock, without starting any listener.
func newTestCoordinator() (*Coordinator, *clock.Mock) {
	mockClock := clock.NewMock()
	co, err := NewCoordinator(testConfig(), Deps{Bus: fakeBus{}, Clock: mockClock})
	if err != nil {
		panic(err)
	}
	return co, mockClock
}

// fakeSocket wraps one end of a net.Pipe with a fixed fake remote
// address, so outbound-IP-flood and last-IP tests don't need a real
// listener.
type fakeSocket struct {
	net.Conn
	remote net.Addr
}

func newFakeSocketPair(remoteAddr string) (tcp.Socket, tcp.Socket) {
	a, b := net.Pipe()
	addr, _ := net.ResolveTCPAddr("tcp", remoteAddr)
	return &fakeSocket{Conn: a, remote: addr}, &fakeSocket{Conn: b, remote: addr}
}

func (s *fakeSocket) RemoteAddr() net.Addr       { return s.remote }
func (s *fakeSocket) Secure() bool               { return false }
func (s *fakeSocket) PeerCertificates() [][]byte { return nil }

// fakeHub is a minimal interfaces.HubManager stand-in: ResolveUser
// answers from a preloaded online-users table, everything else is a
// configurable no-op/default.
type fakeHub struct {
	online    map[string]types.UserRef // nick -> ref
	operators map[types.UserRef]bool
	stealth   map[types.UserRef]bool
	encoding  string
	keyprints map[types.UserRef]string

	connectRequests []types.UserRef
	connectErr      error
	timeouts        []types.UserRef
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		online:    make(map[string]types.UserRef),
		operators: make(map[types.UserRef]bool),
		stealth:   make(map[types.UserRef]bool),
		keyprints: make(map[types.UserRef]string),
	}
}

func (h *fakeHub) RequestConnectTo(user types.UserRef, token string) error {
	h.connectRequests = append(h.connectRequests, user)
	return h.connectErr
}

func (h *fakeHub) NotifyConnectTimeout(user types.UserRef) {
	h.timeouts = append(h.timeouts, user)
}

func (h *fakeHub) ResolveUser(nick, hubURL string) (types.UserRef, bool) {
	ref, ok := h.online[nick]
	return ref, ok
}

func (h *fakeHub) IsOperator(user types.UserRef) bool { return h.operators[user] }
func (h *fakeHub) IsStealth(user types.UserRef) bool  { return h.stealth[user] }
func (h *fakeHub) Encoding(hubURL string) string      { return h.encoding }
func (h *fakeHub) Keyprint(user types.UserRef) string { return h.keyprints[user] }

// fakeClient records the last (hubURL, nick, ip) triple passed to
// SetLastIP, so tests can assert the firstNick argument actually
// reaches the collaborator instead of the request token.
type fakeClient struct {
	hubURL, nick, ip string
	calls            int
}

func (f *fakeClient) SetLastIP(hubURL, nick, ip string) {
	f.hubURL, f.nick, f.ip = hubURL, nick, ip
	f.calls++
}

// fakeQueue is a minimal interfaces.QueueManager: every user defaults
// to Normal priority unless explicitly paused.
type fakeQueue struct {
	paused map[types.UserRef]bool
}

func newFakeQueue() *fakeQueue { return &fakeQueue{paused: make(map[types.UserRef]bool)} }

func (q *fakeQueue) PriorityFor(user types.UserRef) interfaces.QueuePriority {
	if q.paused[user] {
		return interfaces.QueuePriorityPaused
	}
	return interfaces.QueuePriorityNormal
}

func (q *fakeQueue) RemoveSourceAsPassive(user types.UserRef) {}

// fakeDownload is a minimal interfaces.DownloadManager: StartAdmission
// always admits unless admitDenied is set, and HandOff/CheckIdle calls
// are recorded for assertions.
type fakeDownload struct {
	admitDenied  bool
	handoffs     int
	lastUser     types.UserRef
	lastToken    string
	checkIdleLog []types.UserRef
}

func (f *fakeDownload) CheckIdle(user types.UserRef) {
	f.checkIdleLog = append(f.checkIdleLog, user)
}

func (f *fakeDownload) StartAdmission(priority interfaces.QueuePriority) bool {
	return !f.admitDenied
}

func (f *fakeDownload) HandOff(user types.UserRef, token string, conn any) {
	f.handoffs++
	f.lastUser = user
	f.lastToken = token
}
