package connmgr

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	coresecurity "github.com/dep2p/peerconnd/internal/core/security/tls"
	"github.com/dep2p/peerconnd/internal/core/transport/tcp"
	"github.com/dep2p/peerconnd/pkg/interfaces"
	"github.com/dep2p/peerconnd/pkg/lib/log"
	"github.com/dep2p/peerconnd/pkg/types"
)

var coordinatorLogger = log.Logger("core/connmgr")

// Coordinator is the connection manager's single point of control: it
// owns the download/upload queues, every live UserConnection, the two
// listeners, and the flood-guard counters (§1, §3, §4).
//
// cs guards downloads, uploads, userConnections, expected, floodCounter
// and iConnToMeCount. Dialing, DownloadManager.CheckIdle/StartAdmission
// and HubManager.RequestConnectTo/ResolveUser run without cs. These
// collaborator calls do run with cs held: QueueManager.PriorityFor and
// HubManager.NotifyConnectTimeout in the admission tick,
// HubManager.IsOperator/IsStealth in nmdcMyNick, and
// ClientManager.SetLastIP plus Download/UploadManager.HandOff when
// nmdcKey or adcInf assigns a UC its role.
type Coordinator struct {
	cs sync.Mutex

	cfg      Config
	clock    clock.Clock
	selfUser types.UserRef

	downloads       *cqiList
	uploads         *cqiList
	userConnections map[*UserConnection]struct{}
	expected        *expectedConnections

	floodCounter   time.Time
	iConnToMeCount uint16

	emitter eventEmitter
	metrics *coordinatorMetrics

	hub      interfaces.HubManager
	queue    interfaces.QueueManager
	download interfaces.DownloadManager
	upload   interfaces.UploadManager
	client   interfaces.ClientManager

	plainListener  *tcp.Listener
	secureListener *tcp.Listener
	tlsCert        *tls.Certificate

	shuttingDown bool
	cancel       context.CancelFunc
	eg           *errgroup.Group
}

// Deps bundles the external collaborators wired in at construction; all
// but EventBus may be nil in tests exercising a single code path.
type Deps struct {
	Bus      interfaces.EventBus
	Hub      interfaces.HubManager
	Queue    interfaces.QueueManager
	Download interfaces.DownloadManager
	Upload   interfaces.UploadManager
	Client   interfaces.ClientManager
	Clock    clock.Clock
}

// NewCoordinator builds a coordinator from cfg and deps; it does not
// bind listeners until Start is called.
func NewCoordinator(cfg Config, deps Deps) (*Coordinator, error) {
	cl := deps.Clock
	if cl == nil {
		cl = clock.New()
	}

	emitter := eventEmitter(newBusEmitter(deps.Bus))

	co := &Coordinator{
		cfg:             cfg,
		clock:           cl,
		selfUser:        types.UserRefFromNick(cfg.SelfNick, ""),
		userConnections: make(map[*UserConnection]struct{}),
		expected:        newExpectedConnections(),
		emitter:         emitter,
		metrics:         newCoordinatorMetrics(),
		hub:             deps.Hub,
		queue:           deps.Queue,
		download:        deps.Download,
		upload:          deps.Upload,
		client:          deps.Client,
	}
	co.downloads = newCQIList(emitter, eventAdded, eventRemoved)
	co.uploads = newCQIList(emitter, eventAdded, eventRemoved)
	co.floodCounter = cl.Now()

	if !cfg.AllowUntrustedClients {
		cert, err := coresecurity.GenerateSelfSignedCert(365 * 24 * time.Hour)
		if err != nil {
			return nil, fmt.Errorf("connmgr: generating self-signed certificate: %w", err)
		}
		co.tlsCert = cert
	}

	return co, nil
}

// Start binds the plain listener and, when a certificate was generated
// and TLSPort is non-zero, the secure listener, and launches the accept
// loops and periodic ticks.
func (co *Coordinator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	co.cancel = cancel

	eg, ctx := errgroup.WithContext(ctx)
	co.eg = eg

	plainAddr := net.JoinHostPort(co.cfg.BindAddress, strconv.Itoa(co.cfg.TCPPort))
	ln, err := tcp.NewListener(plainAddr, nil, co.cfg.PollTimeout)
	if err != nil {
		cancel()
		return fmt.Errorf("connmgr: binding plain listener: %w", err)
	}
	co.plainListener = ln

	if co.tlsCert != nil && co.cfg.TLSPort != 0 {
		tlsCfg :=&tls.Config{Certificates: []tls.Certificate{*co.tlsCert}, InsecureSkipVerify: true}
		secureAddr := net.JoinHostPort(co.cfg.BindAddress, strconv.Itoa(co.cfg.TLSPort))
		sln, err := tcp.NewListener(secureAddr, tlsCfg, co.cfg.PollTimeout)
		if err != nil {
			coordinatorLogger.Warn("secure listener bind failed, continuing plaintext-only", "err", err)
		} else {
			co.secureListener = sln
		}
	}

	co.eg.Go(func() error {
		co.plainListener.Run(ctx, co.onAccept)
		return nil
	})

	if co.secureListener != nil {
		co.eg.Go(func() error {
			co.secureListener.Run(ctx, co.onAccept)
			return nil
		})
	}

	co.eg.Go(func() error { co.admissionLoop(ctx); return nil })
	co.eg.Go(func() error { co.idleSweepLoop(ctx); return nil })

	return nil
}

// Shutdown implements §4.6's shutdown sequence: stop accepting, signal
// every live UC closed, and spin at shutdownSpinCadence until the last
// one has unwound.
func (co *Coordinator) Shutdown() {
	co.cs.Lock()
	co.shuttingDown = true
	co.cs.Unlock()

	if co.cancel != nil {
		co.cancel()
	}
	if co.plainListener != nil {
		_ = co.plainListener.Close()
	}
	if co.secureListener != nil {
		_ = co.secureListener.Close()
	}

	co.cs.Lock()
	for uc := range co.userConnections {
		_ = uc.Close()
	}
	co.cs.Unlock()

	for {
		co.cs.Lock()
		remaining := len(co.userConnections)
		co.cs.Unlock()
		if remaining == 0 {
			break
		}
		time.Sleep(shutdownSpinCadence)
	}

	if co.eg != nil {
		_ = co.eg.Wait()
	}
}

// onAccept is the listener callback (§4.2): apply the inbound flood
// guard, then hand the socket to a fresh incoming UserConnection.
func (co *Coordinator) onAccept(sock tcp.Socket) {
	co.cs.Lock()
	if co.shuttingDown {
		co.cs.Unlock()
		_ = sock.Close()
		return
	}
	allowed := co.checkInboundFlood()
	if allowed {
		co.iConnToMeCount++
	}
	co.cs.Unlock()

	if !allowed {
		_ = sock.Close()
		return
	}

	uc := newUserConnection(sock, true)
	co.registerUC(uc)
}

// registerUC adds uc to userConnections and launches its I/O loop.
func (co *Coordinator) registerUC(uc *UserConnection) {
	co.cs.Lock()
	if co.shuttingDown {
		co.cs.Unlock()
		_ = uc.Close()
		return
	}
	co.userConnections[uc] = struct{}{}
	co.cs.Unlock()

	if co.eg != nil {
		co.eg.Go(func() error { co.readLoop(uc); return nil })
	} else {
		go co.readLoop(uc)
	}
}

// GetDownloadConnection implements §4.1/§4.4's idempotent entry point:
// ensure a WAITING or CONNECTING CQI exists for user, creating one if
// absent; if one already exists, nudge the download subsystem in case
// it has newly idle work.
func (co *Coordinator) GetDownloadConnection(user types.HintedUser, token string) {
	co.cs.Lock()
	cqi, exists := co.downloads.get(user.User)
	if exists {
		co.cs.Unlock()
		if co.download != nil {
			co.download.CheckIdle(user.User)
		}
		return
	}

	if token == "" {
		token = user.User.CID().String()
	}
	cqi = &ConnectionQueueItem{User: user, Token: token, Download: true, State: StateWaiting}
	co.downloads.insert(cqi)
	co.cs.Unlock()
}

// Force clears a sticky protocol-error sentinel and the backoff clock
// for a user's download CQI, so the next admission tick retries
// immediately (§7 "Protocol").
func (co *Coordinator) Force(user types.UserRef) {
	co.cs.Lock()
	defer co.cs.Unlock()

	cqi, ok := co.downloads.get(user)
	if !ok {
		return
	}
	cqi.Errors = 0
	cqi.LastAttempt = time.Time{}
	if cqi.State == StateNoDownloadSlots {
		cqi.State = StateWaiting
	}
}

// Disconnect removes a user's download and/or upload CQI and closes any
// associated UC (§4.4's inverse).
func (co *Coordinator) Disconnect(user types.UserRef, download, upload bool) {
	co.cs.Lock()
	defer co.cs.Unlock()

	if download {
		co.downloads.remove(user)
	}
	if upload {
		co.uploads.remove(user)
	}

	for uc := range co.userConnections {
		u, ok := uc.User()
		if !ok || !u.Equal(user) {
			continue
		}
		if download && uc.Flags.Has(FlagDownload) {
			co.removeUCLocked(uc)
		}
		if upload && uc.Flags.Has(FlagUpload) {
			co.removeUCLocked(uc)
		}
	}
}

// NMDCConnect implements §4.1's nmdcConnect: construct an outbound NMDC
// UC and dial it. natRole is carried through only for logging — NAT
// traversal strategy itself is out of scope (§1 Non-goals: "routing or
// hub protocol handling"). On immediate dial failure the UC is simply
// discarded; there is no CQI to update yet (association happens later,
// when the peer's MyNick/Lock exchange completes).
func (co *Coordinator) NMDCConnect(server string, port, localPort int, natRole, nick, hubURL, encoding string, stealth, secure bool, token string) {
	co.cs.Lock()
	if co.shuttingDown {
		co.cs.Unlock()
		return
	}
	addr := net.JoinHostPort(server, strconv.Itoa(port))
	allowed := co.checkOutboundIPFloodTarget(addr)
	co.cs.Unlock()
	if !allowed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var tlsCfg *tls.Config
	if secure && co.tlsCert != nil {
		tlsCfg = &tls.Config{InsecureSkipVerify: true}
	}

	sock, err := tcp.Dial(ctx, "tcp", addr, localPort, tlsCfg)
	if err != nil {
		coordinatorLogger.Debug("nmdc outbound connect failed", "addr", addr, "natRole", natRole, "err", err)
		return
	}

	uc := newUserConnection(sock, false)
	uc.Flags = uc.Flags.Set(FlagNMDC | FlagDownload)
	if stealth {
		uc.Flags = uc.Flags.Set(FlagStealth)
	}
	uc.Token = token
	uc.HubURL = hubURL
	uc.Encoding = encoding
	co.kickoffNMDC(uc, token, hubURL)
	co.registerUC(uc)
}

// ADCConnect implements §4.1's adcConnect: construct an outbound ADC UC
// and dial it, over TLS when secure is requested and a certificate is
// configured.
func (co *Coordinator) ADCConnect(onlineUser types.UserRef, server string, port, localPort int, natRole, token string, secure bool) {
	co.cs.Lock()
	if co.shuttingDown {
		co.cs.Unlock()
		return
	}
	addr := net.JoinHostPort(server, strconv.Itoa(port))
	allowed := co.checkOutboundIPFloodTarget(addr)
	co.cs.Unlock()
	if !allowed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var tlsCfg *tls.Config
	if secure && co.tlsCert != nil {
		tlsCfg = &tls.Config{InsecureSkipVerify: true}
	}

	sock, err := tcp.Dial(ctx, "tcp", addr, localPort, tlsCfg)
	if err != nil {
		coordinatorLogger.Debug("adc outbound connect failed", "addr", addr, "natRole", natRole, "user", onlineUser.CID().ShortString(), "err", err)
		return
	}

	uc := newUserConnection(sock, false)
	uc.Flags = uc.Flags.Set(FlagDownload)
	uc.Token = token
	co.kickoffADC(uc, token)
	co.registerUC(uc)
}

// checkOutboundIPFloodTarget splits addr and applies checkOutboundIPFlood.
// Caller holds cs.
func (co *Coordinator) checkOutboundIPFloodTarget(addr string) bool {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return co.checkOutboundIPFlood(host, port)
}

// admissionLoop is the 1 Hz tick of §4.1: walk the download CQIs, drop
// ones the queue has paused, retry ones whose backoff has elapsed and
// whom the download subsystem admits, and time out CONNECTING ones that
// never reached RUNNING.
func (co *Coordinator) admissionLoop(ctx context.Context) {
	ticker := co.clock.Ticker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			co.admissionTick()
		}
	}
}

func (co *Coordinator) admissionTick() {
	co.cs.Lock()
	co.syncQueueGauges()
	now := co.now()
	var toRetry []*ConnectionQueueItem
	var toDrop []types.UserRef

	for _, cqi := range co.downloads.all() {
		if co.queue != nil && co.queue.PriorityFor(cqi.User.User) == interfaces.QueuePriorityPaused {
			toDrop = append(toDrop, cqi.User.User)
			continue
		}
		switch cqi.State {
		case StateConnecting:
			if now.Sub(cqi.LastAttempt) > connectTimeout {
				cqi.State = StateWaiting
				cqi.Errors++
				cqi.LastAttempt = now
				if co.hub != nil {
					co.hub.NotifyConnectTimeout(cqi.User.User)
				}
			}
		case StateWaiting, StateNoDownloadSlots:
			if cqi.Errors == protocolErrorSentinel {
				continue
			}
			if !cqi.backoffDue(now) {
				continue
			}
			toRetry = append(toRetry, cqi)
		}
	}
	co.cs.Unlock()

	for _, user := range toDrop {
		co.Disconnect(user, true, false)
	}

	admitted := 0
	for _, cqi := range toRetry {
		if co.cfg.DownConnPerSec > 0 && admitted >= co.cfg.DownConnPerSec {
			break
		}
		priority := interfaces.QueuePriorityNormal
		if co.queue != nil {
			priority = co.queue.PriorityFor(cqi.User.User)
		}
		if co.download != nil && !co.download.StartAdmission(priority) {
			co.cs.Lock()
			cqi.State = StateNoDownloadSlots
			co.cs.Unlock()
			continue
		}
		admitted++

		co.cs.Lock()
		cqi.State = StateConnecting
		cqi.LastAttempt = co.now()
		co.cs.Unlock()

		if co.hub != nil {
			if err := co.hub.RequestConnectTo(cqi.User.User, cqi.Token); err != nil {
				co.cs.Lock()
				cqi.State = StateWaiting
				cqi.Errors++
				co.cs.Unlock()
			}
		}
	}
}

// idleSweepLoop is the 1-minute tick that disconnects UCs idle past
// inactivityTimeout (§4.3 "inactivity").
func (co *Coordinator) idleSweepLoop(ctx context.Context) {
	ticker := co.clock.Ticker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			co.idleSweepTick()
		}
	}
}

func (co *Coordinator) idleSweepTick() {
	now := co.now()

	co.cs.Lock()
	var stale []*UserConnection
	for uc := range co.userConnections {
		if uc.IdleSince(now) > inactivityTimeout {
			stale = append(stale, uc)
		}
	}
	for _, uc := range stale {
		co.removeUCLocked(uc)
	}
	co.cs.Unlock()
}
