package tcp

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/dep2p/peerconnd/pkg/lib/log"
)

var logger = log.Logger("core/transport/tcp")

// PollTimeout is the default wait(..., READ) budget of §4.2; the
// coordinator overrides it via config.TransportConfig.PollTimeout.
const PollTimeout = 250 * time.Millisecond

// rebindFailureSleep is how long the re-bind loop waits between bind
// attempts once it starts failing, checked once a second for shutdown.
const rebindFailureSleep = 60 * time.Second

// Listener owns one TCP listening socket (plain or TLS-wrapped) and
// drives the accept loop described in §4.2: poll with timeout, hand
// accepted sockets to a callback, and re-bind on socket-level errors.
type Listener struct {
	addr      string
	tlsConfig *tls.Config
	poll      time.Duration

	ln *net.TCPListener
}

// NewListener binds a TCP listener at addr ("host:port"). If tlsConfig
// is non-nil, accepted connections are TLS-wrapped as the server side
// before being handed to the accept callback.
func NewListener(addr string, tlsConfig *tls.Config, poll time.Duration) (*Listener, error) {
	if poll <= 0 {
		poll = PollTimeout
	}
	l := &Listener{addr: addr, tlsConfig: tlsConfig, poll: poll}
	if err := l.bind(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Listener) bind() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return errors.New("tcp: listener is not a *net.TCPListener")
	}
	l.ln = tcpLn
	return nil
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Secure reports whether accepted sockets are TLS-wrapped.
func (l *Listener) Secure() bool {
	return l.tlsConfig != nil
}

// Close closes the underlying listening socket.
func (l *Listener) Close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

// Run drives the accept loop until ctx is cancelled. Each accepted
// socket is passed to onAccept; onAccept must not block (the coordinator
// hands the raw socket straight to a new UserConnection and returns).
func (l *Listener) Run(ctx context.Context, onAccept func(Socket)) {
	failing := false

	for {
		if ctx.Err() != nil {
			return
		}

		_ = l.ln.SetDeadline(time.Now().Add(l.poll))
		conn, err := l.ln.AcceptTCP()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			// socket-level exception: enter the re-bind loop.
			if !l.rebind(ctx) {
				return
			}
			if failing {
				logger.Info("connectivity restored", "addr", l.addr)
				failing = false
			}
			continue
		}

		_ = conn.SetNoDelay(true)
		_ = conn.SetKeepAlive(true)

		if l.tlsConfig != nil {
			tlsConn := tls.Server(conn, l.tlsConfig)
			onAccept(wrapSecure(tlsConn))
		} else {
			onAccept(wrapPlain(conn))
		}
	}
}

// rebind closes and recreates the listening socket on the same address,
// sleeping (checking ctx every second) between failed attempts. Returns
// false if ctx was cancelled while retrying.
func (l *Listener) rebind(ctx context.Context) bool {
	_ = l.ln.Close()

	loggedError := false
	for {
		if ctx.Err() != nil {
			return false
		}
		if err := l.bind(); err == nil {
			if loggedError {
				logger.Info("connectivity restored", "addr", l.addr)
			}
			return true
		}
		if !loggedError {
			logger.Error("connectivity error", "addr", l.addr)
			loggedError = true
		}
		if !sleepOrDone(ctx, rebindFailureSleep) {
			return false
		}
	}
}

// sleepOrDone sleeps for d in 1s increments, returning false early if
// ctx is cancelled.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	elapsed := time.Duration(0)
	for elapsed < d {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			elapsed += time.Second
		}
	}
	return true
}
