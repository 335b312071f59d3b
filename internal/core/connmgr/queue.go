package connmgr

import (
	"sync"
	"time"

	"github.com/dep2p/peerconnd/pkg/types"
)

// protocolErrorSentinel is the "sticky protocol error" value for
// CQI.Errors (§3): it suppresses all automatic retries until force().
const protocolErrorSentinel = -1

// ConnectionQueueItem is the pending/active record of the manager's
// desire to talk to a user in a given direction (§3).
type ConnectionQueueItem struct {
	User       types.HintedUser
	Token      string
	Download   bool
	State      CQIState
	LastAttempt time.Time // zero value == "never"
	Errors     int
}

// backoffDue reports whether enough time has elapsed since LastAttempt
// for another attempt, per §8: 60 * max(1, errors) seconds.
func (c *ConnectionQueueItem) backoffDue(now time.Time) bool {
	if c.LastAttempt.IsZero() {
		return true
	}
	mult := c.Errors
	if mult < 1 {
		mult = 1
	}
	return !now.Before(c.LastAttempt.Add(time.Duration(mult) * backoffUnit))
}

// cqiList is one of the two tables (downloads, uploads), keyed by
// UserRef with no defined order: at most one CQI per UserRef,
// insert-once/remove-once, firing Added/Removed.
type cqiList struct {
	mu      sync.Mutex // not locked by any method; callers serialise through the coordinator's cs
	items   map[types.UserRef]*ConnectionQueueItem
	emitter eventEmitter
	added   eventKind
	removed eventKind
}

func newCQIList(emitter eventEmitter, added, removed eventKind) *cqiList {
	return &cqiList{
		items:   make(map[types.UserRef]*ConnectionQueueItem),
		emitter: emitter,
		added:   added,
		removed: removed,
	}
}

// get returns the CQI for a user, if any.
func (l *cqiList) get(user types.UserRef) (*ConnectionQueueItem, bool) {
	c, ok := l.items[user]
	return c, ok
}

// insert adds a new CQI; the caller must have checked none exists yet.
// Fires Added.
func (l *cqiList) insert(c *ConnectionQueueItem) {
	l.items[c.User.User] = c
	l.emitter.emit(l.added, c)
}

// remove deletes the CQI for a user, if present, firing Removed. A CQI
// is removed exactly once (§3); a second call is a no-op.
func (l *cqiList) remove(user types.UserRef) {
	c, ok := l.items[user]
	if !ok {
		return
	}
	delete(l.items, user)
	l.emitter.emit(l.removed, c)
}

// all returns a snapshot slice of the current CQIs, safe to range over
// after the coordinator lock is released.
func (l *cqiList) all() []*ConnectionQueueItem {
	out := make([]*ConnectionQueueItem, 0, len(l.items))
	for _, c := range l.items {
		out = append(out, c)
	}
	return out
}

func (l *cqiList) len() int {
	return len(l.items)
}
