package interfaces

import "github.com/dep2p/peerconnd/pkg/types"

// This file narrows the external collaborators of the connection
// manager (§1: "out of scope — external collaborators") down to the
// exact calls the coordinator makes into them. None of these are
// implemented in this module; production wiring supplies concrete
// adapters over the hub protocol, the transfer queue and the
// download/upload subsystems.

// QueuePriority is the transfer-queue priority returned for a user,
// consumed only to gate admission — §1 excludes "queue prioritisation
// logic beyond consuming a priority from the queue".
type QueuePriority int

const (
	// QueuePriorityNormal is any priority that does not pause the item.
	QueuePriorityNormal QueuePriority = iota
	// QueuePriorityPaused means the download is paused; the coordinator
	// drops the corresponding CQI on its next tick.
	QueuePriorityPaused
)

// QueueManager is the hub-external queue/transfer-priority collaborator.
type QueueManager interface {
	// PriorityFor returns the current queue priority for a user's
	// pending download.
	PriorityFor(user types.UserRef) QueuePriority

	// RemoveSourceAsPassive is the §9 open-question hook: told a user is
	// passive-mode and cannot accept outbound connects. The trigger
	// condition is left to the hub side; the coordinator never calls it.
	RemoveSourceAsPassive(user types.UserRef)
}

// DownloadManager is the subsystem a completed download UC is handed to.
type DownloadManager interface {
	// CheckIdle asks the download subsystem to recheck whether it has
	// idle work for a user — called from getDownloadConnection when a
	// CQI for that user already exists.
	CheckIdle(user types.UserRef)

	// StartAdmission asks whether a new download connection may start
	// for the given priority. Must be non-blocking (§5).
	StartAdmission(priority QueuePriority) bool

	// HandOff transfers ownership of a fully handshaken download socket
	// to the download subsystem.
	HandOff(user types.UserRef, token string, conn any)
}

// UploadManager is the subsystem a completed upload UC is handed to.
type UploadManager interface {
	// HandOff transfers ownership of a fully handshaken upload socket
	// to the upload subsystem.
	HandOff(user types.UserRef, token string, conn any)
}

// HubManager brokers hub-mediated connect requests and resolves users.
type HubManager interface {
	// RequestConnectTo asks the hub to tell the given user to connect
	// back to us, carrying token as the correlation value.
	RequestConnectTo(user types.UserRef, token string) error

	// NotifyConnectTimeout tells the hub a previously requested connect
	// never arrived.
	NotifyConnectTimeout(user types.UserRef)

	// ResolveUser looks up a user by nick on a given hub, returning
	// whether they are online and any associated CID.
	ResolveUser(nick, hubURL string) (ref types.UserRef, online bool)

	// IsOperator reports whether the hub considers this user an operator.
	IsOperator(user types.UserRef) bool

	// IsStealth reports the hub's stealth-mode setting for this user.
	IsStealth(user types.UserRef) bool

	// Encoding returns the wire encoding configured for a given hub URL.
	Encoding(hubURL string) string

	// Keyprint returns the "SHA256/<base32>" string the hub advertises
	// for this user's TLS certificate, or "" if the hub has none on
	// file — both are valid per §4.5's pass-on-empty rule.
	Keyprint(user types.UserRef) string
}

// ClientManager persists per-user last-known-IP information, gated by
// config.ConnManagerConfig.EnableLastIP.
type ClientManager interface {
	// SetLastIP records a user's last-seen IP for a given hub/nick.
	SetLastIP(hubURL, nick, ip string)
}
