package connmgr

import (
	"time"

	"github.com/dep2p/peerconnd/pkg/types"
)

// addDownloadConnection implements §4.4: find the matching download CQI
// by UserRef; if it exists and is WAITING or CONNECTING, associate it;
// otherwise close the UC. Must be called with cs held. firstNick is the
// identifier persisted alongside the IP (§4.3.1's peer nick on NMDC; the
// CID's string form on ADC, which has no nickname concept).
func (co *Coordinator) addDownloadConnection(uc *UserConnection, user types.UserRef, firstNick string) {
	cqi, ok := co.downloads.get(user)
	if !ok || (cqi.State != StateWaiting && cqi.State != StateConnecting) {
		co.closeUCLocked(uc)
		return
	}

	cqi.State = StateActive
	uc.Flags = uc.Flags.Set(FlagAssociated)
	co.emitter.emit(eventStatusChanged, cqi)

	if co.cfg.EnableLastIP && co.client != nil {
		co.client.SetLastIP(cqi.User.HubURL, firstNick, uc.RemoteIP())
	}

	if co.download != nil {
		co.download.HandOff(user, uc.Token, uc.Socket)
	}
	co.metrics.downloadsAssociated.Inc()
}

// addUploadConnection implements §4.4: if no upload CQI exists for this
// user, create one in state ACTIVE (the only upload-CQI creation site);
// otherwise close the UC. Must be called with cs held.
func (co *Coordinator) addUploadConnection(uc *UserConnection, user types.HintedUser, firstNick string) {
	if _, ok := co.uploads.get(user.User); ok {
		co.closeUCLocked(uc)
		return
	}

	cqi := &ConnectionQueueItem{
		User:     user,
		Token:    uc.Token,
		Download: false,
		State:    StateActive,
	}
	co.uploads.insert(cqi)
	uc.Flags = uc.Flags.Set(FlagAssociated)

	if co.cfg.EnableLastIP && co.client != nil {
		co.client.SetLastIP(user.HubURL, firstNick, uc.RemoteIP())
	}

	if co.upload != nil {
		co.upload.HandOff(user.User, uc.Token, uc.Socket)
	}
	co.metrics.uploadsAssociated.Inc()
}

// handleFailure implements §4.6, triggered when a UC's I/O loop reports
// *Failed* or *ProtocolError*. Takes cs itself.
func (co *Coordinator) handleFailure(uc *UserConnection, kind FailureKind, reason string) {
	co.cs.Lock()
	defer co.cs.Unlock()

	user, hasUser := uc.User()

	if hasUser && uc.Flags.Has(FlagAssociated|FlagDownload) {
		if cqi, ok := co.downloads.get(user); ok {
			cqi.State = StateWaiting
			cqi.LastAttempt = co.now()
			if kind == FailureProtocol {
				cqi.Errors = protocolErrorSentinel
			} else {
				cqi.Errors++
			}
			co.emitter.emitFailed(cqi, reason)
		}
	} else if hasUser && uc.Flags.Has(FlagAssociated|FlagUpload) {
		co.uploads.remove(user)
	}

	co.removeUCLocked(uc)
	co.metrics.failures.Inc()
}

// closeUCLocked closes and removes a UC; caller already holds cs.
func (co *Coordinator) closeUCLocked(uc *UserConnection) {
	co.removeUCLocked(uc)
}

// removeUCLocked removes uc from userConnections and closes its socket.
// Caller already holds cs.
func (co *Coordinator) removeUCLocked(uc *UserConnection) {
	delete(co.userConnections, uc)
	_ = uc.Close()
}

func (co *Coordinator) now() time.Time {
	return co.clock.Now()
}
