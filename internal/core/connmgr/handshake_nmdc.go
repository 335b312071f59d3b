package connmgr

import (
	"github.com/dep2p/peerconnd/internal/core/security/nmdclock"
	"github.com/dep2p/peerconnd/pkg/types"
)

// kickoffNMDC sends the outbound initiator's opening pair (§4.3): our
// own token as $MyNick (so the passive peer can resolve us via its
// ExpectedConnections table, keyed by what we asked the hub to expect)
// followed by our $Lock, then moves to SUPNICK to await the peer's own
// MyNick/Lock.
func (co *Coordinator) kickoffNMDC(uc *UserConnection, token, hubURL string) {
	lock, pk := nmdclock.GenerateLock()
	co.writeLine(uc, formatMyNick(token), true)
	co.writeLine(uc, nmdclock.FormatLockLine(lock, pk, hubURL), true)
	uc.State = StateSupNick
}

// handleNMDCLine dispatches one NMDC wire line by the UC's current
// state (§4.3.1).
func (co *Coordinator) handleNMDCLine(uc *UserConnection, line string) error {
	switch uc.State {
	case StateSupNick:
		return co.nmdcMyNick(uc, line)
	case StateLock:
		return co.nmdcLock(uc, line)
	case StateDirection:
		return co.nmdcDirection(uc, line)
	case StateKey:
		return co.nmdcKey(uc, line)
	default:
		return protoErr("unexpected nmdc line in state " + uc.State.String())
	}
}

// nmdcMyNick implements the MyNick(aNick) transition.
func (co *Coordinator) nmdcMyNick(uc *UserConnection, line string) error {
	nick, ok := parseMyNick(line)
	if !ok {
		return protoErr("malformed $MyNick")
	}
	uc.nick = nick

	var hubURL, encoding string
	var token string

	if uc.Flags.Has(FlagIncoming) {
		token, hubURL = co.expected.remove(nick)
		if token == "" && hubURL == "" {
			return protoErr("mynick: no expected connection for " + nick)
		}
		if co.hub != nil {
			encoding = co.hub.Encoding(hubURL)
		}
		uc.Token = token
		uc.HubURL = hubURL
		uc.Encoding = encoding
	} else {
		hubURL = uc.HubURL
		encoding = uc.Encoding
	}

	peer := types.UserRefFromNick(nick, hubURL)

	co.cs.Lock()
	if cqi, exists := co.downloads.get(peer); exists && (cqi.State == StateConnecting || cqi.State == StateWaiting) {
		cqi.Errors = 0
		uc.SetUser(peer)
		uc.Flags = uc.Flags.Set(FlagDownload)
	} else {
		co.cs.Unlock()
		ref, online := types.UserRef{}, false
		if co.hub != nil {
			ref, online = co.hub.ResolveUser(nick, hubURL)
		}
		if !online {
			return protoErr("mynick: user offline: " + nick)
		}
		co.cs.Lock()
		uc.SetUser(ref)
		uc.Flags = uc.Flags.Set(FlagUpload)
	}

	if co.hub != nil {
		if co.hub.IsOperator(peer) {
			uc.Flags = uc.Flags.Set(FlagOp)
		}
		if co.hub.IsStealth(peer) {
			uc.Flags = uc.Flags.Set(FlagStealth)
		}
	}
	co.cs.Unlock()

	if uc.Flags.Has(FlagIncoming) {
		lock, pk := nmdclock.GenerateLock()
		co.writeLine(uc, formatMyNick(uc.Token), true)
		co.writeLine(uc, nmdclock.FormatLockLine(lock, pk, ""), true)
	}

	uc.State = StateLock
	return nil
}

// nmdcLock implements the Lock(aLock, aPk) transition.
func (co *Coordinator) nmdcLock(uc *UserConnection, line string) error {
	lock, _, _, ok := parseLock(line)
	if !ok {
		return protoErr("malformed $Lock")
	}

	if nmdclock.IsExtendedProtocol(lock) {
		co.writeLine(uc, formatSupports(nmdcFeatureList(co.cfg.CompressTransfers)), true)
	}

	dir := directionUpload
	if uc.Flags.Has(FlagDownload) {
		dir = directionDownload
	}
	co.writeLine(uc, formatDirection(dir, int(uc.Number)), true)
	co.writeLine(uc, formatKey(nmdclock.MakeKey(lock)), true)

	uc.State = StateDirection
	return nil
}

// nmdcDirection implements the Direction(dir, num) tie-break of §4.3.1.
func (co *Coordinator) nmdcDirection(uc *UserConnection, line string) error {
	dir, num, ok := parseDirection(line)
	if !ok {
		return protoErr("malformed $Direction")
	}

	switch dir {
	case directionUpload:
		if uc.Flags.Has(FlagUpload) {
			return protoErr("direction conflict: both want to upload")
		}
	case directionDownload:
		if uc.Flags.Has(FlagDownload) {
			switch {
			case num == int(uc.Number):
				return protoErr("direction conflict: equal tie-break numbers")
			case num > int(uc.Number):
				uc.Flags = uc.Flags.Clear(FlagDownload).Set(FlagUpload)
			}
		}
	default:
		return protoErr("unrecognised $Direction value")
	}

	uc.State = StateKey
	return nil
}

// nmdcKey implements the Key(_) transition: dispatch by role.
func (co *Coordinator) nmdcKey(uc *UserConnection, line string) error {
	if _, ok := parseKey(line); !ok {
		return protoErr("malformed $Key")
	}

	user, hasUser := uc.User()
	if !hasUser {
		return protoErr("key received with no associated user")
	}

	co.cs.Lock()
	defer co.cs.Unlock()

	if uc.Flags.Has(FlagDownload) {
		co.addDownloadConnection(uc, user, uc.nick)
	} else {
		co.addUploadConnection(uc, types.HintedUser{User: user, HubURL: uc.HubURL}, uc.nick)
	}
	uc.State = StateRunning
	return nil
}
