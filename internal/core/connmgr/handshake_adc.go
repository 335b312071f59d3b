package connmgr

import (
	coresecurity "github.com/dep2p/peerconnd/internal/core/security/tls"
	"github.com/dep2p/peerconnd/pkg/types"
)

// kickoffADC sends the outbound initiator's opening pair (§4.3): our
// CSUP feature list, then a success CSTA acknowledging the socket, and
// moves to SUPNICK to await the peer's own CSUP.
func (co *Coordinator) kickoffADC(uc *UserConnection, token string) {
	co.writeLine(uc, formatSup(adcFeatureList(co.cfg.CompressTransfers)), false)
	co.writeLine(uc, formatSta(severitySuccess, codeGeneric, "connected"), false)
	uc.State = StateSupNick
}

// handleADCLine dispatches one ADC wire line by the UC's current state
// (§4.3.2).
func (co *Coordinator) handleADCLine(uc *UserConnection, line string) error {
	switch uc.State {
	case StateSupNick:
		return co.adcSup(uc, line)
	case StateInf:
		return co.adcInf(uc, line)
	default:
		return protoErr("unexpected adc line in state " + uc.State.String())
	}
}

// adcSup implements the SUP(params) transition.
func (co *Coordinator) adcSup(uc *UserConnection, line string) error {
	feats, ok := parseSup(line)
	if !ok {
		return protoErr("malformed CSUP")
	}

	var baseOk, tigrOk bool
	for _, f := range feats {
		switch f {
		case adcFeatBASE:
			baseOk = true
		case adcFeatBAS0:
			baseOk = true
			tigrOk = true
		case adcFeatTIGR:
			tigrOk = true
		case adcFeatBZIP:
			uc.Flags = uc.Flags.Set(FlagSupportsXMLBZList)
		case adcFeatZlibGet:
			uc.Flags = uc.Flags.Set(FlagSupportsZlibGet)
		}
	}
	_ = tigrOk // tracked per §4.3.2 but not independently gating; BASE/BAS0 is sufficient

	if !baseOk {
		co.writeLine(uc, formatSta(severityFatal, codeProtocolGeneric, "Invalid SUP"), false)
		return protoErr("adc sup: missing BASE/BAS0")
	}
	uc.Flags = uc.Flags.Set(FlagSupportsADCGet | FlagSupportsMiniSlots | FlagSupportsTTHF | FlagSupportsTTHL | FlagSupportsXMLBZList)

	includeToken := !uc.Flags.Has(FlagIncoming)
	if uc.Flags.Has(FlagIncoming) {
		co.writeLine(uc, formatSup(adcFeatureList(co.cfg.CompressTransfers)), false)
	}
	selfCID := co.selfUser.CID().String()
	token := ""
	if includeToken {
		token = uc.Token
	}
	co.writeLine(uc, formatInf(selfCID, includeToken, token), false)

	uc.State = StateInf
	return nil
}

// adcInf implements the INF(cmd) transition.
func (co *Coordinator) adcInf(uc *UserConnection, line string) error {
	inf, ok := parseInf(line)
	if !ok || inf.ID == "" {
		co.writeLine(uc, formatSta(severityFatal, codeInfMissing, "ID missing", "FL=ID"), false)
		return protoErr("adc inf: missing ID")
	}

	cid, err := types.ParseCID(inf.ID)
	if err != nil {
		co.writeLine(uc, formatSta(severityFatal, codeGeneric, "User not found"), false)
		return protoErr("adc inf: unparseable cid")
	}
	user := types.NewUserRef(cid)

	if uc.Secure && co.tlsCert != nil {
		kp, err := coresecurity.LeafDigest(uc.Socket.PeerCertificates())
		if err == nil {
			advertised := ""
			if co.hub != nil {
				advertised = co.hub.Keyprint(user)
			}
			if !coresecurity.CheckKeyprint(kp, advertised) {
				return protoErr("adc inf: keyprint mismatch")
			}
		}
	}

	if uc.Flags.Has(FlagIncoming) {
		if inf.Token == "" {
			co.writeLine(uc, formatSta(severityFatal, codeGeneric, "TO missing"), false)
			return protoErr("adc inf: missing TO on incoming")
		}
		uc.Token = inf.Token
	}

	co.cs.Lock()
	defer co.cs.Unlock()

	if cqi, exists := co.downloads.get(user); exists {
		matches := cqi.Token == uc.Token || !uc.Flags.Has(FlagIncoming)
		if matches {
			cqi.Errors = 0
			uc.SetUser(user)
			uc.Flags = uc.Flags.Set(FlagDownload)
			co.addDownloadConnection(uc, user, cid.String())
			uc.State = StateRunning
			return nil
		}
	}

	uc.SetUser(user)
	uc.Flags = uc.Flags.Set(FlagUpload)
	co.addUploadConnection(uc, types.HintedUser{User: user, HubURL: uc.HubURL}, cid.String())
	uc.State = StateRunning
	return nil
}
