package connmgr

import (
	"fmt"
	"strconv"
	"strings"
)

// ADC feature tokens carried by CSUP (§6).
const (
	adcFeatBAS0    = "BAS0"
	adcFeatBASE    = "BASE"
	adcFeatTIGR    = "TIGR"
	adcFeatBZIP    = "BZIP"
	adcFeatZlibGet = "ZLIB-GET"
)

// adcSeverity is CSTA's severity class.
type adcSeverity int

const (
	severitySuccess     adcSeverity = 0
	severityRecoverable adcSeverity = 1
	severityFatal       adcSeverity = 2
)

// Error codes this core emits on CSTA (§6). The wire format only fixes
// the severity digit; the two-digit code space is implementation-
// defined, spec.md names these three by symbol only.
const (
	codeGeneric         = 0
	codeProtocolGeneric = 40
	codeInfMissing      = 53
)

// parseSup extracts the AD<feat> tokens from "CSUP AD<feat>...".
func parseSup(line string) (feats []string, ok bool) {
	const prefix = "CSUP "
	if !strings.HasPrefix(line, prefix) {
		return nil, false
	}
	for _, tok := range strings.Fields(line[len(prefix):]) {
		if strings.HasPrefix(tok, "AD") {
			feats = append(feats, tok[2:])
		} else if strings.HasPrefix(tok, "RM") {
			// feature removal, not used by this core but tolerated
			continue
		}
	}
	return feats, true
}

// formatSup renders "CSUP AD<feat> AD<feat> ...".
func formatSup(feats []string) string {
	toks := make([]string, len(feats))
	for i, f := range feats {
		toks[i] = "AD" + f
	}
	return "CSUP " + strings.Join(toks, " ")
}

// adcInf is the parsed form of a CINF line: only the two fields this
// core inspects (§4.3.2).
type adcInf struct {
	ID    string // base32 CID, from "ID<cid>"
	Token string // from "TO<token>", empty if absent
}

// parseInf extracts ID and TO from "CINF ID<base32 cid> [TO<token>]".
func parseInf(line string) (inf adcInf, ok bool) {
	const prefix = "CINF"
	if !strings.HasPrefix(line, prefix) {
		return adcInf{}, false
	}
	rest := strings.TrimSpace(line[len(prefix):])
	for _, tok := range strings.Fields(rest) {
		switch {
		case strings.HasPrefix(tok, "ID"):
			inf.ID = tok[2:]
		case strings.HasPrefix(tok, "TO"):
			inf.Token = tok[2:]
		}
	}
	return inf, true
}

// formatInf renders "CINF ID<cid> [TO<token>]".
func formatInf(cid string, incoming bool, token string) string {
	var b strings.Builder
	b.WriteString("CINF ID")
	b.WriteString(cid)
	if token != "" {
		b.WriteString(" TO")
		b.WriteString(token)
	}
	return b.String()
}

// formatSta renders "CSTA <severity><code> <message> [PARAM...]".
func formatSta(sev adcSeverity, code int, message string, params ...string) string {
	out := fmt.Sprintf("CSTA %d%02d %s", sev, code, message)
	if len(params) > 0 {
		out += " " + strings.Join(params, " ")
	}
	return out
}

// parseSta parses the severity/code pair out of a CSTA line, used only
// by tests exercising the wire codec round-trip.
func parseSta(line string) (sev adcSeverity, code int, ok bool) {
	const prefix = "CSTA "
	if !strings.HasPrefix(line, prefix) {
		return 0, 0, false
	}
	rest := strings.Fields(line[len(prefix):])
	if len(rest) == 0 || len(rest[0]) < 2 {
		return 0, 0, false
	}
	sevDigit, err := strconv.Atoi(rest[0][:1])
	if err != nil {
		return 0, 0, false
	}
	codeNum, err := strconv.Atoi(rest[0][1:])
	if err != nil {
		return 0, 0, false
	}
	return adcSeverity(sevDigit), codeNum, true
}

// adcFeatureList returns the feature tokens we advertise, adding
// ZLIB-GET when transfer compression is enabled.
func adcFeatureList(compress bool) []string {
	feats := []string{adcFeatBAS0, adcFeatTIGR}
	if compress {
		feats = append(feats, adcFeatZlibGet)
	}
	return feats
}
