package connmgr

import (
	"bufio"
	"strings"
)

// writeLine sends one NMDC (CRLF-terminated) or ADC (LF-terminated)
// wire line (§6), ignoring the write error here — a failed write
// surfaces through the next read returning an error, which funnels into
// handleFailure like any other transient socket failure.
func (co *Coordinator) writeLine(uc *UserConnection, line string, nmdc bool) {
	term := "\n"
	if nmdc {
		term = "\r\n"
	}
	_, _ = uc.Socket.Write([]byte(line + term))
	uc.Touch()
}

// readLoop is the per-UC I/O thread (§5): it owns the socket, reads one
// wire line at a time, and feeds each to the handshake dispatcher until
// the socket closes or a terminal error occurs. It never holds cs while
// blocked on Read.
func (co *Coordinator) readLoop(uc *UserConnection) {
	reader := bufio.NewReader(uc.Socket)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			uc.Touch()
			if derr := co.dispatchLine(uc, line); derr != nil {
				co.handleFailure(uc, classifyErr(derr), derr.Error())
				return
			}
		}
		if err != nil {
			co.handleFailure(uc, FailureTransient, err.Error())
			return
		}
	}
}

// dispatchLine routes a wire line to the NMDC or ADC handler based on
// FLAG_NMDC, set the moment the dialect becomes known (outbound: at
// construction; inbound: on first recognised line).
func (co *Coordinator) dispatchLine(uc *UserConnection, line string) error {
	if !uc.Flags.Has(FlagNMDC) && looksLikeADC(line) {
		return co.handleADCLine(uc, line)
	}
	if uc.Flags.Has(FlagNMDC) || looksLikeNMDC(line) {
		uc.Flags = uc.Flags.Set(FlagNMDC)
		return co.handleNMDCLine(uc, line)
	}
	return co.handleADCLine(uc, line)
}

func looksLikeNMDC(line string) bool {
	return strings.HasPrefix(line, "$")
}

func looksLikeADC(line string) bool {
	return len(line) >= 4 && line[0] >= 'A' && line[0] <= 'Z' && line[1] >= 'A' && line[1] <= 'Z'
}

// classifyErr distinguishes a protocol violation (sticky, errors=-1)
// from a transient socket failure; dispatch errors are protocol errors,
// everything else (I/O) is transient.
func classifyErr(err error) FailureKind {
	if _, ok := err.(*protocolError); ok {
		return FailureProtocol
	}
	return FailureTransient
}

// protocolError marks a handshake violation that should be sticky
// (§7: "Protocol ... CQI marked errors = -1").
type protocolError struct{ msg string }

func (e *protocolError) Error() string { return e.msg }

func protoErr(msg string) error { return &protocolError{msg: msg} }
