package connmgr

import (
	"net"
	"strconv"
)

// checkInboundFlood implements the inbound flood guard of §4.1. Caller
// must hold cs. Returns false if the accepted socket should be rejected
// (accept-then-close).
func (co *Coordinator) checkInboundFlood() bool {
	if co.iConnToMeCount > 0 {
		co.iConnToMeCount--
	}

	now := co.now()
	if now.After(co.floodCounter) {
		co.floodCounter = now.Add(floodAdd)
		return true
	}

	if now.Add(floodTrigger).Before(co.floodCounter) {
		return false
	}

	if co.iConnToMeCount == 0 {
		co.floodCounter = co.floodCounter.Add(floodAdd)
	}
	return true
}

// checkOutboundIPFlood implements the IP-flood guard of §4.1: refuse if
// the destination port is blacklisted, or five or more UCs already
// target the same (ip, port). Caller must hold cs.
func (co *Coordinator) checkOutboundIPFlood(host string, port int) bool {
	if blacklistedPorts[port] {
		return false
	}

	target := net.JoinHostPort(host, strconv.Itoa(port))
	count := 0
	for uc := range co.userConnections {
		if uc.Socket == nil {
			continue
		}
		addr := uc.Socket.RemoteAddr()
		if addr != nil && addr.String() == target {
			count++
		}
	}
	return count < ipFloodMaxPerTarget
}
