package connmgr

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// expectedConnectionsCapacity bounds the table; past it the least
// recently used entry is evicted. Entries enter only through add, which
// no Coordinator method calls (NMDCConnect/ADCConnect do not record
// expectations); spec.md describes an unbounded map, this is the
// SUPPLEMENTED bound from SPEC_FULL.md.
const expectedConnectionsCapacity = 8192

// expectedEntry is the (token, hubURL) pair correlated to an expected
// inbound nick (§3 "ExpectedConnections").
type expectedEntry struct {
	token  string
	hubURL string
}

// expectedConnections is a short-lived map nick -> (token, hubURL), so
// an incoming NMDC MyNick can be correlated back to the request that
// triggered it.
type expectedConnections struct {
	cache *lru.Cache[string, expectedEntry]
}

func newExpectedConnections() *expectedConnections {
	c, _ := lru.New[string, expectedEntry](expectedConnectionsCapacity)
	return &expectedConnections{cache: c}
}

// add records an expectation for nick.
func (e *expectedConnections) add(nick, token, hubURL string) {
	e.cache.Add(nick, expectedEntry{token: token, hubURL: hubURL})
}

// remove returns and deletes the stored pair for nick, or ("", "") if
// absent — exactly the contract of §3's remove(nick).
func (e *expectedConnections) remove(nick string) (token, hubURL string) {
	entry, ok := e.cache.Get(nick)
	if !ok {
		return "", ""
	}
	e.cache.Remove(nick)
	return entry.token, entry.hubURL
}
