package connmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== expectedConnections ====================

func TestExpectedConnections(t *testing.T) {
	t.Run("add 后 remove 能取回 token 和 hubURL", func(t *testing.T) {
		e := newExpectedConnections()
		e.add("alice", "tok-123", "dchub://hub1")

		token, hubURL := e.remove("alice")
		assert.Equal(t, "tok-123", token)
		assert.Equal(t, "dchub://hub1", hubURL)
	})

	t.Run("remove 是一次性的", func(t *testing.T) {
		e := newExpectedConnections()
		e.add("alice", "tok-123", "dchub://hub1")
		e.remove("alice")

		token, hubURL := e.remove("alice")
		assert.Empty(t, token)
		assert.Empty(t, hubURL)
	})

	t.Run("未知 nick 返回空字符串对", func(t *testing.T) {
		e := newExpectedConnections()
		token, hubURL := e.remove("nobody")
		assert.Empty(t, token)
		assert.Empty(t, hubURL)
	})
}
