package connmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== 入站 flood 防护 ====================

func TestCheckInboundFlood(t *testing.T) {
	co, _ := newTestCoordinator()

	t.Run("稳定速率下持续放行", func(t *testing.T) {
		assert.True(t, co.checkInboundFlood())
	})

	t.Run("同一瞬间连续触发最终被拒绝", func(t *testing.T) {
		co2, _ := newTestCoordinator()
		var rejected bool
		for i := 0; i < 30; i++ {
			if !co2.checkInboundFlood() {
				rejected = true
				break
			}
		}
		assert.True(t, rejected, "expected flood guard to trip within 30 rapid calls")
	})
}

// ==================== 出站 IP flood 防护 ====================

func TestCheckOutboundIPFlood(t *testing.T) {
	t.Run("黑名单端口直接拒绝", func(t *testing.T) {
		co, _ := newTestCoordinator()
		assert.False(t, co.checkOutboundIPFlood("1.2.3.4", 80))
		assert.False(t, co.checkOutboundIPFlood("1.2.3.4", 2501))
	})

	t.Run("未达上限时放行", func(t *testing.T) {
		co, _ := newTestCoordinator()
		assert.True(t, co.checkOutboundIPFlood("1.2.3.4", 411))
	})

	t.Run("同一目标达到上限后拒绝", func(t *testing.T) {
		co, _ := newTestCoordinator()
		target := "5.6.7.8:411"

		for i := 0; i < ipFloodMaxPerTarget; i++ {
			sockA, _ := newFakeSocketPair(target)
			uc := newUserConnection(sockA, false)
			co.userConnections[uc] = struct{}{}
		}
		require.Len(t, co.userConnections, ipFloodMaxPerTarget)

		assert.False(t, co.checkOutboundIPFlood("5.6.7.8", 411))
	})
}
