package connmgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== UCFlags ====================

func TestUCFlags(t *testing.T) {
	var f UCFlags

	t.Run("Set/Has", func(t *testing.T) {
		f = f.Set(FlagDownload)
		assert.True(t, f.Has(FlagDownload))
		assert.False(t, f.Has(FlagUpload))
	})

	t.Run("Set 是可叠加的", func(t *testing.T) {
		f = f.Set(FlagUpload)
		assert.True(t, f.Has(FlagDownload))
		assert.True(t, f.Has(FlagUpload))
	})

	t.Run("Clear 只移除目标位", func(t *testing.T) {
		f = f.Clear(FlagDownload)
		assert.False(t, f.Has(FlagDownload))
		assert.True(t, f.Has(FlagUpload))
	})

	t.Run("Has 要求掩码中所有位都被设置", func(t *testing.T) {
		both := FlagDownload | FlagUpload
		var g UCFlags
		g = g.Set(FlagDownload)
		assert.False(t, g.Has(both))
	})
}

// ==================== UserConnection ====================

func TestUserConnection(t *testing.T) {
	t.Run("newUserConnection 入站从 SUPNICK 起步并带 FLAG_INCOMING", func(t *testing.T) {
		sockA, _ := newFakeSocketPair("1.2.3.4:411")
		uc := newUserConnection(sockA, true)
		assert.Equal(t, StateSupNick, uc.State)
		assert.True(t, uc.Flags.Has(FlagIncoming))
	})

	t.Run("newUserConnection 出站从 CONNECT 起步且无 FLAG_INCOMING", func(t *testing.T) {
		sockA, _ := newFakeSocketPair("1.2.3.4:411")
		uc := newUserConnection(sockA, false)
		assert.Equal(t, StateConnect, uc.State)
		assert.False(t, uc.Flags.Has(FlagIncoming))
	})

	t.Run("User/SetUser 往返", func(t *testing.T) {
		sockA, _ := newFakeSocketPair("1.2.3.4:411")
		uc := newUserConnection(sockA, false)

		_, ok := uc.User()
		assert.False(t, ok)

		ref := makeTestUserRef("alice")
		uc.SetUser(ref)

		got, ok := uc.User()
		require.True(t, ok)
		assert.True(t, got.Equal(ref))
	})

	t.Run("Close 是幂等的且会关闭 Done 通道", func(t *testing.T) {
		sockA, _ := newFakeSocketPair("1.2.3.4:411")
		uc := newUserConnection(sockA, false)

		assert.NoError(t, uc.Close())
		assert.NoError(t, uc.Close())

		select {
		case <-uc.Done():
		default:
			t.Fatal("expected Done() to be closed after Close()")
		}
	})

	t.Run("IdleSince 反映自上次 Touch 以来流逝的时间", func(t *testing.T) {
		sockA, _ := newFakeSocketPair("1.2.3.4:411")
		uc := newUserConnection(sockA, false)

		base := time.Now()
		uc.Touch()
		assert.InDelta(t, 0, uc.IdleSince(base).Seconds(), 1)
		assert.InDelta(t, 90, uc.IdleSince(base.Add(90*time.Second)).Seconds(), 1)
	})

	t.Run("RemoteIP 从 RemoteAddr 剥离端口", func(t *testing.T) {
		sockA, _ := newFakeSocketPair("9.9.9.9:412")
		uc := newUserConnection(sockA, false)
		assert.Equal(t, "9.9.9.9", uc.RemoteIP())
	})
}
