package connmgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/peerconnd/pkg/types"
)

// ==================== backoffDue ====================

func TestConnectionQueueItem_BackoffDue(t *testing.T) {
	now := time.Now()

	t.Run("从未尝试过时立即允许", func(t *testing.T) {
		cqi := &ConnectionQueueItem{}
		assert.True(t, cqi.backoffDue(now))
	})

	t.Run("errors 为 0 时按 60s 退避", func(t *testing.T) {
		cqi := &ConnectionQueueItem{LastAttempt: now, Errors: 0}
		assert.False(t, cqi.backoffDue(now.Add(59*time.Second)))
		assert.True(t, cqi.backoffDue(now.Add(60*time.Second)))
	})

	t.Run("errors 越多退避越久", func(t *testing.T) {
		cqi := &ConnectionQueueItem{LastAttempt: now, Errors: 3}
		assert.False(t, cqi.backoffDue(now.Add(179*time.Second)))
		assert.True(t, cqi.backoffDue(now.Add(180*time.Second)))
	})
}

// ==================== cqiList ====================

func TestCQIList(t *testing.T) {
	user := types.UserRefFromNick("alice", "dchub://hub1")

	t.Run("insert 后 get 可命中并触发 Added", func(t *testing.T) {
		rec := &recordingEmitter{}
		l := newCQIList(rec, eventAdded, eventRemoved)

		cqi := &ConnectionQueueItem{User: types.HintedUser{User: user, HubURL: "dchub://hub1"}}
		l.insert(cqi)

		got, ok := l.get(user)
		require.True(t, ok)
		assert.Same(t, cqi, got)
		assert.Equal(t, 1, l.len())
		assert.Equal(t, []eventKind{eventAdded}, rec.kinds)
	})

	t.Run("remove 后 get 不再命中，二次 remove 是 no-op", func(t *testing.T) {
		bus := fakeBus{}
		emitter := eventEmitter(newBusEmitter(bus))
		l := newCQIList(emitter, eventAdded, eventRemoved)
		cqi := &ConnectionQueueItem{User: types.HintedUser{User: user}}
		l.insert(cqi)

		l.remove(user)
		_, ok := l.get(user)
		assert.False(t, ok)
		assert.Equal(t, 0, l.len())

		assert.NotPanics(t, func() { l.remove(user) })
	})

	t.Run("all 返回所有条目的快照", func(t *testing.T) {
		bus := fakeBus{}
		emitter := eventEmitter(newBusEmitter(bus))
		l := newCQIList(emitter, eventAdded, eventRemoved)

		u1 := types.UserRefFromNick("alice", "dchub://hub1")
		u2 := types.UserRefFromNick("bob", "dchub://hub1")
		l.insert(&ConnectionQueueItem{User: types.HintedUser{User: u1}})
		l.insert(&ConnectionQueueItem{User: types.HintedUser{User: u2}})

		all := l.all()
		assert.Len(t, all, 2)
	})
}

// recordingEmitter records the kind of every event emitted through it.
type recordingEmitter struct{ kinds []eventKind }

func (r *recordingEmitter) emit(kind eventKind, _ *ConnectionQueueItem) {
	r.kinds = append(r.kinds, kind)
}

func (r *recordingEmitter) emitFailed(*ConnectionQueueItem, string) {}
