package connmgr

import (
	"github.com/dep2p/peerconnd/pkg/interfaces"
	"github.com/dep2p/peerconnd/pkg/lib/log"
)

var eventLogger = log.Logger("core/connmgr/events")

// eventKind discriminates the opaque notifications of §6.
type eventKind int

const (
	eventAdded eventKind = iota
	eventRemoved
	eventStatusChanged
	eventConnected
)

// EventAdded/.../EventFailed are the concrete payloads published on the
// event bus, one Go type per kind so interfaces.EventBus's reflect-keyed
// Subscribe can discriminate them.
type (
	EventAdded         struct{ CQI *ConnectionQueueItem }
	EventRemoved       struct{ CQI *ConnectionQueueItem }
	EventStatusChanged struct{ CQI *ConnectionQueueItem }
	EventConnected     struct{ CQI *ConnectionQueueItem }
	EventFailed        struct {
		CQI    *ConnectionQueueItem
		Reason string
	}
)

// eventEmitter is the narrow surface cqiList and the coordinator use to
// publish events without depending on interfaces.EventBus directly.
type eventEmitter interface {
	emit(kind eventKind, cqi *ConnectionQueueItem)
	emitFailed(cqi *ConnectionQueueItem, reason string)
}

// busEmitter adapts an interfaces.EventBus to eventEmitter. One emitter
// per event type is obtained up front in newBusEmitter; a type whose
// emitter could not be obtained is skipped silently, and emit
// failures are logged, never propagated (events are best-effort
// notifications, per §6 "opaque subscribe/notify").
type busEmitter struct {
	bus       interfaces.EventBus
	added     interfaces.Emitter
	removed   interfaces.Emitter
	status    interfaces.Emitter
	connected interfaces.Emitter
	failed    interfaces.Emitter
}

func newBusEmitter(bus interfaces.EventBus) *busEmitter {
	e := &busEmitter{bus: bus}
	e.added, _ = bus.Emitter(new(EventAdded))
	e.removed, _ = bus.Emitter(new(EventRemoved))
	e.status, _ = bus.Emitter(new(EventStatusChanged))
	e.connected, _ = bus.Emitter(new(EventConnected))
	e.failed, _ = bus.Emitter(new(EventFailed))
	return e
}

func (e *busEmitter) emit(kind eventKind, cqi *ConnectionQueueItem) {
	var emitter interfaces.Emitter
	var payload any

	switch kind {
	case eventAdded:
		emitter, payload = e.added, EventAdded{CQI: cqi}
	case eventRemoved:
		emitter, payload = e.removed, EventRemoved{CQI: cqi}
	case eventStatusChanged:
		emitter, payload = e.status, EventStatusChanged{CQI: cqi}
	case eventConnected:
		emitter, payload = e.connected, EventConnected{CQI: cqi}
	default:
		return
	}
	if emitter == nil {
		return
	}
	if err := emitter.Emit(payload); err != nil {
		eventLogger.Debug("event emit failed", "kind", kind, "err", err)
	}
}

func (e *busEmitter) emitFailed(cqi *ConnectionQueueItem, reason string) {
	if e.failed == nil {
		return
	}
	if err := e.failed.Emit(EventFailed{CQI: cqi, Reason: reason}); err != nil {
		eventLogger.Debug("event emit failed", "kind", "failed", "err", err)
	}
}
