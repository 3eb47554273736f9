package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// subscriptionBuffer is the per-subscription channel depth. A
// subscriber that falls this far behind starts losing events.
const subscriptionBuffer = 64

// Hub fans change events out to per-table subscriptions.
type Hub struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   map[*Subscription]struct{}{},
	}
}

// Publish delivers ev to every subscription watching ev.Table. Delivery
// never blocks the publisher; a full subscription drops the event.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.table != ev.Table {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("realtime subscriber lagging, event dropped",
				zap.String("table", ev.Table),
				zap.String("event", string(ev.Type)))
		}
	}
}

// Subscribe registers a new subscription for one table.
func (h *Hub) Subscribe(table string) *Subscription {
	sub := &Subscription{
		hub:   h,
		table: table,
		ch:    make(chan Event, subscriptionBuffer),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Subscription is one table's event channel. Close releases it and is
// safe to call any number of times.
type Subscription struct {
	hub   *Hub
	table string
	ch    chan Event
	once  sync.Once
}

// Events returns the channel change events arrive on. The channel is
// closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close removes the subscription from the hub and closes its channel.
// Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}
