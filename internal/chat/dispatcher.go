package chat

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Subscriber receives broadcast messages. A subscriber registered for a
// character only sees messages visible to that character.
type Subscriber interface {
	Receive(m Message) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(m Message) error

// Receive implements Subscriber.
func (f SubscriberFunc) Receive(m Message) error { return f(m) }

type subscription struct {
	handle      int
	characterID string
	subscriber  Subscriber
}

// Dispatcher broadcasts messages to subscribers and records every message
// in the history. Delivery is synchronous and best-effort: a failing
// subscriber is logged and skipped, never retried, and never blocks the
// round.
type Dispatcher struct {
	mu         sync.RWMutex
	subs       map[int]subscription
	nextHandle int

	history *History
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher writing to the given history.
func NewDispatcher(history *History, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		subs:    make(map[int]subscription),
		history: history,
		logger:  logger,
	}
}

// Subscribe registers a subscriber reading as the given character and
// returns a handle. An empty character ID subscribes as an outside
// observer and receives only public messages.
func (d *Dispatcher) Subscribe(characterID string, s Subscriber) int {
	if s == nil {
		return -1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	handle := d.nextHandle
	d.nextHandle++
	d.subs[handle] = subscription{handle: handle, characterID: characterID, subscriber: s}
	return handle
}

// Unsubscribe removes the subscriber identified by the handle.
func (d *Dispatcher) Unsubscribe(handle int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, handle)
}

// Broadcast records the message and delivers it to every subscriber
// allowed to see it, in subscription order.
func (d *Dispatcher) Broadcast(m Message) {
	d.history.Append(m)

	d.mu.RLock()
	subs := make([]subscription, 0, len(d.subs))
	for _, s := range d.subs {
		subs = append(subs, s)
	}
	d.mu.RUnlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].handle < subs[j].handle })

	for _, s := range subs {
		if !m.VisibleTo(s.characterID) {
			continue
		}
		if err := s.subscriber.Receive(m); err != nil {
			d.logger.Warn("subscriber failed to receive message",
				zap.Int("handle", s.handle),
				zap.String("character_id", s.characterID),
				zap.String("message_id", m.ID),
				zap.Error(err),
			)
		}
	}
}
