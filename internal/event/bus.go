// AngelaMos | 2026
// bus.go

package event

import (
	"context"
	"sync"
)

type Topic string

const (
	TopicCartUpdated    Topic = "cart.updated"
	TopicSessionLogout  Topic = "session.logout"
	TopicOrderCreated   Topic = "order.created"
	TopicActivityLogged Topic = "activity.logged"
)

type Handler func(ctx context.Context, payload any)

// Bus is a synchronous in-process fan-out: Publish invokes every subscriber
// in the caller's goroutine before returning. Managers publish after a
// successful write; there is no cross-process delivery.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers handler for topic and returns its unsubscribe func.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}

	id := b.nextID
	b.nextID++
	b.subs[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, payload)
	}
}
