package storefront

import (
	"context"
	"sync"
)

type Event string

const (
	EventCartAdd    Event = "cart:add"
	EventCartRemove Event = "cart:remove"
	EventCartClear  Event = "cart:clear"
)

type Handler func(Event)

// EventBus is a synchronous publish/subscribe hub. Handlers run in the
// publisher's goroutine, in subscription order.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[Event][]subscription
	nextID   int
}

type subscription struct {
	id int
	fn Handler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[Event][]subscription)}
}

// Subscribe registers fn for the given events and returns a function that
// removes it again.
func (b *EventBus) Subscribe(fn Handler, events ...Event) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	for _, e := range events {
		b.handlers[e] = append(b.handlers[e], subscription{id: id, fn: fn})
	}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, e := range events {
			subs := b.handlers[e]
			for i, s := range subs {
				if s.id == id {
					b.handlers[e] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		}
	}
}

func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[e]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}

// CartBadge is the header cart counter. It never counts locally: every cart
// event triggers a full cart re-fetch and the count is the number of lines.
type CartBadge struct {
	client *Client

	mu    sync.RWMutex
	count int
}

func NewCartBadge(client *Client, bus *EventBus) *CartBadge {
	b := &CartBadge{client: client}
	bus.Subscribe(func(Event) { _ = b.Refresh(context.Background()) }, EventCartAdd, EventCartRemove, EventCartClear)
	return b
}

func (b *CartBadge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Refresh re-fetches the cart. Signed-out shoppers see zero.
func (b *CartBadge) Refresh(ctx context.Context) error {
	if b.client.Store().Token() == "" {
		b.set(0)
		return nil
	}
	items, err := b.client.ListCart(ctx)
	if err != nil {
		return err
	}
	b.set(len(items))
	return nil
}

func (b *CartBadge) set(n int) {
	b.mu.Lock()
	b.count = n
	b.mu.Unlock()
}
