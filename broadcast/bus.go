// Package broadcast delivers unsolicited host messages to whatever part of the UI is listening.
//
// Subscribers register for a Kind instead of receiving every message and inspecting its
// shape. The kind of a payload is read from its "type" field when the payload is a JSON
// object carrying one; everything else is KindMessage.
package broadcast

import (
	"encoding/json"
	"sync"

	"bridge-rpc/message"

	"github.com/google/uuid"
)

// Kind names a family of broadcast payloads.
type Kind string

// KindMessage is the kind of any payload without a string "type" field.
const KindMessage Kind = "message"

// Event is a single broadcast as seen by a subscriber.
type Event struct {
	Kind    Kind
	Payload message.Value
}

// Handler receives broadcast events. It runs on the publishing goroutine.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	ID   uuid.UUID
	Kind Kind // empty for wildcard subscriptions
}

type subscriber struct {
	sub     Subscription
	handler Handler
}

// Bus is a goroutine-safe publish/subscribe hub keyed by Kind.
type Bus struct {
	mu       sync.RWMutex
	byKind   map[Kind][]subscriber
	wildcard []subscriber

	// OnPanic, when set, is told about a handler that panicked. The remaining handlers
	// still run.
	OnPanic func(sub Subscription, recovered any)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{byKind: make(map[Kind][]subscriber)}
}

// KindOf derives the kind of a payload.
func KindOf(payload message.Value) Kind {
	var probe struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil || probe.Type == nil || *probe.Type == "" {
		return KindMessage
	}
	return Kind(*probe.Type)
}

// Subscribe registers handler for events of the given kind.
func (b *Bus) Subscribe(kind Kind, handler Handler) Subscription {
	s := subscriber{
		sub:     Subscription{ID: uuid.New(), Kind: kind},
		handler: handler,
	}

	b.mu.Lock()
	b.byKind[kind] = append(b.byKind[kind], s)
	b.mu.Unlock()

	return s.sub
}

// SubscribeAll registers handler for every event regardless of kind.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	s := subscriber{
		sub:     Subscription{ID: uuid.New()},
		handler: handler,
	}

	b.mu.Lock()
	b.wildcard = append(b.wildcard, s)
	b.mu.Unlock()

	return s.sub
}

// Unsubscribe removes the subscription with the given id. It reports whether one was found.
func (b *Bus) Unsubscribe(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.byKind {
		if rest, ok := without(subs, id); ok {
			if len(rest) == 0 {
				delete(b.byKind, kind)
			} else {
				b.byKind[kind] = rest
			}
			return true
		}
	}

	rest, ok := without(b.wildcard, id)
	if ok {
		b.wildcard = rest
	}
	return ok
}

// Publish delivers payload once to each matching subscriber, kind subscribers first, in
// the order they subscribed. It returns the number of handlers that were called.
func (b *Bus) Publish(payload message.Value) int {
	event := Event{Kind: KindOf(payload), Payload: payload}

	b.mu.RLock()
	targets := make([]subscriber, 0, len(b.byKind[event.Kind])+len(b.wildcard))
	targets = append(targets, b.byKind[event.Kind]...)
	targets = append(targets, b.wildcard...)
	b.mu.RUnlock()

	for _, s := range targets {
		b.deliver(s, event)
	}
	return len(targets)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.wildcard)
	for _, subs := range b.byKind {
		n += len(subs)
	}
	return n
}

func (b *Bus) deliver(s subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil && b.OnPanic != nil {
			b.OnPanic(s.sub, r)
		}
	}()
	s.handler(event)
}

func without(subs []subscriber, id uuid.UUID) ([]subscriber, bool) {
	for i, s := range subs {
		if s.sub.ID == id {
			rest := make([]subscriber, 0, len(subs)-1)
			rest = append(rest, subs[:i]...)
			rest = append(rest, subs[i+1:]...)
			return rest, true
		}
	}
	return subs, false
}
