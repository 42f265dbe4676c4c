package event

import "sync"

// Subscriber receives events from a Bus.
type Subscriber interface {
	Notify(e Event)
}

// Parent receives events a device propagates upward for effect sync.
type Parent interface {
	NotifyParent(e Event)
}

type funcSubscriber struct {
	fn func(Event)
}

func (f *funcSubscriber) Notify(e Event) { f.fn(e) }

// Func adapts fn into a Subscriber. Each call returns a distinct
// subscriber, so the result can later be passed to Remove.
func Func(fn func(Event)) Subscriber {
	return &funcSubscriber{fn: fn}
}

// Bus fans events out to an ordered list of subscribers.
//
// Subscribers are notified synchronously in registration order. When
// propagation is enabled and a parent is set, the parent hears about an
// event before any subscriber does.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Subscribers are called
//     without the bus lock held, so they may call back into the bus.
type Bus struct {
	mu        sync.Mutex
	subs      []Subscriber
	parent    Parent
	propagate bool
	disabled  bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Register adds s unless it is already registered.
// Subscribers must be comparable (pointers or Func values).
func (b *Bus) Register(s Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.subs {
		if existing == s {
			return
		}
	}
	b.subs = append(b.subs, s)
}

// Remove drops s. Removing an unknown subscriber is a no-op.
func (b *Bus) Remove(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.subs {
		if existing == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Clear drops every subscriber and the parent.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = nil
	b.parent = nil
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// SetParent sets the aggregator that receives propagated events.
func (b *Bus) SetParent(p Parent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parent = p
}

// SetPropagate turns upward propagation on or off.
func (b *Bus) SetPropagate(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.propagate = on
}

// Propagate reports whether upward propagation is on.
func (b *Bus) Propagate() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.propagate
}

// SetDisabled suppresses or re-enables Publish.
func (b *Bus) SetDisabled(disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = disabled
}

// Disabled reports whether Publish is suppressed.
func (b *Bus) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

// Publish delivers e unless the bus is disabled.
func (b *Bus) Publish(e Event) {
	if b.Disabled() {
		return
	}
	b.Deliver(e)
}

// Deliver sends e to the parent (when propagating) and then to every
// subscriber in order, regardless of the disabled flag. Callers that
// queue events check Disabled at queue time and deliver later.
func (b *Bus) Deliver(e Event) {
	b.mu.Lock()
	var parent Parent
	if b.propagate {
		parent = b.parent
	}
	subs := append([]Subscriber(nil), b.subs...)
	b.mu.Unlock()

	if parent != nil {
		parent.NotifyParent(e)
	}
	for _, s := range subs {
		s.Notify(e)
	}
}

// Notify re-broadcasts an event received from elsewhere to every
// subscriber. It ignores the disabled flag and never propagates upward.
func (b *Bus) Notify(e Event) {
	b.mu.Lock()
	subs := append([]Subscriber(nil), b.subs...)
	b.mu.Unlock()

	for _, s := range subs {
		s.Notify(e)
	}
}
