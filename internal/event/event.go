// Package event delivers match notifications to observers.
//
// Delivery is synchronous and ordered by subscription, so every listener has
// seen an event before the dispatch that raised it returns.
package event

// Type names an event kind.
type Type string

// Event is implemented by every notification type.
type Event interface {
	Type() Type
}

// Listener receives events.
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(e Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Publisher is the sending side of a Bus.
type Publisher interface {
	Publish(e Event)
}

type subscription struct {
	id       int
	listener Listener
	types    map[Type]bool // nil means every type
}

// Bus fans events out to listeners.
// It is not safe for concurrent use; the mediator serializes publishers.
type Bus struct {
	subs   []subscription
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers l for the given types, or for all events when no
// type is given. The returned func removes the subscription.
func (b *Bus) Subscribe(l Listener, types ...Type) (unsubscribe func()) {
	b.nextID++
	s := subscription{id: b.nextID, listener: l}
	if len(types) > 0 {
		s.types = make(map[Type]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	b.subs = append(b.subs, s)
	return func() { b.remove(s.id) }
}

func (b *Bus) remove(id int) {
	kept := b.subs[:0]
	for _, s := range b.subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	b.subs = kept
}

// Publish delivers e to matching listeners in subscription order.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	for _, s := range b.subs {
		if s.types == nil || s.types[e.Type()] {
			s.listener.OnEvent(e)
		}
	}
}

// Recorder is a Listener that keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnEvent(e Event) {
	r.Events = append(r.Events, e)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []Type {
	out := make([]Type, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type()
	}
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}
