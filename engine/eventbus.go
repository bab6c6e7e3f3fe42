package engine

import (
	"sync"
	"time"
)

type SubscriberID int

// Payload is implemented by every event payload and names its event type.
type Payload interface {
	EventType() EventType
}

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   Payload
}

type subscriber struct {
	id     SubscriberID
	fn     func(Event)
	filter map[EventType]struct{}
}

// EventBus fans engine events out to in-process subscribers. Handlers run
// synchronously on the emitting goroutine. Events are stamped with the
// engine clock, so a test clock shows up in event timestamps too.
type EventBus struct {
	clock func() time.Time

	mu          sync.RWMutex
	subscribers []subscriber
	nextID      SubscriberID
}

// NewEventBus returns a bus stamping events with clock, or time.Now when nil.
func NewEventBus(clock func() time.Time) *EventBus {
	if clock == nil {
		clock = time.Now
	}
	return &EventBus{clock: clock}
}

// Subscribe registers a handler for all event types.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	return eb.add(fn, nil)
}

// SubscribeTypes registers a handler for specific event types.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	filter := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		filter[t] = struct{}{}
	}
	return eb.add(fn, filter)
}

// On registers fn for every event whose payload is a P, for example
// On(bus, func(ev ShiftClearedEvent) { ... }).
func On[P Payload](eb *EventBus, fn func(P)) SubscriberID {
	return eb.add(func(evt Event) {
		if p, ok := evt.Payload.(P); ok {
			fn(p)
		}
	}, nil)
}

func (eb *EventBus) add(fn func(Event), filter map[EventType]struct{}) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	eb.subscribers = append(eb.subscribers, subscriber{id: eb.nextID, fn: fn, filter: filter})
	return eb.nextID
}

// Unsubscribe removes subscribers by ID.
func (eb *EventBus) Unsubscribe(ids ...SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for _, id := range ids {
		for i, s := range eb.subscribers {
			if s.id == id {
				eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
				break
			}
		}
	}
}

// Emit stamps p and delivers it to every matching subscriber.
func (eb *EventBus) Emit(p Payload) {
	evt := Event{Type: p.EventType(), Timestamp: eb.clock(), Payload: p}
	eb.mu.RLock()
	subs := make([]subscriber, len(eb.subscribers))
	copy(subs, eb.subscribers)
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.filter != nil {
			if _, ok := s.filter[evt.Type]; !ok {
				continue
			}
		}
		s.fn(evt)
	}
}
