package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler reacts to one auth event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans auth events out to in-process subscribers.
type Dispatcher interface {
	// Publish delivers event to every handler subscribed to its type and
	// returns their failures joined. Publishing never stops early.
	Publish(ctx context.Context, event Event) error
	// Subscribe registers handler for each of the given types.
	Subscribe(handler EventHandler, types ...EventType)
}

type subscription struct {
	seq     int
	handler EventHandler
}

// syncDispatcher runs handlers on the publisher's goroutine, in subscription
// order. Auth flows publish after their outcome is decided, so a slow or
// broken subscriber can delay a response but never change it.
type syncDispatcher struct {
	mu     sync.RWMutex
	byType map[EventType][]subscription
	seq    int
}

// NewInMemoryDispatcher returns a synchronous dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{byType: make(map[EventType][]subscription)}
}

func (d *syncDispatcher) Subscribe(handler EventHandler, types ...EventType) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	for _, eventType := range types {
		d.byType[eventType] = append(d.byType[eventType], subscription{seq: d.seq, handler: handler})
	}
}

func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subs := append([]subscription(nil), d.byType[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := deliver(ctx, sub, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliver turns a handler panic into an error so the remaining subscribers
// still run.
func deliver(ctx context.Context, sub subscription, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s subscriber #%d panicked: %v", event.Type, sub.seq, r)
		}
	}()
	if err := sub.handler(ctx, event); err != nil {
		return fmt.Errorf("%s subscriber #%d: %w", event.Type, sub.seq, err)
	}
	return nil
}
