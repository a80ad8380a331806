package netspec

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventType tells what happened to a spec.
type EventType string

const (
	EventSaved   EventType = "saved"
	EventDeleted EventType = "deleted"
)

// Event reports a change made through a Catalog.
type Event struct {
	Type EventType `json:"type"`
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Watch streams changes made through this Catalog until ctx is done, then
// closes the channel. An empty name watches every spec. Changes written to
// the store by other processes are not seen. Slow readers lose events rather
// than stall writers.
func (c *Catalog) Watch(ctx context.Context, name string) <-chan Event {
	ch, cancel := c.events.subscribe(name)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch
}

// broker fans events out to subscribers keyed by spec name; "" matches all.
type broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	logger      *slog.Logger
}

func newBroker(logger *slog.Logger) *broker {
	return &broker{
		subscribers: make(map[string]map[chan Event]struct{}),
		logger:      logger,
	}
}

func (b *broker) subscribe(name string) (chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	if _, ok := b.subscribers[name]; !ok {
		b.subscribers[name] = make(map[chan Event]struct{})
	}
	b.subscribers[name][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subscribers[name]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(b.subscribers, name)
				}
			}
		})
	}
}

func (b *broker) publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, key := range []string{e.Name, ""} {
		for ch := range b.subscribers[key] {
			select {
			case ch <- e:
			default:
				b.logger.Warn("event dropped, subscriber buffer full", "spec", e.Name, "event", e.Type)
			}
		}
	}
}
