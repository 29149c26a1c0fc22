package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/webtree/internal/logfields"
)

// Store persists dispatched events. state.SQLiteStore implements it.
type Store interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
}

// Handler processes an Event; a returned error is logged by the bus.
type Handler func(ctx context.Context, e Event) error

// Bus is a simple synchronous pub/sub event bus. Handlers run in subscription
// order on the dispatching goroutine. A failing or panicking handler is logged
// and does not stop the remaining handlers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	store       Store
	logger      *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithStore persists every dispatched event to s before delivery.
func WithStore(s Store) Option { return func(b *Bus) { b.store = s } }

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) Option { return func(b *Bus) { b.logger = l } }

func NewBus(opts ...Option) *Bus {
	b := &Bus{subscribers: map[string][]Handler{}, logger: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers a handler for a given event name.
func (b *Bus) Subscribe(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.subscribers[event] = append(b.subscribers[event], h)
	b.mu.Unlock()
}

// Subscribers returns the number of handlers for event.
func (b *Bus) Subscribers(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[event])
}

// Dispatch delivers e to all handlers and returns the number of handlers
// that failed.
func (b *Bus) Dispatch(ctx context.Context, e Event) int {
	b.persist(ctx, e)

	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[e.Name()]...)
	b.mu.RUnlock()

	failed := 0
	for i, h := range hs {
		if err := b.call(ctx, h, e); err != nil {
			failed++
			b.logger.Warn("Event handler failed",
				logfields.Event(e.Name()),
				slog.Int("handler_index", i),
				logfields.Error(err))
		}
	}
	return failed
}

func (b *Bus) call(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, e)
}

func (b *Bus) persist(ctx context.Context, e Event) {
	if b.store == nil {
		return
	}
	buildID := "unknown"
	if be, ok := e.(interface{ GetBuildID() string }); ok && be.GetBuildID() != "" {
		buildID = be.GetBuildID()
	}
	var payload []byte
	if pe, ok := e.(interface{ Payload() ([]byte, error) }); ok {
		p, err := pe.Payload()
		if err != nil {
			b.logger.Warn("Failed to encode event payload", logfields.Event(e.Name()), logfields.Error(err))
		}
		payload = p
	}
	// Persistence failures never fail the build.
	if err := b.store.Append(ctx, buildID, e.Name(), payload, nil); err != nil {
		b.logger.Warn("Failed to persist event", logfields.Event(e.Name()), logfields.Error(err))
	}
}
