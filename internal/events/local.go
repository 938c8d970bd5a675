package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler receives dispatched events
type Handler func(Event)

// LocalBus dispatches events in-process. Handlers subscribe by event type;
// the empty type receives everything. Handlers run synchronously on the
// publishing goroutine, in subscription order.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
	logger   *zap.Logger
}

// NewLocalBus creates a new in-process bus
func NewLocalBus(logger *zap.Logger) *LocalBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (b *LocalBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches an event to matching handlers
func (b *LocalBus) Publish(ctx context.Context, topic string, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]Handler, 0, len(b.handlers[event.Type])+len(b.handlers[""]))
	handlers = append(handlers, b.handlers[event.Type]...)
	handlers = append(handlers, b.handlers[""]...)
	b.mu.RUnlock()

	b.logger.Debug("dispatching event",
		zap.String("topic", topic),
		zap.String("type", event.Type),
		zap.Int("handlers", len(handlers)),
	)

	for _, handler := range handlers {
		handler(event)
	}
	return nil
}

// Close drops all handlers; later publishes fail with ErrClosed
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string][]Handler)
	return nil
}
