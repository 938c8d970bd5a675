package events

import (
	"context"
	"time"
)

// Event types
const (
	TypeApplicationReady  = "application_ready"
	TypeComponentRendered = "component_rendered"
	TypeRenderFailed      = "render_failed"
	TypeSourceLoaded      = "source_loaded"
	TypeDataLoaded        = "data_loaded"
	TypeRenderCompleted   = "render_completed"
)

// Event is a single lifecycle notification
type Event struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// New creates an event stamped with the current time
func New(eventType, source string, payload map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Bus publishes events to a topic
type Bus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}

// Nop is a Bus that drops every event
type Nop struct{}

// Publish drops the event
func (Nop) Publish(context.Context, string, Event) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }
