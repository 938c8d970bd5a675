package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/aescanero/dago-node-render/internal/events"
	"github.com/aescanero/dago-node-render/internal/source"
	"go.uber.org/zap"
)

// State is a lifecycle state
type State int

const (
	// StateUnattached components cannot render
	StateUnattached State = iota

	// StateAttached components are live but have no successful render yet
	StateAttached

	// StateRendered components hold the output of their last render
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateAttached:
		return "attached"
	case StateRendered:
		return "rendered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Observed attributes
const (
	AttrSrc      = "src"
	AttrSelector = "selector"
	AttrWritable = "writable"
)

// ObservedAttributes lists the attributes SetAttribute reacts to
func ObservedAttributes() []string {
	return []string{AttrSrc, AttrWritable, AttrSelector}
}

var (
	// ErrInvalidTransition is returned for operations the current state does
	// not allow
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrReadOnly is returned by SetData on a component that is not writable
	ErrReadOnly = errors.New("component is not writable")
)

// TemplateSource loads the template a selector points to
type TemplateSource interface {
	Template(ctx context.Context, selector string) (string, error)
}

// Deps are the collaborators of a Component
type Deps struct {
	Templates TemplateSource
	Data      source.DataLoader
	Engine    *template.Engine
	Sink      Sink
	Bus       events.Bus
	Topic     string
	Logger    *zap.Logger
}

// Component is a named template bound to a data source
type Component struct {
	name      string
	templates TemplateSource
	data      source.DataLoader
	engine    *template.Engine
	sink      Sink
	bus       events.Bus
	topic     string
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	selector   string
	src        string
	writable   bool
	tmpl       string
	tmplLoaded bool
	context    map[string]interface{}
	ctxLoaded  bool
	output     string
}

// New creates a new unattached component
func New(name string, deps Deps) (*Component, error) {
	if name == "" {
		return nil, fmt.Errorf("component name is required")
	}
	if deps.Templates == nil {
		return nil, fmt.Errorf("component %s: template source is required", name)
	}

	c := &Component{
		name:      name,
		templates: deps.Templates,
		data:      deps.Data,
		engine:    deps.Engine,
		sink:      deps.Sink,
		bus:       deps.Bus,
		topic:     deps.Topic,
		logger:    deps.Logger,
	}
	if c.engine == nil {
		c.engine = template.NewEngine()
	}
	if c.sink == nil {
		c.sink = Discard
	}
	if c.bus == nil {
		c.bus = events.Nop{}
	}
	if c.topic == "" {
		c.topic = "render.events"
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("component", name))

	return c, nil
}

// Name returns the component name
func (c *Component) Name() string { return c.name }

// State returns the current lifecycle state
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selector returns the template selector
func (c *Component) Selector() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector
}

// Src returns the data source reference
func (c *Component) Src() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src
}

// Writable reports whether SetData is accepted
func (c *Component) Writable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writable
}

// Template returns the loaded template text
func (c *Component) Template() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tmpl
}

// Output returns the output of the last successful render
func (c *Component) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Attach makes the component live and renders it
func (c *Component) Attach(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnattached {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("attach %s component: %w", state, ErrInvalidTransition)
	}
	c.state = StateAttached
	c.logger.Debug("component attached")

	pending, err := c.render(ctx)
	c.mu.Unlock()

	c.publish(ctx, pending)
	return err
}

// Detach returns the component to the unattached state
func (c *Component) Detach() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnattached {
		return fmt.Errorf("detach unattached component: %w", ErrInvalidTransition)
	}
	c.state = StateUnattached
	c.logger.Debug("component detached")
	return nil
}

// Render renders an attached component again
func (c *Component) Render(ctx context.Context) error {
	c.mu.Lock()
	pending, err := c.render(ctx)
	c.mu.Unlock()

	c.publish(ctx, pending)
	return err
}

// SetAttribute updates an observed attribute. Unknown attributes and
// unchanged values are ignored. Changing src or selector on an attached
// component re-renders it.
func (c *Component) SetAttribute(ctx context.Context, name, value string) error {
	c.mu.Lock()

	changed := false
	switch name {
	case AttrSrc:
		if c.src != value {
			c.src = value
			c.context = nil
			c.ctxLoaded = false
			changed = true
		}
	case AttrSelector:
		// An empty selector keeps the current one.
		if value != "" && c.selector != value {
			c.selector = value
			c.tmpl = ""
			c.tmplLoaded = false
			changed = true
		}
	case AttrWritable:
		c.writable = value == "true"
	default:
		c.logger.Debug("ignoring unobserved attribute", zap.String("attribute", name))
	}

	if !changed || c.state == StateUnattached {
		c.mu.Unlock()
		return nil
	}

	c.logger.Debug("attribute changed, re-rendering",
		zap.String("attribute", name),
		zap.String("value", value),
	)
	pending, err := c.render(ctx)
	c.mu.Unlock()

	c.publish(ctx, pending)
	return err
}

// SetData replaces the data context directly. The component must be
// writable. It publishes data_loaded and an attached component re-renders.
func (c *Component) SetData(ctx context.Context, data map[string]interface{}) error {
	c.mu.Lock()

	if !c.writable {
		c.mu.Unlock()
		return fmt.Errorf("set data on %s: %w", c.name, ErrReadOnly)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	c.context = data
	c.ctxLoaded = true

	pending := []events.Event{c.event(events.TypeDataLoaded, map[string]interface{}{"keys": len(data)})}
	if c.state == StateUnattached {
		c.mu.Unlock()
		c.publish(ctx, pending)
		return nil
	}

	more, err := c.render(ctx)
	pending = append(pending, more...)
	c.mu.Unlock()

	c.publish(ctx, pending)
	return err
}

// dataWatcher is implemented by data loaders with their own refresh loop
type dataWatcher interface {
	Watch(ctx context.Context, ref string, interval time.Duration, fn func(map[string]interface{}, error)) error
}

// Watch reloads the data source every interval and re-renders the component
// while it is attached. It blocks until ctx is done.
func (c *Component) Watch(ctx context.Context, interval time.Duration) error {
	src := c.Src()
	if src == "" || c.data == nil {
		return fmt.Errorf("component %s has no data source to watch", c.name)
	}

	apply := func(data map[string]interface{}, err error) {
		if err != nil {
			c.logger.Warn("data refresh failed", zap.String("src", src), zap.Error(err))
			return
		}
		c.refreshed(ctx, src, data)
	}

	if watcher, ok := c.data.(dataWatcher); ok {
		return watcher.Watch(ctx, src, interval, apply)
	}

	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			apply(c.data.LoadData(ctx, src))
		}
	}
}

func (c *Component) refreshed(ctx context.Context, src string, data map[string]interface{}) {
	c.mu.Lock()
	// src changed while the refresh was in flight
	if c.src != src {
		c.mu.Unlock()
		return
	}
	c.context = data
	c.ctxLoaded = true

	pending := []events.Event{c.event(events.TypeSourceLoaded, map[string]interface{}{"src": src})}
	if c.state != StateUnattached {
		var more []events.Event
		more, _ = c.render(ctx)
		pending = append(pending, more...)
	}
	c.mu.Unlock()

	c.publish(ctx, pending)
}

// render loads what is missing, renders and writes the output. c.mu must be
// held. The returned events are published by the caller once unlocked.
func (c *Component) render(ctx context.Context) ([]events.Event, error) {
	if c.state == StateUnattached {
		return nil, fmt.Errorf("render %s component: %w", c.state, ErrInvalidTransition)
	}

	var pending []events.Event
	start := time.Now()

	fail := func(err error) ([]events.Event, error) {
		c.state = StateAttached
		c.logger.Warn("component render failed", zap.Error(err))
		pending = append(pending, c.event(events.TypeRenderFailed, map[string]interface{}{
			"error": err.Error(),
		}))
		return pending, fmt.Errorf("render component %s: %w", c.name, err)
	}

	if !c.tmplLoaded {
		if c.selector == "" {
			return fail(fmt.Errorf("selector is required"))
		}
		tmpl, err := c.templates.Template(ctx, c.selector)
		if err != nil {
			return fail(err)
		}
		c.tmpl = tmpl
		c.tmplLoaded = true
	}

	if !c.ctxLoaded {
		switch {
		case c.src == "":
			c.context = map[string]interface{}{}
		case c.data == nil:
			return fail(fmt.Errorf("src %q set but no data loader configured", c.src))
		default:
			data, err := c.data.LoadData(ctx, c.src)
			if err != nil {
				return fail(err)
			}
			c.context = data
			pending = append(pending, c.event(events.TypeSourceLoaded, map[string]interface{}{"src": c.src}))
		}
		c.ctxLoaded = true
	}

	output, err := c.engine.Render(c.tmpl, c.context)
	if err != nil {
		return fail(err)
	}

	if err := c.sink.Write(ctx, c.name, output); err != nil {
		return fail(err)
	}

	c.output = output
	c.state = StateRendered

	duration := time.Since(start)
	c.logger.Debug("component rendered",
		zap.Int("bytes", len(output)),
		zap.Duration("duration", duration),
	)

	pending = append(pending, c.event(events.TypeComponentRendered, map[string]interface{}{
		"selector":    c.selector,
		"src":         c.src,
		"bytes":       len(output),
		"duration_ms": duration.Milliseconds(),
	}))
	return pending, nil
}

func (c *Component) event(eventType string, payload map[string]interface{}) events.Event {
	return events.New(eventType, c.name, payload)
}

func (c *Component) publish(ctx context.Context, pending []events.Event) {
	for _, ev := range pending {
		if err := c.bus.Publish(ctx, c.topic, ev); err != nil {
			c.logger.Warn("failed to publish event",
				zap.String("type", ev.Type),
				zap.Error(err),
			)
		}
	}
}
