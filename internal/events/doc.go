// Package events carries lifecycle notifications between the render
// components and whoever is listening.
//
// Two buses are provided. RedisBus appends every event to a Redis stream
// named after the topic, so other services can consume them with a consumer
// group. LocalBus dispatches in-process to subscribers and is what the CLI
// and the tests use.
//
// Example usage:
//
//	bus := events.NewLocalBus(logger)
//	bus.Subscribe(events.TypeComponentRendered, func(ev events.Event) {
//	    fmt.Println(ev.Source)
//	})
//	_ = bus.Publish(ctx, "render.events", events.New(events.TypeComponentRendered, "header", nil))
package events
