// Package component binds a template selector and a data source into a
// renderable unit with a small lifecycle.
//
// A Component starts Unattached. Attach moves it to Attached and renders it;
// a successful render moves it to Rendered and writes the output to its Sink.
// Changing the selector or src attribute of an attached component re-renders
// it. Detach returns it to Unattached, where rendering is not allowed.
//
// Example usage:
//
//	c, err := component.New("profile-card", component.Deps{
//	    Templates: resolver,
//	    Data:      source.NewCachedData(resolver, time.Minute, logger),
//	    Engine:    template.NewEngine(),
//	    Sink:      component.NewFileSink("/var/www/card.html"),
//	})
//	_ = c.SetAttribute(ctx, "selector", "card")
//	_ = c.SetAttribute(ctx, "src", "@https://api.example.com/me")
//	if err := c.Attach(ctx); err != nil {
//	    log.Fatal(err)
//	}
package component
