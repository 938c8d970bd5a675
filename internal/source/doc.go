// Package source loads templates and data contexts for rendering.
//
// A selector names where a template or data context comes from. A selector
// starting with "@" is a URL fetched over HTTP; anything else is a name looked
// up in a named registry (a template directory or the Redis store).
//
// Example usage:
//
//	resolver := source.NewResolver(
//	    source.NewHTTPLoader(10*time.Second, logger),
//	    source.NewFileLoader("/srv/templates"),
//	    logger,
//	)
//	tmpl, err := resolver.Template(ctx, "@https://example.com/card.html")
//	data, err := resolver.Data(ctx, "profile")
package source
