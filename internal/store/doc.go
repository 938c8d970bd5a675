// Package store keeps named templates and data contexts in Redis.
//
// Templates are stored as plain strings under render:template:<name> and
// data contexts as JSON objects under render:context:<name>. A Store is a
// source.Loader, so a Resolver can use it as its named registry.
//
// Example usage:
//
//	st := store.New(redisClient, logger)
//	_ = st.SaveTemplate(ctx, "card", "<div>{{name}}</div>")
//	tmpl, err := st.LoadTemplate(ctx, "card")
package store
