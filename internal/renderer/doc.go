// Package renderer turns render requests into rendered output.
//
// A request carries its template either inline or as a selector, and its
// data the same way. The renderer supports two modes:
//   - Inline: the template text travels in the request
//   - Selector: the template is loaded through a source selector
//     ("@https://..." for URLs, a plain name for the registry)
//
// Data follows the template independently: inline data, a data selector, or
// nothing (an empty context).
//
// Example inline rendering:
//
//	req := &Request{
//	    Template: "Hello {{user.name}}!",
//	    Data:     map[string]interface{}{"user": map[string]interface{}{"name": "Ada"}},
//	}
//	result, err := r.Render(ctx, req)
//
// Example selector rendering:
//
//	req := &Request{
//	    TemplateSelector: "profile-card",
//	    DataSelector:     "@https://api.example.com/users/42",
//	}
//	result, err := r.Render(ctx, req)
package renderer
