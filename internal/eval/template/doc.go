// Package template provides the template engine used to render component markup.
//
// The engine rewrites the template text directly; nothing is compiled to an
// intermediate tree. Every render applies three passes in a fixed order,
// re-entering itself for nested fragments:
//
//  1. {{#each path}}...{{/each}} renders its body once per element of the
//     sequence at path, with the element as the whole context.
//  2. {{#if condition}}...{{else}}...{{/if}} renders one branch with the
//     current context.
//  3. {{path}} is replaced by the value at path, or left untouched when the
//     path does not resolve.
//
// Example usage:
//
//	engine := template.NewEngine(template.WithLogger(logger))
//
//	data := map[string]interface{}{
//	    "title": "Team",
//	    "members": []interface{}{
//	        map[string]interface{}{"name": "Ada", "admin": true},
//	        map[string]interface{}{"name": "Linus"},
//	    },
//	}
//
//	tmpl := "<h1>{{title}}</h1>{{#each members}}<li>{{name}}{{#if admin}} *{{/if}}</li>{{/each}}"
//	result, err := engine.Render(tmpl, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Output: <h1>Team</h1><li>Ada *</li><li>Linus</li>
//
// Rendering rules:
//   - each over an absent or non-sequence value renders nothing
//   - blocks of the same kind nest; {{else}} splits only its own {{#if}}
//   - an opener without a matching closer stays in the output as text
//   - substituted values and rendered blocks are never scanned again, so
//     data containing "{{...}}" is emitted verbatim
//   - a JSON null renders as an empty string, mappings render as JSON
//
// Output is not escaped. Conditions are described in package condition; a
// malformed one fails the render with a *ConditionSyntaxError.
package template
