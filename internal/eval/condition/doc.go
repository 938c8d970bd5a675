// Package condition evaluates the boolean expressions used by {{#if}} blocks.
//
// Expressions are parsed by a small dedicated grammar and evaluated as a tree
// against a read-only data context. Nothing is ever compiled to host code.
//
// Example usage:
//
//	evaluator := condition.NewEvaluator()
//
//	data := map[string]interface{}{
//	    "user":  map[string]interface{}{"active": true},
//	    "count": 3,
//	}
//
//	ok, err := evaluator.Evaluate("user.active && count > 0", data)
//	if err != nil {
//	    log.Fatal(err) // *condition.SyntaxError
//	}
//
// Supported operations:
//   - Operands: property paths (user.name), numbers, 'single' or "double"
//     quoted strings, true, false, null (undefined is an alias of null)
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - Grouping: ( )
//
// Precedence, lowest first: ||, &&, equality, relational, unary !.
//
// Anything else (function calls, arithmetic, indexing, assignment, ===)
// is rejected with a *SyntaxError.
//
// Absent operands: a path that does not resolve evaluates to null. Null is
// falsy, equals only null, and every relational comparison involving it is
// false. Truthiness follows Handlebars: false, 0, "", null and empty
// sequences or mappings are falsy.
//
// A leading "data." segment addresses the context root when the context has
// no "data" key of its own, so "data.count > 0" and "count > 0" are the same
// condition.
package condition
