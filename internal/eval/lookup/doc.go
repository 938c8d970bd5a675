// Package lookup resolves dotted paths against a data context.
//
// A data context is a JSON-like value: nested string-keyed mappings,
// sequences and scalars, as produced by encoding/json or yaml.v3.
//
// Example usage:
//
//	data := map[string]interface{}{
//	    "user": map[string]interface{}{"name": "Ada"},
//	}
//
//	value, ok := lookup.Path(data, "user.name") // "Ada", true
//	_, ok = lookup.Path(data, "user.email")     // nil, false
//
// A path is absent when any segment is missing or when an intermediate
// value is not a mapping. Absence is never an error; callers decide how
// to treat it.
package lookup
