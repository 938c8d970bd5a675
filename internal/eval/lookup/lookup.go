package lookup

import (
	"reflect"
	"strings"
)

// Path resolves a dot-separated path against ctx.
//
// Whitespace around the whole path is ignored. Empty segments ("a..b")
// make the path absent.
func Path(ctx interface{}, path string) (interface{}, bool) {
	segments, ok := Segments(path)
	if !ok {
		return nil, false
	}

	current := ctx
	for _, segment := range segments {
		next, ok := field(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Segments splits a trimmed path into its segments.
func Segments(path string) ([]string, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, false
		}
	}
	return segments, true
}

// Sequence returns the elements of v when v is a slice or array.
// Strings and byte slices are scalars, not sequences.
func Sequence(v interface{}) ([]interface{}, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case []interface{}:
		return typed, true
	case []map[string]interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []byte, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// IsMapping reports whether v can be traversed by Path.
func IsMapping(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, map[string]string:
		return true
	case nil:
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func field(v interface{}, key string) (interface{}, bool) {
	switch typed := v.(type) {
	case map[string]interface{}:
		next, ok := typed[key]
		return next, ok
	case map[string]string:
		next, ok := typed[key]
		return next, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	next := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !next.IsValid() {
		return nil, false
	}
	return next.Interface(), true
}
