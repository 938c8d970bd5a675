package condition

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/aymerick/raymond"
)

// Truthy reports whether a condition value selects the "then" branch.
func Truthy(value interface{}) bool {
	return raymond.IsTrue(value)
}

func equal(left, right interface{}) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}

	if l, ok := toNumber(left); ok {
		r, ok := toNumber(right)
		return ok && l == r
	}

	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	}

	return reflect.DeepEqual(left, right)
}

// compare orders two numbers or two strings. Any other pairing is not
// comparable.
func compare(left, right interface{}) (int, bool) {
	if l, ok := toNumber(left); ok {
		r, ok := toNumber(right)
		if !ok {
			return 0, false
		}
		switch {
		case l < r:
			return -1, true
		case l > r:
			return 1, true
		case l == r:
			return 0, true
		}
		// NaN
		return 0, false
	}

	l, ok := left.(string)
	if !ok {
		return 0, false
	}
	r, ok := right.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(l, r), true
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case nil, string, bool:
		return 0, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
