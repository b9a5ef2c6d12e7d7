package governance

import (
	"fmt"
	"strings"
)

// HasValue reports whether a form value holds data: non-nil and with a
// non-blank string rendering. Used by the risk model's presence checks.
func HasValue(v any) bool {
	if v == nil {
		return false
	}
	return strings.TrimSpace(fmt.Sprint(v)) != ""
}

// Truthy reports whether a form value is set in the policy-rule sense.
// Empty strings, false booleans, zero numbers and nil are all unset.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
