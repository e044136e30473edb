// Package coerce converts externally supplied edit values (which arrive as
// strings from an editing surface) back into the type of the field they
// replace.
//
// Coercion is intentionally permissive and never fails: the worst case is
// that an unparseable edit is discarded and the prior value kept. That
// leniency is part of the contract, not a bug; the Result's Kept flag lets
// callers log or surface it without turning it into an error.
package coerce

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// Result is the outcome of a coercion. Kept is true only when the edit was
// unparseable and the original value was retained unchanged.
type Result struct {
	Value any
	Kept  bool
}

// Coerce converts newVal into the shape oldVal had. The policy, in order:
// non-string values pass through untouched; container-typed fields expect
// JSON; booleans accept word forms; numbers parse with fallbacks; anything
// else tries JSON first and keeps the trimmed string otherwise.
func Coerce(newVal, oldVal any) Result {
	s, ok := newVal.(string)
	if !ok {
		// Already typed (checkbox booleans, JSON numbers): trust it.
		return Result{Value: newVal}
	}
	s = strings.TrimSpace(s)

	if isContainer(oldVal) {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return Result{Value: parsed}
		}
		// Type mismatch is tolerated, not rejected.
		return Result{Value: s}
	}

	switch old := oldVal.(type) {
	case bool:
		switch strings.ToLower(s) {
		case "true", "1", "yes", "on":
			return Result{Value: true}
		case "false", "0", "no", "off":
			return Result{Value: false}
		}
		return Result{Value: s != ""}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Result{Value: int(n)}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Result{Value: int(f)}
		}
		return Result{Value: old, Kept: true}
	case float32, float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Result{Value: f}
		}
		return Result{Value: old, Kept: true}
	case json.Number:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Result{Value: int(n)}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Result{Value: f}
		}
		return Result{Value: old, Kept: true}
	}

	// String, nil, or unknown old value: let users type structured values
	// into previously untyped fields.
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		return Result{Value: parsed}
	}
	return Result{Value: s}
}

func isContainer(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case map[string]any, []any:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
