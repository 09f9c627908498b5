package thread

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/levelupgamer/commenttree/internal/comment/model"
)

// payload is the outcome of a strict parse: either a value with its size,
// or ok=false and the reason it was rejected.
type payload[T any] struct {
	value  T
	size   int
	ok     bool
	reason string
}

func malformed[T any](reason string) payload[T] {
	return payload[T]{reason: reason}
}

func parseTree(raw string) payload[[]any] {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return malformed[[]any]("malformed json: " + err.Error())
	}
	items, ok := v.([]any)
	if !ok {
		return malformed[[]any]("payload is not an array")
	}
	return payload[[]any]{value: items, size: len(items), ok: true}
}

func parseFlags(raw string) payload[model.Flags] {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return malformed[model.Flags]("malformed json: " + err.Error())
	}
	m, ok := v.(map[string]any)
	if !ok {
		return malformed[model.Flags]("payload is not an object")
	}
	flags := make(model.Flags, len(m))
	for id, val := range m {
		if on, _ := truthy(val); on && id != "" {
			flags[id] = true
		}
	}
	return payload[model.Flags]{value: flags, size: len(flags), ok: true}
}

// str reads a string-ish field. exact is false when the value had to be
// converted or was missing.
func str(v any) (s string, exact bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), false
	case bool:
		if t {
			return "true", false
		}
		return "", false
	default:
		return "", false
	}
}

// truthy follows JavaScript truthiness. exact is true only for real booleans.
func truthy(v any) (on bool, exact bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case nil:
		return false, false
	case float64:
		return t != 0 && !math.IsNaN(t), false
	case string:
		return t != "", false
	default:
		return true, false
	}
}
