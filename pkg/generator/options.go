package generator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// exactInt reads an integral value without a float64 round trip so bounds
// near the int64 limits keep their precision.
func exactInt(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		return floatToInt(v.String())
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func floatToInt(raw string) (int64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return exactInt(f)
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// optionString reads a string generator option.
func optionString(node *schema.Node, key string) (string, bool, error) {
	raw, ok := node.Generator.Option(key)
	if !ok {
		return "", false, nil
	}
	str, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("generator option %q must be a string", key)
	}
	return strings.TrimSpace(str), true, nil
}

// rawBound prefers the literal payload value for a numeric keyword so large
// integers survive, falling back to the decoded float.
func rawBound(node *schema.Node, key string, decoded *float64) (any, bool) {
	if node.Raw != nil {
		if raw, ok := node.Raw[key]; ok {
			if _, isBool := raw.(bool); !isBool {
				return raw, true
			}
		}
	}
	if decoded != nil {
		return *decoded, true
	}
	return nil, false
}
