package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Decode converts a resolved Draft 4 payload into the typed node tree walked
// by the producer. The payload must not contain $ref keys.
func Decode(payload map[string]any) (*schema.Node, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	return decodeNode(payload, "#")
}

func decodeNode(node any, path string) (*schema.Node, error) {
	if node == nil {
		return nil, schemaErrorf(path, "schema is nil")
	}
	payload, ok := node.(map[string]any)
	if !ok {
		return nil, schemaErrorf(path, "schema must be an object")
	}

	if ref := strings.TrimSpace(readString(payload, "$ref")); ref != "" {
		return nil, schemaErrorf(path, "unresolved $ref %q", ref)
	}

	out := &schema.Node{
		Format: strings.TrimSpace(readString(payload, "format")),
		Raw:    payload,
	}

	typ, err := decodeType(payload["type"], path)
	if err != nil {
		return nil, err
	}
	out.Type = typ

	if enumRaw, ok := payload["enum"]; ok {
		enumList, ok := enumRaw.([]any)
		if !ok {
			return nil, schemaErrorf(path, "enum must be an array")
		}
		out.Enum = make([]any, len(enumList))
		for idx, entry := range enumList {
			out.Enum[idx] = normalizeValue(entry)
		}
	}

	if requiredRaw, ok := payload["required"]; ok {
		list, ok := requiredRaw.([]any)
		if !ok {
			return nil, schemaErrorf(path, "required must be an array")
		}
		required := make([]string, 0, len(list))
		for idx, item := range list {
			str, ok := item.(string)
			if !ok || strings.TrimSpace(str) == "" {
				return nil, schemaErrorf(path, "required[%d] must be a string", idx)
			}
			required = append(required, str)
		}
		out.Required = required
		out.HasRequired = true
	}

	if out.Minimum, err = readNumber(payload, "minimum", path); err != nil {
		return nil, err
	}
	if out.Maximum, err = readNumber(payload, "maximum", path); err != nil {
		return nil, err
	}
	if out.MultipleOf, err = readNumber(payload, "multipleOf", path); err != nil {
		return nil, err
	}

	if raw, ok := payload["exclusiveMinimum"]; ok {
		switch value := raw.(type) {
		case bool:
			out.ExclusiveMinimum = value
		default:
			number, ok := toFloat(raw)
			if !ok {
				return nil, schemaErrorf(path, "exclusiveMinimum must be a boolean")
			}
			if out.Minimum != nil {
				return nil, schemaErrorf(path, "minimum conflicts with exclusiveMinimum")
			}
			out.Minimum = &number
			out.ExclusiveMinimum = true
		}
	}

	if raw, ok := payload["exclusiveMaximum"]; ok {
		switch value := raw.(type) {
		case bool:
			out.ExclusiveMaximum = value
		default:
			number, ok := toFloat(raw)
			if !ok {
				return nil, schemaErrorf(path, "exclusiveMaximum must be a boolean")
			}
			if out.Maximum != nil {
				return nil, schemaErrorf(path, "maximum conflicts with exclusiveMaximum")
			}
			out.Maximum = &number
			out.ExclusiveMaximum = true
		}
	}

	if out.MinLength, err = readCount(payload, "minLength", path); err != nil {
		return nil, err
	}
	if out.MaxLength, err = readCount(payload, "maxLength", path); err != nil {
		return nil, err
	}
	if out.MinItems, err = readCount(payload, "minItems", path); err != nil {
		return nil, err
	}
	if out.MaxItems, err = readCount(payload, "maxItems", path); err != nil {
		return nil, err
	}

	if patternRaw, ok := payload["pattern"]; ok {
		pattern, ok := patternRaw.(string)
		if !ok {
			return nil, schemaErrorf(path, "pattern must be a string")
		}
		out.Pattern = pattern
	}

	if uniqueRaw, ok := payload["uniqueItems"]; ok {
		unique, ok := uniqueRaw.(bool)
		if !ok {
			return nil, schemaErrorf(path, "uniqueItems must be a boolean")
		}
		out.UniqueItems = unique
	}

	if raw, ok := payload[schema.GeneratorConfigKey]; ok {
		cfg, err := decodeGeneratorConfig(raw, joinPath(path, schema.GeneratorConfigKey))
		if err != nil {
			return nil, err
		}
		out.Generator = cfg
	}

	if defsRaw, ok := payload["definitions"]; ok {
		defs, ok := defsRaw.(map[string]any)
		if !ok {
			return nil, schemaErrorf(path, "definitions must be an object")
		}
		out.Definitions = make(map[string]*schema.Node, len(defs))
		for _, key := range sortedKeys(defs) {
			child, err := decodeNode(defs[key], joinPath(path, "definitions", key))
			if err != nil {
				return nil, err
			}
			out.Definitions[key] = child
		}
	}

	if propertiesRaw, ok := payload["properties"]; ok {
		props, ok := propertiesRaw.(map[string]any)
		if !ok {
			return nil, schemaErrorf(path, "properties must be an object")
		}
		out.Properties = make([]schema.Property, 0, len(props))
		for _, key := range sortedKeys(props) {
			child, err := decodeNode(props[key], joinPath(path, "properties", key))
			if err != nil {
				return nil, err
			}
			out.Properties = append(out.Properties, schema.Property{Name: key, Schema: child})
		}
	}

	if itemsRaw, ok := payload["items"]; ok {
		switch typed := itemsRaw.(type) {
		case map[string]any:
			child, err := decodeNode(typed, joinPath(path, "items"))
			if err != nil {
				return nil, err
			}
			out.Items = child
		case []any:
			out.Tuple = make([]*schema.Node, 0, len(typed))
			for idx, entry := range typed {
				child, err := decodeNode(entry, joinPath(path, "items", strconv.Itoa(idx)))
				if err != nil {
					return nil, err
				}
				out.Tuple = append(out.Tuple, child)
			}
		default:
			return nil, schemaErrorf(path, "items must be an object or an array")
		}
	}

	return out, nil
}

// decodeType accepts a single type name or a list, in which case the first
// entry wins.
func decodeType(raw any, path string) (string, error) {
	switch typed := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(typed), nil
	case []any:
		if len(typed) == 0 {
			return "", schemaErrorf(path, "type must not be an empty array")
		}
		first, ok := typed[0].(string)
		if !ok {
			return "", schemaErrorf(path, "type[0] must be a string")
		}
		return strings.TrimSpace(first), nil
	default:
		return "", schemaErrorf(path, "type must be a string or an array")
	}
}

func decodeGeneratorConfig(raw any, path string) (*schema.GeneratorConfig, error) {
	payload, ok := raw.(map[string]any)
	if !ok {
		return nil, schemaErrorf(path, "generator config must be an object")
	}
	cfg := &schema.GeneratorConfig{Options: make(map[string]any, len(payload))}
	for key, value := range payload {
		if key == "generator" {
			name, ok := value.(string)
			if !ok {
				return nil, schemaErrorf(path, "generator must be a string")
			}
			cfg.Name = strings.TrimSpace(name)
			continue
		}
		cfg.Options[key] = normalizeValue(value)
	}
	return cfg, nil
}

func readNumber(payload map[string]any, key, path string) (*float64, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return nil, schemaErrorf(path, "%s must be a number", key)
	}
	return &value, nil
}

func readCount(payload map[string]any, key, path string) (*int, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	value, ok := toInt(raw)
	if !ok {
		return nil, schemaErrorf(path, "%s must be an integer", key)
	}
	return &value, nil
}

// normalizeValue replaces json.Number leaves with int64 when integral and
// float64 otherwise, so generated enum picks carry native Go numbers.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = normalizeValue(val)
		}
		return out
	default:
		return typed
	}
}

func schemaErrorf(path, format string, args ...any) error {
	return &schema.SchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func toFloat(value any) (float64, bool) {
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
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func joinPath(path string, segments ...string) string {
	if path == "" || path == "#" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func escapeJSONPointer(value string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(value)
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
