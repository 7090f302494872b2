package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// ParsePayload decodes a schema document into a generic tree. YAML is used
// for .yaml/.yml locations and as a fallback when the bytes are not JSON.
// Numbers are kept as json.Number so int64 bounds survive decoding.
func ParsePayload(raw []byte, location string) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &schema.SchemaError{Message: "raw schema is empty"}
	}

	if isYAMLLocation(location) {
		return parseYAML(trimmed)
	}

	payload, err := parseJSON(trimmed)
	if err == nil {
		return payload, nil
	}
	if trimmed[0] != '{' && !strings.EqualFold(filepath.Ext(location), ".json") {
		if fromYAML, yamlErr := parseYAML(trimmed); yamlErr == nil {
			return fromYAML, nil
		}
	}
	return nil, err
}

func parseJSON(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, &schema.SchemaError{Message: "parse schema", Err: err}
	}
	if payload == nil {
		return nil, &schema.SchemaError{Message: "schema is null"}
	}
	return payload, nil
}

func parseYAML(raw []byte) (map[string]any, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return nil, &schema.SchemaError{Message: "parse yaml schema", Err: err}
	}
	if payload == nil {
		return nil, &schema.SchemaError{Message: "schema is null"}
	}
	normalized, err := normalizeYAML(payload)
	if err != nil {
		return nil, err
	}
	return normalized.(map[string]any), nil
}

// normalizeYAML converts yaml.v3 scalars into the shapes the JSON decoder
// produces: numbers become json.Number and nested maps keep string keys.
func normalizeYAML(value any) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			converted, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, &schema.SchemaError{Message: fmt.Sprintf("yaml key %v is not a string", key)}
			}
			converted, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			converted, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[idx] = converted
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(typed)), nil
	case int64:
		return json.Number(strconv.FormatInt(typed, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(typed, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(typed, 'g', -1, 64)), nil
	default:
		return typed, nil
	}
}

func isYAMLLocation(location string) bool {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// checkDialect rejects documents that declare a draft other than Draft 4. A
// missing $schema is read as Draft 4.
func checkDialect(payload map[string]any) error {
	raw, present := payload["$schema"]
	if !present {
		return nil
	}
	value, ok := raw.(string)
	if !ok {
		return &schema.SchemaError{Path: "#/$schema", Message: "$schema must be a string"}
	}
	if !isDraft4(value) {
		return &schema.SchemaError{Path: "#/$schema", Message: fmt.Sprintf("unsupported $schema %q", strings.TrimSpace(value))}
	}
	return nil
}

func isDraft4(value string) bool {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimSuffix(trimmed, "#")
	switch trimmed {
	case "http://json-schema.org/draft-04/schema", "https://json-schema.org/draft-04/schema":
		return true
	default:
		return false
	}
}

// detectSchema reports whether raw looks like a JSON Schema rather than an
// OpenAPI or Swagger document.
func detectSchema(raw []byte, location string) bool {
	payload, err := ParsePayload(raw, location)
	if err != nil {
		return false
	}
	if _, ok := payload["openapi"]; ok {
		return false
	}
	if _, ok := payload["swagger"]; ok {
		return false
	}
	for _, key := range []string{"$schema", "id", "definitions", "properties", "type", "items", "$ref"} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

func readString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	str, _ := payload[key].(string)
	return str
}

var errNilPayload = errors.New("jsonschema: payload is nil")
