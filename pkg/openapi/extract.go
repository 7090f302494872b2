package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	componentPrefix = "#/components/schemas/"
	draft4URI       = "http://json-schema.org/draft-04/schema#"
)

// Load parses an OpenAPI 3 document from JSON or YAML bytes. External refs
// are not followed.
func Load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if ctx == nil {
		return nil, errors.New("openapi: context is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

// SchemaNames lists the component schemas of doc in sorted order.
func SchemaNames(doc *openapi3.T) []string {
	if doc == nil || doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SchemaPayload loads raw and returns the component schema called name as a
// Draft 4 payload. Every component it reaches is copied under
// components.schemas so the payload stays self-contained.
func SchemaPayload(ctx context.Context, raw []byte, name string) (map[string]any, error) {
	doc, err := Load(ctx, raw)
	if err != nil {
		return nil, err
	}
	return ComponentPayload(doc, name)
}

// ComponentPayload converts the component schema called name from an already
// loaded document.
func ComponentPayload(doc *openapi3.T, name string) (map[string]any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("openapi: schema name is required")
	}
	if doc == nil || doc.Components == nil || doc.Components.Schemas[name] == nil {
		return nil, fmt.Errorf("openapi: schema %q not found (available: %s)", name, strings.Join(SchemaNames(doc), ", "))
	}

	conv := &converter{root: name, schemas: doc.Components.Schemas, seen: map[string]bool{name: true}}
	root := conv.convertValue(doc.Components.Schemas[name].Value)

	components := make(map[string]any)
	for len(conv.pending) > 0 {
		next := conv.pending[0]
		conv.pending = conv.pending[1:]
		ref := doc.Components.Schemas[next]
		if ref == nil {
			return nil, fmt.Errorf("openapi: %s%s does not exist", componentPrefix, next)
		}
		components[next] = conv.convertValue(ref.Value)
	}
	// A component that refers back to the root needs the root under its own
	// name too.
	if conv.rootReferenced {
		components[name] = conv.convertValue(doc.Components.Schemas[name].Value)
	}

	root["$schema"] = draft4URI
	if len(components) > 0 {
		root["components"] = map[string]any{"schemas": components}
	}
	return root, nil
}

// Detect reports whether raw looks like an OpenAPI or Swagger document.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, openapi := payload["openapi"]
			_, swagger := payload["swagger"]
			return openapi || swagger
		}
	}
	lower := strings.ToLower(string(trimmed))
	return strings.Contains(lower, "openapi:") || strings.Contains(lower, "swagger:")
}
