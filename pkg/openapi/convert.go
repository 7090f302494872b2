package openapi

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	generatorExtensionKey = "x-generator-config"
	generatorConfigKey    = "_generator_config"
)

type converter struct {
	root           string
	schemas        openapi3.Schemas
	seen           map[string]bool
	pending        []string
	rootReferenced bool
	merging        map[string]bool
}

func (c *converter) convertRef(ref *openapi3.SchemaRef) map[string]any {
	if ref == nil {
		return map[string]any{}
	}
	if name, ok := strings.CutPrefix(ref.Ref, componentPrefix); ok {
		c.enqueue(name)
		return map[string]any{"$ref": ref.Ref}
	}
	return c.convertValue(ref.Value)
}

func (c *converter) enqueue(name string) {
	if c.seen[name] {
		if name == c.root {
			c.rootReferenced = true
		}
		return
	}
	c.seen[name] = true
	c.pending = append(c.pending, name)
}

// convertValue maps the OpenAPI 3.0 schema object onto the Draft 4 keywords
// the producer reads. nullable and combinators other than allOf are dropped.
func (c *converter) convertValue(src *openapi3.Schema) map[string]any {
	out := make(map[string]any)
	if src == nil {
		return out
	}

	if typ := firstSchemaType(src.Type); typ != "" {
		out["type"] = typ
	}
	if src.Format != "" {
		out["format"] = src.Format
	}
	if src.Title != "" {
		out["title"] = src.Title
	}
	if src.Description != "" {
		out["description"] = src.Description
	}
	if src.Default != nil {
		out["default"] = src.Default
	}
	if len(src.Enum) > 0 {
		out["enum"] = append([]any(nil), src.Enum...)
	}

	if src.Min != nil {
		out["minimum"] = *src.Min
		if src.ExclusiveMin {
			out["exclusiveMinimum"] = true
		}
	}
	if src.Max != nil {
		out["maximum"] = *src.Max
		if src.ExclusiveMax {
			out["exclusiveMaximum"] = true
		}
	}
	if src.MultipleOf != nil {
		out["multipleOf"] = *src.MultipleOf
	}

	if src.MinLength != 0 {
		out["minLength"] = src.MinLength
	}
	if src.MaxLength != nil {
		out["maxLength"] = *src.MaxLength
	}
	if src.Pattern != "" {
		out["pattern"] = src.Pattern
	}

	if src.Items != nil {
		out["items"] = c.convertRef(src.Items)
	}
	if src.MinItems != 0 {
		out["minItems"] = src.MinItems
	}
	if src.MaxItems != nil {
		out["maxItems"] = *src.MaxItems
	}
	if src.UniqueItems {
		out["uniqueItems"] = true
	}

	if len(src.Properties) > 0 {
		props := make(map[string]any, len(src.Properties))
		for name, prop := range src.Properties {
			props[name] = c.convertRef(prop)
		}
		out["properties"] = props
	}
	if len(src.Required) > 0 {
		out["required"] = stringsToAny(src.Required)
	}

	copyExtensions(out, src.Extensions)
	c.mergeAllOf(out, src.AllOf)
	return out
}

// mergeAllOf folds allOf members into target. Properties and required names
// are unioned; scalar keywords already set on target win.
func (c *converter) mergeAllOf(target map[string]any, refs openapi3.SchemaRefs) {
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		member := ref.Value
		name, isComponent := strings.CutPrefix(ref.Ref, componentPrefix)
		if isComponent {
			if c.merging[name] || c.schemas[name] == nil {
				continue
			}
			member = c.schemas[name].Value
		}
		if member == nil {
			continue
		}
		if isComponent {
			if c.merging == nil {
				c.merging = make(map[string]bool)
			}
			c.merging[name] = true
		}
		converted := c.convertValue(member)
		if isComponent {
			delete(c.merging, name)
		}
		for key, value := range converted {
			switch key {
			case "properties":
				props, _ := target["properties"].(map[string]any)
				if props == nil {
					props = make(map[string]any)
				}
				for name, prop := range value.(map[string]any) {
					if _, exists := props[name]; !exists {
						props[name] = prop
					}
				}
				target["properties"] = props
			case "required":
				existing, _ := target["required"].([]any)
				target["required"] = unionRequired(existing, value.([]any))
			default:
				if _, exists := target[key]; !exists {
					target[key] = value
				}
			}
		}
	}
}

// copyExtensions keeps x-* keys and maps x-generator-config onto the
// _generator_config keyword.
func copyExtensions(out map[string]any, extensions map[string]any) {
	for key, value := range extensions {
		switch {
		case key == generatorExtensionKey:
			out[generatorConfigKey] = value
		case strings.HasPrefix(key, "x-"):
			out[key] = value
		}
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "" && value != "null" {
			return value
		}
	}
	return ""
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for idx, value := range values {
		out[idx] = value
	}
	return out
}

func unionRequired(existing, extra []any) []any {
	seen := make(map[any]bool, len(existing))
	out := append([]any(nil), existing...)
	for _, value := range existing {
		seen[value] = true
	}
	for _, value := range extra {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}
