// Package goschema reflects Go types into Draft 4 schema payloads, so a
// struct can drive a producer without a hand-written schema file.
//
// Field tags follow github.com/invopop/jsonschema. A field can pin a
// generator with an extras tag:
//
//	ID string `json:"id" jsonschema_extras:"x-generator=uuid"`
package goschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	pkgjsonschema "github.com/goliatone/go-schemagen/pkg/jsonschema"
)

const (
	draft4URI          = "http://json-schema.org/draft-04/schema#"
	generatorExtension = "x-generator"
	generatorConfigKey = "_generator_config"
)

// Option customises the reflector.
type Option func(*jsonschema.Reflector)

// WithFieldNameTag names properties after another struct tag, such as yaml.
func WithFieldNameTag(tag string) Option {
	return func(r *jsonschema.Reflector) {
		r.FieldNameTag = tag
	}
}

// WithInlineDefinitions expands nested structs in place instead of emitting
// definitions and refs.
func WithInlineDefinitions() Option {
	return func(r *jsonschema.Reflector) {
		r.DoNotReference = true
	}
}

// WithRequiredFromTags only marks fields required when their jsonschema tag
// says so.
func WithRequiredFromTags() Option {
	return func(r *jsonschema.Reflector) {
		r.RequiredFromJSONSchemaTags = true
	}
}

// Reflector wraps jsonschema.Reflector with the defaults the producer needs.
type Reflector struct {
	reflector jsonschema.Reflector
}

// New constructs a reflector. Extra properties are allowed and no $id is
// derived from the package path.
func New(options ...Option) *Reflector {
	r := &Reflector{
		reflector: jsonschema.Reflector{
			Anonymous:                 true,
			AllowAdditionalProperties: true,
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(&r.reflector)
		}
	}
	return r
}

// Payload reflects v and rewrites the result into Draft 4 form.
func (r *Reflector) Payload(v any) (map[string]any, error) {
	reflected := r.reflector.Reflect(v)
	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("goschema: encode reflected schema: %w", err)
	}
	payload, err := pkgjsonschema.ParsePayload(raw, "")
	if err != nil {
		return nil, err
	}

	delete(payload, "$id")
	if defs, ok := payload["$defs"]; ok {
		delete(payload, "$defs")
		payload["definitions"] = defs
	}
	rewrite(payload)
	payload["$schema"] = draft4URI
	return payload, nil
}

// Payload reflects v with the default reflector.
func Payload(v any) (map[string]any, error) {
	return New().Payload(v)
}

// PayloadFor reflects the zero value of T.
func PayloadFor[T any]() (map[string]any, error) {
	var zero T
	return Payload(&zero)
}

// rewrite walks the tree converting keywords newer drafts spell differently.
func rewrite(node any) {
	switch typed := node.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok {
			typed["$ref"] = strings.Replace(ref, "#/$defs/", "#/definitions/", 1)
		}
		numericExclusive(typed, "exclusiveMinimum", "minimum")
		numericExclusive(typed, "exclusiveMaximum", "maximum")
		if name, ok := typed[generatorExtension].(string); ok && name != "" {
			delete(typed, generatorExtension)
			if _, exists := typed[generatorConfigKey]; !exists {
				typed[generatorConfigKey] = map[string]any{"generator": name}
			}
		}
		for _, child := range typed {
			rewrite(child)
		}
	case []any:
		for _, child := range typed {
			rewrite(child)
		}
	}
}

// numericExclusive turns the newer numeric exclusive bound into the Draft 4
// pair of a bound plus a boolean flag.
func numericExclusive(node map[string]any, exclusiveKey, boundKey string) {
	value, ok := node[exclusiveKey].(json.Number)
	if !ok {
		return
	}
	node[boundKey] = value
	node[exclusiveKey] = true
}
