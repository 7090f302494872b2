package jsonschema

import (
	"bytes"
	"encoding/json"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const metaResourceURL = "schemagen://resolved.json"

// ValidateDraft4 checks a resolved payload against the Draft 4 meta-schema.
// Subschema ids are dropped first: after splicing they no longer describe
// where a subtree lives and the same remote document may appear twice.
func ValidateDraft4(payload map[string]any) error {
	_, err := CompileDraft4(payload)
	return err
}

// CompileDraft4 runs the meta-schema check and returns the compiled schema,
// ready to validate instances.
func CompileDraft4(payload map[string]any) (*santhosh.Schema, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	stripped, _ := stripIDs(payload).(map[string]any)
	raw, err := json.Marshal(stripped)
	if err != nil {
		return nil, &schema.SchemaError{Path: "#", Message: "encode resolved schema", Err: err}
	}

	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft4
	if err := compiler.AddResource(metaResourceURL, bytes.NewReader(raw)); err != nil {
		return nil, &schema.SchemaError{Path: "#", Message: "draft-04 meta-schema check failed", Err: err}
	}
	compiled, err := compiler.Compile(metaResourceURL)
	if err != nil {
		return nil, &schema.SchemaError{Path: "#", Message: "draft-04 meta-schema check failed", Err: err}
	}
	return compiled, nil
}

// stripIDs clones a schema tree without "id" keywords. Only schema positions
// are visited so a property literally named "id" survives.
func stripIDs(node any) any {
	payload, ok := node.(map[string]any)
	if !ok {
		return cloneAny(node)
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		switch key {
		case "id", "$schema":
			continue
		case "properties", "definitions", "patternProperties":
			children, ok := value.(map[string]any)
			if !ok {
				out[key] = cloneAny(value)
				continue
			}
			cleaned := make(map[string]any, len(children))
			for name, child := range children {
				cleaned[name] = stripIDs(child)
			}
			out[key] = cleaned
		case "items", "additionalItems", "additionalProperties", "not", "allOf", "anyOf", "oneOf":
			if list, ok := value.([]any); ok {
				cleaned := make([]any, len(list))
				for idx, child := range list {
					cleaned[idx] = stripIDs(child)
				}
				out[key] = cleaned
				continue
			}
			out[key] = stripIDs(value)
		default:
			out[key] = cloneAny(value)
		}
	}
	return out
}
