package jsonschema

import (
	"fmt"
	"strings"

	"github.com/go-openapi/jsonpointer"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const overlaySchemaID = "x-generator-overlay/v1"

// Overlay pins generators onto nodes of a schema without editing the schema
// document itself.
type Overlay struct {
	Overrides []OverlayOverride
}

// OverlayOverride targets a schema node using a JSON Pointer into the
// resolved payload and supplies the keys to set on it.
type OverlayOverride struct {
	Path      string
	Generator map[string]any
	// Extensions carries x-* annotations copied verbatim.
	Extensions map[string]any
}

// OverlayError reports malformed overlay documents or invalid override paths.
type OverlayError struct {
	Path    string
	Message string
}

func (e OverlayError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invalid overlay"
	}
	if strings.TrimSpace(e.Path) == "" {
		return "jsonschema overlay: " + msg
	}
	return fmt.Sprintf("jsonschema overlay: %s (%s)", msg, e.Path)
}

// ParseOverlay parses a raw overlay document in JSON or YAML.
func ParseOverlay(raw []byte) (Overlay, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Overlay{}, OverlayError{Message: "overlay document is empty"}
	}

	payload, err := ParsePayload(raw, "")
	if err != nil {
		return Overlay{}, OverlayError{Message: fmt.Sprintf("parse overlay: %v", err)}
	}

	id := strings.TrimSpace(readString(payload, "$schema"))
	id = strings.TrimSuffix(id, "#")
	if id == "" {
		return Overlay{}, OverlayError{Message: "$schema is required"}
	}
	if id != overlaySchemaID {
		return Overlay{}, OverlayError{Message: fmt.Sprintf("unsupported $schema %q", id)}
	}

	rawOverrides, ok := payload["overrides"]
	if !ok {
		return Overlay{}, nil
	}
	list, ok := rawOverrides.([]any)
	if !ok {
		return Overlay{}, OverlayError{Message: "overrides must be an array"}
	}

	overrides := make([]OverlayOverride, 0, len(list))
	for idx, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return Overlay{}, OverlayError{Message: fmt.Sprintf("overrides[%d] must be an object", idx)}
		}
		path := strings.TrimSpace(readString(entry, "path"))
		if path == "" {
			return Overlay{}, OverlayError{Message: fmt.Sprintf("overrides[%d].path is required", idx)}
		}

		override := OverlayOverride{Path: path}
		for key, value := range entry {
			switch {
			case key == "path":
				continue
			case key == schema.GeneratorConfigKey:
				cfg, ok := value.(map[string]any)
				if !ok {
					return Overlay{}, OverlayError{Path: path, Message: fmt.Sprintf("%s must be an object", key)}
				}
				override.Generator = cfg
			case isVendorExtension(key):
				if override.Extensions == nil {
					override.Extensions = make(map[string]any)
				}
				override.Extensions[key] = value
			}
		}

		if override.Generator == nil && len(override.Extensions) == 0 {
			continue
		}
		overrides = append(overrides, override)
	}

	return Overlay{Overrides: overrides}, nil
}

// ApplyOverlay mutates the resolved schema payload with overlay overrides.
// Generator settings merge key by key into any existing _generator_config.
func ApplyOverlay(payload map[string]any, overlay Overlay) error {
	if payload == nil || len(overlay.Overrides) == 0 {
		return nil
	}

	for _, override := range overlay.Overrides {
		target, err := resolveOverlayTarget(payload, override.Path)
		if err != nil {
			return OverlayError{Path: override.Path, Message: err.Error()}
		}
		if override.Generator != nil {
			mergeGeneratorConfig(target, override.Generator)
		}
		for key, value := range override.Extensions {
			target[key] = cloneAny(value)
		}
	}

	return nil
}

func resolveOverlayTarget(root map[string]any, pointer string) (map[string]any, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if trimmed == "" || trimmed == "/" {
		return root, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return nil, fmt.Errorf("path must be a JSON pointer")
	}

	ptr, err := jsonpointer.New(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid json pointer %q", pointer)
	}
	value, _, err := ptr.Get(root)
	if err != nil {
		return nil, fmt.Errorf("path not found")
	}
	target, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("path does not resolve to an object")
	}
	return target, nil
}

func mergeGeneratorConfig(target map[string]any, override map[string]any) {
	existing, _ := target[schema.GeneratorConfigKey].(map[string]any)
	merged := make(map[string]any, len(existing)+len(override))
	for key, value := range existing {
		merged[key] = value
	}
	for key, value := range override {
		merged[key] = cloneAny(value)
	}
	target[schema.GeneratorConfigKey] = merged
}
