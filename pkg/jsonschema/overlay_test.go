package jsonschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOverlayApply_MergesGeneratorConfig(t *testing.T) {
	payload := mustParse(t, `{
  "type": "object",
  "properties": {
    "id": {
      "type": "integer",
      "_generator_config": { "generator": "sequence", "start": 1 }
    }
  }
}`)

	overlay, err := ParseOverlay([]byte(`{
  "$schema": "x-generator-overlay/v1",
  "overrides": [
    {
      "path": "/properties/id",
      "_generator_config": { "step": 10 },
      "x-note": "pinned"
    }
  ]
}`))
	if err != nil {
		t.Fatalf("parse overlay: %v", err)
	}
	if err := ApplyOverlay(payload, overlay); err != nil {
		t.Fatalf("apply overlay: %v", err)
	}

	id := property(t, payload, "id")
	cfg := normalizeValue(id["_generator_config"])
	want := map[string]any{"generator": "sequence", "start": int64(1), "step": int64(10)}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("generator config mismatch (-want +got):\n%s", diff)
	}
	if id["x-note"] != "pinned" {
		t.Fatalf("expected extension to be copied, got %#v", id["x-note"])
	}
}

func TestParseOverlay_YAML(t *testing.T) {
	overlay, err := ParseOverlay([]byte(`
$schema: x-generator-overlay/v1
overrides:
  - path: "#/properties/email"
    _generator_config:
      generator: email
`))
	if err != nil {
		t.Fatalf("parse overlay: %v", err)
	}
	if len(overlay.Overrides) != 1 || overlay.Overrides[0].Generator["generator"] != "email" {
		t.Fatalf("unexpected overlay %#v", overlay)
	}
}

func TestParseOverlay_RejectsUnknownSchema(t *testing.T) {
	_, err := ParseOverlay([]byte(`{"$schema":"x-ui-overlay/v1","overrides":[]}`))
	if err == nil {
		t.Fatalf("expected unsupported $schema error")
	}
}

func TestOverlayApply_InvalidPath(t *testing.T) {
	payload := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
		},
	}
	overlay := Overlay{
		Overrides: []OverlayOverride{
			{
				Path:      "/properties/missing",
				Generator: map[string]any{"generator": "uuid"},
			},
		},
	}
	if err := ApplyOverlay(payload, overlay); err == nil {
		t.Fatalf("expected invalid path error")
	}
}
