package schemagen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/producer"
)

func writeSchema(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestProduceFile(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "defs.json", `{"definitions":{"score":{"type":"integer","minimum":0,"maximum":10}}}`)
	path := writeSchema(t, dir, "root.json", `{
		"type": "object",
		"required": ["score"],
		"properties": {"score": {"$ref": "defs.json#/definitions/score"}}
	}`)

	values, err := ProduceFile(context.Background(), path, 4, WithSeed(1))
	if err != nil {
		t.Fatalf("produce file: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("expected 4 values, got %d", len(values))
	}
	for _, value := range values {
		score := value.(map[string]any)["score"].(int64)
		if score < 0 || score > 10 {
			t.Fatalf("score %d outside [0, 10]", score)
		}
	}
}

func TestProduceFile_MissingFile(t *testing.T) {
	if _, err := ProduceFile(context.Background(), filepath.Join(t.TempDir(), "none.json"), 1); err == nil {
		t.Fatalf("expected error for missing schema")
	}
}

type order struct {
	ID    string  `json:"id" jsonschema_extras:"x-generator=uuid"`
	Total float64 `json:"total" jsonschema:"minimum=1,maximum=5"`
}

func TestNewProducerForType(t *testing.T) {
	p, err := NewProducerForType[order](context.Background(), WithSeed(2))
	if err != nil {
		t.Fatalf("producer: %v", err)
	}
	value, err := p.Produce()
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	got := value.(map[string]any)
	if total := got["total"].(float64); total < 1 || total > 5 {
		t.Fatalf("total %v outside [1, 5]", total)
	}
	if len(got["id"].(string)) != 36 {
		t.Fatalf("expected uuid id, got %v", got["id"])
	}
}

func TestNewProducerFromOpenAPI(t *testing.T) {
	raw := []byte(`{
		"openapi": "3.0.3",
		"info": {"title": "t", "version": "1"},
		"paths": {},
		"components": {"schemas": {"Flag": {"type": "boolean"}}}
	}`)
	p, err := NewProducerFromOpenAPI(context.Background(), raw, "Flag", WithSeed(3))
	if err != nil {
		t.Fatalf("producer: %v", err)
	}
	value, err := p.Produce()
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if _, ok := value.(bool); !ok {
		t.Fatalf("expected bool, got %T", value)
	}
}

func TestNewLoader_SharedAcrossProducers(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "flag.yaml", "type: boolean\n")
	loader := NewLoader(jsonschema.WithoutHTTP())

	for i := 0; i < 2; i++ {
		p, err := NewProducer(context.Background(), path, producer.WithLoader(loader))
		if err != nil {
			t.Fatalf("producer %d: %v", i, err)
		}
		if _, err := p.Produce(); err != nil {
			t.Fatalf("produce: %v", err)
		}
	}
}
