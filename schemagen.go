// Package schemagen synthesizes sample data from JSON Schema (Draft 4)
// documents. The root package bundles the common entry points; the pieces
// live under pkg/.
package schemagen

import (
	"context"
	"fmt"

	"github.com/goliatone/go-schemagen/pkg/goschema"
	"github.com/goliatone/go-schemagen/pkg/openapi"
	"github.com/goliatone/go-schemagen/pkg/producer"
)

// Producer aliases producer.Producer for callers that only import the root
// package.
type Producer = producer.Producer

// Option aliases producer.Option.
type Option = producer.Option

// WithSeed makes output reproducible.
func WithSeed(seed uint64) Option {
	return producer.WithSeed(seed)
}

// WithBaseDir sets the directory relative file refs resolve against.
func WithBaseDir(dir string) Option {
	return producer.WithBaseDir(dir)
}

// WithGeneratorMapping maps type or format names to generator names.
func WithGeneratorMapping(mapping map[string]string) Option {
	return producer.WithGeneratorMapping(mapping)
}

// NewProducer loads the JSON or YAML schema at path and returns a producer
// for it.
func NewProducer(ctx context.Context, path string, options ...Option) (*Producer, error) {
	return producer.NewFromFile(ctx, path, options...)
}

// NewProducerFromPayload builds a producer from an already parsed schema.
func NewProducerFromPayload(ctx context.Context, payload map[string]any, options ...Option) (*Producer, error) {
	return producer.NewFromPayload(ctx, payload, options...)
}

// NewProducerForType reflects T into a schema and returns a producer for it.
func NewProducerForType[T any](ctx context.Context, options ...Option) (*Producer, error) {
	payload, err := goschema.PayloadFor[T]()
	if err != nil {
		return nil, err
	}
	return producer.NewFromPayload(ctx, payload, options...)
}

// NewProducerFromOpenAPI extracts the component schema called name from an
// OpenAPI 3 document and returns a producer for it.
func NewProducerFromOpenAPI(ctx context.Context, raw []byte, name string, options ...Option) (*Producer, error) {
	payload, err := openapi.SchemaPayload(ctx, raw, name)
	if err != nil {
		return nil, err
	}
	return producer.NewFromPayload(ctx, payload, options...)
}

// ProduceFile is the one-shot form of NewProducer followed by ProduceBatch.
func ProduceFile(ctx context.Context, path string, count int, options ...Option) ([]any, error) {
	p, err := NewProducer(ctx, path, options...)
	if err != nil {
		return nil, fmt.Errorf("schemagen: %s: %w", path, err)
	}
	return p.ProduceBatch(count)
}
