package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"reflect"

	internalLoader "github.com/goliatone/go-schemagen/internal/jsonschema/loader"
	"github.com/goliatone/go-schemagen/pkg/generator"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Producer synthesizes values from one resolved schema. Generators are
// cached per PathKey, so stateful generators such as sequences continue
// across calls. A Producer is not safe for concurrent use.
type Producer struct {
	payload        map[string]any
	root           *schema.Node
	registry       *generator.Registry
	rng            *rand.Rand
	logger         *slog.Logger
	uniqueAttempts int
}

// New resolves, checks, and decodes doc, then prepares an empty generator
// cache. Every resolution and decoding error surfaces here.
func New(ctx context.Context, doc schema.Document, options ...Option) (*Producer, error) {
	if ctx == nil {
		return nil, errors.New("producer: context is required")
	}
	cfg := newConfig(options)
	compiled, err := cfg.adapter().Compile(ctx, doc)
	if err != nil {
		return nil, err
	}
	return cfg.producer(compiled)
}

// NewFromPayload builds a producer from an already parsed schema. Relative
// file refs resolve against WithBaseDir, or the working directory.
func NewFromPayload(ctx context.Context, payload map[string]any, options ...Option) (*Producer, error) {
	if ctx == nil {
		return nil, errors.New("producer: context is required")
	}
	if payload == nil {
		return nil, errors.New("producer: payload is required")
	}
	cfg := newConfig(options)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("producer: encode payload: %w", err)
	}
	doc, err := schema.NewDocument(schema.SourceInline(cfg.baseDir), raw)
	if err != nil {
		return nil, err
	}
	compiled, err := cfg.adapter().Compile(ctx, doc)
	if err != nil {
		return nil, err
	}
	return cfg.producer(compiled)
}

// NewFromFile loads a JSON or YAML schema from disk.
func NewFromFile(ctx context.Context, path string, options ...Option) (*Producer, error) {
	if ctx == nil {
		return nil, errors.New("producer: context is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("producer: resolve path %q: %w", path, err)
	}
	cfg := newConfig(options)
	adapter := cfg.adapter()
	doc, err := adapter.Load(ctx, schema.SourceFromFile(abs))
	if err != nil {
		return nil, err
	}
	compiled, err := adapter.Compile(ctx, doc)
	if err != nil {
		return nil, err
	}
	return cfg.producer(compiled)
}

// Produce walks the schema from the root and returns one value.
func (p *Producer) Produce() (any, error) {
	return p.build(schema.RootPath, p.root)
}

// ProduceBatch returns n values. A count below one yields an empty slice and
// no error.
func (p *Producer) ProduceBatch(n int) ([]any, error) {
	if n <= 0 {
		return []any{}, nil
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		value, err := p.Produce()
		if err != nil {
			return nil, fmt.Errorf("producer: value %d: %w", i, err)
		}
		out = append(out, value)
	}
	p.logger.Debug("producer: batch", "count", n, "generators", p.registry.Len())
	return out, nil
}

// Schema returns the decoded root node.
func (p *Producer) Schema() *schema.Node {
	return p.root
}

// Payload returns the resolved document with every $ref expanded.
func (p *Producer) Payload() map[string]any {
	return p.payload
}

// Generators returns a snapshot of the generator cache.
func (p *Producer) Generators() map[schema.PathKey]generator.Generator {
	return p.registry.Snapshot()
}

func (p *Producer) build(path schema.PathKey, node *schema.Node) (any, error) {
	if node == nil {
		return nil, &schema.UnsupportedTypeError{}
	}
	switch nodeType(node) {
	case schema.TypeObject:
		return p.buildObject(path, node)
	case schema.TypeArray:
		if node.IsTuple() {
			return p.buildTuple(path, node)
		}
		return p.buildArray(path, node)
	case schema.TypeNull:
		return nil, nil
	case schema.TypeString, schema.TypeInteger, schema.TypeNumber, schema.TypeBoolean:
		return p.scalar(path, node)
	default:
		if node.GeneratorName() != "" {
			return p.scalar(path, node)
		}
		return nil, &schema.UnsupportedTypeError{Type: node.Type, Format: node.Format}
	}
}

// nodeType infers object and array for untyped nodes that only declare
// properties or items.
func nodeType(node *schema.Node) string {
	if node.Type != "" {
		return node.Type
	}
	switch {
	case len(node.Properties) > 0:
		return schema.TypeObject
	case node.Items != nil || node.Tuple != nil:
		return schema.TypeArray
	}
	return ""
}

func (p *Producer) buildObject(path schema.PathKey, node *schema.Node) (any, error) {
	out := make(map[string]any, len(node.Properties))
	for _, prop := range node.Properties {
		if !p.include(node, prop.Name) {
			continue
		}
		value, err := p.build(path.Child(prop.Name), prop.Schema)
		if err != nil {
			return nil, err
		}
		out[prop.Name] = value
	}
	return out, nil
}

// include keeps required properties and flips a coin for the rest. Without a
// required keyword every property is optional.
func (p *Producer) include(node *schema.Node, name string) bool {
	if node.HasRequired && node.IsRequired(name) {
		return true
	}
	return p.rng.IntN(2) == 1
}

func (p *Producer) buildArray(path schema.PathKey, node *schema.Node) (any, error) {
	minItems, maxItems := 1, 10
	if node.MinItems != nil {
		minItems = *node.MinItems
	}
	if node.MaxItems != nil {
		maxItems = *node.MaxItems
	} else if minItems > maxItems {
		maxItems = minItems
	}
	if minItems < 0 || maxItems < minItems {
		return nil, &schema.RangeError{
			Generator: "array",
			Message:   fmt.Sprintf("maxItems %d is less than minItems %d", maxItems, minItems),
		}
	}

	count := minItems + p.rng.IntN(maxItems-minItems+1)
	out := make([]any, 0, count)
	if node.Items == nil {
		return out, nil
	}

	itemPath := path.Items()
	for len(out) < count {
		value, err := p.build(itemPath, node.Items)
		if err != nil {
			return nil, err
		}
		if node.UniqueItems {
			value, err = p.redrawUnique(itemPath, node.Items, out, value)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, value)
	}
	return out, nil
}

func (p *Producer) redrawUnique(path schema.PathKey, items *schema.Node, seen []any, value any) (any, error) {
	for attempt := 1; containsEqual(seen, value); attempt++ {
		if p.uniqueAttempts > 0 && attempt > p.uniqueAttempts {
			return nil, &schema.RangeError{
				Generator: "array",
				Message:   fmt.Sprintf("no unique item at %s after %d draws", path, p.uniqueAttempts),
			}
		}
		next, err := p.build(path, items)
		if err != nil {
			return nil, err
		}
		value = next
	}
	return value, nil
}

func containsEqual(values []any, candidate any) bool {
	for _, value := range values {
		if reflect.DeepEqual(value, candidate) {
			return true
		}
	}
	return false
}

func (p *Producer) buildTuple(path schema.PathKey, node *schema.Node) (any, error) {
	out := make([]any, 0, len(node.Tuple))
	for idx, item := range node.Tuple {
		value, err := p.build(path.Index(idx), item)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func (p *Producer) scalar(path schema.PathKey, node *schema.Node) (any, error) {
	gen, err := p.registry.Get(path, node)
	if err != nil {
		return nil, err
	}
	return gen.Generate()
}

func newConfig(options []Option) *config {
	cfg := &config{uniqueAttempts: defaultUniqueAttempts}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if !cfg.resolveSet {
		cfg.resolve = jsonschema.ResolveOptions{AllowHTTPRefs: true}
	}
	if cfg.resolve.Logger == nil {
		cfg.resolve.Logger = cfg.logger
	}
	return cfg
}

func (c *config) adapter() *jsonschema.Adapter {
	loader := c.loader
	if loader == nil {
		loader = internalLoader.New(jsonschema.LoaderOptions{
			FileSystem:  c.fileSystem,
			HTTPClient:  c.httpClient,
			DisableHTTP: !c.resolve.AllowHTTPRefs,
			MaxBytes:    c.resolve.MaxDocumentBytes,
		})
	}

	options := []jsonschema.AdapterOption{
		jsonschema.WithResolverOptions(c.resolve),
		jsonschema.WithAdapterLogger(c.logger),
	}
	if c.overlay != nil {
		options = append(options, jsonschema.WithOverlay(*c.overlay))
	}
	if c.skipMeta {
		options = append(options, jsonschema.WithoutMetaCheck())
	}
	return jsonschema.NewAdapter(loader, options...)
}

func (c *config) producer(compiled jsonschema.Compiled) (*Producer, error) {
	catalog := generator.NewCatalog()
	for _, entry := range c.factories {
		if err := catalog.Set(entry.name, entry.factory); err != nil {
			return nil, fmt.Errorf("producer: register generator %q: %w", entry.name, err)
		}
	}

	formats := c.formats
	if formats == nil {
		formats = generator.NewFakerProvider(c.rng.Uint64())
	}
	env := generator.Env{Rand: c.rng, Formats: formats}

	registry := generator.NewRegistry(catalog, env,
		generator.WithMapping(c.mapping),
		generator.WithLogger(c.logger),
	)
	c.logger.Debug("producer: ready", "type", nodeType(compiled.Root), "generators", len(catalog.List()))

	if err := check(registry, compiled.Root); err != nil {
		return nil, err
	}

	return &Producer{
		payload:        compiled.Payload,
		root:           compiled.Root,
		registry:       registry,
		rng:            c.rng,
		logger:         c.logger,
		uniqueAttempts: c.uniqueAttempts,
	}, nil
}

// check walks every reachable node and builds a throwaway generator for each
// scalar so bound errors fail construction. Unsupported types are left for
// Produce, where an optional property may never be visited.
func check(registry *generator.Registry, node *schema.Node) error {
	if node == nil {
		return nil
	}
	switch nodeType(node) {
	case schema.TypeObject:
		for _, prop := range node.Properties {
			if err := check(registry, prop.Schema); err != nil {
				return err
			}
		}
		return nil
	case schema.TypeArray:
		if node.MinItems != nil && node.MaxItems != nil && *node.MaxItems < *node.MinItems {
			return &schema.RangeError{
				Generator: "array",
				Message:   fmt.Sprintf("maxItems %d is less than minItems %d", *node.MaxItems, *node.MinItems),
			}
		}
		for _, item := range node.Tuple {
			if err := check(registry, item); err != nil {
				return err
			}
		}
		return check(registry, node.Items)
	case schema.TypeNull:
		return nil
	}

	err := registry.Check(node)
	var unsupported *schema.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		return nil
	}
	return err
}
