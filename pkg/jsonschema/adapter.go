package jsonschema

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const DefaultAdapterName = "jsonschema"

// Compiled is a schema after ref expansion, the meta-schema check, and
// decoding.
type Compiled struct {
	// Payload is the resolved document with every $ref expanded.
	Payload map[string]any
	Root    *schema.Node
}

// Adapter runs the load, resolve, check, and decode pipeline for Draft 4
// documents.
type Adapter struct {
	loader        Loader
	resolver      *Resolver
	overlay       *Overlay
	skipMetaCheck bool
	logger        *slog.Logger
}

// AdapterOption configures a JSON Schema adapter.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	resolver       *Resolver
	resolverConfig ResolveOptions
	overlay        *Overlay
	skipMetaCheck  bool
	logger         *slog.Logger
}

// WithResolver injects a custom resolver implementation.
func WithResolver(resolver *Resolver) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolver = resolver
	}
}

// WithResolverOptions supplies options to the default resolver.
func WithResolverOptions(options ResolveOptions) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolverConfig = options
	}
}

// WithOverlay applies generator overrides to the resolved payload before it
// is checked and decoded.
func WithOverlay(overlay Overlay) AdapterOption {
	return func(opts *adapterOptions) {
		opts.overlay = &overlay
	}
}

// WithoutMetaCheck skips the Draft 4 meta-schema check.
func WithoutMetaCheck() AdapterOption {
	return func(opts *adapterOptions) {
		opts.skipMetaCheck = true
	}
}

// WithAdapterLogger sets the logger used by the adapter and, unless the
// resolver options carry their own, by the default resolver.
func WithAdapterLogger(logger *slog.Logger) AdapterOption {
	return func(opts *adapterOptions) {
		opts.logger = logger
	}
}

// NewAdapter constructs a JSON Schema adapter with the supplied loader.
func NewAdapter(loader Loader, options ...AdapterOption) *Adapter {
	opts := adapterOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	logger := opts.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	resolver := opts.resolver
	if resolver == nil {
		cfg := opts.resolverConfig
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		resolver = NewResolver(loader, cfg)
	}

	return &Adapter{
		loader:        loader,
		resolver:      resolver,
		overlay:       opts.overlay,
		skipMetaCheck: opts.skipMetaCheck,
		logger:        logger,
	}
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be JSON Schema.
func (a *Adapter) Detect(src schema.Source, raw []byte) bool {
	location := ""
	if src != nil {
		location = src.Location()
	}
	return detectSchema(raw, location)
}

// Load fetches the raw JSON Schema document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("jsonschema adapter: loader is nil")
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(doc.Source(), doc.Raw())
}

// Compile parses the document and runs it through the pipeline.
func (a *Adapter) Compile(ctx context.Context, doc schema.Document) (Compiled, error) {
	if doc.Size() == 0 {
		return Compiled{}, errors.New("jsonschema adapter: empty document")
	}
	payload, err := ParsePayload(doc.Raw(), doc.Location())
	if err != nil {
		return Compiled{}, err
	}
	return a.CompilePayload(ctx, doc, payload)
}

// CompilePayload runs an already parsed payload through the pipeline. doc
// supplies the origin used for relative refs.
func (a *Adapter) CompilePayload(ctx context.Context, doc schema.Document, payload map[string]any) (Compiled, error) {
	if a == nil || a.resolver == nil {
		return Compiled{}, errors.New("jsonschema adapter: resolver is nil")
	}
	if err := checkDialect(payload); err != nil {
		return Compiled{}, err
	}

	resolved, err := a.resolver.Resolve(ctx, doc, payload)
	if err != nil {
		return Compiled{}, err
	}

	if a.overlay != nil {
		if err := ApplyOverlay(resolved, *a.overlay); err != nil {
			return Compiled{}, err
		}
	}

	if !a.skipMetaCheck {
		if err := ValidateDraft4(resolved); err != nil {
			return Compiled{}, err
		}
	}

	root, err := Decode(resolved)
	if err != nil {
		return Compiled{}, err
	}

	a.logger.DebugContext(ctx, "jsonschema: compiled schema",
		"location", doc.Location(), "type", root.Type, "properties", len(root.Properties))

	return Compiled{Payload: resolved, Root: root}, nil
}
