package generator

import (
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"strings"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// DefaultTable maps node types and formats to generator names.
func DefaultTable() map[string]string {
	return map[string]string{
		schema.TypeInteger: NameInteger,
		schema.TypeNumber:  NameNumber,
		schema.TypeString:  NameString,
		schema.TypeBoolean: NameBoolean,
		NameDateTime:       NameDateTime,
		FormatEmail:        FormatEmail,
		FormatIPv4:         FormatIPv4,
		FormatIPv6:         FormatIPv6,
		FormatURI:          FormatURI,
		FormatHostname:     FormatHostname,
		NameUUID:           NameUUID,
	}
}

// Registry hands out generators per PathKey. Each key is built at most once
// and then reused so stateful generators keep their state across calls. A
// Registry is owned by one producer and is not safe for concurrent use.
type Registry struct {
	catalog *Catalog
	table   map[string]string
	env     Env
	cache   map[schema.PathKey]Generator
	logger  *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMapping overrides table entries. Caller entries win over built-ins for
// the same type or format key.
func WithMapping(mapping map[string]string) RegistryOption {
	return func(r *Registry) {
		for key, name := range mapping {
			key, name = strings.TrimSpace(key), strings.TrimSpace(name)
			if key == "" || name == "" {
				continue
			}
			r.table[key] = name
		}
	}
}

// WithLogger sets the logger used for cache fills.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds a registry over catalog. A nil catalog uses NewCatalog.
func NewRegistry(catalog *Catalog, env Env, options ...RegistryOption) *Registry {
	if catalog == nil {
		catalog = NewCatalog()
	}
	r := &Registry{
		catalog: catalog,
		table:   DefaultTable(),
		env:     env,
		cache:   make(map[schema.PathKey]Generator),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Get returns the generator for path, building it from node on first use.
// Construction errors are returned and not cached.
func (r *Registry) Get(path schema.PathKey, node *schema.Node) (Generator, error) {
	if gen, ok := r.cache[path]; ok {
		return gen, nil
	}

	name, err := r.Select(node)
	if err != nil {
		return nil, err
	}
	factory, err := r.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	gen, err := factory(node, r.env)
	if err != nil {
		return nil, err
	}

	r.cache[path] = gen
	r.logger.Debug("generator: cached", "path", path.String(), "generator", name)
	return gen, nil
}

// Check builds a throwaway generator for node so contradictory bounds fail
// before the first draw. It uses a scratch random source and leaves the cache
// and the shared source untouched.
func (r *Registry) Check(node *schema.Node) error {
	name, err := r.Select(node)
	if err != nil {
		return err
	}
	factory, err := r.catalog.Get(name)
	if err != nil {
		return err
	}
	scratch := Env{Rand: rand.New(rand.NewPCG(0, 0)), Formats: r.env.Formats}
	_, err = factory(node, scratch)
	return err
}

// Select picks the generator name for node: an explicit _generator_config
// name first, then a known format, then the node type.
func (r *Registry) Select(node *schema.Node) (string, error) {
	if node == nil {
		return "", &schema.UnsupportedTypeError{}
	}
	if name := node.GeneratorName(); name != "" {
		return name, nil
	}
	if node.Format != "" {
		if name, ok := r.table[node.Format]; ok {
			return name, nil
		}
	}
	if name, ok := r.table[node.Type]; ok && node.Type != "" {
		return name, nil
	}
	return "", &schema.UnsupportedTypeError{Type: node.Type, Format: node.Format}
}

// Lookup returns a cached generator without building one.
func (r *Registry) Lookup(path schema.PathKey) (Generator, bool) {
	gen, ok := r.cache[path]
	return gen, ok
}

// Snapshot copies the cache.
func (r *Registry) Snapshot() map[schema.PathKey]Generator {
	return maps.Clone(r.cache)
}

// Len reports how many generators have been built.
func (r *Registry) Len() int {
	return len(r.cache)
}
