package producer

import (
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/goliatone/go-schemagen/pkg/generator"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
)

// defaultUniqueAttempts bounds consecutive duplicate draws for one slot of a
// uniqueItems array.
const defaultUniqueAttempts = 1000

// Option customises producer construction.
type Option func(*config)

type namedFactory struct {
	name    string
	factory generator.Factory
}

type config struct {
	baseDir        string
	loader         jsonschema.Loader
	fileSystem     fs.FS
	httpClient     *http.Client
	resolve        jsonschema.ResolveOptions
	resolveSet     bool
	overlay        *jsonschema.Overlay
	skipMeta       bool
	mapping        map[string]string
	factories      []namedFactory
	rng            *rand.Rand
	formats        generator.FormatValueProvider
	logger         *slog.Logger
	uniqueAttempts int
}

// WithBaseDir sets the directory relative file refs resolve against when the
// schema has no file origin of its own, as with NewFromPayload.
func WithBaseDir(dir string) Option {
	return func(c *config) {
		c.baseDir = dir
	}
}

// WithLoader replaces the default file, fs.FS, and HTTP loader.
func WithLoader(loader jsonschema.Loader) Option {
	return func(c *config) {
		c.loader = loader
	}
}

// WithFileSystem serves fs sources from fsys through the default loader.
func WithFileSystem(fsys fs.FS) Option {
	return func(c *config) {
		c.fileSystem = fsys
	}
}

// WithHTTPClient sets the client the default loader uses for remote refs.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithResolveOptions replaces the resolver guardrails. Remote refs are
// allowed by default; passing options without AllowHTTPRefs turns them off.
func WithResolveOptions(options jsonschema.ResolveOptions) Option {
	return func(c *config) {
		c.resolve = options
		c.resolveSet = true
	}
}

// WithOverlay applies generator overrides to the resolved schema.
func WithOverlay(overlay jsonschema.Overlay) Option {
	return func(c *config) {
		c.overlay = &overlay
	}
}

// WithoutMetaValidation skips the Draft 4 meta-schema check.
func WithoutMetaValidation() Option {
	return func(c *config) {
		c.skipMeta = true
	}
}

// WithGeneratorMapping maps type or format names to generator names. Entries
// win over the built-in table.
func WithGeneratorMapping(mapping map[string]string) Option {
	return func(c *config) {
		if len(mapping) == 0 {
			return
		}
		if c.mapping == nil {
			c.mapping = make(map[string]string, len(mapping))
		}
		for key, name := range mapping {
			c.mapping[key] = name
		}
	}
}

// WithGenerator registers an extra factory under name, replacing a built-in
// of the same name.
func WithGenerator(name string, factory generator.Factory) Option {
	return func(c *config) {
		c.factories = append(c.factories, namedFactory{name: name, factory: factory})
	}
}

// WithRand injects the randomness source used for every draw.
func WithRand(rng *rand.Rand) Option {
	return func(c *config) {
		c.rng = rng
	}
}

// WithSeed seeds a PCG source so output is reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithFormatProvider replaces the gofakeit-backed format provider.
func WithFormatProvider(provider generator.FormatValueProvider) Option {
	return func(c *config) {
		c.formats = provider
	}
}

// WithLogger sets the logger for resolution and cache records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithUniqueAttempts bounds how many duplicate draws a uniqueItems array
// tolerates for one slot before failing. Zero or less means unbounded.
func WithUniqueAttempts(n int) Option {
	return func(c *config) {
		c.uniqueAttempts = n
	}
}
