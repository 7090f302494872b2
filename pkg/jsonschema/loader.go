package jsonschema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches referenced schema documents from files, an fs.FS, or HTTP.
// Implementations live under internal/jsonschema/loader.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, src Source) (Document, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, src Source) (Document, error) {
	return f(ctx, src)
}

// LoaderOptions configures how a Loader reaches documents.
type LoaderOptions struct {
	// FileSystem serves SourceKindFS documents.
	FileSystem fs.FS

	// HTTPClient is used for remote refs. Nil falls back to a default client
	// unless DisableHTTP is set.
	HTTPClient *http.Client

	// DisableHTTP rejects every URL source.
	DisableHTTP bool

	// RequestTimeout caps each remote fetch. Zero means no deadline beyond
	// the caller's context.
	RequestTimeout time.Duration

	// MaxBytes stops reading a document past this size. Zero means no cap.
	MaxBytes int64
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithRequestTimeout sets a per-request deadline for remote documents.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.RequestTimeout = timeout
	}
}

// WithMaxBytes caps the number of bytes read per document.
func WithMaxBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxBytes = limit
	}
}

// WithoutHTTP disables remote documents entirely.
func WithoutHTTP() LoaderOption {
	return func(opts *LoaderOptions) {
		opts.DisableHTTP = true
	}
}

// NewLoaderOptions applies a set of LoaderOption values.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
