package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	pkgjsonschema "github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Loader implements pkgjsonschema.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
}

var _ pkgjsonschema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options. Remote documents use the
// supplied client, or a default one unless HTTP is disabled.
func New(options pkgjsonschema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.DisableHTTP:
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	default:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:       options.FileSystem,
		http:     httpClient,
		timeout:  timeout,
		maxBytes: options.MaxBytes,
	}
}

// NewWithOptions is New over functional options.
func NewWithOptions(options ...pkgjsonschema.LoaderOption) *Loader {
	return New(pkgjsonschema.NewLoaderOptions(options...))
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgjsonschema.Source) (pkgjsonschema.Document, error) {
	if src == nil {
		return pkgjsonschema.Document{}, errors.New("jsonschema loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgjsonschema.SourceKindFile:
		data, err = loadFile(ctx, src.Location(), l.maxBytes)
	case pkgjsonschema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location(), l.maxBytes)
	case pkgjsonschema.SourceKindURL:
		if l.http == nil {
			return pkgjsonschema.Document{}, errors.New("jsonschema loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout, l.maxBytes)
	case pkgjsonschema.SourceKindInline:
		err = errors.New("jsonschema loader: inline sources carry their own payload")
	default:
		err = fmt.Errorf("jsonschema loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return pkgjsonschema.Document{}, err
	}

	return schema.NewDocument(src, data)
}

func checkSize(data []byte, maxBytes int64, location string) error {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return fmt.Errorf("jsonschema loader: %s exceeds %d bytes", location, maxBytes)
	}
	return nil
}
