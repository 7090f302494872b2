package schemagen

import (
	internalLoader "github.com/goliatone/go-schemagen/internal/jsonschema/loader"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
)

// NewLoader constructs a document loader using the internal implementation
// while keeping the concrete type hidden from consumers. Pass it to
// producer.WithLoader to share one loader across producers.
func NewLoader(options ...jsonschema.LoaderOption) jsonschema.Loader {
	return internalLoader.NewWithOptions(options...)
}
