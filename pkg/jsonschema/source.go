package jsonschema

import "github.com/goliatone/go-schemagen/pkg/schema"

// Source identifies where a schema document originated. It aliases the
// canonical schema.Source so loaders and the resolver share one type.
type Source = schema.Source

// Document is a loaded payload together with its Source.
type Document = schema.Document

// SourceKind enumerates the loader modalities.
type SourceKind = schema.SourceKind

const (
	SourceKindFile   = schema.SourceKindFile
	SourceKindFS     = schema.SourceKindFS
	SourceKindURL    = schema.SourceKindURL
	SourceKindInline = schema.SourceKindInline
)

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return schema.SourceFromFile(path)
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return schema.SourceFromFS(name)
}

// SourceFromURL returns a Source for an absolute http(s) URL and panics when
// the URL is invalid.
func SourceFromURL(raw string) Source {
	return schema.SourceFromURL(raw)
}

// SourceInline returns a Source for an in-memory payload whose relative refs
// resolve against baseDir.
func SourceInline(baseDir string) Source {
	return schema.SourceInline(baseDir)
}
