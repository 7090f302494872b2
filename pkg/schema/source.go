package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can read
// files, fs.FS entries, or URLs without leaking implementation details into
// the resolver.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
	// SourceKindInline marks a payload handed over in memory. Its location is
	// the directory sibling-file refs are resolved against.
	SourceKindInline SourceKind = "inline"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }

func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }

func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }

func (s urlSource) Kind() SourceKind { return SourceKindURL }

// ParseURLSource validates raw as an absolute http(s) URL and returns a Source
// for it. Any fragment is dropped since documents are addressed without one.
func ParseURLSource(raw string) (Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("schema: empty URL source")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("schema: URL %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("schema: URL %q has no host", raw)
	}
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return urlSource{raw: parsed.String()}, nil
}

// SourceFromURL is ParseURLSource for static configuration. It panics on an
// invalid URL to surface wiring mistakes early.
func SourceFromURL(raw string) Source {
	src, err := ParseURLSource(raw)
	if err != nil {
		panic(err)
	}
	return src
}

type inlineSource struct {
	baseDir string
}

func (s inlineSource) Location() string { return s.baseDir }

func (s inlineSource) Kind() SourceKind { return SourceKindInline }

// SourceInline returns a Source for a payload that did not come from a
// loader. Relative refs inside it resolve against baseDir ("." when empty).
func SourceInline(baseDir string) Source {
	if strings.TrimSpace(baseDir) == "" {
		baseDir = "."
	}
	return inlineSource{baseDir: filepath.Clean(baseDir)}
}

// IsRemoteLocation reports whether value is an absolute http(s) URL.
func IsRemoteLocation(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
