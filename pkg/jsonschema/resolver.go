package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxRefDepth      = 64

	tracerName = "github.com/goliatone/go-schemagen/pkg/jsonschema"
)

// ResolveOptions configures JSON Schema ref resolution.
type ResolveOptions struct {
	// AllowHTTPRefs toggles HTTP/HTTPS ref resolution.
	AllowHTTPRefs bool
	// AllowPathTraversal permits refs to escape the root directory.
	AllowPathTraversal bool
	// MaxDocumentBytes caps the size of any single referenced document.
	MaxDocumentBytes int64
	// MaxDocuments caps the number of unique documents loaded during resolution.
	MaxDocuments int
	// MaxRefDepth caps the depth of $ref resolution chains.
	MaxRefDepth int
	// Logger receives debug records for document loads. Nil discards them.
	Logger *slog.Logger
}

// Resolver expands every $ref of a Draft 4 schema into a self-contained tree.
type Resolver struct {
	loader Loader
	opts   ResolveOptions
	tracer trace.Tracer
}

type resolveSession struct {
	loader Loader
	opts   ResolveOptions
	tracer trace.Tracer
	cache  map[string]*resolvedDocument
	root   *resolvedDocument
}

type resolvedDocument struct {
	key      string
	kind     schema.SourceKind
	location string
	baseDir  string
	// baseURI is set when the document was fetched over HTTP or declares an
	// absolute id; relative refs then resolve against it instead of baseDir.
	baseURI string
	data    map[string]any
	anchors map[string]string
}

// NewResolver constructs a resolver with the supplied loader and options.
func NewResolver(loader Loader, opts ResolveOptions) *Resolver {
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{loader: loader, opts: opts, tracer: otel.Tracer(tracerName)}
}

// Resolve expands $ref references for a parsed schema payload and returns a
// new tree; payload itself is left untouched. When payload is nil the
// document's raw bytes are parsed.
func (r *Resolver) Resolve(ctx context.Context, doc schema.Document, payload map[string]any) (out map[string]any, err error) {
	if r == nil {
		return nil, errors.New("jsonschema resolver: resolver is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema resolver: source is nil")
	}

	ctx, span := r.tracer.Start(ctx, "jsonschema.resolve",
		trace.WithAttributes(attribute.String("schema.location", doc.Location())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if payload == nil {
		payload, err = ParsePayload(doc.Raw(), doc.Location())
		if err != nil {
			return nil, err
		}
	}

	session := &resolveSession{
		loader: r.loader,
		opts:   r.opts,
		tracer: r.tracer,
		cache:  make(map[string]*resolvedDocument),
	}

	root, err := session.prepareRoot(doc, payload)
	if err != nil {
		return nil, err
	}

	state := &resolveState{stack: make([]string, 0, 4), inStack: make(map[string]struct{})}
	resolved, err := session.resolveNode(ctx, root, root.data, state)
	if err != nil {
		return nil, err
	}

	output, ok := resolved.(map[string]any)
	if !ok {
		return nil, &schema.SchemaError{Path: "#", Message: "resolved root is not an object"}
	}
	span.SetAttributes(attribute.Int("schema.documents", len(session.cache)))
	return output, nil
}

func (s *resolveSession) prepareRoot(doc schema.Document, payload map[string]any) (*resolvedDocument, error) {
	if payload == nil {
		return nil, errNilPayload
	}
	if err := checkDialect(payload); err != nil {
		return nil, err
	}
	rootSrc := doc.Source()
	rootKey, rootLocation, baseDir, err := canonicalLocation(rootSrc)
	if err != nil {
		return nil, err
	}
	if int64(doc.Size()) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", doc.Size())
	}

	anchors := make(map[string]string)
	if err := indexAnchors(payload, "", anchors); err != nil {
		return nil, err
	}

	root := &resolvedDocument{
		key:      rootKey,
		kind:     rootSrc.Kind(),
		location: rootLocation,
		baseDir:  baseDir,
		data:     payload,
		anchors:  anchors,
	}
	s.root = root
	s.register(root)
	return root, nil
}

// register caches the document under its location key and, when the payload
// declares an absolute id, under that id too so refs spelling it out hit the
// already-loaded document.
func (s *resolveSession) register(doc *resolvedDocument) {
	if doc.kind == schema.SourceKindURL {
		doc.baseURI = doc.location
	}
	if id := documentID(doc.data); id != "" {
		doc.baseURI = id
		s.cache["url:"+id] = doc
	}
	s.cache[doc.key] = doc
}

func (s *resolveSession) resolveNode(ctx context.Context, doc *resolvedDocument, node any, state *resolveState) (any, error) {
	switch typed := node.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok && strings.TrimSpace(ref) != "" {
			ref = strings.TrimSpace(ref)
			refKey, refDoc, target, err := s.resolveRefTarget(ctx, doc, ref)
			if err != nil {
				return nil, asRefError(ref, err)
			}
			if len(state.stack) >= s.opts.MaxRefDepth {
				return nil, &schema.RefResolutionError{Ref: ref, Message: fmt.Sprintf("ref depth exceeds %d at", s.opts.MaxRefDepth)}
			}
			if state.contains(refKey) {
				chain := append(append([]string(nil), state.stack...), refKey)
				return nil, &schema.CyclicReferenceError{Ref: ref, Chain: chain}
			}
			merged := mergeRefTarget(target, typed)
			state.push(refKey)
			resolved, err := s.resolveNode(ctx, refDoc, merged, state)
			state.pop(refKey)
			if err != nil {
				return nil, err
			}
			return resolved, nil
		}

		resolved := make(map[string]any, len(typed))
		for key, value := range typed {
			switch key {
			case "definitions", "properties":
				items, ok := value.(map[string]any)
				if !ok {
					resolved[key] = cloneAny(value)
					continue
				}
				child := make(map[string]any, len(items))
				for childKey, childValue := range items {
					resolvedChild, err := s.resolveNode(ctx, doc, childValue, state)
					if err != nil {
						return nil, err
					}
					child[childKey] = resolvedChild
				}
				resolved[key] = child
			case "items", "not", "allOf", "anyOf", "oneOf":
				resolvedChild, err := s.resolveNode(ctx, doc, value, state)
				if err != nil {
					return nil, err
				}
				resolved[key] = resolvedChild
			default:
				resolved[key] = cloneAny(value)
			}
		}
		return resolved, nil
	case []any:
		out := make([]any, 0, len(typed))
		for _, entry := range typed {
			resolvedChild, err := s.resolveNode(ctx, doc, entry, state)
			if err != nil {
				return nil, err
			}
			out = append(out, resolvedChild)
		}
		return out, nil
	default:
		return node, nil
	}
}

func (s *resolveSession) resolveRefTarget(ctx context.Context, doc *resolvedDocument, ref string) (string, *resolvedDocument, any, error) {
	refPath, fragment := splitRef(ref)
	if refPath == "" {
		refKey := doc.key + "#" + fragment
		resolved, err := resolveFragment(doc, fragment)
		return refKey, doc, resolved, err
	}

	parsed, err := url.Parse(refPath)
	if err != nil {
		return "", nil, nil, &schema.RefResolutionError{Ref: ref, Message: "malformed reference", Err: err}
	}

	var src schema.Source
	switch {
	case parsed.Scheme == "http" || parsed.Scheme == "https":
		if !s.opts.AllowHTTPRefs {
			return "", nil, nil, &schema.RefResolutionError{Ref: ref, Message: "http refs disabled for"}
		}
		src, err = schema.ParseURLSource(parsed.String())
	case parsed.Scheme == "file":
		src = schema.SourceFromFile(parsed.Path)
	case parsed.Scheme != "":
		return "", nil, nil, &schema.RefResolutionError{Ref: ref, Message: fmt.Sprintf("unsupported ref scheme %q in", parsed.Scheme)}
	default:
		src, err = s.resolveRelativeSource(doc, refPath)
	}
	if err != nil {
		return "", nil, nil, err
	}

	target, err := s.loadDocument(ctx, src)
	if err != nil {
		return "", nil, nil, err
	}
	refKey := target.key + "#" + fragment
	resolved, err := resolveFragment(target, fragment)
	return refKey, target, resolved, err
}

func resolveFragment(doc *resolvedDocument, fragment string) (any, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return cloneAny(doc.data), nil
	}
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return nil, &schema.RefResolutionError{Ref: "#" + fragment, Message: "malformed json pointer", Err: err}
	}
	if !strings.HasPrefix(decoded, "/") {
		pointer, ok := doc.anchors[decoded]
		if !ok {
			return nil, &schema.RefResolutionError{Ref: "#" + fragment, Message: "anchor not found for"}
		}
		decoded = pointer
	}
	return resolveJSONPointer(doc.data, decoded)
}

func (s *resolveSession) loadDocument(ctx context.Context, src schema.Source) (*resolvedDocument, error) {
	key, location, baseDir, err := canonicalLocation(src)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}
	if len(s.cache) >= s.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema resolver: exceeded max documents (%d)", s.opts.MaxDocuments)
	}
	if s.loader == nil {
		return nil, errors.New("jsonschema resolver: loader is nil")
	}

	ctx, span := s.tracer.Start(ctx, "jsonschema.load_document",
		trace.WithAttributes(
			attribute.String("schema.location", location),
			attribute.String("schema.source_kind", string(src.Kind())),
		))
	defer span.End()

	doc, err := s.loader.Load(ctx, src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if int64(doc.Size()) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema resolver: document too large (%d bytes)", doc.Size())
	}
	payload, err := ParsePayload(doc.Raw(), location)
	if err != nil {
		return nil, err
	}
	if err := checkDialect(payload); err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := indexAnchors(payload, "", anchors); err != nil {
		return nil, err
	}

	resolved := &resolvedDocument{
		key:      key,
		kind:     src.Kind(),
		location: location,
		baseDir:  baseDir,
		data:     payload,
		anchors:  anchors,
	}
	s.register(resolved)
	s.opts.Logger.DebugContext(ctx, "jsonschema: loaded referenced document",
		"location", location, "kind", string(src.Kind()), "bytes", doc.Size())

	return resolved, nil
}

func (s *resolveSession) resolveRelativeSource(doc *resolvedDocument, refPath string) (schema.Source, error) {
	if doc.baseURI != "" {
		if !s.opts.AllowHTTPRefs {
			return nil, &schema.RefResolutionError{Ref: refPath, Message: "http refs disabled for"}
		}
		base, err := url.Parse(doc.baseURI)
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(refPath)
		if err != nil {
			return nil, err
		}
		return schema.ParseURLSource(base.ResolveReference(rel).String())
	}

	switch doc.kind {
	case schema.SourceKindFile, schema.SourceKindInline:
		resolved, err := s.cleanFilePath(doc.baseDir, refPath)
		if err != nil {
			return nil, err
		}
		return schema.SourceFromFile(resolved), nil
	case schema.SourceKindFS:
		resolved, err := s.cleanFSPath(doc.baseDir, refPath)
		if err != nil {
			return nil, err
		}
		return schema.SourceFromFS(resolved), nil
	default:
		return nil, errors.New("jsonschema resolver: unsupported source kind")
	}
}

func canonicalLocation(src schema.Source) (string, string, string, error) {
	if src == nil {
		return "", "", "", errors.New("jsonschema resolver: source is nil")
	}
	location := src.Location()
	switch src.Kind() {
	case schema.SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		return "file:" + abs, abs, filepath.Dir(abs), nil
	case schema.SourceKindInline:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		return "inline:" + abs, abs, abs, nil
	case schema.SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, cleaned, path.Dir(cleaned), nil
	case schema.SourceKindURL:
		return "url:" + location, location, "", nil
	default:
		return "", "", "", errors.New("jsonschema resolver: unsupported source kind")
	}
}

func (s *resolveSession) cleanFilePath(baseDir, refPath string) (string, error) {
	candidate := refPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, refPath)
	}
	candidate = filepath.Clean(candidate)
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	root := baseDir
	if s.root != nil && s.root.baseDir != "" {
		root = s.root.baseDir
	}
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &schema.RefResolutionError{Ref: refPath, Message: "ref path escapes root directory"}
	}
	return candidate, nil
}

func (s *resolveSession) cleanFSPath(baseDir, refPath string) (string, error) {
	candidate := path.Clean(path.Join(baseDir, refPath))
	candidate = strings.TrimPrefix(candidate, "/")
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	root := baseDir
	if s.root != nil && s.root.kind == schema.SourceKindFS {
		root = s.root.baseDir
	}
	root = strings.TrimPrefix(path.Clean(root), "/")
	if root == "." {
		root = ""
	}
	if root == "" {
		if candidate == ".." || strings.HasPrefix(candidate, "../") {
			return "", &schema.RefResolutionError{Ref: refPath, Message: "ref path escapes root directory"}
		}
		return candidate, nil
	}
	if candidate == root || strings.HasPrefix(candidate, root+"/") {
		return candidate, nil
	}
	return "", &schema.RefResolutionError{Ref: refPath, Message: "ref path escapes root directory"}
}

func splitRef(ref string) (string, string) {
	parts := strings.SplitN(ref, "#", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func resolveJSONPointer(root any, pointer string) (any, error) {
	if pointer == "" {
		return cloneAny(root), nil
	}
	ptr, err := jsonpointer.New(pointer)
	if err != nil {
		return nil, &schema.RefResolutionError{Ref: "#" + pointer, Message: "malformed json pointer", Err: err}
	}
	value, _, err := ptr.Get(root)
	if err != nil {
		return nil, &schema.RefResolutionError{Ref: "#" + pointer, Message: "pointer target not found for", Err: err}
	}
	return cloneAny(value), nil
}

// indexAnchors records Draft 4 plain-name fragments (an "id" of the form
// "#name") so refs like "#address" resolve to the declaring subschema.
func indexAnchors(node any, pointer string, anchors map[string]string) error {
	switch typed := node.(type) {
	case map[string]any:
		if raw, ok := typed["id"].(string); ok && pointer != "" {
			name := strings.TrimSpace(raw)
			if strings.HasPrefix(name, "#") && len(name) > 1 {
				name = strings.TrimPrefix(name, "#")
				if _, exists := anchors[name]; exists {
					return &schema.SchemaError{Path: "#" + pointer, Message: fmt.Sprintf("duplicate anchor %q", name)}
				}
				anchors[name] = pointer
			}
		}
		for key, value := range typed {
			if key == "enum" || key == "default" || key == schema.GeneratorConfigKey || isVendorExtension(key) {
				continue
			}
			if err := indexAnchors(value, pointer+"/"+escapeJSONPointer(key), anchors); err != nil {
				return err
			}
		}
	case []any:
		for idx, value := range typed {
			if err := indexAnchors(value, fmt.Sprintf("%s/%d", pointer, idx), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeRefTarget overlays annotation siblings of a $ref onto its target.
// Draft 4 ignores every other sibling, so they are dropped.
func mergeRefTarget(target any, refObj map[string]any) any {
	mergedMap, ok := target.(map[string]any)
	if !ok {
		return target
	}
	for key, value := range refObj {
		if key == "$ref" || !isAllowedRefSibling(key) {
			continue
		}
		mergedMap[key] = cloneAny(value)
	}
	return mergedMap
}

func isAllowedRefSibling(key string) bool {
	switch key {
	case "title", "description", "default", schema.GeneratorConfigKey:
		return true
	}
	return isVendorExtension(key)
}

func asRefError(ref string, err error) error {
	var (
		refErr    *schema.RefResolutionError
		cycleErr  *schema.CyclicReferenceError
		schemaErr *schema.SchemaError
	)
	switch {
	case errors.As(err, &refErr), errors.As(err, &cycleErr), errors.As(err, &schemaErr):
		return err
	default:
		return &schema.RefResolutionError{Ref: ref, Message: "cannot load document for", Err: err}
	}
}

func documentID(payload map[string]any) string {
	id := strings.TrimSpace(readString(payload, "id"))
	if id == "" || !schema.IsRemoteLocation(id) {
		return ""
	}
	if idx := strings.Index(id, "#"); idx >= 0 {
		id = id[:idx]
	}
	return id
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = cloneAny(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = cloneAny(val)
		}
		return out
	default:
		return typed
	}
}

type resolveState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *resolveState) push(ref string) {
	s.stack = append(s.stack, ref)
	if s.inStack == nil {
		s.inStack = make(map[string]struct{})
	}
	s.inStack[ref] = struct{}{}
}

func (s *resolveState) pop(ref string) {
	if len(s.stack) == 0 {
		return
	}
	last := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, last)
	if ref != last {
		delete(s.inStack, ref)
	}
}

func (s *resolveState) contains(ref string) bool {
	_, ok := s.inStack[ref]
	return ok
}
