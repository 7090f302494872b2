package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	pkgjsonschema "github.com/goliatone/go-schemagen/pkg/jsonschema"
)

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "root.json")
	if err := os.WriteFile(path, []byte(`{"type":"string"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := NewWithOptions().Load(context.Background(), pkgjsonschema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != `{"type":"string"}` {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{
		"schemas/root.yaml": {Data: []byte("type: object\n")},
	}
	l := NewWithOptions(pkgjsonschema.WithFileSystem(files))

	doc, err := l.Load(context.Background(), pkgjsonschema.SourceFromFS("/schemas/root.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Size() != len("type: object\n") {
		t.Fatalf("unexpected size %d", doc.Size())
	}

	if _, err := l.Load(context.Background(), pkgjsonschema.SourceFromFS("missing.json")); err == nil {
		t.Fatalf("expected missing fs entry error")
	}
}

func TestLoader_HTTP(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		if r.URL.Path == "/missing.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"type":"integer"}`))
	}))
	defer server.Close()

	l := NewWithOptions(pkgjsonschema.WithHTTPClient(server.Client()))
	doc, err := l.Load(context.Background(), pkgjsonschema.SourceFromURL(server.URL+"/schema.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != `{"type":"integer"}` {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if !strings.Contains(accept, "application/schema+json") {
		t.Fatalf("expected schema accept header, got %q", accept)
	}

	_, err = l.Load(context.Background(), pkgjsonschema.SourceFromURL(server.URL+"/missing.json"))
	if err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoader_HTTPDisabled(t *testing.T) {
	l := NewWithOptions(pkgjsonschema.WithoutHTTP())
	if _, err := l.Load(context.Background(), pkgjsonschema.SourceFromURL("http://example.com/a.json")); err == nil {
		t.Fatalf("expected disabled http error")
	}
}

func TestLoader_MaxBytes(t *testing.T) {
	files := fstest.MapFS{
		"big.json": {Data: []byte(`{"description":"` + strings.Repeat("x", 64) + `"}`)},
	}
	l := NewWithOptions(pkgjsonschema.WithFileSystem(files), pkgjsonschema.WithMaxBytes(16))
	if _, err := l.Load(context.Background(), pkgjsonschema.SourceFromFS("big.json")); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestLoader_InlineRejected(t *testing.T) {
	if _, err := NewWithOptions().Load(context.Background(), pkgjsonschema.SourceInline(".")); err == nil {
		t.Fatalf("expected inline source error")
	}
}
