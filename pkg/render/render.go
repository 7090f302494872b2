// Package render formats produced values through pongo2 templates, for
// output shapes that JSON and YAML do not cover such as SQL inserts or CSV
// rows.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	globalData map[string]any
	separator  string
}

// WithBaseDir lets templates include and extend files from dir.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS lets templates include and extend files from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithSeparator sets the text written between values by RenderValues.
// Defaults to a newline.
func WithSeparator(sep string) Option {
	return func(cfg *config) {
		cfg.separator = sep
	}
}

// Engine renders values through a pongo2 template set.
type Engine struct {
	mu        sync.Mutex
	set       *pongo2.TemplateSet
	separator string
}

var registerFilters sync.Once

// New constructs an Engine using the provided options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{separator: "\n"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("render: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		loader, err := pongo2.NewLocalFileSystemLoader(".")
		if err != nil {
			return nil, fmt.Errorf("render: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}

	set := pongo2.NewSet("schemagen", loaders...)
	set.Globals = pongo2.Context{}
	for key, value := range cfg.globalData {
		set.Globals[key] = value
	}

	var err error
	registerFilters.Do(func() {
		err = registerDefaultFilters()
	})
	if err != nil {
		return nil, err
	}

	return &Engine{set: set, separator: cfg.separator}, nil
}

// Compile parses template source. Output is not HTML escaped: templates
// describe data files, not pages.
func (e *Engine) Compile(source string) (*Template, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("render: engine is nil")
	}
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("render: template is empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tpl, err := e.set.FromString("{% autoescape off %}" + source + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("render: parse template: %w", err)
	}
	return &Template{tpl: tpl, separator: e.separator}, nil
}

// Template is a compiled template bound to its engine's settings.
type Template struct {
	tpl       *pongo2.Template
	separator string
}

// Render executes the template for a single value. The template sees it as
// "value" alongside "index" and "count".
func (t *Template) Render(value any, index, count int) (string, error) {
	out, err := t.tpl.Execute(pongo2.Context{
		"value": value,
		"index": index,
		"count": count,
	})
	if err != nil {
		return "", fmt.Errorf("render: execute template for value %d: %w", index, err)
	}
	return out, nil
}

// RenderValues renders every value to w, separated by the configured
// separator.
func (t *Template) RenderValues(w io.Writer, values []any) error {
	for idx, value := range values {
		out, err := t.Render(value, idx, len(values))
		if err != nil {
			return err
		}
		if idx > 0 && t.separator != "" {
			if _, err := io.WriteString(w, t.separator); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	if len(values) > 0 && t.separator != "" {
		_, err := io.WriteString(w, t.separator)
		return err
	}
	return nil
}

func registerDefaultFilters() error {
	filters := map[string]pongo2.FilterFunction{
		"tojson":    filterToJSON,
		"sqlquote":  filterSQLQuote,
		"csvescape": filterCSVEscape,
	}
	for name, fn := range filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return fmt.Errorf("render: register filter %q: %w", name, err)
		}
	}
	return nil
}

func filterToJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw, err := json.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsSafeValue(string(raw)), nil
}

// filterSQLQuote renders a SQL literal: NULL for nil, bare numbers and
// booleans, and single-quoted strings with quotes doubled.
func filterSQLQuote(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch value := in.Interface().(type) {
	case nil:
		return pongo2.AsSafeValue("NULL"), nil
	case bool:
		if value {
			return pongo2.AsSafeValue("TRUE"), nil
		}
		return pongo2.AsSafeValue("FALSE"), nil
	case int, int64, float64, json.Number:
		return pongo2.AsSafeValue(fmt.Sprint(value)), nil
	case string:
		return pongo2.AsSafeValue("'" + strings.ReplaceAll(value, "'", "''") + "'"), nil
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:sqlquote", OrigError: err}
		}
		return pongo2.AsSafeValue("'" + strings.ReplaceAll(string(raw), "'", "''") + "'"), nil
	}
}

func filterCSVEscape(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var text string
	switch value := in.Interface().(type) {
	case nil:
		return pongo2.AsSafeValue(""), nil
	case string:
		text = value
	case map[string]any, []any:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:csvescape", OrigError: err}
		}
		text = string(raw)
	default:
		text = fmt.Sprint(value)
	}
	if strings.ContainsAny(text, ",\"\r\n") {
		text = `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
	}
	return pongo2.AsSafeValue(text), nil
}
