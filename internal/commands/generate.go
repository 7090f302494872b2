package commands

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemagen/internal/config"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/openapi"
	"github.com/goliatone/go-schemagen/pkg/producer"
	"github.com/goliatone/go-schemagen/pkg/render"
	"github.com/goliatone/go-schemagen/pkg/validation"
)

type generateFlags struct {
	count         int
	seed          uint64
	baseDir       string
	generators    []string
	openAPISchema string
	format        string
	output        string
	overlay       string
	template      string
	validate      bool
	noMeta        bool
}

func registerGenerateCmd(rootCmd *cobra.Command, s *session) {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate <schema>",
		Short: "Produce sample values for a schema",
		Long: `Produce sample values for a JSON Schema (Draft 4) document.

The schema argument is a JSON or YAML file path or an http(s) URL. With
--openapi-schema the file is read as an OpenAPI 3 document and the named
component schema is used instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, s, flags, args[0])
		},
	}

	cmd.Flags().IntVarP(&flags.count, "count", "n", 0, "Number of values to produce (default from config)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Seed for reproducible output")
	cmd.Flags().StringVar(&flags.baseDir, "base-dir", "", "Directory relative file refs resolve against")
	cmd.Flags().StringArrayVarP(&flags.generators, "generator", "g", nil, "Generator mapping as key=name (repeatable)")
	cmd.Flags().StringVar(&flags.openAPISchema, "openapi-schema", "", "Component schema name to use from an OpenAPI document")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringVar(&flags.overlay, "overlay", "", "Overlay file with generator overrides")
	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "Render each value through a pongo2 template file instead of JSON or YAML")
	cmd.Flags().BoolVar(&flags.validate, "validate", false, "Check produced values against the resolved schema")
	cmd.Flags().BoolVar(&flags.noMeta, "no-meta-validation", false, "Skip the Draft 4 meta-schema check")

	rootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, s *session, flags *generateFlags, location string) error {
	cfg := *s.cfg
	cfg.Generators = maps.Clone(s.cfg.Generators)
	if cmd.Flags().Changed("count") {
		cfg.Count = flags.count
	}
	if cmd.Flags().Changed("seed") {
		seed := flags.seed
		cfg.Seed = &seed
	}
	if cmd.Flags().Changed("base-dir") {
		cfg.BaseDir = flags.baseDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = flags.format
	}
	if flags.noMeta {
		cfg.MetaValidation = false
	}
	mapping, err := config.ParseMapping(flags.generators)
	if err != nil {
		return err
	}
	cfg.MergeGenerators(mapping)
	if err := cfg.Validate(); err != nil {
		return err
	}

	options, err := producerOptions(s, &cfg, flags)
	if err != nil {
		return err
	}

	p, err := newProducer(cmd, s, &cfg, flags.openAPISchema, location, options)
	if err != nil {
		return err
	}

	values, err := p.ProduceBatch(cfg.Count)
	if err != nil {
		return err
	}

	if flags.validate {
		validator, err := validation.New(p.Payload())
		if err != nil {
			return err
		}
		if err := validator.ValidateBatch(values).Err(); err != nil {
			return err
		}
	}

	out, err := renderValues(values, cfg.Count, cfg.Format, flags.template)
	if err != nil {
		return err
	}

	if flags.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(flags.output, out, 0o644); err != nil { //nolint:gosec // output is user facing
		return fmt.Errorf("write output: %w", err)
	}
	s.logger.Info("schemagen: values written", "path", flags.output, "count", cfg.Count)
	return nil
}

func renderValues(values []any, count int, format, templatePath string) ([]byte, error) {
	if templatePath == "" {
		var result any = values
		if count == 1 {
			result = values[0]
		}
		return encode(result, format)
	}

	source, err := os.ReadFile(templatePath) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	engine, err := render.New(render.WithBaseDir(filepath.Dir(templatePath)))
	if err != nil {
		return nil, err
	}
	tpl, err := engine.Compile(string(source))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.RenderValues(&buf, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func producerOptions(s *session, cfg *config.Config, flags *generateFlags) ([]producer.Option, error) {
	options := []producer.Option{
		producer.WithLogger(s.logger),
		producer.WithResolveOptions(jsonschema.ResolveOptions{AllowHTTPRefs: cfg.AllowHTTP}),
	}
	if cfg.BaseDir != "" {
		options = append(options, producer.WithBaseDir(cfg.BaseDir))
	}
	if cfg.Seed != nil {
		options = append(options, producer.WithSeed(*cfg.Seed))
	}
	if len(cfg.Generators) > 0 {
		options = append(options, producer.WithGeneratorMapping(cfg.Generators))
	}
	if !cfg.MetaValidation {
		options = append(options, producer.WithoutMetaValidation())
	}
	if flags.overlay != "" {
		raw, err := os.ReadFile(flags.overlay) //nolint:gosec // path is provided by caller
		if err != nil {
			return nil, fmt.Errorf("read overlay: %w", err)
		}
		overlay, err := jsonschema.ParseOverlay(raw)
		if err != nil {
			return nil, err
		}
		options = append(options, producer.WithOverlay(overlay))
	}
	return options, nil
}

func newProducer(cmd *cobra.Command, s *session, cfg *config.Config, component, location string, options []producer.Option) (*producer.Producer, error) {
	if component != "" {
		raw, err := os.ReadFile(location) //nolint:gosec // path is provided by caller
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", location, err)
		}
		payload, err := openapi.SchemaPayload(cmd.Context(), raw, component)
		if err != nil {
			return nil, err
		}
		if cfg.BaseDir == "" {
			if abs, err := filepath.Abs(location); err == nil {
				options = append(options, producer.WithBaseDir(filepath.Dir(abs)))
			}
		}
		return producer.NewFromPayload(cmd.Context(), payload, options...)
	}

	loader := s.loader()
	doc, err := s.loadDocument(cmd, loader, location)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("schemagen: schema loaded", "location", doc.Location(), "bytes", doc.Size())
	options = append(options, producer.WithLoader(loader))
	return producer.New(cmd.Context(), doc, options...)
}
