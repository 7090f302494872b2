package commands

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemagen/internal/config"
	"github.com/goliatone/go-schemagen/pkg/generator"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

type violation struct {
	file     string
	location string
	message  string
}

func registerLintCmd(rootCmd *cobra.Command, s *session) {
	var generators []string

	cmd := &cobra.Command{
		Use:   "lint <schema>...",
		Short: "Check schemas for generator problems without producing values",
		Long: `Resolve each schema and check that every node can be served by a
generator. Names in _generator_config must exist in the catalog and bounds
must be satisfiable. Every leaf needs a type or format with a generator.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := config.ParseMapping(generators)
			if err != nil {
				return err
			}
			mapping := maps.Clone(s.cfg.Generators)
			if mapping == nil {
				mapping = make(map[string]string, len(extra))
			}
			maps.Copy(mapping, extra)

			var violations []violation
			for _, location := range args {
				linted, err := lintSchema(cmd, s, location, mapping)
				if err != nil {
					return fmt.Errorf("lint %s: %w", location, err)
				}
				violations = append(violations, linted...)
			}
			if len(violations) == 0 {
				s.logger.Info("schemagen: lint passed", "schemas", len(args))
				return nil
			}

			sort.Slice(violations, func(i, j int) bool {
				if violations[i].file == violations[j].file {
					if violations[i].location == violations[j].location {
						return violations[i].message < violations[j].message
					}
					return violations[i].location < violations[j].location
				}
				return violations[i].file < violations[j].file
			})
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.file, v.location, v.message)
			}
			return fmt.Errorf("%d problem(s) found", len(violations))
		},
	}

	cmd.Flags().StringArrayVarP(&generators, "generator", "g", nil, "Generator mapping as key=name (repeatable)")

	rootCmd.AddCommand(cmd)
}

func lintSchema(cmd *cobra.Command, s *session, location string, mapping map[string]string) ([]violation, error) {
	compiled, err := s.compile(cmd, location, !s.cfg.MetaValidation)
	if err != nil {
		return nil, err
	}

	catalog := generator.NewCatalog()
	env := generator.Env{
		Rand:    rand.New(rand.NewPCG(0, 0)),
		Formats: generator.NewFakerProvider(0),
	}
	registry := generator.NewRegistry(catalog, env, generator.WithMapping(mapping))

	l := &linter{file: location, catalog: catalog, registry: registry}
	l.walk(schema.RootPath, compiled.Root)
	return l.violations, nil
}

type linter struct {
	file       string
	catalog    *generator.Catalog
	registry   *generator.Registry
	violations []violation
}

func (l *linter) report(path schema.PathKey, format string, args ...any) {
	l.violations = append(l.violations, violation{
		file:     l.file,
		location: formatLocation(path),
		message:  fmt.Sprintf(format, args...),
	})
}

func (l *linter) walk(path schema.PathKey, node *schema.Node) {
	if node == nil {
		return
	}

	if name := node.GeneratorName(); name != "" {
		if !l.catalog.Has(name) {
			l.report(path, "unknown generator %q (available: %s)", name, strings.Join(l.catalog.List(), ", "))
			return
		}
		l.check(path, node)
		return
	}

	switch {
	case node.Type == schema.TypeObject || (node.Type == "" && node.Properties != nil):
		for _, prop := range node.Properties {
			l.walk(path.Child(prop.Name), prop.Schema)
		}
	case node.Type == schema.TypeArray || (node.Type == "" && (node.Items != nil || node.Tuple != nil)):
		if node.MinItems != nil && node.MaxItems != nil && *node.MinItems > *node.MaxItems {
			l.report(path, "minItems %d is greater than maxItems %d", *node.MinItems, *node.MaxItems)
		}
		if node.IsTuple() {
			for i, item := range node.Tuple {
				l.walk(path.Index(i), item)
			}
			return
		}
		l.walk(path.Items(), node.Items)
	case node.Type == schema.TypeNull:
	default:
		l.check(path, node)
	}
}

func (l *linter) check(path schema.PathKey, node *schema.Node) {
	err := l.registry.Check(node)
	if err == nil {
		return
	}
	var unsupported *schema.UnsupportedTypeError
	if errors.As(err, &unsupported) && unsupported.Type == "" && unsupported.Format == "" {
		l.report(path, "no type or generator to produce a value from")
		return
	}
	l.report(path, "%v", err)
}

func formatLocation(path schema.PathKey) string {
	return strings.Join(path.Segments(), " > ")
}
