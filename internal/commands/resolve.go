package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemagen/internal/config"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
)

func registerResolveCmd(rootCmd *cobra.Command, s *session) {
	var (
		format string
		noMeta bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <schema>",
		Short: "Print a schema with every $ref expanded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = s.cfg.Format
			}
			compiled, err := s.compile(cmd, args[0], noMeta || !s.cfg.MetaValidation)
			if err != nil {
				return err
			}
			out, err := encode(compiled.Payload, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", config.FormatJSON, "Output format (json, yaml)")
	cmd.Flags().BoolVar(&noMeta, "no-meta-validation", false, "Skip the Draft 4 meta-schema check")

	rootCmd.AddCommand(cmd)
}

// compile loads location and runs it through the resolve, check, and decode
// pipeline without building generators.
func (s *session) compile(cmd *cobra.Command, location string, skipMeta bool) (jsonschema.Compiled, error) {
	loader := s.loader()
	doc, err := s.loadDocument(cmd, loader, location)
	if err != nil {
		return jsonschema.Compiled{}, err
	}

	options := []jsonschema.AdapterOption{
		jsonschema.WithResolverOptions(jsonschema.ResolveOptions{
			AllowHTTPRefs: s.cfg.AllowHTTP,
			Logger:        s.logger,
		}),
		jsonschema.WithAdapterLogger(s.logger),
	}
	if skipMeta {
		options = append(options, jsonschema.WithoutMetaCheck())
	}
	return jsonschema.NewAdapter(loader, options...).Compile(cmd.Context(), doc)
}
