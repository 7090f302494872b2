// Package commands contains all CLI command definitions.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	schemagen "github.com/goliatone/go-schemagen"
	"github.com/goliatone/go-schemagen/internal/config"
	"github.com/goliatone/go-schemagen/internal/telemetry"
	"github.com/goliatone/go-schemagen/pkg/jsonschema"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Env carries the process dependencies commands read from, so tests can
// swap them.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	// Prompts answers interactive questions. Nil uses the terminal.
	Prompts PromptDriver
}

// session is filled by the root pre-run hook and shared by subcommands.
type session struct {
	env    Env
	cfg    *config.Config
	logger *slog.Logger

	configPath string
	envFiles   []string
	logLevel   string
	trace      bool

	shutdownTracing func(context.Context) error
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(env Env) *cobra.Command {
	s := &session{env: env}

	rootCmd := &cobra.Command{
		Use:           "schemagen",
		Short:         "Generate sample data from JSON Schema documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return s.close(cmd.Context())
		},
	}
	rootCmd.SetOut(env.Stdout)
	rootCmd.SetErr(env.Stderr)

	rootCmd.PersistentFlags().StringVar(&s.configPath, "config", config.DefaultFile, "Config file (skipped when missing)")
	rootCmd.PersistentFlags().StringSliceVar(&s.envFiles, "env-file", []string{".env"}, "Files of environment variables to load")
	rootCmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&s.trace, "trace", false, "Write resolver trace spans to stderr as JSON")

	registerGenerateCmd(rootCmd, s)
	registerResolveCmd(rootCmd, s)
	registerGeneratorsCmd(rootCmd, s)
	registerLintCmd(rootCmd, s)
	registerInitCmd(rootCmd, s)
	registerDocsCmd(rootCmd, s)

	return rootCmd
}

// Run executes the CLI with args.
func Run(ctx context.Context, args []string, env Env) error {
	rootCmd := NewRootCmd(env)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (s *session) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(s.envFiles...); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(s.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(s.env.Getenv); err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = s.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, _ := cfg.Level()
	s.cfg = cfg
	s.logger = slog.New(slog.NewTextHandler(s.env.Stderr, &slog.HandlerOptions{Level: level}))
	s.logger.Debug("schemagen: config loaded", "path", s.configPath, "base_dir", cfg.BaseDir)

	if s.trace {
		shutdown, err := telemetry.Init(telemetry.Options{Writer: s.env.Stderr, PrettyPrint: true})
		if err != nil {
			return err
		}
		s.shutdownTracing = shutdown
	}
	return nil
}

func (s *session) close(ctx context.Context) error {
	if s.shutdownTracing == nil {
		return nil
	}
	shutdown := s.shutdownTracing
	s.shutdownTracing = nil
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	return nil
}

func (s *session) loader() jsonschema.Loader {
	options := []jsonschema.LoaderOption{jsonschema.WithRequestTimeout(s.cfg.RequestTimeout)}
	if !s.cfg.AllowHTTP {
		options = append(options, jsonschema.WithoutHTTP())
	}
	return schemagen.NewLoader(options...)
}

// loadDocument reads a schema from a file path or an http(s) URL.
func (s *session) loadDocument(cmd *cobra.Command, loader jsonschema.Loader, location string) (schema.Document, error) {
	if schema.IsRemoteLocation(location) {
		src, err := schema.ParseURLSource(location)
		if err != nil {
			return schema.Document{}, err
		}
		return loader.Load(cmd.Context(), src)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return schema.Document{}, err
	}
	return loader.Load(cmd.Context(), schema.SourceFromFile(abs))
}
