package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemagen/internal/config"
)

func registerInitCmd(rootCmd *cobra.Command, s *session) {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a schemagen.yaml config file",
		Long: `Write a schemagen.yaml config file, asking for each setting.

With --yes the defaults are written without prompting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(s.configPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", s.configPath)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			cfg := config.Default()
			if !yes {
				if err := askConfig(cmd, s.prompts(), cfg); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(s.configPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", s.configPath)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(cmd)
}

func (s *session) prompts() PromptDriver {
	if s.env.Prompts != nil {
		return s.env.Prompts
	}
	return surveyDriver{}
}

func askConfig(cmd *cobra.Command, prompts PromptDriver, cfg *config.Config) error {
	ctx := cmd.Context()

	baseDir, err := prompts.Input(ctx, InputConfig{
		Message: "Base directory for relative $ref lookups:",
		Help:    "Leave empty to resolve refs next to each schema file.",
	})
	if err != nil {
		return err
	}
	cfg.BaseDir = strings.TrimSpace(baseDir)

	count, err := prompts.Input(ctx, InputConfig{
		Message:   "Values per run:",
		Default:   strconv.Itoa(cfg.Count),
		Validator: validateCount,
	})
	if err != nil {
		return err
	}
	if cfg.Count, err = strconv.Atoi(strings.TrimSpace(count)); err != nil {
		return fmt.Errorf("count: %w", err)
	}

	formats := []string{config.FormatJSON, config.FormatYAML}
	idx, err := prompts.Select(ctx, SelectConfig{
		Message: "Output format:",
		Options: formats,
	})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(formats) {
		cfg.Format = formats[idx]
	}

	seed, err := prompts.Input(ctx, InputConfig{
		Message:   "Seed (empty for random output):",
		Validator: validateSeed,
	})
	if err != nil {
		return err
	}
	if seed = strings.TrimSpace(seed); seed != "" {
		value, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = &value
	}

	if cfg.AllowHTTP, err = prompts.Confirm(ctx, ConfirmConfig{
		Message: "Follow http(s) $refs?",
		Default: cfg.AllowHTTP,
	}); err != nil {
		return err
	}
	if cfg.MetaValidation, err = prompts.Confirm(ctx, ConfirmConfig{
		Message: "Check schemas against the Draft 4 meta-schema?",
		Default: cfg.MetaValidation,
	}); err != nil {
		return err
	}
	return nil
}

func validateCount(value string) error {
	count, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || count < 0 {
		return errors.New("enter a non-negative whole number")
	}
	return nil
}

func validateSeed(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return errors.New("enter a non-negative whole number or leave empty")
	}
	return nil
}
