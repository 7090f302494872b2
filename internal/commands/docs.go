package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func registerDocsCmd(rootCmd *cobra.Command, _ *session) {
	cmd := &cobra.Command{
		Use:    "docs [output-dir]",
		Short:  "Write markdown reference pages for every command",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "./docs/cli"
			if len(args) > 0 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			root := cmd.Root()
			root.DisableAutoGenTag = true
			if err := doc.GenMarkdownTree(root, dir); err != nil {
				return fmt.Errorf("generate docs: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", dir)
			return err
		},
	}
	rootCmd.AddCommand(cmd)
}
