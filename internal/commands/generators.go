package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemagen/pkg/generator"
)

func registerGeneratorsCmd(rootCmd *cobra.Command, s *session) {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "generators",
		Short: "List the registered generator names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !showTable {
				for _, name := range generator.NewCatalog().List() {
					if _, err := fmt.Fprintln(out, name); err != nil {
						return err
					}
				}
				return nil
			}

			table := generator.DefaultTable()
			for key, name := range s.cfg.Generators {
				table[key] = name
			}
			keys := make([]string, 0, len(table))
			for key := range table {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tGENERATOR")
			for _, key := range keys {
				fmt.Fprintf(w, "%s\t%s\n", key, table[key])
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showTable, "table", false, "Show the type and format mapping in effect instead")

	rootCmd.AddCommand(cmd)
}
