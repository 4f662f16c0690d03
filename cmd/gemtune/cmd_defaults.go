package main

import (
	"github.com/spf13/cobra"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
)

func newDefaultsCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "List the function catalog with factory values and bounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fns := catalog.Functions()
			return render(cmd.OutOrStdout(), mode, fns, func(m format.Mode) string {
				return format.Functions(m, fns)
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "format", "f", "table", "Output format: table, markdown or json")
	return cmd
}
