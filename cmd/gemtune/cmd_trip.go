package main

import (
	"github.com/spf13/cobra"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/inputfile"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/trip"
)

type tripFlags struct {
	input  string
	format string
}

func newTripCmd(newEngine engineFactory) *cobra.Command {
	var flags tripFlags

	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Tune settings for a planned trip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			td, err := inputfile.LoadTrip(flags.input)
			if err != nil {
				return err
			}
			result := trip.NewPlanner(newEngine(cmd)).OptimizeForTrip(td)
			return render(cmd.OutOrStdout(), flags.format, result, func(m format.Mode) string {
				return format.TripResult(m, result)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Trip file, YAML or JSON (required)")
	f.StringVarP(&flags.format, "format", "f", "table", "Output format: table, markdown or json")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
