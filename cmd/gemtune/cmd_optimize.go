package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/export"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/inputfile"
)

type optimizeFlags struct {
	input    string
	baseline string
	format   string
	out      string
}

func newOptimizeCmd(newEngine engineFactory) *cobra.Command {
	var flags optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize controller settings for a vehicle configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := inputfile.LoadInput(flags.input)
			if err != nil {
				return err
			}
			var baseline catalog.Settings
			if flags.baseline != "" {
				if baseline, err = inputfile.LoadBaseline(flags.baseline); err != nil {
					return err
				}
			}

			result := newEngine(cmd).Optimize(in, baseline)

			if flags.out != "" {
				env, err := export.New(in, result.OptimizedSettings, result.PerformanceChanges, time.Now())
				if err != nil {
					return err
				}
				if err := writeEnvelope(flags.out, env); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", flags.out)
			}

			if err := render(cmd.OutOrStdout(), flags.format, result, func(m format.Mode) string {
				return format.Result(m, result)
			}); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("optimization fell back to emergency settings")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Vehicle configuration file, YAML or JSON (required)")
	f.StringVarP(&flags.baseline, "baseline", "b", "", "Current controller settings to start from")
	f.StringVarP(&flags.format, "format", "f", "table", "Output format: table, markdown or json")
	f.StringVarP(&flags.out, "out", "o", "", "Also write an export envelope to this path")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func writeEnvelope(path string, env *export.Envelope) error {
	b, err := env.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
