package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/catalog"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/export"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
)

type verifyFlags struct {
	envelope string
	format   string
}

func newVerifyCmd() *cobra.Command {
	var flags verifyFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check an exported settings file before loading it on a controller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(flags.envelope)
			if err != nil {
				return fmt.Errorf("read envelope: %w", err)
			}
			env, err := export.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", flags.envelope, err)
			}

			factory := catalog.FactoryDefaults()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Envelope OK: version %s, exported %s\n", env.Version, env.Timestamp.Format("2006-01-02 15:04 MST"))
			fmt.Fprintf(out, "%d of %d functions differ from factory\n\n", len(factory.Changed(env.OptimizedSettings)), catalog.FunctionCount)

			m, err := format.ParseMode(flags.format)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, format.SettingsDiff(m, factory, env.OptimizedSettings, true))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.envelope, "envelope", "e", "", "Export envelope to verify (required)")
	f.StringVarP(&flags.format, "format", "f", "table", "Diff format: table or markdown")
	_ = cmd.MarkFlagRequired("envelope")
	return cmd
}
