package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "gemtune",
		Short: "Optimize GEM T2 controller settings",
		Long: "gemtune tunes the 128 GEM T2 controller functions for a vehicle\n" +
			"configuration or a planned trip, and verifies exported settings files.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log optimizer stage details to stderr")

	newEngine := func(cmd *cobra.Command) *optimizer.Engine {
		level := slog.LevelWarn
		if flags.verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return optimizer.New(optimizer.WithLogger(logger))
	}

	root.AddCommand(
		newOptimizeCmd(newEngine),
		newTripCmd(newEngine),
		newDefaultsCmd(),
		newBatchCmd(newEngine),
		newVerifyCmd(),
	)
	return root
}

// engineFactory builds an engine logging to the command's stderr
type engineFactory func(cmd *cobra.Command) *optimizer.Engine

// render writes v as indented JSON, or as text produced by text.
func render(w io.Writer, mode string, v any, text func(format.Mode) string) error {
	if mode == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	m, err := format.ParseMode(mode)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text(m))
	return err
}
