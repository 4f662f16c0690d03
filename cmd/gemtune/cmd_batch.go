package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/format"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/inputfile"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/optimizer"
)

type batchFlags struct {
	dir     string
	workers int
	format  string
}

// batchItem is one input file's outcome
type batchItem struct {
	File   string                     `json:"file"`
	Error  string                     `json:"error,omitempty"`
	Result *models.OptimizationResult `json:"result,omitempty"`
}

func newBatchCmd(newEngine engineFactory) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Optimize every configuration file in a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := inputfile.ListInputs(flags.dir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no .yaml, .yml or .json files in %s", flags.dir)
			}

			items, err := runBatch(cmd, newEngine(cmd), paths, flags.workers)
			if err != nil {
				return err
			}

			if err := render(cmd.OutOrStdout(), flags.format, items, func(m format.Mode) string {
				return batchTable(m, items)
			}); err != nil {
				return err
			}

			failed := 0
			for _, it := range items {
				if it.Error != "" || !it.Result.Success {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(items))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.dir, "dir", "d", "", "Directory of configuration files (required)")
	f.IntVarP(&flags.workers, "workers", "w", runtime.NumCPU(), "Parallel optimizations")
	f.StringVarP(&flags.format, "format", "f", "table", "Output format: table, markdown or json")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

// runBatch optimizes paths on a bounded worker pool. Results keep input order.
// The engine is stateless, so one instance serves every worker.
func runBatch(cmd *cobra.Command, engine *optimizer.Engine, paths []string, workers int) ([]batchItem, error) {
	if workers < 1 {
		workers = 1
	}
	items := make([]batchItem, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i].File = filepath.Base(p)
			in, err := inputfile.LoadInput(p)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			result := engine.Optimize(in, nil)
			items[i].Result = &result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func batchTable(m format.Mode, items []batchItem) string {
	t := format.NewTable(m)
	t.Header("File", "Status", "Changed", "Warnings")
	t.AlignRight(3, 4)
	for _, it := range items {
		switch {
		case it.Error != "":
			t.Row(it.File, "error: "+it.Error, "-", "-")
		case !it.Result.Success:
			t.Row(it.File, "emergency fallback", len(it.Result.FactorySettings.Changed(it.Result.OptimizedSettings)), len(it.Result.Warnings))
		default:
			t.Row(it.File, "ok", len(it.Result.FactorySettings.Changed(it.Result.OptimizedSettings)), len(it.Result.Warnings))
		}
	}
	return t.String() + "\n"
}
