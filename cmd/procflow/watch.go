package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procflow/procflow/pkg/export"
	"github.com/procflow/procflow/pkg/pipeline"
	"github.com/procflow/procflow/pkg/tui"
	"github.com/procflow/procflow/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run discovery whenever the source file changes",
	Long: `Watch the source file and re-run discovery with the configured
selections on every change. With --export each run writes a fresh
artifact set under its own run directory.

Examples:
  procflow watch -i events.csv
  procflow watch -i events.csv --groups PO,GR --export`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	watchCmd.Flags().IntSliceVar(&yearsFlag, "years", nil, "Accepted calendar years (default 2020..2025)")
	watchCmd.Flags().StringSliceVar(&objectsFlag, "objects", nil, "Object types to keep (item,po,gr,inv,wf)")
	watchCmd.Flags().StringSliceVar(&groupsFlag, "groups", nil, "Activity groups to keep (PR,PO,GR,Invoicing,Workflow)")
	watchCmd.Flags().BoolVar(&doExport, "export", false, "Write run artifacts on every change")
	watchCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Artifact directory (default from config)")
	watchCmd.MarkFlagRequired("input")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	params, err := buildParams(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	shutdown := setupTelemetry(ctx, cfg)
	defer shutdown(ctx)

	tui.PrintHeader(version)

	pipe := pipeline.New(cfg.Source.Path, cfg.Source.Years)
	pipe.ShowProgress(interactive())
	exporter := export.New(cfg.Export.Dir)

	run := func() {
		res, err := pipe.Run(ctx, params)
		if err != nil {
			tui.PrintError(err)
			return
		}
		tui.PrintRunSummary(res)
		if doExport {
			art, err := exporter.ExportRun(ctx, res)
			if err != nil {
				tui.PrintError(err)
				return
			}
			fmt.Printf("  Artifacts written to %s\n", art.Dir)
		}
	}

	// Initial run before the first change
	run()

	w, err := watch.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnChange = func(path string) error {
		tui.PrintWatch(path)
		pipe.Invalidate()
		run()
		return nil
	}
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch error (%s): %v\n", path, err)
	}

	if err := w.Watch(cfg.Source.Path); err != nil {
		return err
	}

	fmt.Printf("  Watching %s (Ctrl-C to stop)\n", cfg.Source.Path)
	return w.Run(ctx)
}
