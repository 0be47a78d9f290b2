package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/procflow/procflow/pkg/export"
	"github.com/procflow/procflow/pkg/pipeline"
	"github.com/procflow/procflow/pkg/store"
)

var exportParquet bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run discovery and write all artifacts",
	Long: `Run discovery with the configured defaults and write the full artifact
set: both DOT diagrams, the views JSON, the OCEL 2.0 JSON log and the
filtered table as Arrow IPC. With --parquet the raw CSV is additionally
re-encoded as Parquet through DuckDB.

Examples:
  procflow export -i events.csv -o out
  procflow export -i events.csv --parquet`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Artifact directory (default from config)")
	exportCmd.Flags().IntSliceVar(&yearsFlag, "years", nil, "Accepted calendar years (default 2020..2025)")
	exportCmd.Flags().BoolVar(&exportParquet, "parquet", false, "Also re-encode the raw CSV as Parquet")
	exportCmd.MarkFlagRequired("input")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	pipe := pipeline.New(cfg.Source.Path, cfg.Source.Years)
	pipe.ShowProgress(interactive())
	res, err := pipe.Run(ctx, params)
	if err != nil {
		return err
	}

	art, err := export.New(cfg.Export.Dir).ExportRun(ctx, res)
	if err != nil {
		return err
	}
	fmt.Printf("Artifacts written to %s\n", art.Dir)

	if exportParquet {
		st, err := store.Open()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.LoadCSV(ctx, cfg.Source.Path); err != nil {
			return err
		}
		out := filepath.Join(art.Dir, "events.parquet")
		if err := st.ExportParquet(ctx, out); err != nil {
			return err
		}
		fmt.Printf("Parquet written to %s\n", out)
	}

	return nil
}
