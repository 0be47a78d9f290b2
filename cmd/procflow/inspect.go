package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procflow/procflow/pkg/normalize"
	"github.com/procflow/procflow/pkg/store"
	"github.com/procflow/procflow/pkg/tui"
)

var (
	inspectRows      int
	inspectCanonical bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a raw CSV export with DuckDB",
	Long: `Load a raw CSV export into an in-memory DuckDB table and print a
row preview, the distinct activities and the distinct purchase orders.
Runs on the raw file before any normalization, so it shows the export
exactly as the source system produced it. With --canonical the file is
run through the normalizer instead and its canonical head is shown.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input CSV file path (required)")
	inspectCmd.Flags().IntVarP(&inspectRows, "rows", "n", 10, "Number of preview rows")
	inspectCmd.Flags().BoolVar(&inspectCanonical, "canonical", false, "Preview the normalized canonical table")
	inspectCmd.MarkFlagRequired("input")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if inspectCanonical {
		return inspectCanonicalTable()
	}

	st, err := store.Open()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.LoadCSV(ctx, inputFile); err != nil {
		return err
	}

	total, err := st.CountRows(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Rows: %d\n\n", total)

	columns, rows, err := st.Preview(ctx, inspectRows)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(columns, "  "))
	for _, r := range rows {
		fmt.Println(strings.Join(r, "  "))
	}

	activities, err := st.DistinctActivities(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nActivities (%d):\n", len(activities))
	for _, a := range activities {
		fmt.Printf("  %s\n", a)
	}

	pos, err := st.DistinctPOs(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nPurchase orders: %d distinct\n", len(pos))

	return nil
}

func inspectCanonicalTable() error {
	table, err := normalize.Load(inputFile, normalize.Options{ShowProgress: interactive()})
	if err != nil {
		return err
	}
	start, end := table.TimeRange()
	fmt.Printf("Rows: %d  (%s .. %s)\n", table.Len(),
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	tui.PrintPreview(table.Head(inspectRows))
	return nil
}
