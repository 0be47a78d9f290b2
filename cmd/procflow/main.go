// ProcFlow - Object-centric process discovery for procure-to-pay event logs.
// Normalizes raw CSV/XLSX exports into an OCEL log and discovers annotated
// directly-follows graphs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/procflow/procflow/pkg/config"
	"github.com/procflow/procflow/pkg/telemetry"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	configPath string
	inputFile  string
	verbose    bool

	// Pre-OCEL filter flags
	dateStart string
	dateEnd   string
	poFilter  []string
	invFilter []string
	yearsFlag []int

	// Log filter flags
	objectsFlag   []string
	startTypeFlag string
	groupsFlag    []string
	activityFlag  []string
	excludeFlag   []string
	allActivities bool

	// Metric flags
	actMetricFlag  string
	edgeMetricFlag string
	timeAggFlag    string

	// Export flags
	exportDir  string
	doExport   bool
	previewOut bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "procflow",
	Short: "ProcFlow - Object-centric process discovery for P2P logs",
	Long: `ProcFlow normalizes raw procure-to-pay exports (CSV, XLSX) into an
object-centric event log and discovers directly-follows graphs annotated
with frequency and performance metrics.

Examples:
  procflow discover -i events.csv
  procflow discover -i events.csv --objects po,gr --groups PO,GR --export
  procflow inspect -i events.csv
  procflow serve -i events.csv --port 3000
  procflow watch -i events.csv`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default .procflow.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
}

// loadConfig layers the config file under the flags already parsed.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if inputFile != "" {
		cfg.Source.Path = inputFile
	}
	if len(yearsFlag) > 0 {
		cfg.Source.Years = yearsFlag
	}
	if exportDir != "" {
		cfg.Export.Dir = exportDir
	}
	if cfg.Source.Path == "" {
		return nil, fmt.Errorf("no input file: pass --input or set source.path in the config")
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
// interactive reports whether the command runs in a terminal where a
// progress bar is worth rendering. Verbose forces it on for piped runs.
func interactive() bool {
	return verbose || isatty.IsTerminal(os.Stderr.Fd())
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// setupTelemetry installs the OTLP tracer when enabled. The returned
// shutdown function flushes pending spans.
func setupTelemetry(ctx context.Context, cfg *config.Config) func(context.Context) error {
	if !cfg.Telemetry.Enabled {
		return func(context.Context) error { return nil }
	}

	otlpCfg := telemetry.DefaultOTLPConfig("procflow")
	otlpCfg.ServiceVersion = version
	if cfg.Telemetry.Endpoint != "" {
		otlpCfg.Endpoint = cfg.Telemetry.Endpoint
	}

	shutdown, err := telemetry.NewOTLPExporter(otlpCfg).Init(ctx)
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		}
		return func(context.Context) error { return nil }
	}
	return shutdown
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .procflow.yaml to the working directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ".procflow.yaml"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		cfg := config.Default()
		if inputFile != "" {
			cfg.Source.Path = inputFile
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to record in the config")
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}
