package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/procflow/procflow/pkg/config"
	"github.com/procflow/procflow/pkg/export"
	"github.com/procflow/procflow/pkg/ocel"
	"github.com/procflow/procflow/pkg/p2p"
	"github.com/procflow/procflow/pkg/pipeline"
	"github.com/procflow/procflow/pkg/tui"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run object-centric discovery over an event log",
	Long: `Normalize the raw export, build the object-centric event log, apply the
selected filters and discover the directly-follows graph with frequency
and performance annotations.

Examples:
  procflow discover -i events.csv
  procflow discover -i events.csv --from 2022-01-01 --to 2022-12-31
  procflow discover -i events.csv --po 4500000001 --objects po,gr
  procflow discover -i events.csv --start-type inv --groups Invoicing
  procflow discover -i events.csv --time-agg sum --export`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	discoverCmd.Flags().IntSliceVar(&yearsFlag, "years", nil, "Accepted calendar years (default 2020..2025)")

	discoverCmd.Flags().StringVar(&dateStart, "from", "", "Keep rows at or after this date (YYYY-MM-DD)")
	discoverCmd.Flags().StringVar(&dateEnd, "to", "", "Keep rows at or before this date (YYYY-MM-DD)")
	discoverCmd.Flags().StringSliceVar(&poFilter, "po", nil, "Purchase order allow-list")
	discoverCmd.Flags().StringSliceVar(&invFilter, "invoice", nil, "Invoice allow-list (keeps their POs too)")

	discoverCmd.Flags().StringSliceVar(&objectsFlag, "objects", nil, "Object types to keep (item,po,gr,inv,wf)")
	discoverCmd.Flags().StringVar(&startTypeFlag, "start-type", "", "Keep only first events per object of this type")

	discoverCmd.Flags().StringSliceVar(&groupsFlag, "groups", nil, "Activity groups to keep (PR,PO,GR,Invoicing,Workflow)")
	discoverCmd.Flags().StringSliceVar(&activityFlag, "activities", nil, "Individual activities to keep")
	discoverCmd.Flags().StringSliceVar(&excludeFlag, "exclude", nil, "Activities to drop after selection")
	discoverCmd.Flags().BoolVar(&allActivities, "all-activities", false, "Keep the whole activity catalog")

	discoverCmd.Flags().StringVar(&actMetricFlag, "act-metric", "", "Node annotation (unique_objects, events)")
	discoverCmd.Flags().StringVar(&edgeMetricFlag, "edge-metric", "", "Edge annotation (unique_objects, event_couples)")
	discoverCmd.Flags().StringVar(&timeAggFlag, "time-agg", "", "Duration aggregate (mean, sum)")

	discoverCmd.Flags().BoolVar(&doExport, "export", false, "Write run artifacts (DOT, OCEL JSON, Arrow)")
	discoverCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Artifact directory (default from config)")
	discoverCmd.Flags().BoolVar(&previewOut, "preview", false, "Print the filtered table head")

	discoverCmd.MarkFlagRequired("input")
}

// buildParams turns the CLI flags and config defaults into run parameters.
func buildParams(cfg *config.Config) (pipeline.Params, error) {
	var params pipeline.Params
	var err error

	if params.DateStart, err = parseDate(dateStart); err != nil {
		return params, err
	}
	if params.DateEnd, err = parseDate(dateEnd); err != nil {
		return params, err
	}
	params.POs = poFilter
	params.Invoices = invFilter

	params.Objects = objectsFlag
	if len(params.Objects) == 0 && startTypeFlag == "" {
		params.Objects = cfg.Discovery.Objects
	}
	for _, typ := range params.Objects {
		if !p2p.KnownObjectType(typ) {
			return params, fmt.Errorf("unknown object type %q (valid: %s)",
				typ, strings.Join(p2p.ObjectTypes, ", "))
		}
	}
	params.StartType = startTypeFlag
	if params.StartType != "" && !p2p.KnownObjectType(params.StartType) {
		return params, fmt.Errorf("unknown start type %q (valid: %s)",
			params.StartType, strings.Join(p2p.ObjectTypes, ", "))
	}

	switch {
	case len(activityFlag) > 0:
		params.ActivityMode = p2p.SelectIndividual
		params.Activities = activityFlag
	case len(groupsFlag) > 0:
		params.ActivityMode = p2p.SelectGroups
		params.Groups = groupsFlag
	case allActivities:
		params.ActivityMode = p2p.SelectAll
	case len(cfg.Discovery.Groups) > 0:
		params.ActivityMode = p2p.SelectGroups
		params.Groups = cfg.Discovery.Groups
	default:
		params.ActivityMode = p2p.SelectAll
	}
	params.Exclude = excludeFlag

	if err := applyMetricFlags(cfg, &params); err != nil {
		return params, err
	}

	return params, nil
}

func applyMetricFlags(cfg *config.Config, params *pipeline.Params) error {
	var err error

	actMetric := actMetricFlag
	if actMetric == "" {
		actMetric = cfg.Discovery.ActMetric
	}
	if actMetric != "" {
		if params.ActMetric, err = ocel.ParseActMetric(actMetric); err != nil {
			return err
		}
	}

	edgeMetric := edgeMetricFlag
	if edgeMetric == "" {
		edgeMetric = cfg.Discovery.EdgeMetric
	}
	if edgeMetric != "" {
		if params.EdgeMetric, err = ocel.ParseEdgeMetric(edgeMetric); err != nil {
			return err
		}
	}

	timeAgg := timeAggFlag
	if timeAgg == "" {
		timeAgg = cfg.Discovery.TimeAgg
	}
	if timeAgg != "" {
		if params.TimeAgg, err = ocel.ParseTimeAgg(timeAgg); err != nil {
			return err
		}
	}

	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
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

	start := time.Now()
	res, err := pipe.Run(ctx, params)
	if err != nil {
		tui.PrintError(err)
		return err
	}

	if previewOut {
		tui.PrintPreview(res.Preview)
	}
	tui.PrintView(res.Frequency)
	tui.PrintView(res.Performance)
	tui.PrintRunSummary(res)

	if doExport {
		art, err := export.New(cfg.Export.Dir).ExportRun(ctx, res)
		if err != nil {
			tui.PrintError(err)
			return err
		}
		fmt.Printf("  Artifacts written to %s\n\n", art.Dir)
	}

	if verbose {
		fmt.Printf("  Total time: %s\n\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
