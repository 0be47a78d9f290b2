// Package pipeline orchestrates one discovery run: normalize (cached),
// pre-filter, OCEL build, OCEL filters, OC-DFG discovery, views.
// Every run is a pure function of (source file, parameters); no mutable
// state is shared between runs except the read-only canonical table cache.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/cache"
	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/filter"
	"github.com/procflow/procflow/pkg/normalize"
	"github.com/procflow/procflow/pkg/ocel"
	"github.com/procflow/procflow/pkg/p2p"
)

// PreviewRows is how many filtered rows a run exposes for inspection.
const PreviewRows = 50

// Mode selects which post-OCEL object filter runs. The two are mutually
// exclusive; exactly one is active per run.
type Mode string

const (
	// ModeObjects keeps events touching any selected object type.
	ModeObjects Mode = "objects"
	// ModeStartEvent keeps only first events per object of one type.
	ModeStartEvent Mode = "start_event"
)

// Params are the filter and metric selections of one discovery run.
type Params struct {
	// Pre-OCEL table filters.
	DateStart time.Time `json:"date_start,omitempty"`
	DateEnd   time.Time `json:"date_end,omitempty"`
	POs       []string  `json:"pos,omitempty"`
	Invoices  []string  `json:"invoices,omitempty"`

	// Object / start-event filter (mode-exclusive).
	Mode      Mode     `json:"mode"`
	Objects   []string `json:"objects,omitempty"`
	StartType string   `json:"start_type,omitempty"`

	// Activity selection.
	ActivityMode p2p.SelectionMode `json:"activity_mode"`
	Groups       []string          `json:"groups,omitempty"`
	Activities   []string          `json:"activities,omitempty"`
	Exclude      []string          `json:"exclude,omitempty"`

	// Metric selection.
	ActMetric  ocel.ActMetric  `json:"act_metric"`
	EdgeMetric ocel.EdgeMetric `json:"edge_metric"`
	TimeAgg    ocel.TimeAgg    `json:"time_agg"`
}

// Normalize fills unset selections with their defaults and resolves the
// active mode: a set StartType selects start-event mode, anything else is
// the object filter (with all types when none are chosen). This is how a
// contradictory combination resolves instead of erroring.
func (p *Params) Normalize() {
	if p.Mode == "" {
		if p.StartType != "" {
			p.Mode = ModeStartEvent
		} else {
			p.Mode = ModeObjects
		}
	}
	if p.Mode == ModeObjects && len(p.Objects) == 0 {
		p.Objects = append([]string(nil), p2p.ObjectTypes...)
	}
	if p.ActivityMode == "" {
		p.ActivityMode = p2p.SelectAll
	}
	if p.ActMetric == "" {
		p.ActMetric = ocel.ActUniqueObjects
	}
	if p.EdgeMetric == "" {
		p.EdgeMetric = ocel.EdgeUniqueObjects
	}
	if p.TimeAgg == "" {
		p.TimeAgg = ocel.AggMean
	}
}

// SelectedActivities resolves the final activity allow-list.
func (p *Params) SelectedActivities() []string {
	return p2p.ResolveActivities(p.ActivityMode, p.Groups, p.Activities, p.Exclude)
}

// Result is the output of one run.
type Result struct {
	// RunID uniquely names this run; per-run artifacts embed it so two
	// concurrent runs never collide on disk.
	RunID string `json:"run_id"`

	Frequency   *ocel.View `json:"frequency"`
	Performance *ocel.View `json:"performance"`

	// Preview holds the first PreviewRows rows of the filtered table.
	Preview *model.Table `json:"-"`

	// Filtered is the full filtered canonical table (for exports).
	Filtered *model.Table `json:"-"`

	// Log and Graph expose the intermediate structures for exports and
	// statistics; they are private to this run.
	Log   *ocel.Log   `json:"-"`
	Graph *ocel.Graph `json:"-"`

	Activities []string      `json:"activities"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Pipeline runs discoveries over one source file.
type Pipeline struct {
	source string
	opts   normalize.Options
	tables *cache.TableCache
	tracer trace.Tracer
}

// New creates a pipeline for a source file. Years scope the normalizer
// (empty = default years).
func New(source string, years []int) *Pipeline {
	return &Pipeline{
		source: source,
		opts:   normalize.Options{Years: years},
		tables: cache.New(),
		tracer: otel.Tracer("procflow/pipeline"),
	}
}

// Source returns the pipeline's source path.
func (p *Pipeline) Source() string {
	return p.source
}

// ShowProgress toggles a terminal progress bar during table loads.
// Interactive commands turn it on; the HTTP server leaves it off.
func (p *Pipeline) ShowProgress(on bool) {
	p.opts.ShowProgress = on
}

// Invalidate drops the cached canonical table, forcing a reload on the
// next run. Watch mode calls this when the source file changes.
func (p *Pipeline) Invalidate() {
	p.tables.Invalidate(p.source)
}

// Table returns the canonical table, loading and caching it on first use.
func (p *Pipeline) Table(ctx context.Context) (*model.Table, error) {
	if t, ok := p.tables.Get(p.source); ok {
		return t, nil
	}

	_, span := p.tracer.Start(ctx, "normalize",
		trace.WithAttributes(attribute.String("source", p.source)))
	defer span.End()

	t, err := normalize.Load(p.source, p.opts)
	if err != nil {
		return nil, err
	}
	p.tables.Put(p.source, t)
	return t, nil
}

// Run executes one full discovery pass. Empty results at any stage (zero
// rows, zero events, zero edges) flow through as empty outputs, never as
// errors.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Result, error) {
	start := time.Now()
	params.Normalize()

	ctx, span := p.tracer.Start(ctx, "discover")
	defer span.End()

	raw, err := p.Table(ctx)
	if err != nil {
		return nil, err
	}

	filtered := filter.Apply(raw, filter.PreFilter{
		Start:    params.DateStart,
		End:      params.DateEnd,
		POs:      params.POs,
		Invoices: params.Invoices,
	})

	log := ocel.Build(filtered)

	switch params.Mode {
	case ModeStartEvent:
		log = ocel.FilterStartEvents(log, params.StartType)
	case ModeObjects:
		log = ocel.FilterObjectTypes(log, params.Objects)
	default:
		return nil, errors.New(errors.CodeDiscoveryFailed, "unknown filter mode").
			WithContext("mode", string(params.Mode))
	}

	activities := params.SelectedActivities()
	log = ocel.FilterActivities(log, activities)

	graph, err := ocel.Discover(ctx, log)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("events", log.EventCount()),
		attribute.Int("objects", log.ObjectCount()),
		attribute.Int("nodes", len(graph.Nodes)),
		attribute.Int("edges", len(graph.Edges)),
	)

	return &Result{
		RunID:       uuid.NewString(),
		Frequency:   ocel.FrequencyView(graph, params.ActMetric, params.EdgeMetric),
		Performance: ocel.PerformanceView(graph, params.TimeAgg),
		Preview:     filtered.Head(PreviewRows),
		Filtered:    filtered,
		Log:         log,
		Graph:       graph,
		Activities:  activities,
		Elapsed:     time.Since(start),
	}, nil
}
