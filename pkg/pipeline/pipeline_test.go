package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/ocel"
	"github.com/procflow/procflow/pkg/p2p"
)

const testHeader = "po_number,pr_po_no,uid_number,activity,date,item,item_line,po_line,gr_line,inv_line,wf_line"

func writeSource(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	content := strings.Join(append([]string{testHeader}, lines...), "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	return path
}

func p2pSource(t *testing.T) string {
	return writeSource(t,
		"1,,,PO From SAP,2022-01-01,IT1,1_i,1_p,,,",
		"1,,,GR Goods Receipt,2022-01-02,IT1,1_i,1_p,1_g,,",
		"1,,INV1,Invoice Posted,2022-01-05,IT1,,1_p,,INV1_1,",
		"2,,,PO From SAP,2022-02-01,IT2,2_i,2_p,,,",
		"2,,,GR Goods Receipt,2022-02-03,IT2,2_i,2_p,2_g,,",
	)
}

func TestRunEndToEnd(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	res, err := pipe.Run(context.Background(), Params{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run id")
	}
	if len(res.Log.Events) != 5 {
		t.Errorf("log has %d events, want 5", len(res.Log.Events))
	}
	if len(res.Frequency.Nodes) == 0 || len(res.Frequency.Edges) == 0 {
		t.Error("frequency view is empty")
	}
	if res.Frequency.Annotation != "frequency" || res.Performance.Annotation != "performance" {
		t.Error("views mislabeled")
	}
	if res.Preview.Len() != 5 {
		t.Errorf("preview has %d rows, want 5", res.Preview.Len())
	}

	// po object p-lines traverse PO From SAP -> GR Goods Receipt for both POs
	for _, e := range res.Frequency.Edges {
		if e.ObjectType == "po" &&
			e.Source == ocel.NodeID("po", "PO From SAP") &&
			e.Target == ocel.NodeID("po", "GR Goods Receipt") {
			if e.Label != 2 {
				t.Errorf("po edge label = %v, want 2 unique objects", e.Label)
			}
			return
		}
	}
	t.Error("missing po edge PO From SAP -> GR Goods Receipt")
}

func TestRunSingleItemLifecycle(t *testing.T) {
	// One item moving through request, order and receipt a day apart.
	src := writeSource(t,
		"1,PR1,,PR Purchase Request,2022-03-01,IT1,1_i,,,,",
		"1,,,PO From SAP,2022-03-02,IT1,1_i,1_p,,,",
		"1,,,GR Goods Receipt,2022-03-03,IT1,1_i,1_p,1_g,,",
	)
	pipe := New(src, nil)

	res, err := pipe.Run(context.Background(), Params{
		Objects:      []string{p2p.TypeItem},
		ActivityMode: p2p.SelectGroups,
		Groups:       []string{"PR", "PO", "GR"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Frequency.Nodes) != 3 {
		t.Fatalf("frequency view has %d nodes, want 3", len(res.Frequency.Nodes))
	}
	for _, n := range res.Frequency.Nodes {
		if n.Label != 1 {
			t.Errorf("node %s label = %v, want 1 unique object", n.ID, n.Label)
		}
	}
	if len(res.Frequency.Edges) != 2 {
		t.Fatalf("frequency view has %d edges, want 2", len(res.Frequency.Edges))
	}
	for _, e := range res.Frequency.Edges {
		if e.Label != 1 {
			t.Errorf("edge %s -> %s label = %v, want 1", e.Source, e.Target, e.Label)
		}
	}

	// Both hops take exactly one day, so mean duration is 86400 seconds.
	if len(res.Performance.Edges) != 2 {
		t.Fatalf("performance view has %d edges, want 2", len(res.Performance.Edges))
	}
	for _, e := range res.Performance.Edges {
		if e.Label != 86400 {
			t.Errorf("performance edge %s -> %s = %v seconds, want 86400",
				e.Source, e.Target, e.Label)
		}
	}
}

func TestRunPOFilter(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	res, err := pipe.Run(context.Background(), Params{POs: []string{"2"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Log.Events) != 2 {
		t.Errorf("log has %d events, want 2 (PO 2 only)", len(res.Log.Events))
	}
}

func TestRunObjectTypeFilter(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	res, err := pipe.Run(context.Background(), Params{Objects: []string{"gr"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, n := range res.Frequency.Nodes {
		if n.ObjectType != "gr" {
			t.Errorf("node of type %s survived a gr-only filter", n.ObjectType)
		}
	}
}

func TestRunStartEventMode(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	res, err := pipe.Run(context.Background(), Params{StartType: "po"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Each po's first event is its PO From SAP row
	if len(res.Log.Events) != 2 {
		t.Fatalf("log has %d events, want 2 start events", len(res.Log.Events))
	}
	for _, e := range res.Log.Events {
		if e.Activity != "PO From SAP" {
			t.Errorf("start event activity = %q", e.Activity)
		}
	}
}

func TestRunActivityGroups(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	res, err := pipe.Run(context.Background(), Params{
		ActivityMode: p2p.SelectGroups,
		Groups:       []string{"PO"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, e := range res.Log.Events {
		if e.Activity != "PO From SAP" && e.Activity != "PO From WISE" {
			t.Errorf("activity %q outside the PO group survived", e.Activity)
		}
	}
}

func TestRunFullExclusionYieldsEmptyViews(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	res, err := pipe.Run(context.Background(), Params{
		ActivityMode: p2p.SelectGroups,
		Groups:       []string{"PO"},
		Exclude:      p2p.POActivities,
	})
	if err != nil {
		t.Fatalf("full exclusion should not error: %v", err)
	}
	if len(res.Frequency.Nodes) != 0 || len(res.Frequency.Edges) != 0 {
		t.Errorf("expected empty views, got %d nodes, %d edges",
			len(res.Frequency.Nodes), len(res.Frequency.Edges))
	}
}

func TestRunMissingSource(t *testing.T) {
	pipe := New(filepath.Join(t.TempDir(), "missing.csv"), nil)

	_, err := pipe.Run(context.Background(), Params{})
	if !errors.IsCode(err, errors.CodeFileNotFound) {
		t.Errorf("expected CodeFileNotFound, got %v", err)
	}
}

func TestRunIdempotent(t *testing.T) {
	pipe := New(p2pSource(t), nil)
	params := Params{TimeAgg: ocel.AggSum}

	a, err := pipe.Run(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	b, err := pipe.Run(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Frequency.Nodes) != len(b.Frequency.Nodes) {
		t.Fatal("node counts differ between identical runs")
	}
	for i := range a.Frequency.Nodes {
		if a.Frequency.Nodes[i] != b.Frequency.Nodes[i] {
			t.Errorf("node %d differs: %+v vs %+v", i, a.Frequency.Nodes[i], b.Frequency.Nodes[i])
		}
	}
	for i := range a.Performance.Edges {
		if a.Performance.Edges[i] != b.Performance.Edges[i] {
			t.Errorf("edge %d differs: %+v vs %+v", i, a.Performance.Edges[i], b.Performance.Edges[i])
		}
	}
}

func TestShowProgressLoad(t *testing.T) {
	pipe := New(p2pSource(t), nil)
	pipe.ShowProgress(true)

	if !pipe.opts.ShowProgress {
		t.Fatal("ShowProgress(true) did not set the normalize option")
	}

	// The load must still succeed with the progress bar active.
	res, err := pipe.Run(context.Background(), Params{})
	if err != nil {
		t.Fatalf("Run with progress failed: %v", err)
	}
	if len(res.Log.Events) != 5 {
		t.Errorf("log has %d events, want 5", len(res.Log.Events))
	}
}

func TestTableCached(t *testing.T) {
	pipe := New(p2pSource(t), nil)

	a, err := pipe.Table(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := pipe.Table(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second load did not come from the cache")
	}

	pipe.Invalidate()
	c, err := pipe.Table(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Error("Invalidate did not drop the cached table")
	}
}

func TestParamsNormalize(t *testing.T) {
	var p Params
	p.Normalize()
	if p.Mode != ModeObjects {
		t.Errorf("default mode = %q", p.Mode)
	}
	if len(p.Objects) != len(p2p.ObjectTypes) {
		t.Errorf("default objects = %v", p.Objects)
	}
	if p.ActMetric != ocel.ActUniqueObjects || p.TimeAgg != ocel.AggMean {
		t.Errorf("default metrics = %v, %v", p.ActMetric, p.TimeAgg)
	}

	start := Params{StartType: "inv"}
	start.Normalize()
	if start.Mode != ModeStartEvent {
		t.Errorf("start-type params resolved to mode %q", start.Mode)
	}
}
