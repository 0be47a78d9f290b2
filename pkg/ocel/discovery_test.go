package ocel

import (
	"context"
	"reflect"
	"testing"
	"time"
)

// threeStepLog is one po object traversing three activities an hour apart,
// plus a second object sharing the first two steps.
func threeStepLog() *Log {
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	log := NewLog()
	log.Append(&Event{
		ID: "e0", Ordinal: 0, Activity: "PO From SAP", Timestamp: base,
		Objects: map[string][]string{"po": {"p1", "p2"}},
	})
	log.Append(&Event{
		ID: "e1", Ordinal: 1, Activity: "GR Goods Receipt", Timestamp: base.Add(time.Hour),
		Objects: map[string][]string{"po": {"p1", "p2"}},
	})
	log.Append(&Event{
		ID: "e2", Ordinal: 2, Activity: "Invoice Posted", Timestamp: base.Add(3 * time.Hour),
		Objects: map[string][]string{"po": {"p1"}},
	})
	return log
}

func TestDiscoverNodesAndEdges(t *testing.T) {
	graph, err := Discover(context.Background(), threeStepLog())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(graph.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(graph.Nodes))
	}
	if len(graph.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(graph.Edges))
	}

	n := graph.Nodes[NodeKey{ObjectType: "po", Activity: "PO From SAP"}]
	if n == nil {
		t.Fatal("missing node po/PO From SAP")
	}
	if n.UniqueObjects != 2 {
		t.Errorf("node unique_objects = %d, want 2", n.UniqueObjects)
	}
	if n.Events != 1 {
		t.Errorf("node events = %d, want 1", n.Events)
	}

	e := graph.Edges[EdgeKey{ObjectType: "po", Source: "PO From SAP", Target: "GR Goods Receipt"}]
	if e == nil {
		t.Fatal("missing edge PO From SAP -> GR Goods Receipt")
	}
	if e.UniqueObjects != 2 {
		t.Errorf("edge unique_objects = %d, want 2", e.UniqueObjects)
	}
	if e.EventCouples != 2 {
		t.Errorf("edge event_couples = %d, want 2", e.EventCouples)
	}
	wantDur := []float64{3600, 3600}
	if !reflect.DeepEqual(e.Durations, wantDur) {
		t.Errorf("edge durations = %v, want %v", e.Durations, wantDur)
	}

	e2 := graph.Edges[EdgeKey{ObjectType: "po", Source: "GR Goods Receipt", Target: "Invoice Posted"}]
	if e2 == nil {
		t.Fatal("missing edge GR Goods Receipt -> Invoice Posted")
	}
	if e2.UniqueObjects != 1 || e2.EventCouples != 1 {
		t.Errorf("second edge metrics = %+v", e2)
	}
	if len(e2.Durations) != 1 || e2.Durations[0] != 7200 {
		t.Errorf("second edge durations = %v, want [7200]", e2.Durations)
	}
}

func TestDiscoverStartEndActivities(t *testing.T) {
	graph, err := Discover(context.Background(), threeStepLog())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if got := graph.StartActivities[NodeKey{ObjectType: "po", Activity: "PO From SAP"}]; got != 2 {
		t.Errorf("start count = %d, want 2", got)
	}
	if got := graph.EndActivities[NodeKey{ObjectType: "po", Activity: "Invoice Posted"}]; got != 1 {
		t.Errorf("end count at Invoice Posted = %d, want 1", got)
	}
	if got := graph.EndActivities[NodeKey{ObjectType: "po", Activity: "GR Goods Receipt"}]; got != 1 {
		t.Errorf("end count at GR Goods Receipt = %d, want 1 (p2 ends there)", got)
	}
}

func TestDiscoverLoopCountsEveryCouple(t *testing.T) {
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	log := NewLog()
	for i, act := range []string{"WF INFO_Sent", "WF INFO_Declined", "WF INFO_Sent", "WF INFO_Declined"} {
		log.Append(&Event{
			ID: "e" + string(rune('0'+i)), Ordinal: i, Activity: act,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Objects:   map[string][]string{"wf": {"w1"}},
		})
	}

	graph, err := Discover(context.Background(), log)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	e := graph.Edges[EdgeKey{ObjectType: "wf", Source: "WF INFO_Sent", Target: "WF INFO_Declined"}]
	if e == nil {
		t.Fatal("missing loop edge")
	}
	if e.EventCouples != 2 {
		t.Errorf("event_couples = %d, want 2 (every traversal counts)", e.EventCouples)
	}
	if e.UniqueObjects != 1 {
		t.Errorf("unique_objects = %d, want 1 (one object looping)", e.UniqueObjects)
	}
}

func TestDiscoverMultipleTypesIndependent(t *testing.T) {
	base := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	log := NewLog()
	log.Append(&Event{
		ID: "e0", Ordinal: 0, Activity: "PO From SAP", Timestamp: base,
		Objects: map[string][]string{"po": {"p1"}, "item": {"i1"}},
	})
	log.Append(&Event{
		ID: "e1", Ordinal: 1, Activity: "GR Goods Receipt", Timestamp: base.Add(time.Hour),
		Objects: map[string][]string{"po": {"p1"}},
	})

	graph, err := Discover(context.Background(), log)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	// item has one event, so no item edges
	for k := range graph.Edges {
		if k.ObjectType == "item" {
			t.Errorf("unexpected item edge %v", k)
		}
	}
	// but the item node exists
	if graph.Nodes[NodeKey{ObjectType: "item", Activity: "PO From SAP"}] == nil {
		t.Error("missing item node")
	}
	if !reflect.DeepEqual(graph.ObjectTypes, []string{"item", "po"}) {
		t.Errorf("graph types = %v", graph.ObjectTypes)
	}
}

func TestDiscoverEmptyLog(t *testing.T) {
	graph, err := Discover(context.Background(), NewLog())
	if err != nil {
		t.Fatalf("Discover failed on empty log: %v", err)
	}
	if len(graph.Nodes) != 0 || len(graph.Edges) != 0 {
		t.Errorf("empty log produced %d nodes, %d edges", len(graph.Nodes), len(graph.Edges))
	}
}

func TestDiscoverDeterministic(t *testing.T) {
	a, err := Discover(context.Background(), threeStepLog())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Discover(context.Background(), threeStepLog())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Nodes, b.Nodes) {
		t.Error("node metrics differ between identical runs")
	}
	if !reflect.DeepEqual(a.Edges, b.Edges) {
		t.Error("edge metrics differ between identical runs")
	}
	if !reflect.DeepEqual(a.SortedEdgeKeys(), b.SortedEdgeKeys()) {
		t.Error("edge ordering differs between identical runs")
	}
}

func TestDiscoverCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Discover(ctx, threeStepLog()); err == nil {
		t.Error("expected error from cancelled context")
	}
}
