package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/procflow/procflow/pkg/ocel"
)

func frequencyTestView() *ocel.View {
	return &ocel.View{
		Annotation: "frequency",
		Caption:    "Counts shown are unique_objects per activity and unique_objects per edge.",
		Nodes: []ocel.ViewNode{
			{ID: "po@PO From SAP", ObjectType: "po", Activity: "PO From SAP", Label: 2},
			{ID: "po@GR Goods Receipt", ObjectType: "po", Activity: "GR Goods Receipt", Label: 2},
		},
		Edges: []ocel.ViewEdge{
			{ObjectType: "po", Source: "po@PO From SAP", Target: "po@GR Goods Receipt", Label: 2},
		},
	}
}

func TestWriteDOTFrequency(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDOT(frequencyTestView(), &buf); err != nil {
		t.Fatalf("WriteDOT failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph frequency {") {
		t.Errorf("output does not open a digraph: %q", out[:40])
	}
	if !strings.Contains(out, `subgraph cluster_0`) {
		t.Error("missing object-type cluster")
	}
	if !strings.Contains(out, `"po@PO From SAP" [label="PO From SAP\n2"`) {
		t.Error("missing node with count label")
	}
	if !strings.Contains(out, `"po@PO From SAP" -> "po@GR Goods Receipt" [label="2"`) {
		t.Error("missing annotated edge")
	}
}

func TestWriteDOTPerformance(t *testing.T) {
	v := &ocel.View{
		Annotation: "performance",
		Caption:    "Time displayed is the mean of the time taken.",
		Nodes: []ocel.ViewNode{
			{ID: "po@A", ObjectType: "po", Activity: "A", Label: 3},
			{ID: "po@B", ObjectType: "po", Activity: "B", Label: 3},
		},
		Edges: []ocel.ViewEdge{
			{ObjectType: "po", Source: "po@A", Target: "po@B", Label: 5400},
		},
	}

	var buf bytes.Buffer
	if err := WriteDOT(v, &buf); err != nil {
		t.Fatalf("WriteDOT failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `label="A\nE=3"`) {
		t.Error("performance nodes should carry event counts")
	}
	if !strings.Contains(out, `label="1.5h"`) {
		t.Error("performance edges should carry humanized durations")
	}
}

func TestWriteDOTEscapesQuotes(t *testing.T) {
	v := &ocel.View{
		Annotation: "frequency",
		Caption:    `say "hi"`,
		Nodes: []ocel.ViewNode{
			{ID: `po@A"B`, ObjectType: "po", Activity: `A"B`, Label: 1},
		},
	}

	var buf bytes.Buffer
	if err := WriteDOT(v, &buf); err != nil {
		t.Fatalf("WriteDOT failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `\"hi\"`) {
		t.Error("caption quotes not escaped")
	}
	if !strings.Contains(out, `A\"B`) {
		t.Error("node label quotes not escaped")
	}
}

func TestWriteDOTEmptyView(t *testing.T) {
	var buf bytes.Buffer
	v := &ocel.View{Annotation: "frequency", Caption: "empty"}
	if err := WriteDOT(v, &buf); err != nil {
		t.Fatalf("WriteDOT failed on empty view: %v", err)
	}
	if !strings.Contains(buf.String(), "digraph frequency") {
		t.Error("empty view should still render a digraph shell")
	}
}

func TestHumanDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{45, "45s"},
		{90, "1.5m"},
		{5400, "1.5h"},
		{129600, "1.5d"},
	}
	for _, c := range cases {
		if got := HumanDuration(c.seconds); got != c.want {
			t.Errorf("HumanDuration(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}
