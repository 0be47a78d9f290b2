package ocel

import (
	"fmt"
)

// ActMetric selects the node label of the frequency view.
type ActMetric string

// EdgeMetric selects the edge label of the frequency view.
type EdgeMetric string

// TimeAgg selects the aggregation operator of the performance view.
type TimeAgg string

const (
	ActUniqueObjects ActMetric = "unique_objects"
	ActEvents        ActMetric = "events"

	EdgeUniqueObjects EdgeMetric = "unique_objects"
	EdgeEventCouples  EdgeMetric = "event_couples"

	AggMean TimeAgg = "mean"
	AggSum  TimeAgg = "sum"
)

// ParseActMetric validates an activity-metric name.
func ParseActMetric(s string) (ActMetric, error) {
	switch ActMetric(s) {
	case ActUniqueObjects, ActEvents:
		return ActMetric(s), nil
	}
	return "", fmt.Errorf("unknown activity metric %q (want unique_objects or events)", s)
}

// ParseEdgeMetric validates an edge-metric name.
func ParseEdgeMetric(s string) (EdgeMetric, error) {
	switch EdgeMetric(s) {
	case EdgeUniqueObjects, EdgeEventCouples:
		return EdgeMetric(s), nil
	}
	return "", fmt.Errorf("unknown edge metric %q (want unique_objects or event_couples)", s)
}

// ParseTimeAgg validates a time-aggregation name.
func ParseTimeAgg(s string) (TimeAgg, error) {
	switch TimeAgg(s) {
	case AggMean, AggSum:
		return TimeAgg(s), nil
	}
	return "", fmt.Errorf("unknown time aggregation %q (want mean or sum)", s)
}

// View is the renderable description of one annotated diagram: every node
// and edge carries exactly one numeric label. Rendering to an image is the
// consumer's job; the values here are the contract.
type View struct {
	// Annotation is "frequency" or "performance".
	Annotation string `json:"annotation"`

	// Caption names the metric or aggregation operator in use.
	Caption string `json:"caption"`

	Nodes []ViewNode `json:"nodes"`
	Edges []ViewEdge `json:"edges"`
}

// ViewNode is one annotated node.
type ViewNode struct {
	ID         string  `json:"id"`
	ObjectType string  `json:"object_type"`
	Activity   string  `json:"activity"`
	Label      float64 `json:"label"`
}

// ViewEdge is one annotated edge; Source and Target are node IDs.
type ViewEdge struct {
	ObjectType string  `json:"object_type"`
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Label      float64 `json:"label"`
}

// NodeID derives the stable node identity used across views and renderers.
func NodeID(objectType, activity string) string {
	return objectType + "@" + activity
}

// FrequencyView renders the graph with the chosen count metrics.
// Nodes and edges are emitted in sorted key order so identical inputs
// produce byte-identical views.
func FrequencyView(g *Graph, act ActMetric, edge EdgeMetric) *View {
	v := &View{
		Annotation: "frequency",
		Caption:    fmt.Sprintf("Counts shown are %s per activity and %s per edge.", act, edge),
	}

	for _, k := range g.SortedNodeKeys() {
		m := g.Nodes[k]
		label := m.UniqueObjects
		if act == ActEvents {
			label = m.Events
		}
		v.Nodes = append(v.Nodes, ViewNode{
			ID:         NodeID(k.ObjectType, k.Activity),
			ObjectType: k.ObjectType,
			Activity:   k.Activity,
			Label:      float64(label),
		})
	}

	for _, k := range g.SortedEdgeKeys() {
		m := g.Edges[k]
		label := m.UniqueObjects
		if edge == EdgeEventCouples {
			label = m.EventCouples
		}
		v.Edges = append(v.Edges, ViewEdge{
			ObjectType: k.ObjectType,
			Source:     NodeID(k.ObjectType, k.Source),
			Target:     NodeID(k.ObjectType, k.Target),
			Label:      float64(label),
		})
	}

	return v
}

// PerformanceView renders the graph with aggregated inter-event durations
// (seconds) on edges. Node labels are always event counts. Edges without
// duration samples are omitted entirely: a mean over nothing is no edge,
// never zero.
func PerformanceView(g *Graph, agg TimeAgg) *View {
	v := &View{
		Annotation: "performance",
		Caption:    fmt.Sprintf("Time displayed is the %s of the time taken.", agg),
	}

	for _, k := range g.SortedNodeKeys() {
		m := g.Nodes[k]
		v.Nodes = append(v.Nodes, ViewNode{
			ID:         NodeID(k.ObjectType, k.Activity),
			ObjectType: k.ObjectType,
			Activity:   k.Activity,
			Label:      float64(m.Events),
		})
	}

	for _, k := range g.SortedEdgeKeys() {
		m := g.Edges[k]
		if len(m.Durations) == 0 {
			continue
		}

		sum := 0.0
		for _, d := range m.Durations {
			sum += d
		}
		label := sum
		if agg == AggMean {
			label = sum / float64(len(m.Durations))
		}

		v.Edges = append(v.Edges, ViewEdge{
			ObjectType: k.ObjectType,
			Source:     NodeID(k.ObjectType, k.Source),
			Target:     NodeID(k.ObjectType, k.Target),
			Label:      label,
		})
	}

	return v
}
