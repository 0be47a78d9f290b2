package ocel

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// NodeKey identifies an OC-DFG node. Nodes are (object type, activity)
// pairs: two types sharing an activity name get two separate nodes.
type NodeKey struct {
	ObjectType string `json:"object_type"`
	Activity   string `json:"activity"`
}

// EdgeKey identifies a directly-follows edge within one object type.
type EdgeKey struct {
	ObjectType string `json:"object_type"`
	Source     string `json:"source"`
	Target     string `json:"target"`
}

// NodeMetrics holds per-node frequency counters.
type NodeMetrics struct {
	// UniqueObjects is the number of distinct objects of the node's type
	// with at least one event of the node's activity.
	UniqueObjects int64 `json:"unique_objects"`

	// Events is the number of events of the node's activity that reference
	// at least one object of the node's type.
	Events int64 `json:"events"`
}

// EdgeMetrics holds per-edge frequency counters and the duration samples
// backing the performance view.
type EdgeMetrics struct {
	// UniqueObjects counts distinct objects that traversed this edge.
	UniqueObjects int64 `json:"unique_objects"`

	// EventCouples counts raw consecutive-pair occurrences; one object
	// looping through the pair repeatedly counts every time.
	EventCouples int64 `json:"event_couples"`

	// Durations holds the inter-event gaps in seconds, one sample per
	// couple, in traversal order.
	Durations []float64 `json:"durations"`
}

// Graph is a discovered object-centric directly-follows graph.
type Graph struct {
	ObjectTypes []string
	Nodes       map[NodeKey]*NodeMetrics
	Edges       map[EdgeKey]*EdgeMetrics

	// StartActivities / EndActivities count, per node, the objects whose
	// sequence starts or ends there.
	StartActivities map[NodeKey]int64
	EndActivities   map[NodeKey]int64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:           make(map[NodeKey]*NodeMetrics),
		Edges:           make(map[EdgeKey]*EdgeMetrics),
		StartActivities: make(map[NodeKey]int64),
		EndActivities:   make(map[NodeKey]int64),
	}
}

// Discover builds the OC-DFG for the filtered log. Each object type is
// discovered independently and merged in type order, so the result is
// deterministic; an empty log yields an empty graph.
func Discover(ctx context.Context, log *Log) (*Graph, error) {
	graph := NewGraph()
	graph.ObjectTypes = log.ObjectTypes()

	results := make([]*typeResult, len(graph.ObjectTypes))

	g, ctx := errgroup.WithContext(ctx)
	for i, typ := range graph.ObjectTypes {
		i, typ := i, typ
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = discoverType(log, typ)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		for k, v := range res.nodes {
			graph.Nodes[k] = v
		}
		for k, v := range res.edges {
			graph.Edges[k] = v
		}
		for k, v := range res.starts {
			graph.StartActivities[k] = v
		}
		for k, v := range res.ends {
			graph.EndActivities[k] = v
		}
	}

	return graph, nil
}

type typeResult struct {
	nodes  map[NodeKey]*NodeMetrics
	edges  map[EdgeKey]*EdgeMetrics
	starts map[NodeKey]int64
	ends   map[NodeKey]int64
}

// discoverType walks every object sequence of one type and aggregates node
// and edge metrics. Keys never collide across types, so each type's result
// merges into the graph without coordination.
func discoverType(log *Log, typ string) *typeResult {
	res := &typeResult{
		nodes:  make(map[NodeKey]*NodeMetrics),
		edges:  make(map[EdgeKey]*EdgeMetrics),
		starts: make(map[NodeKey]int64),
		ends:   make(map[NodeKey]int64),
	}

	node := func(activity string) *NodeMetrics {
		k := NodeKey{ObjectType: typ, Activity: activity}
		m, ok := res.nodes[k]
		if !ok {
			m = &NodeMetrics{}
			res.nodes[k] = m
		}
		return m
	}

	// Node event counts: one per event touching the type, regardless of how
	// many objects of the type it references.
	for _, e := range log.Events {
		if len(e.Refs(typ)) > 0 {
			node(e.Activity).Events++
		}
	}

	order, seqs := log.Sequences(typ)
	for _, id := range order {
		events := seqs[id]
		if len(events) == 0 {
			continue
		}

		res.starts[NodeKey{ObjectType: typ, Activity: events[0].Activity}]++
		res.ends[NodeKey{ObjectType: typ, Activity: events[len(events)-1].Activity}]++

		seenActivity := make(map[string]bool)
		seenEdge := make(map[EdgeKey]bool)

		for i, e := range events {
			if !seenActivity[e.Activity] {
				seenActivity[e.Activity] = true
				node(e.Activity).UniqueObjects++
			}

			if i+1 >= len(events) {
				continue
			}
			next := events[i+1]

			k := EdgeKey{ObjectType: typ, Source: e.Activity, Target: next.Activity}
			m, ok := res.edges[k]
			if !ok {
				m = &EdgeMetrics{}
				res.edges[k] = m
			}
			m.EventCouples++
			if !seenEdge[k] {
				seenEdge[k] = true
				m.UniqueObjects++
			}
			m.Durations = append(m.Durations, next.Timestamp.Sub(e.Timestamp).Seconds())
		}
	}

	return res
}

// SortedNodeKeys returns node keys ordered by (type, activity).
func (g *Graph) SortedNodeKeys() []NodeKey {
	keys := make([]NodeKey, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ObjectType != keys[j].ObjectType {
			return keys[i].ObjectType < keys[j].ObjectType
		}
		return keys[i].Activity < keys[j].Activity
	})
	return keys
}

// SortedEdgeKeys returns edge keys ordered by (type, source, target).
func (g *Graph) SortedEdgeKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(g.Edges))
	for k := range g.Edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ObjectType != keys[j].ObjectType {
			return keys[i].ObjectType < keys[j].ObjectType
		}
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Target < keys[j].Target
	})
	return keys
}

// Stats summarizes the graph.
func (g *Graph) Stats() map[string]interface{} {
	edgesByType := make(map[string]int)
	for k := range g.Edges {
		edgesByType[k.ObjectType]++
	}
	return map[string]interface{}{
		"object_types":  g.ObjectTypes,
		"nodes":         len(g.Nodes),
		"edges":         len(g.Edges),
		"edges_by_type": edgesByType,
	}
}
