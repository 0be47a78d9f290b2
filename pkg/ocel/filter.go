package ocel

// Filters operating on the structured log. Each returns a fresh log with a
// recomputed object set; the input is never mutated. Exactly one of
// FilterObjectTypes / FilterStartEvents runs per discovery pass (the two
// modes are mutually exclusive), followed by FilterActivities.

// FilterObjectTypes keeps events referencing at least one object of a
// selected type. References to unselected types are stripped so later
// discovery never builds nodes for types that were filtered away.
func FilterObjectTypes(log *Log, types []string) *Log {
	selected := make(map[string]bool, len(types))
	for _, t := range types {
		selected[t] = true
	}

	out := NewLog()
	for _, e := range log.Events {
		kept := make(map[string][]string)
		for typ, ids := range e.Objects {
			if selected[typ] {
				kept[typ] = append([]string(nil), ids...)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out.Append(&Event{
			ID:        e.ID,
			Ordinal:   e.Ordinal,
			Activity:  e.Activity,
			Timestamp: e.Timestamp,
			Objects:   kept,
		})
	}
	return out
}

// FilterStartEvents keeps only events that are the first event (by
// timestamp, ties by build order) of some object of the given type. The
// surviving events keep all their references: the point of this mode is
// viewing how flows begin, not narrowing the object universe.
func FilterStartEvents(log *Log, objectType string) *Log {
	order, seqs := log.Sequences(objectType)

	starts := make(map[string]bool, len(order))
	for _, id := range order {
		if events := seqs[id]; len(events) > 0 {
			starts[events[0].ID] = true
		}
	}

	out := NewLog()
	for _, e := range log.Events {
		if !starts[e.ID] {
			continue
		}
		out.Append(cloneEvent(e))
	}
	return out
}

// FilterActivities keeps events whose activity is in the allow-list.
// An empty allow-list keeps nothing: excluding every selected activity is a
// valid terminal state that yields an empty graph.
func FilterActivities(log *Log, activities []string) *Log {
	allowed := make(map[string]bool, len(activities))
	for _, a := range activities {
		allowed[a] = true
	}

	out := NewLog()
	for _, e := range log.Events {
		if !allowed[e.Activity] {
			continue
		}
		out.Append(cloneEvent(e))
	}
	return out
}

func cloneEvent(e *Event) *Event {
	objects := make(map[string][]string, len(e.Objects))
	for typ, ids := range e.Objects {
		objects[typ] = append([]string(nil), ids...)
	}
	return &Event{
		ID:        e.ID,
		Ordinal:   e.Ordinal,
		Activity:  e.Activity,
		Timestamp: e.Timestamp,
		Objects:   objects,
	}
}
