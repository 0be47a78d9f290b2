// Package ocel implements the object-centric event log model and the
// OC-DFG discovery pipeline over it. Each event references zero or more
// objects per type instead of a single case identifier; all object semantics
// derive from which events reference the object.
package ocel

import (
	"sort"
	"time"
)

// Event is one log event with its typed object references.
type Event struct {
	// ID is the ordinal event label ("e0", "e1", ...), assigned at build
	// time and stable for the lifetime of one discovery run.
	ID string `json:"id"`

	// Ordinal is the build position. Sequences sort by (Timestamp, Ordinal),
	// so events sharing a timestamp keep original row order.
	Ordinal int `json:"-"`

	Activity  string    `json:"activity"`
	Timestamp time.Time `json:"timestamp"`

	// Objects maps object type to the identifiers referenced by this event.
	Objects map[string][]string `json:"objects"`
}

// Refs returns this event's references for one object type.
func (e *Event) Refs(objectType string) []string {
	return e.Objects[objectType]
}

// ObjectID identifies an object; identifiers are scoped per type.
type ObjectID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Log is a complete object-centric event log: the events plus the derived,
// deduplicated object set. Events keep build order.
type Log struct {
	Events  []*Event          `json:"events"`
	Objects map[ObjectID]bool `json:"-"`
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{Objects: make(map[ObjectID]bool)}
}

// Append adds an event and registers its object references.
func (l *Log) Append(e *Event) {
	l.Events = append(l.Events, e)
	for typ, ids := range e.Objects {
		for _, id := range ids {
			l.Objects[ObjectID{Type: typ, ID: id}] = true
		}
	}
}

// Rebuild recomputes the derived object set from the events. Filters call
// this after dropping events or references so the invariant holds: every
// reference on an event corresponds to exactly one derived object.
func (l *Log) Rebuild() {
	l.Objects = make(map[ObjectID]bool)
	for _, e := range l.Events {
		for typ, ids := range e.Objects {
			for _, id := range ids {
				l.Objects[ObjectID{Type: typ, ID: id}] = true
			}
		}
	}
}

// EventCount returns the number of events.
func (l *Log) EventCount() int {
	return len(l.Events)
}

// ObjectCount returns the number of distinct objects.
func (l *Log) ObjectCount() int {
	return len(l.Objects)
}

// ObjectTypes returns the object types present, sorted.
func (l *Log) ObjectTypes() []string {
	seen := make(map[string]bool)
	for oid := range l.Objects {
		seen[oid.Type] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ObjectCountsByType returns distinct object counts per type.
func (l *Log) ObjectCountsByType() map[string]int64 {
	counts := make(map[string]int64)
	for oid := range l.Objects {
		counts[oid.Type]++
	}
	return counts
}

// Sequences returns, for one object type, each object's event sequence
// sorted by (timestamp, ordinal). Objects appear in order of their first
// referencing event, so iteration is deterministic across runs.
func (l *Log) Sequences(objectType string) ([]string, map[string][]*Event) {
	var order []string
	seqs := make(map[string][]*Event)

	for _, e := range l.Events {
		for _, id := range e.Refs(objectType) {
			if _, ok := seqs[id]; !ok {
				order = append(order, id)
			}
			seqs[id] = append(seqs[id], e)
		}
	}

	for _, id := range order {
		events := seqs[id]
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Timestamp.Equal(events[j].Timestamp) {
				return events[i].Ordinal < events[j].Ordinal
			}
			return events[i].Timestamp.Before(events[j].Timestamp)
		})
	}

	return order, seqs
}

// TimeRange returns the minimum and maximum event timestamp.
func (l *Log) TimeRange() (min, max time.Time) {
	for _, e := range l.Events {
		if min.IsZero() || e.Timestamp.Before(min) {
			min = e.Timestamp
		}
		if e.Timestamp.After(max) {
			max = e.Timestamp
		}
	}
	return min, max
}

// Stats summarizes the log.
func (l *Log) Stats() map[string]interface{} {
	min, max := l.TimeRange()
	return map[string]interface{}{
		"events":          len(l.Events),
		"objects":         len(l.Objects),
		"object_types":    l.ObjectTypes(),
		"objects_by_type": l.ObjectCountsByType(),
		"time_range": map[string]time.Time{
			"min": min,
			"max": max,
		},
	}
}
