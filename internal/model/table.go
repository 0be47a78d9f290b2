// Package model defines core data structures for ProcFlow.
package model

import (
	"strconv"
	"time"
)

// Canonical column names, in contract order. Every normalized table carries
// exactly these columns; downstream stages address rows by struct field, but
// exports and previews reproduce this order.
var Columns = []string{
	"po_number",
	"pr_po_no",
	"uid_number",
	"activity",
	"date",
	"timestamp",
	"item",
	"item_line",
	"po_line",
	"gr_line",
	"inv_line",
	"wf_line",
}

// Row is one event record of the canonical P2P table.
// po_number is coerced to an integer (0 when unparseable); uid_number is the
// invoice identifier and may be empty; the *_line columns hold object
// references, possibly multi-valued within one cell.
type Row struct {
	PONumber  int64
	PRPONo    string
	UIDNumber string
	Activity  string
	Date      string
	Timestamp time.Time
	Item      string
	ItemLine  string
	POLine    string
	GRLine    string
	InvLine   string
	WFLine    string
}

// RefCell returns the raw object-reference cell for an object type.
// Unknown types return an empty cell.
func (r *Row) RefCell(objectType string) string {
	switch objectType {
	case "item":
		return r.ItemLine
	case "po":
		return r.POLine
	case "gr":
		return r.GRLine
	case "inv":
		return r.InvLine
	case "wf":
		return r.WFLine
	}
	return ""
}

// Strings renders the row in canonical column order.
func (r *Row) Strings() []string {
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(r.PONumber, 10),
		r.PRPONo,
		r.UIDNumber,
		r.Activity,
		r.Date,
		ts,
		r.Item,
		r.ItemLine,
		r.POLine,
		r.GRLine,
		r.InvLine,
		r.WFLine,
	}
}

// Table is the canonical event table produced by the normalizer.
// Row order is the original source order and is significant: it is the
// tie-break for events sharing a timestamp.
type Table struct {
	Rows []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Head returns a copy of the first n rows (all rows if n exceeds Len).
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := &Table{Rows: make([]Row, n)}
	copy(out.Rows, t.Rows[:n])
	return out
}

// TimeRange returns the minimum and maximum timestamp in the table.
// Both are zero for an empty table.
func (t *Table) TimeRange() (min, max time.Time) {
	for i := range t.Rows {
		ts := t.Rows[i].Timestamp
		if min.IsZero() || ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	return min, max
}
