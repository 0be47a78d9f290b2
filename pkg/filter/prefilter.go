// Package filter applies the flat-table filters that run before
// object-centric structuring: date range and PO/invoice allow-lists.
package filter

import (
	"strconv"
	"time"

	"github.com/procflow/procflow/internal/model"
)

// PreFilter restricts the canonical table before the OCEL build.
// Zero time bounds mean unbounded; empty allow-lists mean "include all".
type PreFilter struct {
	Start time.Time
	End   time.Time

	// POs keeps only rows whose po_number (as string) is listed.
	POs []string

	// Invoices keeps rows transitively: the allow-listed invoices resolve to
	// the POs they touch, rows of those POs survive, and any row that does
	// carry an invoice identifier must itself be allow-listed.
	Invoices []string
}

// Apply filters the raw canonical table. Invoice-to-PO resolution runs over
// the unfiltered input so a date range cannot hide the resolving rows.
// The result is always a fresh table; the input is never mutated.
func Apply(raw *model.Table, f PreFilter) *model.Table {
	out := &model.Table{}

	poAllowed := toSet(f.POs)
	invAllowed := toSet(f.Invoices)

	// Resolve invoice allow-list to the set of POs those invoices touch.
	var invPOs map[int64]bool
	if len(invAllowed) > 0 {
		invPOs = make(map[int64]bool)
		for i := range raw.Rows {
			r := &raw.Rows[i]
			if r.UIDNumber != "" && invAllowed[r.UIDNumber] {
				invPOs[r.PONumber] = true
			}
		}
	}

	for i := range raw.Rows {
		r := &raw.Rows[i]

		if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && r.Timestamp.After(f.End) {
			continue
		}

		if len(poAllowed) > 0 && !poAllowed[strconv.FormatInt(r.PONumber, 10)] {
			continue
		}

		if invPOs != nil {
			if !invPOs[r.PONumber] {
				continue
			}
			// Non-invoice rows of a matching PO stay; invoice rows must match.
			if r.UIDNumber != "" && !invAllowed[r.UIDNumber] {
				continue
			}
		}

		out.Rows = append(out.Rows, *r)
	}

	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
