package ocel

import (
	"strconv"
	"strings"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/p2p"
)

// Build transforms the (pre-filtered) canonical table into an OCEL log.
// Exact-duplicate rows collapse to one event before ids are assigned;
// remaining rows get ordinal labels e0, e1, ... in table order.
func Build(table *model.Table) *Log {
	log := NewLog()
	seen := make(map[string]bool, len(table.Rows))

	ordinal := 0
	for i := range table.Rows {
		row := &table.Rows[i]

		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true

		e := &Event{
			ID:        "e" + strconv.Itoa(ordinal),
			Ordinal:   ordinal,
			Activity:  row.Activity,
			Timestamp: row.Timestamp,
			Objects:   make(map[string][]string, len(p2p.ObjectTypes)),
		}
		for _, typ := range p2p.ObjectTypes {
			if refs := SplitRefs(row.RefCell(typ)); len(refs) > 0 {
				e.Objects[typ] = refs
			}
		}

		log.Append(e)
		ordinal++
	}

	return log
}

// rowKey joins every column value; two rows with the same key are the same
// exported fact.
func rowKey(r *model.Row) string {
	return strings.Join(r.Strings(), "\x1f")
}

// SplitRefs parses an object-reference cell into a set of identifiers.
// Cells may hold a single scalar, a comma-separated list, or a bracketed
// list like "[a, b]". Duplicates within one cell collapse; order is kept.
func SplitRefs(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	cell = strings.TrimPrefix(cell, "[")
	cell = strings.TrimSuffix(cell, "]")

	parts := strings.Split(cell, ",")
	var out []string
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
