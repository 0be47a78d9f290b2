// Package normalize cleans a raw P2P event export into the canonical table.
// The raw table may come from CSV or XLSX; both paths converge on the same
// column-mapped build step. Cleaning is deliberately asymmetric: identifier
// coercion is lenient (bad po_number becomes 0), timestamp parsing is strict
// (one bad date fails the whole load).
package normalize

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/errors"
)

// DefaultYears is the default set of years considered valid; rows dated
// outside it are silently excluded.
var DefaultYears = []int{2020, 2021, 2022, 2023, 2024, 2025}

// Columns required in the raw source, besides whatever extras it carries.
var requiredColumns = []string{
	"po_number", "pr_po_no", "uid_number", "activity", "date",
	"item", "item_line", "po_line", "gr_line", "inv_line", "wf_line",
}

var unnamedPattern = regexp.MustCompile(`^Unnamed`)

// Timestamp layouts of the fixed ISO-8601 profile, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Options controls normalization.
type Options struct {
	// Years overrides DefaultYears when non-empty.
	Years []int

	// ShowProgress renders a terminal progress bar while building rows.
	ShowProgress bool
}

// Load reads a raw event export and returns the canonical table.
// Dispatches on file extension: .xlsx uses the Excel reader, everything else
// is treated as CSV. A missing file yields CodeFileNotFound; callers must
// treat that as "no data available" and run nothing downstream.
func Load(path string, opts Options) (*model.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, opts)
	}
	return LoadCSV(path, opts)
}

// buildTable converts a header plus raw string rows into the canonical
// table. Ragged rows are padded with empty cells.
func buildTable(header []string, rows [][]string, opts Options) (*model.Table, error) {
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if unnamedPattern.MatchString(name) {
			continue
		}
		colIdx[name] = i
	}

	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, errors.MissingColumn(col, header)
		}
	}

	years := opts.Years
	if len(years) == 0 {
		years = DefaultYears
	}
	validYear := make(map[string]bool, len(years))
	for _, y := range years {
		validYear[strconv.Itoa(y)] = true
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(rows)), "normalizing")
	}

	table := &model.Table{Rows: make([]model.Row, 0, len(rows))}
	for n, raw := range rows {
		if bar != nil {
			bar.Add(1)
		}

		cell := func(col string) string {
			i := colIdx[col]
			if i >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[i])
		}

		date := cell("date")
		if len(date) < 4 || !validYear[date[:4]] {
			continue
		}

		ts, err := parseTimestamp(date)
		if err != nil {
			// Row numbers are 1-based with the header on line 1.
			return nil, errors.InvalidTimestamp(date, n+2)
		}

		table.Rows = append(table.Rows, model.Row{
			PONumber:  coerceInt(cell("po_number")),
			PRPONo:    cell("pr_po_no"),
			UIDNumber: cell("uid_number"),
			Activity:  cell("activity"),
			Date:      date,
			Timestamp: ts,
			Item:      cell("item"),
			ItemLine:  cell("item_line"),
			POLine:    cell("po_line"),
			GRLine:    cell("gr_line"),
			InvLine:   cell("inv_line"),
			WFLine:    cell("wf_line"),
		})
	}

	return table, nil
}

// parseTimestamp parses an ISO-8601 value against the fixed layout profile.
func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// coerceInt converts an identifier cell to int64. Unparseable values map to
// the sentinel 0: identifiers are grouping keys, one bad value must not
// block the rest of the log. Fractional exports like "4500017.0" truncate.
func coerceInt(value string) int64 {
	if value == "" {
		return 0
	}
	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int64(f)
	}
	return 0
}
