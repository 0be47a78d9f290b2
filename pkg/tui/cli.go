// Package tui renders CLI output for discovery runs.
// Simple, streaming, no complex TUI - just clean sections and tables.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/ocel"
	"github.com/procflow/procflow/pkg/pipeline"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

const rule = "  ─────────────────────────────────────"

// PrintHeader prints the program banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  PROCFLOW") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Object-centric process discovery for procure-to-pay"))
	fmt.Println()
}

// PrintRunSummary prints the outcome of one discovery run.
func PrintRunSummary(res *pipeline.Result) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ DISCOVERY COMPLETE"))
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Run:"), titleStyle.Render(res.RunID))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Events:"), titleStyle.Render(formatNumber(int64(len(res.Log.Events)))))

	counts := res.Log.ObjectCountsByType()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	fmt.Printf("  %s %s\n", mutedStyle.Render("Objects:"), titleStyle.Render(strings.Join(parts, "  ")))

	fmt.Printf("  %s %s nodes, %s edges\n",
		mutedStyle.Render("Graph:"),
		titleStyle.Render(formatNumber(int64(len(res.Graph.Nodes)))),
		titleStyle.Render(formatNumber(int64(len(res.Graph.Edges)))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Elapsed:"), titleStyle.Render(formatDuration(res.Elapsed)))
	fmt.Println()
}

// PrintPreview prints the head of the canonical table.
func PrintPreview(t *model.Table) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ PREVIEW"))
	fmt.Println(mutedStyle.Render(rule))
	fmt.Println("  " + mutedStyle.Render(strings.Join(model.Columns, "  ")))
	for _, r := range t.Rows {
		fmt.Println("  " + strings.Join(r.Strings(), "  "))
	}
	fmt.Println(mutedStyle.Render(rule))
	fmt.Printf("  %s %d\n", mutedStyle.Render("Rows shown:"), t.Len())
	fmt.Println()
}

// PrintView prints an annotated view as a flat edge listing.
func PrintView(v *ocel.View) {
	fmt.Println()
	fmt.Println(accentStyle.Render("▸ " + strings.ToUpper(v.Annotation) + " VIEW"))
	fmt.Println(mutedStyle.Render("  " + v.Caption))
	fmt.Println(mutedStyle.Render(rule))
	for _, e := range v.Edges {
		fmt.Printf("  %s %s → %s  %s\n",
			mutedStyle.Render("["+e.ObjectType+"]"),
			e.Source, e.Target,
			titleStyle.Render(formatLabel(e.Label)))
	}
	fmt.Println(mutedStyle.Render(rule))
	fmt.Println()
}

// PrintError prints a failure line.
func PrintError(err error) {
	fmt.Println()
	fmt.Println(accentStyle.Render("  ✗ " + err.Error()))
	fmt.Println()
}

// PrintWatch prints a change notification while watching a source file.
func PrintWatch(path string) {
	fmt.Printf("  %s %s\n", mutedStyle.Render(time.Now().Format("15:04:05")), "change detected: "+path)
}

func formatLabel(v float64) string {
	if v == float64(int64(v)) {
		return formatNumber(int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
