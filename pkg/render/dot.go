// Package render turns annotated OC-DFG views into renderable diagram
// descriptions. The core emits Graphviz DOT text; actual image rendering is
// the consumer's concern.
package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/ocel"
)

// Cluster colors per object type, cycling when types exceed the palette.
var typeColors = []string{
	"#1f6feb", "#2da44e", "#bf8700", "#cf222e", "#8250df",
	"#0969da", "#57606a",
}

const dotTemplate = `digraph {{.Name}} {
	rankdir=TB;
	label="{{.Caption}}";
	labelloc="b";
	node [shape=box, style="rounded,filled", fontname="Helvetica", fontsize=11];
	edge [fontname="Helvetica", fontsize=10];
{{range .Clusters}}
	subgraph cluster_{{.Index}} {
		label="{{.ObjectType}}";
		color="{{.Color}}";
{{- range .Nodes}}
		"{{.ID}}" [label="{{.Text}}", fillcolor="{{.Color}}22"];
{{- end}}
	}
{{end}}
{{- range .Edges}}
	"{{.Source}}" -> "{{.Target}}" [label="{{.Text}}", color="{{.Color}}"];
{{- end}}
}
`

var dotTmpl = template.Must(template.New("dot").Parse(dotTemplate))

type dotCluster struct {
	Index      int
	ObjectType string
	Color      string
	Nodes      []dotNode
}

type dotNode struct {
	ID    string
	Text  string
	Color string
}

type dotEdge struct {
	Source string
	Target string
	Text   string
	Color  string
}

type dotDoc struct {
	Name     string
	Caption  string
	Clusters []dotCluster
	Edges    []dotEdge
}

// WriteDOT renders a view as Graphviz DOT. Nodes are grouped into one
// cluster per object type; nodes and edges keep the view's sorted order.
func WriteDOT(v *ocel.View, w io.Writer) error {
	doc := dotDoc{
		Name:    v.Annotation,
		Caption: escape(v.Caption),
	}

	byType := make(map[string][]ocel.ViewNode)
	var types []string
	for _, n := range v.Nodes {
		if _, ok := byType[n.ObjectType]; !ok {
			types = append(types, n.ObjectType)
		}
		byType[n.ObjectType] = append(byType[n.ObjectType], n)
	}
	sort.Strings(types)

	colorOf := make(map[string]string, len(types))
	for i, typ := range types {
		colorOf[typ] = typeColors[i%len(typeColors)]

		cluster := dotCluster{Index: i, ObjectType: typ, Color: colorOf[typ]}
		for _, n := range byType[typ] {
			cluster.Nodes = append(cluster.Nodes, dotNode{
				ID:    escape(n.ID),
				Text:  nodeText(v, n),
				Color: colorOf[typ],
			})
		}
		doc.Clusters = append(doc.Clusters, cluster)
	}

	for _, e := range v.Edges {
		doc.Edges = append(doc.Edges, dotEdge{
			Source: escape(e.Source),
			Target: escape(e.Target),
			Text:   edgeText(v, e),
			Color:  colorOf[e.ObjectType],
		})
	}

	if err := dotTmpl.Execute(w, doc); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to render DOT")
	}
	return nil
}

// WriteDOTFile renders a view to a .dot file.
func WriteDOTFile(v *ocel.View, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create diagram file").
			WithContext("path", path)
	}
	defer f.Close()
	return WriteDOT(v, f)
}

func nodeText(v *ocel.View, n ocel.ViewNode) string {
	if v.Annotation == "performance" {
		return fmt.Sprintf(`%s\nE=%d`, escape(n.Activity), int64(n.Label))
	}
	return fmt.Sprintf(`%s\n%d`, escape(n.Activity), int64(n.Label))
}

func edgeText(v *ocel.View, e ocel.ViewEdge) string {
	if v.Annotation == "performance" {
		return HumanDuration(e.Label)
	}
	return fmt.Sprintf("%d", int64(e.Label))
}

// HumanDuration renders a duration in seconds compactly: "45s", "2.5h",
// "3.0d". Aggregation always happens in seconds; this is display only.
func HumanDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh", d.Hours())
	default:
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
