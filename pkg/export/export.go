// Package export writes per-run artifacts: diagram descriptions for both
// views, the OCEL JSON interchange file, and the filtered canonical table
// as Arrow IPC. Artifacts land in a run-unique directory so concurrent
// runs never overwrite each other.
package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/ocel"
	"github.com/procflow/procflow/pkg/pipeline"
	"github.com/procflow/procflow/pkg/render"
)

// Artifacts names the files one exported run produced.
type Artifacts struct {
	Dir            string `json:"dir"`
	FrequencyDOT   string `json:"frequency_dot"`
	PerformanceDOT string `json:"performance_dot"`
	Views          string `json:"views"`
	OCELJSON       string `json:"ocel_json"`
	TableArrow     string `json:"table_arrow"`
}

// Exporter writes run artifacts under a base directory.
type Exporter struct {
	baseDir string
}

// New creates an exporter rooted at baseDir.
func New(baseDir string) *Exporter {
	return &Exporter{baseDir: baseDir}
}

// ExportRun writes all artifacts of one discovery run. The independent
// files are written concurrently; any failure aborts the rest.
func (e *Exporter) ExportRun(ctx context.Context, res *pipeline.Result) (*Artifacts, error) {
	dir := filepath.Join(e.baseDir, res.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportFailed, "failed to create run directory").
			WithContext("dir", dir)
	}

	art := &Artifacts{
		Dir:            dir,
		FrequencyDOT:   filepath.Join(dir, "frequency.dot"),
		PerformanceDOT: filepath.Join(dir, "performance.dot"),
		Views:          filepath.Join(dir, "views.json"),
		OCELJSON:       filepath.Join(dir, "log.ocel.json"),
		TableArrow:     filepath.Join(dir, "table.arrow"),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return render.WriteDOTFile(res.Frequency, art.FrequencyDOT) })
	g.Go(func() error { return render.WriteDOTFile(res.Performance, art.PerformanceDOT) })
	g.Go(func() error { return writeViewsJSON(res, art.Views) })
	g.Go(func() error { return ocel.WriteJSONFile(res.Log, art.OCELJSON) })
	g.Go(func() error { return WriteArrowIPC(res.Filtered, art.TableArrow) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return art, nil
}

// writeViewsJSON serializes both annotated views as one JSON document.
func writeViewsJSON(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create views file").
			WithContext("path", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]*ocel.View{
		"frequency":   res.Frequency,
		"performance": res.Performance,
	})
}
