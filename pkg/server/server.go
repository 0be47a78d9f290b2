// Package server provides the HTTP API over one pipeline.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/p2p"
	"github.com/procflow/procflow/pkg/pipeline"
)

// Server handles HTTP requests for discovery runs.
type Server struct {
	pipe *pipeline.Pipeline
	mux  *http.ServeMux
}

// NewServer creates an HTTP server around a pipeline.
func NewServer(pipe *pipeline.Pipeline) *Server {
	s := &Server{
		pipe: pipe,
		mux:  http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures HTTP handlers.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/discover", s.handleDiscover)
	s.mux.HandleFunc("/api/preview", s.handlePreview)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/activities", s.handleActivities)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers for development
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status": "ok",
		"source": s.pipe.Source(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// discoverResponse wraps a run result for the wire.
type discoverResponse struct {
	*pipeline.Result
	Preview []previewRow `json:"preview"`
}

type previewRow map[string]string

// handleDiscover runs one discovery with the posted parameters.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params pipeline.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.pipe.Run(r.Context(), params)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	jsonResponse(w, &discoverResponse{
		Result:  res,
		Preview: previewRows(res.Preview),
	})
}

// handlePreview returns the head of the unfiltered canonical table.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	table, err := s.pipe.Table(r.Context())
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	jsonResponse(w, map[string]interface{}{
		"columns": model.Columns,
		"rows":    previewRows(table.Head(pipeline.PreviewRows)),
		"total":   table.Len(),
	})
}

// handleStats returns summary statistics of the source table.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	table, err := s.pipe.Table(r.Context())
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	min, max := table.TimeRange()
	jsonResponse(w, map[string]interface{}{
		"rows":       table.Len(),
		"time_start": min,
		"time_end":   max,
	})
}

// handleActivities returns the activity catalog and its groups.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"groups":       p2p.GroupNames,
		"by_group":     p2p.Groups,
		"object_types": p2p.ObjectTypes,
	})
}

func previewRows(t *model.Table) []previewRow {
	rows := make([]previewRow, 0, t.Len())
	for _, r := range t.Rows {
		vals := r.Strings()
		row := make(previewRow, len(model.Columns))
		for i, c := range model.Columns {
			row[c] = vals[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeFileNotFound:
		return http.StatusNotFound
	case errors.CodeMissingColumn, errors.CodeInvalidTimestamp, errors.CodeInvalidFormat:
		return http.StatusUnprocessableEntity
	case errors.CodeContextCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
