package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/procflow/procflow/pkg/pipeline"
	"github.com/procflow/procflow/pkg/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start a local HTTP server exposing discovery over one source file.

Endpoints:
  POST /api/discover    run discovery with posted parameters
  GET  /api/preview     head of the normalized table
  GET  /api/stats       row count and time range
  GET  /api/activities  activity catalog and object types
  GET  /api/health      liveness

Examples:
  procflow serve -i events.csv
  procflow serve -i events.csv --port 3000
  procflow serve -i events.csv --host 0.0.0.0`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().IntSliceVar(&yearsFlag, "years", nil, "Accepted calendar years (default 2020..2025)")
	serveCmd.MarkFlagRequired("input")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	ctx, cancel := signalContext()
	defer cancel()

	shutdown := setupTelemetry(ctx, cfg)
	defer shutdown(ctx)

	pipe := pipeline.New(cfg.Source.Path, cfg.Source.Years)
	srv := server.NewServer(pipe)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	fmt.Printf("Listening on http://%s (source: %s)\n", addr, cfg.Source.Path)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
