// Package server exposes the interactive CPU time view over HTTP. The browser renders the
// chart descriptors with echarts and reports clicks and instance selections back.
package server

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"cpuchart/internal/aggregate"
	"cpuchart/internal/chart"
	"cpuchart/internal/csvrows"
	"cpuchart/internal/filter"
	"cpuchart/internal/view"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	formFieldFile     = "file"
	formFieldProcess  = "name"
	formFieldInstance = "id"
	shutdownTimeout   = 5 * time.Second
)

// Options configures a Server
type Options struct {
	MaxUploadBytes int64          // MaxUploadBytes limits the size of an upload request body
	Where          *filter.Filter // Where drops uploaded rows before aggregation, nil keeps all
}

// Server serves the view held in a view.State
type Server struct {
	state    *view.State
	opts     Options
	metrics  *metrics
	registry *prometheus.Registry
	mux      *http.ServeMux
}

// New returns a server for state. Each server has its own metrics registry.
func New(state *view.State, opts Options) *Server {
	s := &Server{
		state:    state,
		opts:     opts,
		registry: prometheus.NewRegistry(),
		mux:      http.NewServeMux(),
	}
	s.metrics = newMetrics(s.registry)
	state.OnChange(s.metrics.observe)
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("POST /select/process", s.handleSelectProcess)
	s.mux.HandleFunc("POST /select/instance", s.handleSelectInstance)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /healthz", handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run listens on addr and serves until ctx is done, then shuts down gracefully.
// The listening address is sent on ready, if not nil, once the server accepts connections.
func (s *Server) Run(ctx context.Context, addr string, ready chan<- string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 3 * time.Second,
	}
	slog.Info("starting server", slog.String("address", listener.Addr().String()))
	if ready != nil {
		ready <- listener.Addr().String()
	}
	errChannel := make(chan error, 1)
	go func() {
		errChannel <- server.Serve(listener)
	}()
	select {
	case err = <-errChannel:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// stateResponse is the body of /api/state and the select endpoints
type stateResponse struct {
	Columns   []string           `json:"columns"`
	Selection chart.Selection    `json:"selection"`
	Uploads   int                `json:"uploads"`
	Instances []string           `json:"instances"`
	Processes []string           `json:"processes"`
	Charts    []chart.Descriptor `json:"charts"`
}

func newStateResponse(snap view.Snapshot) stateResponse {
	set := snap.Charts()
	resp := stateResponse{
		Columns:   snap.Columns,
		Selection: snap.Selection,
		Uploads:   snap.Uploads,
		Instances: set.Instances,
		Processes: aggregate.ProcessNames(snap.Rows),
		Charts:    set.Descriptors(),
	}
	if resp.Columns == nil {
		resp.Columns = []string{}
	}
	if resp.Instances == nil {
		resp.Instances = []string{}
	}
	if resp.Processes == nil {
		resp.Processes = []string{}
	}
	if resp.Charts == nil {
		resp.Charts = []chart.Descriptor{}
	}
	return resp
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	set := snap.Charts()
	data := pageData{
		Title:       pageTitle,
		Uploads:     snap.Uploads,
		HasData:     snap.HasData(),
		Columns:     snap.Columns,
		Set:         set,
		MaxUploadMB: s.opts.MaxUploadBytes >> 20,
		Where:       s.opts.Where.String(),
	}
	if err := data.renderCharts(); err != nil {
		slog.Error("failed to render charts", slog.String("error", err.Error()))
		http.Error(w, "failed to render charts", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		slog.Error("failed to render page", slog.String("error", err.Error()))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	}
	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		s.metrics.uploadErrors.Inc()
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, fmt.Sprintf("upload exceeds %d bytes", maxBytesErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("missing form file %q", formFieldFile), http.StatusBadRequest)
		return
	}
	defer file.Close()
	records, err := csvrows.Read(file)
	if err != nil {
		s.metrics.uploadErrors.Inc()
		slog.Warn("failed to read upload", slog.String("file", header.Filename), slog.String("error", err.Error()))
		http.Error(w, fmt.Sprintf("failed to read %s: %v", header.Filename, err), http.StatusBadRequest)
		return
	}
	columns, rows := csvrows.Split(records)
	rows = s.opts.Where.Apply(rows)
	s.metrics.rowsAggregated.Set(float64(len(rows)))
	slog.Info("received upload", slog.String("file", header.Filename), slog.Int64("bytes", header.Size), slog.Int("rows", len(rows)))
	s.state.Upload(columns, rows)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelectProcess(w http.ResponseWriter, r *http.Request) {
	name, ok := formValue(r, formFieldProcess)
	if !ok {
		http.Error(w, fmt.Sprintf("missing form value %q", formFieldProcess), http.StatusBadRequest)
		return
	}
	writeJSON(w, newStateResponse(s.state.SelectProcess(name)))
}

func (s *Server) handleSelectInstance(w http.ResponseWriter, r *http.Request) {
	id, ok := formValue(r, formFieldInstance)
	if !ok {
		http.Error(w, fmt.Sprintf("missing form value %q", formFieldInstance), http.StatusBadRequest)
		return
	}
	writeJSON(w, newStateResponse(s.state.SelectInstance(id)))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, newStateResponse(s.state.Snapshot()))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// formValue returns the named value from the request body, false if the field is absent
func formValue(r *http.Request, name string) (string, bool) {
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response", slog.String("error", err.Error()))
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
