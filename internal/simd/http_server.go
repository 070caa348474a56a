package simd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/contagion-core/internal/montecarlo"
	"github.com/GoSim-25-26J-441/contagion-core/internal/report"
	"github.com/GoSim-25-26J-441/contagion-core/internal/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
)

const maxRequestBytes = 1 << 20

type HTTPServer struct {
	mux      *http.ServeMux
	Executor *RunExecutor
}

// NewHTTPServer wires the sweep API. A nil gatherer disables /metrics.
func NewHTTPServer(executor *RunExecutor, gatherer prometheus.Gatherer) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/sweeps", s.handleSweeps)
	s.mux.HandleFunc("/v1/sweeps/", s.handleSweepByID)
	if gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSweeps handles /v1/sweeps
func (s *HTTPServer) handleSweeps(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSweep(w, r)
	case http.MethodGet:
		s.handleListSweeps(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSweepByID handles /v1/sweeps/{id}, /v1/sweeps/{id}:stop and /v1/sweeps/{id}/result
func (s *HTTPServer) handleSweepByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/sweeps/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	switch {
	case strings.HasSuffix(path, ":stop"):
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleStopSweep(w, strings.TrimSuffix(path, ":stop"))
	case strings.HasSuffix(path, "/result"):
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetResult(w, r, strings.TrimSuffix(path, "/result"))
	default:
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetSweep(w, path)
	}
}

// handleCreateSweep handles POST /v1/sweeps
func (s *HTTPServer) handleCreateSweep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID      string `json:"run_id,omitempty"`
		ConfigYAML string `json:"config_yaml"`
		// Start defaults to true.
		Start *bool `json:"start,omitempty"`
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.Executor.Create(req.RunID, req.ConfigYAML)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	logger.Info("sweep run created", "run_id", rec.Run.ID)

	if req.Start == nil || *req.Start {
		rec, err = s.Executor.Start(rec.Run.ID)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"run": rec.Run})
}

// handleListSweeps handles GET /v1/sweeps
func (s *HTTPServer) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	recs := s.Executor.Store().List(limit)
	runs := make([]Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *HTTPServer) handleGetSweep(w http.ResponseWriter, runID string) {
	rec, ok := s.Executor.Store().Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec.Run})
}

func (s *HTTPServer) handleStopSweep(w http.ResponseWriter, runID string) {
	rec, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	logger.Info("sweep run cancelled", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec.Run})
}

// handleGetResult handles GET /v1/sweeps/{id}/result?format=json|table|map
func (s *HTTPServer) handleGetResult(w http.ResponseWriter, r *http.Request, runID string) {
	format := report.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	result, err := s.Executor.Store().Result(runID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if format == report.FormatTable {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if err := report.Write(w, result, format); err != nil {
		logger.Error("failed to write result", "run_id", runID, "error", err)
	}
}

func (s *HTTPServer) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRunNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunTerminal), errors.Is(err, ErrNoResult):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrRunIDMissing), errors.Is(err, config.ErrInvalidConfig), errors.Is(err, montecarlo.ErrInvalidParams):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
