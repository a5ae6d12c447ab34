// Package api exposes the racing-line planner over HTTP: submitting
// optimization runs, polling their state, and tuning the vehicle
// physics between runs.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/raceline/internal/httputil"
	"github.com/banshee-data/raceline/internal/physics"
	"github.com/banshee-data/raceline/internal/runs"
	"github.com/banshee-data/raceline/internal/units"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server routes API requests to the run manager and the run store.
type Server struct {
	manager *runs.Manager
	store   *runs.Store

	// physics holds the vehicle parameters UI controls edit between
	// runs. Each Generate captures a snapshot, so edits cannot corrupt
	// an in-flight run.
	mu      sync.RWMutex
	physics physics.Config
}

// NewServer creates an API server. store may be nil when runs are not
// persisted.
func NewServer(manager *runs.Manager, store *runs.Store, cfg physics.Config) *Server {
	return &Server{
		manager: manager,
		store:   store,
		physics: cfg,
	}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/line/generate", s.generateLine)
	mux.HandleFunc("/line/run", s.showRun)
	mux.HandleFunc("/line/runs", s.listRuns)
	mux.HandleFunc("/line/chart", s.lineChart)
	mux.HandleFunc("/physics", s.physicsConfig)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(code int) string {
	if code >= 400 {
		return colorBoldRed
	}
	return colorBoldGreen
}

// LogRequests wraps a handler with coloured request/latency logging.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf("%s%d%s %s %s%s%s %.2fms",
			statusCodeColor(lrw.statusCode), lrw.statusCode, colorReset,
			r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// generateResponse is the background-task protocol response: success
// with the run handle, or failure with an error message. On failure the
// caller is expected to fall back to a synchronous request (wait=1).
type generateResponse struct {
	Success bool           `json:"success"`
	RunID   string         `json:"run_id,omitempty"`
	Record  any            `json:"optimized,omitempty"`
	LapTime *float64       `json:"lap_time_s,omitempty"`
	Display string         `json:"lap_time_display,omitempty"`
	Error   string         `json:"error,omitempty"`
	Status  runs.Status    `json:"status,omitempty"`
	Physics physics.Config `json:"physics"`
}

func (s *Server) generateLine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req runs.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Physics == nil {
		cfg := s.PhysicsSnapshot()
		req.Physics = &cfg
	}

	// wait=1 runs the identical computation inline and returns the
	// finished line; this is also the fallback path when background
	// execution reports failure.
	if r.URL.Query().Get("wait") == "1" {
		rec, lapTime, err := s.manager.GenerateSync(req)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, generateResponse{
			Success: true,
			Record:  rec,
			LapTime: &lapTime,
			Display: units.FormatLapTime(lapTime),
			Status:  runs.StatusComplete,
			Physics: *req.Physics,
		})
		return
	}

	runID, err := s.manager.Generate(r.Context(), req)
	if err != nil {
		httputil.WriteJSONOK(w, generateResponse{Success: false, Error: err.Error(), Physics: *req.Physics})
		return
	}
	httputil.WriteJSONOK(w, generateResponse{
		Success: true,
		RunID:   runID,
		Status:  runs.StatusQueued,
		Physics: *req.Physics,
	})
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		// No ID: report the in-memory state of the current run.
		httputil.WriteJSONOK(w, s.manager.Snapshot())
		return
	}

	rec, err := s.store.GetRun(id)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("run %s not found: %v", id, err))
		return
	}
	httputil.WriteJSONOK(w, rec)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > 500 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = v
	}

	records, err := s.store.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, records)
}

// PhysicsSnapshot returns a copy of the current vehicle parameters.
func (s *Server) PhysicsSnapshot() physics.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.physics
}

// physicsConfig reads (GET) or updates (POST) the vehicle parameters
// used for subsequent runs. Grip is clamped through the explicit
// setter; an in-flight run keeps the snapshot it started with.
func (s *Server) physicsConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.PhysicsSnapshot())

	case http.MethodPost:
		var cfg physics.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid physics config: %v", err))
			return
		}
		cfg.SetGrip(cfg.Grip)
		if cfg.MaxAcceleration <= 0 || cfg.MaxBraking <= 0 || cfg.MaxSpeed <= 0 {
			httputil.BadRequest(w, "acceleration, braking and max speed must be positive")
			return
		}
		s.mu.Lock()
		s.physics = cfg
		s.mu.Unlock()
		httputil.WriteJSONOK(w, cfg)

	default:
		httputil.MethodNotAllowed(w)
	}
}
