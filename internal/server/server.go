// Package server exposes the resolver, the sampler and the run archive over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/metrics"
	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/pipeline"
	"github.com/sells-group/metro-sampler/internal/resolve"
	"github.com/sells-group/metro-sampler/internal/sampler"
	"github.com/sells-group/metro-sampler/internal/store"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves a preloaded universe. The store and metrics are optional.
type Server struct {
	pipeline *pipeline.Pipeline
	universe *pipeline.Universe
	store    store.Store
	metrics  *metrics.Metrics
	router   chi.Router
}

// New creates a Server and registers its routes.
func New(p *pipeline.Pipeline, u *pipeline.Universe, st store.Store, m *metrics.Metrics) *Server {
	s := &Server{pipeline: p, universe: u, store: st, metrics: m}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/resolve", s.handleResolve)
	r.Post("/sample", s.handleSample)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe snapshots the universe, then serves on port until ctx is
// cancelled and shuts down.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	s.snapshotUniverse(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- eris.Wrap(err, "server: listen")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

// snapshotUniverse archives the served universe once. Requests only archive
// their runs.
func (s *Server) snapshotUniverse(ctx context.Context) {
	if err := s.pipeline.SnapshotUniverse(ctx, s.universe); err != nil {
		zap.L().Warn("server: failed to snapshot universe", zap.Error(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"regions": len(s.universe.Regions),
	})
}

// ResolveResponse is the body of GET /resolve.
type ResolveResponse struct {
	Query    string `json:"query"`
	Mode     string `json:"mode"`
	RegionID string `json:"region_id"`
	Name     string `json:"name,omitempty"`
	Resolved bool   `json:"resolved"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	mode, err := resolve.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := ResolveResponse{Query: q, Mode: string(mode)}
	resp.RegionID = s.universe.Resolver.Resolve(q, mode)
	if resp.RegionID != "" {
		resp.Resolved = true
		resp.Name = s.regionName(resp.RegionID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) regionName(id string) string {
	for _, r := range s.universe.Regions {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}

// SampleRequest is the optional body of POST /sample. Unset fields keep
// the configured values.
type SampleRequest struct {
	Seed       *uint64 `json:"seed"`
	TargetSize *int    `json:"target_size"`
}

// SampleResponse is the body returned by POST /sample.
type SampleResponse struct {
	RunID      string            `json:"run_id,omitempty"`
	Allocation []AllocationEntry `json:"allocation"`
	Sample     *model.Sample     `json:"sample"`
	Methods    map[string]int    `json:"methods"`
}

// AllocationEntry is one stratum's allocated count.
type AllocationEntry struct {
	Stratum   string `json:"stratum"`
	Allocated int    `json:"allocated"`
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	var req SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := s.pipeline.Options().Sampling
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.TargetSize != nil {
		cfg = cfg.WithTarget(*req.TargetSize)
	}

	sample, err := s.pipeline.Select(s.universe, cfg)
	if err != nil {
		if eris.Is(err, sampler.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("server: sample failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sampling failed")
		return
	}

	resp := SampleResponse{Sample: sample, Methods: make(map[string]int)}
	for method, n := range sample.CountByMethod() {
		resp.Methods[string(method)] = n
	}
	for _, k := range sample.AllocatedStrata() {
		resp.Allocation = append(resp.Allocation, AllocationEntry{Stratum: k.String(), Allocated: sample.Allocation[k]})
	}

	resp.RunID, err = s.pipeline.ArchiveRun(r.Context(), sample, cfg.TargetSize)
	if err != nil {
		zap.L().Warn("server: failed to archive run", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run archive is not configured")
		return
	}
	filter := store.RunFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run archive is not configured")
		return
	}
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("server: get run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
