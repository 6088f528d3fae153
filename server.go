package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Server exposes one shared canvas over HTTP. Handlers take mu for the
// whole request, so requests are applied in the order they are served.
type Server struct {
	mu       sync.Mutex
	registry *Registry
	bridge   *Bridge
	theme    Theme
	exporter Exporter
	logger   *zap.Logger
}

func NewServer(cfg *Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := NewRegistry()
	return &Server{
		registry: reg,
		bridge:   NewBridge(reg),
		theme:    cfg.ElementTheme(),
		exporter: cfg.Exporter(),
		logger:   logger,
	}
}

// RegisterHTTP registers the API routes on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/api/v1/elements", s.handleList)
	r.Post("/api/v1/elements", s.handleCreate)
	r.Post("/api/v1/drop", s.handleDrop)
	r.Get("/api/v1/elements/{id}/selection", s.handleSelection)
	r.Patch("/api/v1/elements/{id}", s.handleEdit)

	r.Get("/api/v1/export", s.handleExport)
	r.Get("/api/v1/export/{artifact}", s.handleArtifact)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	s.RegisterHTTP(r)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	elements := s.registry.Elements()
	s.mu.Unlock()

	if elements == nil {
		elements = []Element{}
	}
	writeJSON(w, http.StatusOK, elements)
}

type createRequest struct {
	Type     string    `json:"type"`
	Position *Position `json:"position,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.drop(w, DropPayload{Type: req.Type, Position: req.Position})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var p DropPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.drop(w, p)
}

func (s *Server) drop(w http.ResponseWriter, p DropPayload) {
	s.mu.Lock()
	res, err := HandleDrop(s.registry, s.theme, p)
	s.mu.Unlock()

	switch {
	case errors.Is(err, ErrInvalidElementType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		s.logger.Error("drop failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	case res.Created:
		s.logger.Info("element created", elementFields(res.Element)...)
		writeJSON(w, http.StatusCreated, res)
	case res.Moved:
		s.logger.Info("element relocated", elementFields(res.Element)...)
		writeJSON(w, http.StatusOK, res)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSelection reports the view an editing surface would bind to. It
// reads the registry only; clients share one Bridge, so a lookup must not
// move its selection.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	id := ElementID(chi.URLParam(r, "id"))

	s.mu.Lock()
	el, found := s.registry.FindByID(id)
	s.mu.Unlock()

	if !found {
		http.Error(w, "Element not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSelectionView(el))
}

type editRequest struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := ElementID(chi.URLParam(r, "id"))

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	applied := s.bridge.ApplyEdit(id, req.Property, req.Value)
	el, found := s.registry.FindByID(id)
	s.mu.Unlock()

	if !applied || !found {
		s.logger.Debug("edit ignored", zap.String("id", string(id)), zap.String("property", req.Property))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

// export snapshots the registry and returns its artifacts with the
// revision they were produced from.
func (s *Server) export() (Artifacts, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exporter.Export(s.registry.Elements()), s.registry.Revision()
}

func etag(revision uint64) string {
	return `"` + strconv.FormatUint(revision, 10) + `"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	a, rev := s.export()
	tag := etag(rev)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if a.Snapshot == nil {
		a.Snapshot = []SnapshotRecord{}
	}

	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(a)
		if err != nil {
			s.logger.Error("yaml export failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(out)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	a, rev := s.export()
	w.Header().Set("ETag", etag(rev))

	var body, contentType string
	switch chi.URLParam(r, "artifact") {
	case "structure":
		body, contentType = a.Structure, "text/html; charset=utf-8"
	case "presentation":
		body, contentType = a.Presentation, "text/css; charset=utf-8"
	case "behavior":
		body, contentType = a.Behavior, "text/javascript; charset=utf-8"
	case "snapshot":
		out, err := a.SnapshotJSON()
		if err != nil {
			s.logger.Error("snapshot export failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		body, contentType = string(out), "application/json"
	default:
		http.Error(w, "Unknown artifact", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write([]byte(body))
}
