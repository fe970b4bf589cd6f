// Package httpapi exposes hosted matches over JSON HTTP. Every route maps
// onto one mediator request; domain codes pick the status.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/towerdefense/internal/config"
	"github.com/vovakirdan/towerdefense/internal/storage"
	"github.com/vovakirdan/towerdefense/internal/strategy"
)

// RunStore persists finished simulations.
type RunStore interface {
	SaveRun(r storage.Run) (string, error)
	RecentRuns(limit int) ([]storage.Run, error)
}

// Deps are the server collaborators. Runs may be nil.
type Deps struct {
	Scenario   config.Scenario
	Plan       strategy.Config
	Runs       RunStore
	Logger     *log.Logger
	MaxMatches int
}

// Server bundles router, hosted matches and run history.
type Server struct {
	r        *chi.Mux
	matches  *Manager
	scenario config.Scenario
	plan     strategy.Config
	runs     RunStore
	logger   *log.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		r:        chi.NewRouter(),
		matches:  NewManager(d.MaxMatches),
		scenario: d.Scenario,
		plan:     d.Plan,
		runs:     d.Runs,
		logger:   logger,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(30 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "matches": s.matches.Len()})
	})
	s.r.Get("/catalog", s.handleCatalog)

	s.r.Route("/matches", func(r chi.Router) {
		r.Get("/", s.handleListMatches)
		r.Post("/", s.handleCreateMatch)
		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", s.handleGameState)
			r.Delete("/", s.handleDeleteMatch)
			r.Post("/reset", s.handleReset)
			r.Post("/tick", s.handleTick)
			r.Get("/buildings", s.handleBuildings)
			r.Post("/buildings", s.handlePlaceBuilding)
			r.Delete("/buildings/{buildingID}", s.handleRemoveBuilding)
			r.Post("/rounds", s.handleStartRound)
			r.Get("/waves", s.handleWaveInfo)
			r.Post("/waves", s.handleStartWave)
			r.Post("/money/spend", s.handleSpend)
			r.Post("/money/earn", s.handleEarn)
		})
	})

	s.r.Post("/simulations", s.handleSimulate)
	s.r.Get("/runs", s.handleRuns)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Path: r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// Matches exposes the hosted match registry.
func (s *Server) Matches() *Manager { return s.matches }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Path    string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
