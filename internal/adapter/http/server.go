package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/clockface/internal/adapter/raster"
	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/presentation"
)

//go:embed static
var staticFS embed.FS

const defaultSnapshotDiameter = 300

// Deps are the components the HTTP surface serves. Store and Sessions may be nil.
type Deps struct {
	Formatter     *domain.Formatter
	Layouter      domain.Layouter
	Store         presentation.PreferenceStore
	Ready         sharedobs.ReadinessChecker
	Sessions      http.Handler // websocket endpoint
	PrefsKey      string
	Default24Hour bool
	Logger        *slog.Logger
}

// Server exposes the clock page, its JSON API, the websocket endpoint and
// the health, readiness and metrics routes.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes mounted.
func NewServer(addr string, deps Deps) *Server {
	if deps.Layouter == nil {
		deps.Layouter = domain.DialGeometry{}
	}
	if deps.Ready == nil {
		deps.Ready = alwaysReady{}
	}

	s := &Server{deps: deps, logger: deps.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.FileServerFS(staticFS))
	if deps.Sessions != nil {
		r.Handle("/ws", deps.Sessions)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/reading", s.handleReading)
		r.Get("/layout", s.handleLayout)
		r.Get("/snapshot.png", s.handleSnapshot)
		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
// Hijacked websocket connections are not tracked here.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page) //nolint:errcheck // client gone
}

func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	at, err := parseInstant(r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	use24, err := parseBool(r.URL.Query().Get("use24Hour"), s.deps.Default24Hour)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("use24Hour: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Formatter.Reading(at, use24))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	d, err := parseDiameter(r.URL.Query().Get("diameter"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Layouter.LayoutDial(d))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := parseDiameter(q.Get("diameter"), defaultSnapshotDiameter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if d <= 0 || d > raster.MaxDiameter {
		writeError(w, http.StatusBadRequest, fmt.Errorf("diameter must be in (0, %d]", raster.MaxDiameter))
		return
	}
	at, err := parseInstant(q.Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	mode := s.currentMode(r.Context())
	dark, err := parseBool(q.Get("dark"), mode.DarkMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("dark: %w", err))
		return
	}

	// Buffered so an encoding failure can still become an error response.
	var buf bytes.Buffer
	reading := s.deps.Formatter.Reading(at, mode.Use24Hour)
	if err := raster.EncodePNG(&buf, s.deps.Layouter.LayoutDial(d), reading, dark); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("snapshot write failed", "error", err)
	}
}

type preferencesResponse struct {
	domain.DisplayMode
	Stored bool `json:"stored"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeJSON(w, http.StatusOK, preferencesResponse{DisplayMode: s.defaults()})
		return
	}
	mode, ok, err := s.deps.Store.Load(r.Context(), s.deps.PrefsKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		mode = s.defaults()
	}
	writeJSON(w, http.StatusOK, preferencesResponse{DisplayMode: mode, Stored: ok})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, http.StatusNotImplemented, errors.New("preference storage disabled"))
		return
	}
	var mode domain.DisplayMode
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&mode); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode preferences: %w", err))
		return
	}
	if err := s.deps.Store.Save(r.Context(), s.deps.PrefsKey, mode); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{DisplayMode: mode, Stored: true})
}

// currentMode is the stored mode, or the defaults when nothing usable is stored.
func (s *Server) currentMode(ctx context.Context) domain.DisplayMode {
	if s.deps.Store == nil {
		return s.defaults()
	}
	mode, ok, err := s.deps.Store.Load(ctx, s.deps.PrefsKey)
	if err != nil || !ok {
		return s.defaults()
	}
	return mode
}

func (s *Server) defaults() domain.DisplayMode {
	return domain.DefaultDisplayMode(s.deps.Default24Hour, nil)
}

type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

// parseInstant accepts RFC 3339 or Unix milliseconds. Empty means now.
func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return domain.Now(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("at: want RFC 3339 or unix milliseconds, got %q", s)
	}
	return t, nil
}

func parseDiameter(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("diameter: want a number, got %q", s)
	}
	return d, nil
}

func parseBool(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseBool(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
