// Package monitor serves a read-mostly HTTP view of a running station.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/display"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/ratelimit"
	"github.com/nvandessel/ox500/internal/station"
)

// Station is the part of a running station the monitor reads.
type Station interface {
	Snapshot() models.Snapshot
	Stats() station.Stats
	Board() *display.Board
}

// Injector pokes a station from outside its loop.
type Injector interface {
	Inject(ctx context.Context, a constants.Activity) error
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Empty means localhost:0.
	Addr string

	// Width is the default render width of GET /.
	Width int

	Logger *slog.Logger
}

// Server serves the station render and its JSON API.
type Server struct {
	st       Station
	injector Injector
	opts     Options

	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a monitor for st. injector may be nil, which disables
// POST /api/inject.
func NewServer(st Station, injector Injector, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "localhost:0"
	}
	if opts.Width <= 0 {
		opts.Width = 72
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{st: st, injector: injector, opts: opts}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the monitor's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/inject", s.handleInject)
	return mux
}

// ListenAndServe starts the HTTP server and blocks until the context is
// cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Unlock()
	s.opts.Logger.Info("monitor listening", "addr", s.addr)

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleIndex serves the plain-text station render.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	width := s.opts.Width
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid 'width' query parameter", http.StatusBadRequest)
			return
		}
		width = n
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, s.st.Board().Render(width, nil))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.st.Snapshot())
}

// handleStats serves the anomaly engine introspection.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.st.Stats())
}

// handleInject injects one activity. kind is a query parameter.
func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.injector == nil {
		http.Error(w, "injection disabled", http.StatusForbidden)
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		http.Error(w, "missing 'kind' query parameter", http.StatusBadRequest)
		return
	}

	err := s.injector.Inject(r.Context(), constants.Activity(kind))
	var limited *ratelimit.LimitedError
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]any{"kind": kind, "accepted": true})
	case errors.Is(err, station.ErrUnknownActivity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &limited):
		if limited.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
		}
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		s.opts.Logger.Warn("inject failed", "kind", kind, "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
