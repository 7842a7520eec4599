package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/ratelimit"
	"github.com/nvandessel/ox500/internal/station"
)

// startStation runs a station on a real loop for the duration of the test.
func startStation(t *testing.T) *station.Station {
	t.Helper()
	l := eventloop.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Run(ctx)
	}()

	st := station.New(l, station.Options{Seed: 42, Logger: logging.Discard()})
	if err := st.Exec(ctx, st.Start); err != nil {
		t.Fatalf("start station: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Exec(ctx, st.Stop)
		cancel()
		wg.Wait()
	})
	return st
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter[constants.Activity]) (*Server, *station.Station) {
	t.Helper()
	st := startStation(t)
	return NewServer(st, station.NewInjector(st, limiter), Options{Logger: logging.Discard()}), st
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServer_ServesRender(t *testing.T) {
	gs := startStation(t)
	srv := NewServer(gs, nil, Options{Logger: logging.Discard()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	waitForServer(t, srv, 2*time.Second)

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/plain; charset=utf-8", ct)
	}
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OX-500") {
		t.Errorf("render missing title:\n%s", rec.Body.String())
	}

	if rec := do(t, srv, http.MethodGet, "/?width=50"); rec.Code != http.StatusOK {
		t.Errorf("width=50 status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/?width=wide"); rec.Code != http.StatusBadRequest {
		t.Errorf("width=wide status = %d, want 400", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("/nope status = %d, want 404", rec.Code)
	}
}

func TestSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/snapshot")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap models.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Phase != models.PhaseNominal {
		t.Errorf("phase = %s, want NOMINAL", snap.Phase)
	}
}

func TestStats(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats station.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.SessionID != st.ID() || stats.Seed != 42 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Engine.PoolSize != 100 || len(stats.Engine.SessionRecipes) != 14 {
		t.Errorf("engine stats = %+v", stats.Engine)
	}
}

func TestInject(t *testing.T) {
	srv, _ := newTestServer(t, ratelimit.NewLimiter[constants.Activity](1.0/60, 1))

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"accepted", http.MethodPost, "/api/inject?kind=glitch", http.StatusAccepted},
		{"limited", http.MethodPost, "/api/inject?kind=glitch", http.StatusTooManyRequests},
		{"other kind has its own bucket", http.MethodPost, "/api/inject?kind=page", http.StatusAccepted},
		{"get not allowed", http.MethodGet, "/api/inject?kind=feed", http.StatusMethodNotAllowed},
		{"missing kind", http.MethodPost, "/api/inject", http.StatusBadRequest},
		{"unknown kind", http.MethodPost, "/api/inject?kind=scream", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
				t.Error("missing Retry-After")
			}
		})
	}
}

func TestInject_Disabled(t *testing.T) {
	srv := NewServer(startStation(t), nil, Options{Logger: logging.Discard()})
	if rec := do(t, srv, http.MethodPost, "/api/inject?kind=feed"); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestServer_CleanShutdown(t *testing.T) {
	srv := NewServer(startStation(t), nil, Options{Logger: logging.Discard()})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	waitForServer(t, srv, 2*time.Second)

	// Cancel context to trigger shutdown
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("unexpected error on shutdown: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down within 3 seconds")
	}
}

func TestServer_ListenError(t *testing.T) {
	srv := NewServer(startStation(t), nil, Options{Addr: "256.0.0.1:bad", Logger: logging.Discard()})
	if err := srv.ListenAndServe(context.Background()); err == nil {
		t.Error("expected listen error")
	}
}

// waitForServer polls the server until it's ready or the timeout is reached.
func waitForServer(t *testing.T, srv *Server, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		addr := srv.Addr()
		if addr == "" {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		resp, err := http.Get("http://" + addr + "/")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not start within timeout")
}
