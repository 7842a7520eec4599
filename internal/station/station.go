// Package station assembles one station session: the diagnostics model, the
// anomaly engine and the ambient subsystems on a shared bus and scheduler.
package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/ox500/internal/anomaly"
	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/cooldown"
	"github.com/nvandessel/ox500/internal/diagnostics"
	"github.com/nvandessel/ox500/internal/display"
	"github.com/nvandessel/ox500/internal/effects"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/feed"
	"github.com/nvandessel/ox500/internal/glitch"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// ErrUnknownActivity is returned when injecting an activity the station does
// not know.
var ErrUnknownActivity = errors.New("unknown activity")

// PRNG streams of a session.
const (
	streamAnomaly uint32 = iota
	streamDiagnostics
	streamGlitch
	streamFeed
)

// Options configures a Station.
type Options struct {
	// Seed fixes the session. Zero derives one from the clock and the
	// viewport, like a fresh page load would.
	Seed          uint32
	ViewportWidth int
	PathLen       int

	TickInterval time.Duration
	Node         string

	// AmbientFeed enables the background feed.
	AmbientFeed bool

	Logger    *slog.Logger
	Decisions *logging.DecisionLogger
}

// Stats is a goroutine-safe view of a running station.
type Stats struct {
	SessionID   string              `json:"session_id"`
	Seed        uint32              `json:"seed"`
	Visible     bool                `json:"visible"`
	Diagnostics diagnostics.Metrics `json:"diagnostics"`
	Engine      anomaly.Stats       `json:"engine"`
}

// Station is one session. Methods other than the accessors, Snapshot, Stats
// and Exec are loop-bound.
type Station struct {
	id     string
	seed   uint32
	sched  eventloop.Scheduler
	bus    *bus.Bus
	board  *display.Board
	logger *slog.Logger

	diag   *diagnostics.Controller
	engine *anomaly.Engine
	glitch *glitch.Pulser
	feed   *feed.Feed
	ticker *eventloop.Ticker
	pulse  eventloop.Timer

	ambientFeed bool
	detach      []func()
	page        int
	started     bool
	visible     atomic.Bool
}

// New builds a station on sched. Nothing runs until Start.
func New(sched eventloop.Scheduler, opts Options) *Station {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = constants.DefaultTickInterval
	}
	if opts.Node == "" {
		opts.Node = "07"
	}
	seed := opts.Seed
	if seed == 0 {
		seed = prng.SessionSeed(sched.Now(), opts.ViewportWidth, opts.PathLen)
	}
	seed = prng.New(seed).Seed()

	id := uuid.New().String()
	logger := opts.Logger.With("session", id[:8])
	b := bus.New(logger)
	board := display.NewBoard(opts.Node, archivePage(0), archiveLinks)
	board.SetAvail(len(archiveEntries))

	s := &Station{
		id:          id,
		seed:        seed,
		sched:       sched,
		bus:         b,
		board:       board,
		logger:      logger,
		ambientFeed: opts.AmbientFeed,
	}
	s.diag = diagnostics.NewController(b, sched, prng.New(prng.Derive(seed, streamDiagnostics)), logger, opts.Decisions)
	s.engine = anomaly.NewEngine(sched, prng.New(prng.Derive(seed, streamAnomaly)), board, effects.DefaultRegistry(), anomaly.Options{
		Cooldowns: cooldown.NewTracker(cooldown.DefaultDurations()),
		Logger:    logger,
		Decisions: opts.Decisions,
		Bus:       b,
	})
	s.glitch = glitch.New(sched, prng.New(prng.Derive(seed, streamGlitch)), b, board, logger)
	s.feed = feed.New(sched, prng.New(prng.Derive(seed, streamFeed)), b, board, logger)
	s.ticker = eventloop.NewTicker(sched, opts.TickInterval, s.tick)
	s.visible.Store(true)
	return s
}

// ID returns the session id.
func (s *Station) ID() string { return s.id }

// Seed returns the effective session seed.
func (s *Station) Seed() uint32 { return s.seed }

// Bus returns the session bus.
func (s *Station) Bus() *bus.Bus { return s.bus }

// Board returns the display board.
func (s *Station) Board() *display.Board { return s.board }

// Engine returns the anomaly engine.
func (s *Station) Engine() *anomaly.Engine { return s.engine }

// Diagnostics returns the diagnostics controller.
func (s *Station) Diagnostics() *diagnostics.Controller { return s.diag }

// Scheduler returns the scheduler the station runs on.
func (s *Station) Scheduler() eventloop.Scheduler { return s.sched }

// Start wires every subsystem to the bus, announces the initial phase,
// completes boot and starts the tick source.
func (s *Station) Start() {
	if s.started {
		return
	}
	s.started = true

	s.detach = append(s.detach,
		s.bus.Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
			if p, ok := bus.Payload[bus.PhasePayload](ev); ok {
				s.board.SetPhase(p.Phase)
				if p.Phase != p.Previous {
					s.pulseDiagnostics()
				}
			}
		}),
		s.bus.Subscribe(bus.TopicDiagnosticsRender, func(ev bus.Event) {
			if snap, ok := bus.Payload[models.Snapshot](ev); ok {
				s.board.ApplySnapshot(snap)
			}
		}),
		s.engine.Attach(s.bus),
		s.glitch.Attach(s.bus),
		s.feed.Attach(s.bus),
	)

	if !s.visible.Load() {
		s.bus.Publish(bus.TopicVisibility, bus.VisibilityPayload{Hidden: true})
	}
	s.diag.Start()
	s.bus.Publish(bus.TopicBootComplete, nil)
	s.logger.Info("station started", "seed", s.seed, "session_recipes", len(s.engine.Session()))

	if s.visible.Load() {
		s.startTicks()
	}
	if s.ambientFeed {
		s.feed.Start()
	}
}

// Stop tears every subsystem down. No timers remain afterwards.
func (s *Station) Stop() {
	if !s.started {
		return
	}
	s.started = false
	s.ticker.Stop()
	s.stopPulse()
	s.feed.Stop()
	s.glitch.Stop()
	s.engine.Stop()
	s.diag.Stop()
	for _, d := range s.detach {
		d()
	}
	s.detach = nil
	s.logger.Info("station stopped", "fired", s.engine.Stats().Fired)
}

func (s *Station) tick() {
	s.bus.Publish(bus.TopicTick, bus.TickPayload{TS: s.sched.Now()})
}

// startTicks ticks at once and then every interval.
func (s *Station) startTicks() {
	if s.ticker.Running() {
		return
	}
	s.tick()
	s.ticker.Start()
}

// SetVisible shows or hides the station. Ticks pause while hidden.
func (s *Station) SetVisible(visible bool) {
	if s.visible.Load() == visible {
		return
	}
	s.visible.Store(visible)
	if !s.started {
		return
	}
	s.bus.Publish(bus.TopicVisibility, bus.VisibilityPayload{Hidden: !visible})
	if visible {
		s.startTicks()
	} else {
		s.ticker.Stop()
	}
}

// pulseDiagnostics flashes the diagnostics panel, restarting any flash
// already showing.
func (s *Station) pulseDiagnostics() {
	s.stopPulse()
	s.board.SetPulse(true)
	s.pulse = s.sched.AfterFunc(constants.DiagPulseDuration, func() {
		s.pulse = nil
		s.board.SetPulse(false)
	})
}

func (s *Station) stopPulse() {
	if s.pulse != nil {
		s.pulse.Stop()
		s.pulse = nil
	}
	s.board.SetPulse(false)
}

// Visible reports whether the station is visible. Safe from any goroutine.
func (s *Station) Visible() bool { return s.visible.Load() }

// Inject pokes the station with external activity.
func (s *Station) Inject(a constants.Activity) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownActivity, a)
	}
	s.logger.Debug("inject", "activity", a)

	switch a {
	case constants.ActivityFeed:
		s.feed.Push()
	case constants.ActivityPage:
		s.page++
		s.board.SetLogLines(archivePage(s.page))
		s.bus.Publish(bus.TopicLogsPageLoaded, nil)
	case constants.ActivityLog:
		s.bus.Publish(bus.TopicLogChanged, nil)
	case constants.ActivityGlitch:
		s.bus.Publish(bus.TopicGlitchTrigger, bus.GlitchPayload{Type: "manual"})
	case constants.ActivityWhisper:
		s.bus.Publish(bus.TopicGlitchTrigger, bus.GlitchPayload{Type: "whisper"})
	}
	return nil
}

// Snapshot returns the latest diagnostics snapshot. Safe from any goroutine.
func (s *Station) Snapshot() models.Snapshot {
	return s.diag.Snapshot()
}

// Stats returns the current station stats. Safe from any goroutine.
func (s *Station) Stats() Stats {
	return Stats{
		SessionID:   s.id,
		Seed:        s.seed,
		Visible:     s.visible.Load(),
		Diagnostics: s.diag.Metrics(),
		Engine:      s.engine.Stats(),
	}
}

type caller interface {
	Call(ctx context.Context, fn func()) error
}

// Exec runs fn on the station's loop and waits for it. Schedulers without a
// loop goroutine run fn directly.
func (s *Station) Exec(ctx context.Context, fn func()) error {
	if c, ok := s.sched.(caller); ok {
		return c.Call(ctx, fn)
	}
	fn()
	return nil
}
