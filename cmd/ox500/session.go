package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/ox500/internal/config"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/journal"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/station"
)

// session is a live station on a real loop, plus its optional journal.
type session struct {
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	loop      *eventloop.Loop
	st        *station.Station
	injector  *station.Injector
	journal   *journal.Journal
	detach    func()
}

func newSession(cfg *config.StationConfig, logger *slog.Logger) (*session, error) {
	s := &session{
		logger:    logger,
		decisions: logging.NewDecisionLogger(config.ExpandPath(cfg.Logging.Dir), cfg.Logging.Level),
		loop:      eventloop.NewLoop(),
	}
	s.st = station.New(s.loop, station.Options{
		Seed:          cfg.Session.Seed,
		ViewportWidth: cfg.Session.ViewportWidth,
		PathLen:       len(cfg.Session.Path),
		TickInterval:  cfg.Session.TickInterval,
		Node:          cfg.Session.Node,
		AmbientFeed:   cfg.Session.AmbientFeed,
		Logger:        logger,
		Decisions:     s.decisions,
	})
	s.injector = station.NewInjector(s.st, nil)

	if cfg.Journal.Enabled {
		j, err := journal.Open(config.ExpandPath(cfg.Journal.Path))
		if err != nil {
			s.decisions.Close()
			return nil, err
		}
		s.journal = j
	}
	return s, nil
}

// start runs on the loop.
func (s *session) start() {
	if s.journal != nil {
		err := s.journal.BeginSession(context.Background(), s.st.ID(), s.st.Seed(), s.loop.Now())
		if err != nil {
			s.logger.Warn("journal disabled for this session", "error", err)
		} else {
			s.detach = s.journal.Attach(s.st.Bus(), s.st.ID(), s.logger)
		}
	}
	s.st.Start()
	s.logger.Info("session started", "session", s.st.ID(), "seed", s.st.Seed())
}

// stop runs on the loop.
func (s *session) stop() {
	s.st.Stop()
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
	s.logger.Info("session stopped", "session", s.st.ID())
}

// Run starts the station, calls fn and stops the station when fn returns or
// ctx is cancelled. The loop outlives fn so the station stops cleanly. A
// session whose ctx is already done starts and stops without calling fn.
func (s *session) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.loop.Run(loopCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stopLoop()
		// start must finish before stop is queued, so it waits on the loop
		// rather than on ctx.
		if err := s.loop.Call(loopCtx, s.start); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		var err error
		if ctx.Err() == nil {
			err = fn(ctx)
		}
		if stopErr := s.loop.Call(context.Background(), s.stop); err == nil {
			err = stopErr
		}
		return err
	})
	return g.Wait()
}

func (s *session) Close() error {
	s.decisions.Close()
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// applySeed copies a --seed flag into the config when set.
func applySeed(cfg *config.StationConfig, seed uint32, changed bool) {
	if changed {
		cfg.Session.Seed = seed
	}
}
