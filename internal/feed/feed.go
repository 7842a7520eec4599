// Package feed runs the ambient status feed: a slow stream of phase-flavoured
// one-liners that keeps the station looking alive and counts as activity.
package feed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// Lines is where feed messages are written.
type Lines interface {
	SetFeed(slot int, text string)
}

// Feed is loop-bound.
type Feed struct {
	sched  eventloop.Scheduler
	rng    *prng.Source
	bus    *bus.Bus
	lines  Lines
	logger *slog.Logger

	phase   models.Phase
	running bool
	hidden  bool
	timer   eventloop.Timer
	next    int
	pushed  int
}

// New creates a stopped feed.
func New(sched eventloop.Scheduler, rng *prng.Source, b *bus.Bus, lines Lines, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{sched: sched, rng: rng, bus: b, lines: lines, logger: logger, phase: models.PhaseNominal}
}

// Start schedules the first push.
func (f *Feed) Start() {
	f.running = true
	f.schedule(constants.FeedFirstDelay)
}

// Stop cancels the pending push. Visibility changes do not restart a
// stopped feed.
func (f *Feed) Stop() {
	f.running = false
	f.cancel()
}

func (f *Feed) cancel() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Attach follows phase and visibility changes.
func (f *Feed) Attach(b *bus.Bus) (detach func()) {
	unsubPhase := b.Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
		if p, ok := bus.Payload[bus.PhasePayload](ev); ok {
			f.SetPhase(p.Phase)
		}
	})
	unsubVis := b.Subscribe(bus.TopicVisibility, func(ev bus.Event) {
		if p, ok := bus.Payload[bus.VisibilityPayload](ev); ok {
			f.SetVisible(!p.Hidden)
		}
	})
	return func() {
		unsubPhase()
		unsubVis()
	}
}

// SetPhase switches the message pool. Unknown phases are ignored.
func (f *Feed) SetPhase(p models.Phase) {
	if _, ok := Messages[p]; ok {
		f.phase = p
	}
}

// SetVisible pauses a running feed while hidden.
func (f *Feed) SetVisible(visible bool) {
	f.hidden = !visible
	if !visible {
		f.cancel()
		return
	}
	if f.running && f.timer == nil {
		f.schedule(constants.FeedResumeDelay)
	}
}

// Pushed returns how many messages have been written.
func (f *Feed) Pushed() int { return f.pushed }

// Running reports whether the cadence is active.
func (f *Feed) Running() bool { return f.running }

func (f *Feed) schedule(d time.Duration) {
	f.cancel()
	f.timer = f.sched.AfterFunc(d, func() {
		f.timer = nil
		f.push()
	})
}

// Push writes a message now, even while hidden, and restarts the cadence
// if the feed is running and visible.
func (f *Feed) Push() {
	f.emit()
	if f.running && !f.hidden {
		f.schedule(f.rng.Duration(constants.FeedIntervalMin, constants.FeedIntervalMax))
	}
}

func (f *Feed) push() {
	if f.hidden {
		f.schedule(constants.FeedHiddenRetry)
		return
	}
	f.emit()
	f.schedule(f.rng.Duration(constants.FeedIntervalMin, constants.FeedIntervalMax))
}

func (f *Feed) emit() {
	msg, _ := prng.PickOne(f.rng, Messages[f.phase])
	line := fmt.Sprintf("[%s] %s", f.sched.Now().Format("15:04:05"), msg)
	f.lines.SetFeed(f.next%constants.FeedLines, line)
	f.next++
	f.pushed++

	f.logger.Debug("feed push", "phase", f.phase, "message", msg)
	f.bus.Publish(bus.TopicFeedPush, bus.FeedPayload{Message: msg, Phase: f.phase})
}
