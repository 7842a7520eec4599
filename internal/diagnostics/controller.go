package diagnostics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// Controller connects a Model to the session bus. It feeds activity topics
// into the model, ticks it, and publishes render snapshots and phase changes.
type Controller struct {
	bus       *bus.Bus
	sched     eventloop.Scheduler
	model     *Model
	logger    *slog.Logger
	decisions *logging.DecisionLogger

	unsubs  []func()
	latest  atomic.Pointer[models.Snapshot]
	payload atomic.Pointer[models.DiagnosticsPayload]
	metrics atomic.Pointer[Metrics]
}

// NewController creates a controller and its model. Nothing is subscribed
// until Start.
func NewController(b *bus.Bus, sched eventloop.Scheduler, rng *prng.Source, logger *slog.Logger, decisions *logging.DecisionLogger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		bus:       b,
		sched:     sched,
		logger:    logger,
		decisions: decisions,
	}
	c.model = NewModel(rng, sched.Now(), c.onPhaseChange)
	return c
}

// Model returns the underlying model. Loop-bound.
func (c *Controller) Model() *Model {
	return c.model
}

// Start subscribes to the bus, announces the initial phase and publishes the
// initial render.
func (c *Controller) Start() {
	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(bus.TopicFeedPush, func(bus.Event) { c.model.FeedPush(c.sched.Now()) }),
		c.bus.Subscribe(bus.TopicLogsPageLoaded, func(bus.Event) { c.model.LogsPageLoaded(c.sched.Now()) }),
		c.bus.Subscribe(bus.TopicLogChanged, func(bus.Event) { c.model.LogChanged(c.sched.Now()) }),
		c.bus.Subscribe(bus.TopicGlitchTrigger, func(ev bus.Event) {
			p, _ := bus.Payload[bus.GlitchPayload](ev)
			c.model.GlitchTriggered(c.sched.Now(), p.Type)
		}),
		c.bus.Subscribe(bus.TopicBootComplete, func(bus.Event) { c.model.BootComplete(c.sched.Now()) }),
		c.bus.Subscribe(bus.TopicTick, c.onTick),
	)

	now := c.sched.Now()
	c.bus.Publish(bus.TopicSystemPhase, bus.PhasePayload{
		Phase:    c.model.Phase(),
		Previous: c.model.Phase(),
		Pressure: c.model.pressure,
		At:       now,
	})
	c.publish(c.model.EventDensity())
}

// Stop unsubscribes from the bus.
func (c *Controller) Stop() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

func (c *Controller) onTick(ev bus.Event) {
	now := c.sched.Now()
	if p, ok := bus.Payload[bus.TickPayload](ev); ok && !p.TS.IsZero() {
		now = p.TS
	}
	density := c.model.Tick(now)

	if c.logger.Enabled(context.Background(), logging.LevelTrace) {
		m := c.model.Metrics()
		c.logger.Log(context.Background(), logging.LevelTrace, "diagnostics tick",
			"phase", m.Phase,
			"pressure", m.Pressure,
			"ambient", m.AmbientStress,
			"density", density)
	}
	c.publish(density)
}

func (c *Controller) publish(density float64) {
	snap := c.model.Snapshot(density)
	payload := c.model.Payload(density)
	metrics := c.model.Metrics()
	c.latest.Store(&snap)
	c.payload.Store(&payload)
	c.metrics.Store(&metrics)

	c.bus.Publish(bus.TopicDiagnosticsRender, snap)
	c.bus.Publish(bus.TopicDiagnosticsUpdate, payload)
}

func (c *Controller) onPhaseChange(prev, next models.Phase, at time.Time) {
	pressure := c.model.pressure
	c.logger.Info("phase changed", "from", prev, "to", next, "pressure", pressure)
	c.decisions.LogAt(at, map[string]any{
		"event":          "phase_transition",
		"from":           string(prev),
		"to":             string(next),
		"pressure":       pressure,
		"blocked_until":  c.model.incidentBlockedUntil.UTC().Format(time.RFC3339Nano),
		"incident_until": c.model.incidentEndsAt.UTC().Format(time.RFC3339Nano),
	})
	c.bus.Publish(bus.TopicSystemPhase, bus.PhasePayload{
		Phase:    next,
		Previous: prev,
		Pressure: pressure,
		At:       at,
	})
}

// Snapshot returns the most recently published render snapshot. Safe to call
// from any goroutine.
func (c *Controller) Snapshot() models.Snapshot {
	if s := c.latest.Load(); s != nil {
		return *s
	}
	return models.Snapshot{Phase: models.PhaseNominal, PhaseClass: models.PhaseNominal.Class()}
}

// Payload returns the most recently published diagnostics payload. Safe to
// call from any goroutine.
func (c *Controller) Payload() models.DiagnosticsPayload {
	if p := c.payload.Load(); p != nil {
		return *p
	}
	return models.DiagnosticsPayload{Phase: models.PhaseNominal}
}

// Metrics returns the metrics as of the last publish. Safe to call from any
// goroutine.
func (c *Controller) Metrics() Metrics {
	if m := c.metrics.Load(); m != nil {
		return *m
	}
	return Metrics{Phase: models.PhaseNominal}
}
