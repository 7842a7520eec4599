package anomaly

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/cooldown"
	"github.com/nvandessel/ox500/internal/effects"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// Ceiling returns the maximum number of simultaneously active effects in a
// phase.
func Ceiling(p models.Phase) int {
	switch p {
	case models.PhaseUnstable:
		return constants.UnstableCeiling
	case models.PhaseIncident:
		return constants.IncidentCeiling
	default:
		return 0
	}
}

// Refusal reasons reported in Stats and the decision log.
const (
	RefusedCeiling  = "ceiling"
	RefusedInactive = "inactive"
	RefusedCooldown = "cooldown"
	RefusedNoTarget = "no_target"
)

// Stats is a point-in-time view of the engine.
type Stats struct {
	Phase             models.Phase   `json:"phase"`
	Hidden            bool           `json:"hidden"`
	ActiveEffects     int            `json:"active_effects"`
	Ceiling           int            `json:"ceiling"`
	OutstandingTimers int            `json:"outstanding_timers"`
	PoolSize          int            `json:"pool_size"`
	SessionRecipes    []string       `json:"session_recipes"`
	SessionKeys       []string       `json:"session_keys"`
	IncidentRecipes   []string       `json:"incident_recipes"`
	Fired             int            `json:"fired"`
	Refused           map[string]int `json:"refused"`
}

// Options configures an Engine. Zero values are replaced by defaults.
type Options struct {
	Cooldowns *cooldown.Tracker
	Logger    *slog.Logger
	Decisions *logging.DecisionLogger

	// Bus receives anomaly:fire events. Optional.
	Bus *bus.Bus
}

type activeEffect struct {
	recipe models.Recipe
	undo   func()
}

// Engine runs the session's recipes for the current phase. All methods except
// Stats must be called from the loop that owns the scheduler.
type Engine struct {
	sched     eventloop.Scheduler
	rng       *prng.Source
	surface   effects.Surface
	registry  effects.Registry
	cooldowns *cooldown.Tracker
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	bus       *bus.Bus

	profile  Profile
	pool     []models.Recipe
	session  []models.Recipe
	incident []models.Recipe
	clock    *ClockDistorter

	phase  models.Phase
	hidden bool
	loops  *eventloop.Group
	active map[*activeEffect]struct{}

	fired   int
	refused map[string]int
	stats   atomic.Pointer[Stats]
}

// NewEngine builds the session's presets, pool and session selection from rng
// and returns an idle engine in NOMINAL.
func NewEngine(sched eventloop.Scheduler, rng *prng.Source, surface effects.Surface, registry effects.Registry, opts Options) *Engine {
	if opts.Cooldowns == nil {
		opts.Cooldowns = cooldown.NewTracker(cooldown.DefaultDurations())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if registry == nil {
		registry = effects.DefaultRegistry()
	}

	profile, bases, incident := Presets(rng)
	pool := BuildPool(bases)
	session := SelectSession(rng, pool, constants.SessionSize)

	e := &Engine{
		sched:     sched,
		rng:       rng,
		surface:   surface,
		registry:  registry,
		cooldowns: opts.Cooldowns,
		logger:    opts.Logger,
		decisions: opts.Decisions,
		bus:       opts.Bus,
		profile:   profile,
		pool:      pool,
		session:   session,
		incident:  incident,
		clock:     NewClockDistorter(rng, profile, sched.Now()),
		phase:     models.PhaseNominal,
		loops:     eventloop.NewGroup(sched),
		active:    make(map[*activeEffect]struct{}),
		refused:   make(map[string]int),
	}
	e.refresh()
	return e
}

// Profile returns the session clock profile.
func (e *Engine) Profile() Profile { return e.profile }

// Pool returns a copy of the recipe pool.
func (e *Engine) Pool() []models.Recipe { return append([]models.Recipe(nil), e.pool...) }

// Session returns a copy of the session recipe set.
func (e *Engine) Session() []models.Recipe { return append([]models.Recipe(nil), e.session...) }

// Incident returns a copy of the incident recipes.
func (e *Engine) Incident() []models.Recipe { return append([]models.Recipe(nil), e.incident...) }

// Phase returns the phase the engine is running for.
func (e *Engine) Phase() models.Phase { return e.phase }

// ActiveEffects returns the number of applied effects not yet cleaned up.
func (e *Engine) ActiveEffects() int { return len(e.active) }

// OutstandingTimers returns the number of live loops and cleanup timers.
func (e *Engine) OutstandingTimers() int { return e.loops.Len() }

// SetPhase switches the engine to phase p. Setting the current phase is a
// no-op.
func (e *Engine) SetPhase(p models.Phase) {
	if p == e.phase {
		return
	}
	prev := e.phase
	e.phase = p
	e.logger.Debug("anomaly engine phase", "from", prev, "to", p)

	switch p {
	case models.PhaseUnstable:
		e.startUnstable()
	case models.PhaseIncident:
		e.startIncident()
	default:
		e.stopAll()
	}
	e.refresh()
}

// SetVisible records page visibility. Becoming visible restarts the current
// phase's loops from scratch.
func (e *Engine) SetVisible(visible bool) {
	e.hidden = !visible
	if visible {
		switch e.phase {
		case models.PhaseUnstable:
			e.startUnstable()
		case models.PhaseIncident:
			e.startIncident()
		}
	}
	e.refresh()
}

// Stop tears down all loops and cleans up every active effect.
func (e *Engine) Stop() {
	e.stopAll()
	e.refresh()
}

// Attach subscribes the engine to phase, visibility and tick events. The
// returned func detaches it.
func (e *Engine) Attach(b *bus.Bus) (detach func()) {
	unsubs := []func(){
		b.Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
			if p, ok := bus.Payload[bus.PhasePayload](ev); ok {
				e.SetPhase(p.Phase)
			}
		}),
		b.Subscribe(bus.TopicVisibility, func(ev bus.Event) {
			if p, ok := bus.Payload[bus.VisibilityPayload](ev); ok {
				e.SetVisible(!p.Hidden)
			}
		}),
		b.Subscribe(bus.TopicTick, e.onTick),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (e *Engine) onTick(ev bus.Event) {
	now := e.sched.Now()
	if p, ok := bus.Payload[bus.TickPayload](ev); ok && !p.TS.IsZero() {
		now = p.TS
	}
	text, ok := e.clock.Tick(e.phase, now)
	if !ok {
		return
	}
	if t, found := e.surface.Target(effects.TargetClock); found {
		t.SetText(text)
	}
}

func (e *Engine) startUnstable() {
	e.stopAll()
	for _, r := range e.session {
		e.schedule(r, models.PhaseUnstable)
	}
}

func (e *Engine) startIncident() {
	e.stopAll()
	e.clock.StartIncident(e.sched.Now())
	for _, r := range e.incident {
		e.schedule(r, models.PhaseIncident)
	}
}

func (e *Engine) stopAll() {
	e.loops.CancelAll()
	for fx := range e.active {
		e.cleanup(fx)
	}
}

// schedule starts a recipe loop that ends by itself once the phase moves
// away from target.
func (e *Engine) schedule(r models.Recipe, target models.Phase) {
	handler, ok := e.registry[r.Key]
	if !ok {
		e.logger.Warn("no handler for effect key", "key", r.Key, "recipe", r.ID)
		return
	}
	initial := r.InitialBias + e.rng.Duration(0, constants.StartJitterMax)

	var task *eventloop.Task
	task = e.loops.Every(initial, r.Interval, func() {
		if e.phase != target {
			task.Cancel()
			return
		}
		e.attempt(r, handler)
		e.refresh()
	})
}

// attempt fires r if every gate passes.
func (e *Engine) attempt(r models.Recipe, handler effects.Handler) bool {
	fx, ok := handler(effects.Env{Rng: e.rng, Surface: e.surface})
	if !ok {
		e.refuse(r, RefusedNoTarget)
		return false
	}

	now := e.sched.Now()
	switch {
	case len(e.active) >= Ceiling(e.phase):
		e.refuse(r, RefusedCeiling)
		return false
	case e.hidden || !e.phase.Active():
		e.refuse(r, RefusedInactive)
		return false
	case !e.cooldowns.Ready(r.Key, now):
		e.refuse(r, RefusedCooldown)
		return false
	}

	e.cooldowns.Mark(r.Key, now)
	entry := &activeEffect{recipe: r, undo: fx.Undo}
	e.active[entry] = struct{}{}
	fx.Apply()
	e.loops.AfterFunc(r.Duration, func() {
		e.cleanup(entry)
		e.refresh()
	})
	e.fired++

	if e.logger.Enabled(context.Background(), logging.LevelTrace) {
		e.logger.Log(context.Background(), logging.LevelTrace, "anomaly fired",
			"recipe", r.ID, "key", r.Key, "duration", r.Duration, "active", len(e.active))
	}
	if e.bus != nil {
		e.bus.Publish(bus.TopicAnomalyFire, bus.FirePayload{
			RecipeID: r.ID,
			Key:      r.Key,
			Duration: r.Duration,
			At:       now,
		})
	}
	return true
}

// cleanup undoes fx once. Later calls are no-ops.
func (e *Engine) cleanup(fx *activeEffect) {
	if _, ok := e.active[fx]; !ok {
		return
	}
	delete(e.active, fx)
	if fx.undo != nil {
		fx.undo()
	}
}

func (e *Engine) refuse(r models.Recipe, reason string) {
	e.refused[reason]++
	e.decisions.LogAt(e.sched.Now(), map[string]any{
		"event":  "anomaly_refused",
		"recipe": r.ID,
		"key":    string(r.Key),
		"reason": reason,
		"phase":  string(e.phase),
		"active": len(e.active),
	})
}

func (e *Engine) refresh() {
	s := Stats{
		Phase:             e.phase,
		Hidden:            e.hidden,
		ActiveEffects:     len(e.active),
		Ceiling:           Ceiling(e.phase),
		OutstandingTimers: e.loops.Len(),
		PoolSize:          len(e.pool),
		SessionRecipes:    recipeIDs(e.session),
		SessionKeys:       recipeKeys(e.session),
		IncidentRecipes:   recipeIDs(e.incident),
		Fired:             e.fired,
		Refused:           make(map[string]int, len(e.refused)),
	}
	for k, v := range e.refused {
		s.Refused[k] = v
	}
	e.stats.Store(&s)
}

// Stats returns the engine state as of its last callback. Safe to call from
// any goroutine.
func (e *Engine) Stats() Stats {
	return *e.stats.Load()
}

func recipeIDs(rs []models.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func recipeKeys(rs []models.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r.Key)
	}
	return out
}

