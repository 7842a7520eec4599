package simulation

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/station"
)

// DefaultStart is the virtual wall clock a scenario starts at unless it says
// otherwise.
var DefaultStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Runner executes scenarios against a real station on a virtual clock.
type Runner struct {
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// NewRunner creates a runner. A nil logger discards output; decisions may be
// nil.
func NewRunner(logger *slog.Logger, decisions *logging.DecisionLogger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{logger: logger, decisions: decisions}
}

// Run executes the scenario and returns the collected results. ctx is checked
// between steps.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	if sc.Duration <= 0 {
		return Result{}, fmt.Errorf("scenario %q: duration must be positive", sc.Name)
	}
	step := sc.Step
	if step <= 0 {
		step = time.Second
	}
	start := sc.Start
	if start.IsZero() {
		start = DefaultStart
	}

	events := slices.Clone(sc.Events)
	for i, ev := range events {
		if ev.Visible == nil && !ev.Activity.Valid() {
			return Result{}, fmt.Errorf("scenario %q: event %d: unknown activity %q", sc.Name, i, ev.Activity)
		}
	}
	slices.SortStableFunc(events, func(a, b Event) int { return cmp.Compare(a.At, b.At) })

	v := eventloop.NewVirtual(start)
	st := station.New(v, station.Options{
		Seed:        sc.Seed,
		AmbientFeed: sc.AmbientFeed,
		Logger:      r.logger,
		Decisions:   r.decisions,
	})

	res := Result{
		Scenario:  sc.Name,
		SessionID: st.ID(),
		Seed:      st.Seed(),
		Start:     start,
		Step:      step,
	}
	st.Bus().Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
		p, ok := bus.Payload[bus.PhasePayload](ev)
		if !ok || p.Phase == p.Previous {
			return
		}
		res.Transitions = append(res.Transitions, Transition{From: p.Previous, To: p.Phase, Pressure: p.Pressure, At: p.At})
	})
	st.Bus().Subscribe(bus.TopicAnomalyFire, func(ev bus.Event) {
		p, ok := bus.Payload[bus.FirePayload](ev)
		if !ok {
			return
		}
		res.Fires = append(res.Fires, Fire{
			RecipeID: p.RecipeID,
			Key:      p.Key,
			Duration: p.Duration,
			At:       p.At,
			Phase:    st.Engine().Phase(),
			Active:   st.Engine().ActiveEffects(),
		})
	})

	st.Start()
	defer st.Stop()

	next := 0
	var elapsed time.Duration
	for elapsed < sc.Duration {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stepEnd := min(elapsed+step, sc.Duration)
		for next < len(events) && events[next].At < stepEnd {
			ev := events[next]
			next++
			if ev.At > elapsed {
				v.Advance(ev.At - elapsed)
				elapsed = ev.At
			}
			apply(st, ev)
		}
		v.Advance(stepEnd - elapsed)
		elapsed = stepEnd

		res.Samples = append(res.Samples, Sample{
			At:            v.Now(),
			Metrics:       st.Diagnostics().Model().Metrics(),
			ActiveEffects: st.Engine().ActiveEffects(),
			Visible:       st.Visible(),
		})
	}

	res.End = v.Now()
	res.Final = st.Stats()
	r.logger.Debug("simulation complete",
		"scenario", sc.Name,
		"transitions", len(res.Transitions),
		"fires", len(res.Fires))
	return res, nil
}

func apply(st *station.Station, ev Event) {
	if ev.Visible != nil {
		st.SetVisible(*ev.Visible)
		return
	}
	// Activities were validated up front.
	_ = st.Inject(ev.Activity)
}

// Format returns a human-readable account of a result.
func Format(res Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s  seed %d  session %s\n", res.Scenario, res.Seed, res.SessionID)
	for _, tr := range res.Transitions {
		fmt.Fprintf(&b, "  +%8.3fs  %-8s -> %-8s  pressure=%.3f\n",
			tr.At.Sub(res.Start).Seconds(), tr.From, tr.To, tr.Pressure)
	}
	fmt.Fprintf(&b, "  %d transitions, %d effects fired over %s\n", len(res.Transitions), len(res.Fires), res.End.Sub(res.Start))
	fmt.Fprintf(&b, "  final phase %s  pressure %.3f  coherence %.3f\n",
		res.Final.Diagnostics.Phase, res.Final.Diagnostics.Pressure, res.Final.Diagnostics.Coherence)
	return b.String()
}
