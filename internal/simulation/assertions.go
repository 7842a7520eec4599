package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/nvandessel/ox500/internal/anomaly"
	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
)

// MustRun runs the scenario with a discarding runner and fails tb on error.
func MustRun(tb testing.TB, sc Scenario) Result {
	tb.Helper()
	res, err := NewRunner(nil, nil).Run(context.Background(), sc)
	if err != nil {
		tb.Fatalf("MustRun(%s): %v", sc.Name, err)
	}
	return res
}

// AssertPhaseCooldown asserts that no two transitions are closer than the
// phase cooldown. An incident expiring is exempt.
func AssertPhaseCooldown(tb testing.TB, res Result) {
	tb.Helper()
	for i := 1; i < len(res.Transitions); i++ {
		prev, cur := res.Transitions[i-1], res.Transitions[i]
		if cur.From == models.PhaseIncident {
			continue
		}
		if gap := cur.At.Sub(prev.At); gap < constants.PhaseTransitionCooldown {
			tb.Errorf("AssertPhaseCooldown: %s -> %s only %s after %s -> %s", cur.From, cur.To, gap, prev.From, prev.To)
		}
	}
}

// AssertIncidentBounded asserts that every INCIDENT ends within its maximum
// lifespan plus one tick.
func AssertIncidentBounded(tb testing.TB, res Result) {
	tb.Helper()
	limit := constants.IncidentMaxLifespan + constants.DefaultTickInterval
	for i, tr := range res.Transitions {
		if tr.To != models.PhaseIncident {
			continue
		}
		end := res.End
		if i+1 < len(res.Transitions) {
			end = res.Transitions[i+1].At
		}
		if d := end.Sub(tr.At); d > limit {
			tb.Errorf("AssertIncidentBounded: incident at +%s lasted %s (limit %s)", tr.At.Sub(res.Start), d, limit)
		}
	}
}

// AssertReentryGuard asserts that the first INCIDENT waits out the initial
// block and every later one waits out the re-entry block after the previous
// incident ended.
func AssertReentryGuard(tb testing.TB, res Result) {
	tb.Helper()
	var lastExit time.Time
	first := true
	for i, tr := range res.Transitions {
		if tr.From == models.PhaseIncident {
			lastExit = tr.At
		}
		if tr.To != models.PhaseIncident {
			continue
		}
		if first {
			if d := tr.At.Sub(res.Start); d < constants.InitialIncidentBlock {
				tb.Errorf("AssertReentryGuard: first incident at +%s, before the initial block of %s", d, constants.InitialIncidentBlock)
			}
			first = false
			continue
		}
		if d := tr.At.Sub(lastExit); d < constants.IncidentReentryBlock {
			tb.Errorf("AssertReentryGuard: transition %d re-entered incident %s after the last one ended", i, d)
		}
	}
}

// AssertMetricBounds asserts that every sample keeps its metrics within their
// clamps.
func AssertMetricBounds(tb testing.TB, res Result) {
	tb.Helper()
	for _, s := range res.Samples {
		m := s.Metrics
		at := s.At.Sub(res.Start)
		if m.Pressure < 0 || m.Pressure > 1 {
			tb.Errorf("AssertMetricBounds: +%s pressure %.4f", at, m.Pressure)
		}
		if m.Coherence < constants.CoherenceMin || m.Coherence > 1 {
			tb.Errorf("AssertMetricBounds: +%s coherence %.4f", at, m.Coherence)
		}
		if m.Anomaly < 0 || m.Anomaly > constants.AnomalyMax {
			tb.Errorf("AssertMetricBounds: +%s anomaly %.4f", at, m.Anomaly)
		}
		if m.TemporalDrift < -constants.DriftLimit || m.TemporalDrift > constants.DriftLimit {
			tb.Errorf("AssertMetricBounds: +%s drift %.4f", at, m.TemporalDrift)
		}
		if m.AmbientStress < constants.AmbientStressMin || m.AmbientStress > constants.AmbientStressMax {
			tb.Errorf("AssertMetricBounds: +%s ambient stress %.4f", at, m.AmbientStress)
		}
	}
}

// AssertCeilingRespected asserts that no fire and no sample exceeds the
// concurrency ceiling of its phase.
func AssertCeilingRespected(tb testing.TB, res Result) {
	tb.Helper()
	for _, f := range res.Fires {
		if c := anomaly.Ceiling(f.Phase); f.Active > c {
			tb.Errorf("AssertCeilingRespected: %s at +%s made %d active in %s (ceiling %d)", f.RecipeID, f.At.Sub(res.Start), f.Active, f.Phase, c)
		}
	}
	for _, s := range res.Samples {
		if c := anomaly.Ceiling(s.Metrics.Phase); s.ActiveEffects > c {
			tb.Errorf("AssertCeilingRespected: +%s %d active in %s (ceiling %d)", s.At.Sub(res.Start), s.ActiveEffects, s.Metrics.Phase, c)
		}
	}
}

// AssertCooldownRespected asserts that no effect key fired again before its
// cooldown elapsed.
func AssertCooldownRespected(tb testing.TB, res Result, durations map[models.EffectKey]time.Duration) {
	tb.Helper()
	last := make(map[models.EffectKey]time.Time)
	for _, f := range res.Fires {
		if prev, ok := last[f.Key]; ok {
			if gap := f.At.Sub(prev); gap < durations[f.Key] {
				tb.Errorf("AssertCooldownRespected: %s (%s) fired %s after the last one (cooldown %s)", f.Key, f.RecipeID, gap, durations[f.Key])
			}
		}
		last[f.Key] = f.At
	}
}
