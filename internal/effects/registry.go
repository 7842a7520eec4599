package effects

import (
	"strings"

	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// Env is what a handler needs to pick a target.
type Env struct {
	Rng     *prng.Source
	Surface Surface
}

// Effect is a prepared disturbance. Apply mutates the display; Undo restores
// what Apply changed and is safe to call after the target was replaced.
type Effect struct {
	Apply func()
	Undo  func()
}

// Handler chooses its target and captures the state to restore. It returns
// false when no eligible target exists, in which case nothing is fired.
type Handler func(env Env) (Effect, bool)

// Registry maps every effect key to its handler.
type Registry map[models.EffectKey]Handler

// DefaultRegistry returns the handler for every known effect key.
func DefaultRegistry() Registry {
	return Registry{
		models.EffectTextCorrupt:         textCorrupt,
		models.EffectDiagCorrupt:         diagCorrupt,
		models.EffectLineFlip:            classOnLine(ClassFlip),
		models.EffectLineFade:            classOnLine(ClassFade),
		models.EffectSensorBurn:          classOnTarget(TargetSensorHot, ClassSensorBurn),
		models.EffectPhaseFlicker:        classOnTarget(TargetPhaseIcon, ClassIconFlicker),
		models.EffectFeedEcho:            feedEcho,
		models.EffectLinkGhost:           linkGhost,
		models.EffectNodeGhost:           classOnTarget(TargetNodePill, ClassFade),
		models.EffectAvailBlink:          availBlink,
		models.EffectSemanticCorrupt:     semanticCorrupt,
		models.EffectStatusContradiction: statusContradiction,
	}
}

var (
	diagValues        = []TargetID{TargetDiagDrift, TargetDiagCoherence, TargetDiagDensity, TargetDiagAnomaly}
	semanticTargetIDs = []TargetID{TargetDiagDrift, TargetDiagCoherence, TargetDiagDensity, TargetDiagAnomaly, TargetDiagTransient}
)

func trimmedLonger(n int) func(Target) bool {
	return func(t Target) bool {
		return len([]rune(strings.TrimSpace(t.Text()))) > n
	}
}

func notGarbled(t Target) bool {
	return !t.HasClass(ClassGarbled)
}

// restoreText swaps the target's text for the duration of the effect.
func restoreText(t Target, original string, next func() string) Effect {
	return Effect{
		Apply: func() {
			t.AddClass(ClassGarbled)
			t.SetText(next())
		},
		Undo: func() {
			t.RemoveClass(ClassGarbled)
			if t.Connected() {
				t.SetText(original)
			}
		},
	}
}

// freeTarget looks up id unless it is missing or garbled.
func freeTarget(s Surface, id TargetID) (Target, bool) {
	t, ok := s.Target(id)
	if !ok || !notGarbled(t) {
		return nil, false
	}
	return t, true
}

func textCorrupt(env Env) (Effect, bool) {
	candidates := filter(
		targets(env.Surface, TargetFeed1, TargetSensorPill, TargetDiagTransient, TargetDiagDensity, TargetDiagAnomaly),
		func(t Target) bool { return notGarbled(t) && trimmedLonger(3)(t) })
	t, ok := prng.PickOne(env.Rng, candidates)
	if !ok {
		return Effect{}, false
	}
	original := t.Text()
	return restoreText(t, original, func() string { return CorruptOneChar(env.Rng, original) }), true
}

func diagCorrupt(env Env) (Effect, bool) {
	t, ok := prng.PickOne(env.Rng, filter(targets(env.Surface, diagValues...), notGarbled))
	if !ok {
		return Effect{}, false
	}
	original := t.Text()
	if original == "" {
		return Effect{}, false
	}
	return restoreText(t, original, func() string { return CorruptOneChar(env.Rng, original) }), true
}

func classEffect(t Target, c Class) Effect {
	return Effect{
		Apply: func() { t.AddClass(c) },
		Undo:  func() { t.RemoveClass(c) },
	}
}

func classOnLine(c Class) Handler {
	return func(env Env) (Effect, bool) {
		t, ok := prng.PickOne(env.Rng, filter(env.Surface.Lines(), trimmedLonger(6)))
		if !ok {
			return Effect{}, false
		}
		return classEffect(t, c), true
	}
}

func classOnTarget(id TargetID, c Class) Handler {
	return func(env Env) (Effect, bool) {
		t, ok := env.Surface.Target(id)
		if !ok {
			return Effect{}, false
		}
		return classEffect(t, c), true
	}
}

func feedEcho(env Env) (Effect, bool) {
	t, ok := freeTarget(env.Surface, TargetFeed1)
	if !ok {
		return Effect{}, false
	}
	original := t.Text()
	if original == "" {
		return Effect{}, false
	}
	return restoreText(t, original, func() string { return "// " + CorruptOneChar(env.Rng, original) }), true
}

func linkGhost(env Env) (Effect, bool) {
	t, ok := prng.PickOne(env.Rng, env.Surface.Links())
	if !ok {
		return Effect{}, false
	}
	return classEffect(t, ClassLinkGhost), true
}

func availBlink(env Env) (Effect, bool) {
	t, ok := freeTarget(env.Surface, TargetAvail)
	if !ok {
		return Effect{}, false
	}
	original := t.Text()
	if original == "" {
		return Effect{}, false
	}
	return restoreText(t, original, func() string { return blinkDigits(original) }), true
}

func semanticCorrupt(env Env) (Effect, bool) {
	t, ok := prng.PickOne(env.Rng, filter(targets(env.Surface, semanticTargetIDs...), notGarbled))
	if !ok {
		return Effect{}, false
	}
	original := t.Text()
	if original == "" {
		return Effect{}, false
	}
	token, _ := prng.PickOne(env.Rng, SemanticTokens)
	return restoreText(t, original, func() string { return token }), true
}

func statusContradiction(env Env) (Effect, bool) {
	phase, hasPhase := freeTarget(env.Surface, TargetDiagPhase)
	transient, hasTransient := freeTarget(env.Surface, TargetDiagTransient)
	if !hasPhase && !hasTransient {
		return Effect{}, false
	}

	var phaseOriginal, transientOriginal string
	if hasPhase {
		phaseOriginal = phase.Text()
	}
	if hasTransient {
		transientOriginal = transient.Text()
	}

	return Effect{
		Apply: func() {
			if hasPhase {
				s, _ := prng.PickOne(env.Rng, ContradictionPhases)
				phase.AddClass(ClassGarbled)
				phase.SetText(s)
			}
			if hasTransient {
				s, _ := prng.PickOne(env.Rng, ContradictionTransients)
				transient.AddClass(ClassGarbled)
				transient.SetText(s)
			}
		},
		Undo: func() {
			if hasPhase {
				phase.RemoveClass(ClassGarbled)
				if phase.Connected() && phaseOriginal != "" {
					phase.SetText(phaseOriginal)
				}
			}
			if hasTransient {
				transient.RemoveClass(ClassGarbled)
				if transient.Connected() && transientOriginal != "" {
					transient.SetText(transientOriginal)
				}
			}
		},
	}, true
}
