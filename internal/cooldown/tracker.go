// Package cooldown enforces a minimum interval between firings of the same
// effect key.
package cooldown

import (
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
)

// DefaultDurations are the per-key cooldowns of the anomaly engine.
func DefaultDurations() map[models.EffectKey]time.Duration {
	ms := time.Millisecond
	return map[models.EffectKey]time.Duration{
		models.EffectTextCorrupt:         1600 * ms,
		models.EffectDiagCorrupt:         1900 * ms,
		models.EffectLineFlip:            2400 * ms,
		models.EffectLineFade:            2100 * ms,
		models.EffectSensorBurn:          2800 * ms,
		models.EffectPhaseFlicker:        2200 * ms,
		models.EffectFeedEcho:            3000 * ms,
		models.EffectLinkGhost:           3200 * ms,
		models.EffectNodeGhost:           2800 * ms,
		models.EffectAvailBlink:          2600 * ms,
		models.EffectSemanticCorrupt:     1200 * ms,
		models.EffectStatusContradiction: 1800 * ms,
	}
}

// Tracker remembers when each key last fired. Keys that never fired are
// always ready. It is owned by the session loop and not safe for concurrent use.
type Tracker struct {
	durations map[models.EffectKey]time.Duration
	fallback  time.Duration
	lastFired map[models.EffectKey]time.Time
}

// NewTracker creates a Tracker. Keys missing from durations use
// constants.DefaultCooldown.
func NewTracker(durations map[models.EffectKey]time.Duration) *Tracker {
	d := make(map[models.EffectKey]time.Duration, len(durations))
	for k, v := range durations {
		d[k] = v
	}
	return &Tracker{
		durations: d,
		fallback:  constants.DefaultCooldown,
		lastFired: make(map[models.EffectKey]time.Time),
	}
}

// Duration returns the cooldown configured for key.
func (t *Tracker) Duration(key models.EffectKey) time.Duration {
	if d, ok := t.durations[key]; ok {
		return d
	}
	return t.fallback
}

// Ready reports whether key may fire at now.
func (t *Tracker) Ready(key models.EffectKey, now time.Time) bool {
	return t.Remaining(key, now) == 0
}

// Remaining returns how long until key may fire again.
func (t *Tracker) Remaining(key models.EffectKey, now time.Time) time.Duration {
	last, ok := t.lastFired[key]
	if !ok {
		return 0
	}
	left := t.Duration(key) - now.Sub(last)
	if left < 0 {
		return 0
	}
	return left
}

// Mark records that key fired at now.
func (t *Tracker) Mark(key models.EffectKey, now time.Time) {
	t.lastFired[key] = now
}

// LastFired returns when key last fired.
func (t *Tracker) LastFired(key models.EffectKey) (time.Time, bool) {
	at, ok := t.lastFired[key]
	return at, ok
}
