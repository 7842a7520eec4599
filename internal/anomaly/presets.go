// Package anomaly schedules the visual disturbances of an unstable or
// incident station: it builds the session's recipes and runs them against the
// display through the effect registry.
package anomaly

import (
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// Profile is the per-session clock personality.
type Profile struct {
	ReverseClock            bool
	ReverseStepJitterChance float64
	ReverseOffset           time.Duration
}

// Base is an effect template with session-randomized nominal timing.
type Base struct {
	Key      models.EffectKey
	Interval time.Duration
	Duration time.Duration
}

type baseBounds struct {
	key         models.EffectKey
	intervalMin int
	intervalMax int
	durationMin int
	durationMax int
}

// Bounds in milliseconds, in pool order.
var baseTable = []baseBounds{
	{models.EffectTextCorrupt, 2300, 4200, 1400, 3000},
	{models.EffectDiagCorrupt, 3800, 7200, 1200, 2600},
	{models.EffectLineFlip, 7400, 12200, 2200, 4300},
	{models.EffectLineFade, 5200, 9800, 1800, 3800},
	{models.EffectSensorBurn, 8200, 14000, 1400, 2800},
	{models.EffectPhaseFlicker, 6200, 11400, 900, 2100},
	{models.EffectFeedEcho, 9200, 16000, 1500, 3000},
	{models.EffectLinkGhost, 10800, 18000, 1600, 3400},
	{models.EffectNodeGhost, 8400, 14600, 1300, 2800},
	{models.EffectAvailBlink, 9800, 17000, 1000, 2200},
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// incidentTable is hand-authored: incidents are faster and harsher than the
// unstable pool, not a denser sample of it.
var incidentTable = []models.Recipe{
	{ID: "I001", Key: models.EffectSemanticCorrupt, Interval: ms(1900), Duration: ms(2600), InitialBias: ms(440)},
	{ID: "I002", Key: models.EffectStatusContradiction, Interval: ms(3200), Duration: ms(3200), InitialBias: ms(960)},
	{ID: "I003", Key: models.EffectDiagCorrupt, Interval: ms(2800), Duration: ms(2400), InitialBias: ms(720)},
	{ID: "I004", Key: models.EffectFeedEcho, Interval: ms(3600), Duration: ms(2200), InitialBias: ms(1240)},
	{ID: "I005", Key: models.EffectPhaseFlicker, Interval: ms(2400), Duration: ms(1600), InitialBias: ms(680)},
	{ID: "I006", Key: models.EffectLineFade, Interval: ms(4200), Duration: ms(2400), InitialBias: ms(1320)},
	{ID: "I007", Key: models.EffectSensorBurn, Interval: ms(4600), Duration: ms(2200), InitialBias: ms(1540)},
	{ID: "I008", Key: models.EffectTextCorrupt, Interval: ms(2600), Duration: ms(2100), InitialBias: ms(860)},
}

// Presets draws the session profile and base effect timings from rng, in a
// fixed order, and returns them with the incident recipes.
func Presets(rng *prng.Source) (Profile, []Base, []models.Recipe) {
	profile := Profile{
		ReverseClock:            true,
		ReverseStepJitterChance: constants.ReverseStepJitterChance,
		ReverseOffset:           time.Duration(rng.Int(constants.ReverseOffsetMinSec, constants.ReverseOffsetMaxSec)) * time.Second,
	}

	bases := make([]Base, 0, len(baseTable))
	for _, b := range baseTable {
		interval := rng.Int(b.intervalMin, b.intervalMax)
		duration := rng.Int(b.durationMin, b.durationMax)
		bases = append(bases, Base{Key: b.key, Interval: ms(interval), Duration: ms(duration)})
	}

	incident := make([]models.Recipe, len(incidentTable))
	copy(incident, incidentTable)
	return profile, bases, incident
}
