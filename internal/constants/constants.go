// Package constants provides the named tunables of the station simulation.
// They are compile-time values; configuration never overrides them.
package constants

import "time"

// Phase machine timing
const (
	// PhaseTransitionCooldown is the minimum time between any two phase changes.
	PhaseTransitionCooldown = 7000 * time.Millisecond

	// UnstableMinDwell is how long UNSTABLE must last before INCIDENT is allowed.
	UnstableMinDwell = 12000 * time.Millisecond

	// UnstableMaxDwell forces UNSTABLE back to NOMINAL regardless of pressure.
	UnstableMaxDwell = 45000 * time.Millisecond

	// IncidentMinLifespan and IncidentMaxLifespan bound the randomized INCIDENT duration.
	IncidentMinLifespan = 2200 * time.Millisecond
	IncidentMaxLifespan = 6500 * time.Millisecond

	// IncidentReentryBlock keeps INCIDENT from re-triggering soon after it ends.
	IncidentReentryBlock = 55000 * time.Millisecond

	// InitialIncidentBlock delays the first possible INCIDENT after session start.
	InitialIncidentBlock = 25000 * time.Millisecond
)

// Phase machine thresholds (pressure)
const (
	EnterUnstableThreshold = 0.50
	EnterIncidentThreshold = 0.62
	ExitUnstableThreshold  = 0.30
	ExitIncidentThreshold  = 0.46
)

// Initial metric values for a fresh model
const (
	InitialPressure      = 0.24
	InitialDrift         = 0.003
	InitialCoherence     = 0.982
	InitialAnomaly       = 0.018
	InitialAmbientStress = 0.5

	InitialSemanticLabel = "ARCHIVE LINK STABLE"
)

// Tick algorithm tunables
const (
	// EventWindow is how long external events count toward density.
	EventWindow = 60 * time.Second

	// DensityDivisor normalizes the summed event weights into density.
	DensityDivisor = 14.0

	// SilenceGrace is the quiet time before the silence term starts to grow,
	// SilenceSpan the time it takes to reach 1.
	SilenceGrace = 14.0
	SilenceSpan  = 36.0

	AmbientBase       = 0.45
	AmbientSlowAmp    = 0.20
	AmbientSlowPeriod = 26000.0
	AmbientLongAmp    = 0.14
	AmbientLongPeriod = 61000.0
	AmbientLongPhase  = 1.3
	AmbientTargetMin  = 0.16
	AmbientTargetMax  = 0.78
	AmbientInertia    = 0.82
	AmbientPull       = 0.18
	AmbientNoise      = 0.02
	AmbientStressMin  = 0.18
	AmbientStressMax  = 0.86

	PressureInertia     = 0.64
	PressureFollow      = 0.14
	PressureAmbient     = 0.19
	PressureDensity     = 0.04
	PressureSilence     = 0.02
	PressureNoise       = 0.01
	SettleNominal       = -0.010
	SettleUnstable      = -0.006
	DriftInertia        = 0.985
	DriftPressurePivot  = 0.35
	DriftPressureGain   = 0.0009
	DriftNoise          = 0.00025
	DriftLimit          = 0.099
	AnomalyInertia      = 0.988
	AnomalyPressureGain = 0.012
	AnomalyMax          = 0.25
	CoherenceTarget     = 0.995
	CoherenceRecovery   = 0.01
	CoherencePressure   = 0.005
	CoherenceMin        = 0.84
)

// External event weights (density contribution) and pressure nudges
const (
	FeedWeight   = 0.9
	PageWeight   = 1.0
	LogWeight    = 1.1
	GlitchWeight = 1.6
	BootWeight   = 0.4

	FeedNudge   = 0.02
	PageNudge   = 0.025
	LogNudge    = 0.03
	GlitchNudge = 0.05

	GlitchAnomalyNudge   = 0.02
	GlitchCoherenceNudge = 0.025
)

// Semantic labels set by external events
const (
	LabelFeed    = "FEED INJECTION DETECTED"
	LabelPage    = "ARCHIVE SEGMENT SYNCHRONIZED"
	LabelLog     = "ACTIVE ENTRY VECTOR REALIGNED"
	LabelWhisper = "WHISPER CHANNEL BREACHED"
	LabelGlitch  = "COHERENCE DROP DETECTED"
	LabelBoot    = "BOOT LAYER RELEASED"
)

// Snapshot label thresholds
const (
	DensityLowBelow    = 0.24
	DensityStableBelow = 0.62
	AnomalyLowBelow    = 0.04
	AnomalyRisingBelow = 0.1
)

// Recipe pool construction
const (
	PoolTarget       = 100
	SessionSize      = 14
	MinInterval      = 1400 * time.Millisecond
	MaxInterval      = 22000 * time.Millisecond
	MinDuration      = 900 * time.Millisecond
	MaxDuration      = 6400 * time.Millisecond
	PoolIDPrefix     = "A"
	IncidentIDPrefix = "I"
)

// Pool multiplier sets
var (
	TempoMultipliers = []float64{0.76, 0.88, 1, 1.15, 1.34}
	HoldMultipliers  = []float64{0.72, 0.9, 1, 1.16}
	StartBiases      = []time.Duration{
		480 * time.Millisecond,
		860 * time.Millisecond,
		1240 * time.Millisecond,
		1680 * time.Millisecond,
		2140 * time.Millisecond,
	}
)

// Engine scheduling
const (
	UnstableCeiling = 3
	IncidentCeiling = 4

	// StartJitterMax is added to a loop's initial bias.
	StartJitterMax = 900 * time.Millisecond

	DefaultCooldown = 1800 * time.Millisecond
)

// Reverse clock profile
const (
	ReverseStepJitterChance = 0.2
	ReverseOffsetMinSec     = 140
	ReverseOffsetMaxSec     = 820
)

// Incident clock distortion
const (
	IncidentClockBackMin   = 3000 * time.Millisecond
	IncidentClockBackMax   = 24000 * time.Millisecond
	ClockFreezeChance      = 0.16
	ClockJumpAheadChance   = 0.09
	ClockJumpAheadMin      = 5000 * time.Millisecond
	ClockJumpAheadMax      = 26000 * time.Millisecond
	ClockJumpBackChance    = 0.19
	ClockJumpBackMin       = 3000 * time.Millisecond
	ClockJumpBackMax       = 18000 * time.Millisecond
	ClockDoubleStepChance  = 0.3
	ClockStep              = time.Second
	ReverseClockDoubleStep = 2 * time.Second
)

// Incident overlay pulses
const (
	GlitchBurstMin    = 420 * time.Millisecond
	GlitchBurstMax    = 800 * time.Millisecond
	GlitchPulseMin    = 6000 * time.Millisecond
	GlitchPulseMax    = 22000 * time.Millisecond
	GlitchHiddenRetry = 1200 * time.Millisecond
)

// Ambient feed
const (
	FeedFirstDelay  = 1800 * time.Millisecond
	FeedIntervalMin = 6500 * time.Millisecond
	FeedIntervalMax = 13000 * time.Millisecond
	FeedHiddenRetry = 3000 * time.Millisecond
	FeedResumeDelay = 800 * time.Millisecond
	FeedLines       = 3
)

// Diagnostics panel
const (
	// DiagPulseDuration is how long the panel flashes after a phase change.
	DiagPulseDuration = 240 * time.Millisecond
)

// Station defaults
const (
	DefaultTickInterval = time.Second
)
