// Package diagnostics owns the station's health metrics and the hysteretic
// NOMINAL / UNSTABLE / INCIDENT phase machine driven by them.
package diagnostics

import (
	"fmt"
	"math"
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// PhaseChangeFunc is called synchronously from Tick whenever the phase changes.
type PhaseChangeFunc func(prev, next models.Phase, at time.Time)

type weightedEvent struct {
	at     time.Time
	weight float64
}

// Metrics is a copy of the model's internal state.
type Metrics struct {
	Phase                models.Phase `json:"phase"`
	Pressure             float64      `json:"pressure"`
	TemporalDrift        float64      `json:"temporal_drift"`
	Coherence            float64      `json:"coherence"`
	Anomaly              float64      `json:"anomaly"`
	AmbientStress        float64      `json:"ambient_stress"`
	RecentEvents         int          `json:"recent_events"`
	PhaseChangedAt       time.Time    `json:"phase_changed_at"`
	UnstableSince        time.Time    `json:"unstable_since"` // zero outside UNSTABLE
	IncidentEndsAt       time.Time    `json:"incident_ends_at"`
	IncidentBlockedUntil time.Time    `json:"incident_blocked_until"`
	LastEventAt          time.Time    `json:"last_event_at"`
	LastSemantic         string       `json:"last_semantic"`
}

// Model is the diagnostics state machine. It is not safe for concurrent use;
// every method must be called from the session loop.
type Model struct {
	rng      *prng.Source
	onChange PhaseChangeFunc

	phase                models.Phase
	phaseChangedAt       time.Time
	unstableSince        time.Time
	incidentEndsAt       time.Time
	incidentBlockedUntil time.Time

	pressure      float64
	temporalDrift float64
	coherence     float64
	anomaly       float64
	ambientStress float64

	recent       []weightedEvent
	lastEventAt  time.Time
	lastSemantic string
}

// NewModel creates a model in its initial NOMINAL state. The phase cooldown
// starts already elapsed, and INCIDENT is blocked for the first 25 seconds.
func NewModel(rng *prng.Source, now time.Time, onChange PhaseChangeFunc) *Model {
	if onChange == nil {
		onChange = func(models.Phase, models.Phase, time.Time) {}
	}
	return &Model{
		rng:                  rng,
		onChange:             onChange,
		phase:                models.PhaseNominal,
		phaseChangedAt:       now.Add(-constants.PhaseTransitionCooldown),
		incidentBlockedUntil: now.Add(constants.InitialIncidentBlock),
		pressure:             constants.InitialPressure,
		temporalDrift:        constants.InitialDrift,
		coherence:            constants.InitialCoherence,
		anomaly:              constants.InitialAnomaly,
		ambientStress:        constants.InitialAmbientStress,
		lastEventAt:          now,
		lastSemantic:         constants.InitialSemanticLabel,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Phase returns the current phase.
func (m *Model) Phase() models.Phase {
	return m.phase
}

// Metrics returns a copy of the current state.
func (m *Model) Metrics() Metrics {
	return Metrics{
		Phase:                m.phase,
		Pressure:             m.pressure,
		TemporalDrift:        m.temporalDrift,
		Coherence:            m.coherence,
		Anomaly:              m.anomaly,
		AmbientStress:        m.ambientStress,
		RecentEvents:         len(m.recent),
		PhaseChangedAt:       m.phaseChangedAt,
		UnstableSince:        m.unstableSince,
		IncidentEndsAt:       m.incidentEndsAt,
		IncidentBlockedUntil: m.incidentBlockedUntil,
		LastEventAt:          m.lastEventAt,
		LastSemantic:         m.lastSemantic,
	}
}

func (m *Model) pushEvent(now time.Time, weight float64, semantic string) {
	m.recent = append(m.recent, weightedEvent{at: now, weight: weight})
	m.lastEventAt = now
	if semantic != "" {
		m.lastSemantic = semantic
	}
}

func (m *Model) prune(now time.Time) {
	cutoff := now.Add(-constants.EventWindow)
	i := 0
	for i < len(m.recent) && m.recent[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		m.recent = append(m.recent[:0], m.recent[i:]...)
	}
}

// EventDensity returns the normalized weight of events still in the window.
func (m *Model) EventDensity() float64 {
	var sum float64
	for _, e := range m.recent {
		sum += e.weight
	}
	return clamp(sum/constants.DensityDivisor, 0, 1)
}

func (m *Model) nudgePressure(delta float64) {
	m.pressure = clamp(m.pressure+delta, 0, 1)
}

// Tick advances the metrics by one step and re-evaluates the phase. It
// returns the event density the step was computed with.
func (m *Model) Tick(now time.Time) float64 {
	m.prune(now)

	density := m.EventDensity()
	silenceSec := now.Sub(m.lastEventAt).Seconds()
	silence := 0.0
	if silenceSec > constants.SilenceGrace {
		silence = clamp((silenceSec-constants.SilenceGrace)/constants.SilenceSpan, 0, 1)
	}

	ts := float64(now.UnixMilli())
	target := clamp(
		constants.AmbientBase+
			math.Sin(ts/constants.AmbientSlowPeriod)*constants.AmbientSlowAmp+
			math.Sin(ts/constants.AmbientLongPeriod+constants.AmbientLongPhase)*constants.AmbientLongAmp,
		constants.AmbientTargetMin, constants.AmbientTargetMax)
	m.ambientStress = clamp(
		m.ambientStress*constants.AmbientInertia+target*constants.AmbientPull+m.rng.Jitter(constants.AmbientNoise),
		constants.AmbientStressMin, constants.AmbientStressMax)

	settle := 0.0
	switch m.phase {
	case models.PhaseNominal:
		settle = constants.SettleNominal
	case models.PhaseUnstable:
		settle = constants.SettleUnstable
	}

	m.pressure = clamp(
		m.pressure*constants.PressureInertia+
			(m.ambientStress-m.pressure)*constants.PressureFollow+
			m.ambientStress*constants.PressureAmbient+
			density*constants.PressureDensity-
			silence*constants.PressureSilence+
			settle+
			m.rng.Jitter(constants.PressureNoise),
		0, 1)
	m.temporalDrift = clamp(
		m.temporalDrift*constants.DriftInertia+
			(m.pressure-constants.DriftPressurePivot)*constants.DriftPressureGain+
			m.rng.Jitter(constants.DriftNoise),
		-constants.DriftLimit, constants.DriftLimit)
	m.anomaly = clamp(m.anomaly*constants.AnomalyInertia+m.pressure*constants.AnomalyPressureGain, 0, constants.AnomalyMax)
	m.coherence = clamp(
		m.coherence+(constants.CoherenceTarget-m.coherence)*constants.CoherenceRecovery-m.pressure*constants.CoherencePressure,
		constants.CoherenceMin, 1)

	m.updatePhase(now)
	return density
}

func (m *Model) transition(next models.Phase, now time.Time) {
	if next == m.phase {
		return
	}
	prev := m.phase
	m.phase = next
	m.phaseChangedAt = now

	switch next {
	case models.PhaseUnstable:
		if prev != models.PhaseUnstable {
			m.unstableSince = now
		}
	case models.PhaseNominal:
		m.unstableSince = time.Time{}
	case models.PhaseIncident:
		lifespan := m.rng.Duration(constants.IncidentMinLifespan, constants.IncidentMaxLifespan)
		m.incidentEndsAt = now.Add(lifespan)
	}

	// Re-entry is blocked from both edges of an incident.
	if next == models.PhaseIncident || prev == models.PhaseIncident {
		m.incidentBlockedUntil = now.Add(constants.IncidentReentryBlock)
	}

	m.onChange(prev, next, now)
}

func (m *Model) updatePhase(now time.Time) {
	sinceChange := now.Sub(m.phaseChangedAt)

	if m.phase == models.PhaseIncident {
		if !now.Before(m.incidentEndsAt) {
			m.transition(models.PhaseUnstable, now)
			return
		}
		if sinceChange < constants.PhaseTransitionCooldown {
			return
		}
		if m.pressure <= constants.ExitIncidentThreshold {
			m.transition(models.PhaseUnstable, now)
		}
		return
	}

	if sinceChange < constants.PhaseTransitionCooldown {
		return
	}

	switch m.phase {
	case models.PhaseNominal:
		if m.pressure >= constants.EnterUnstableThreshold {
			m.transition(models.PhaseUnstable, now)
		}
	case models.PhaseUnstable:
		var dwell time.Duration
		if !m.unstableSince.IsZero() {
			dwell = now.Sub(m.unstableSince)
		}
		canEnterIncident := !now.Before(m.incidentBlockedUntil) &&
			dwell >= constants.UnstableMinDwell &&
			m.pressure >= constants.EnterIncidentThreshold

		switch {
		case canEnterIncident:
			m.transition(models.PhaseIncident, now)
		case dwell >= constants.UnstableMaxDwell:
			m.transition(models.PhaseNominal, now)
		case m.pressure <= constants.ExitUnstableThreshold:
			m.transition(models.PhaseNominal, now)
		}
	}
}

// FeedPush records a new feed line.
func (m *Model) FeedPush(now time.Time) {
	m.pushEvent(now, constants.FeedWeight, constants.LabelFeed)
	m.nudgePressure(constants.FeedNudge)
}

// LogsPageLoaded records an archive page load.
func (m *Model) LogsPageLoaded(now time.Time) {
	m.pushEvent(now, constants.PageWeight, constants.LabelPage)
	m.nudgePressure(constants.PageNudge)
}

// LogChanged records the active archive entry changing.
func (m *Model) LogChanged(now time.Time) {
	m.pushEvent(now, constants.LogWeight, constants.LabelLog)
	m.nudgePressure(constants.LogNudge)
}

// GlitchTriggered records a visual glitch. kind "whisper" is reported as a
// whisper-channel breach.
func (m *Model) GlitchTriggered(now time.Time, kind string) {
	label := constants.LabelGlitch
	if kind == "whisper" {
		label = constants.LabelWhisper
	}
	m.pushEvent(now, constants.GlitchWeight, label)
	m.nudgePressure(constants.GlitchNudge)
	m.anomaly = clamp(m.anomaly+constants.GlitchAnomalyNudge, 0, constants.AnomalyMax)
	m.coherence = clamp(m.coherence-constants.GlitchCoherenceNudge, constants.CoherenceMin, 1)
}

// BootComplete records the end of the boot sequence. It does not move pressure.
func (m *Model) BootComplete(now time.Time) {
	m.pushEvent(now, constants.BootWeight, constants.LabelBoot)
}

func formatDrift(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%.3f", sign, math.Abs(v))
}

func densityLabel(v float64) string {
	switch {
	case v < constants.DensityLowBelow:
		return "LOW"
	case v < constants.DensityStableBelow:
		return "STABLE"
	default:
		return "HIGH"
	}
}

func anomalyLabel(v float64) string {
	switch {
	case v < constants.AnomalyLowBelow:
		return "LOW"
	case v < constants.AnomalyRisingBelow:
		return "RISING"
	default:
		return "HIGH"
	}
}

// Snapshot formats the current state for display.
func (m *Model) Snapshot(density float64) models.Snapshot {
	return models.Snapshot{
		Drift:      formatDrift(m.temporalDrift),
		Density:    densityLabel(density),
		Coherence:  fmt.Sprintf("%.2f", m.coherence),
		Anomaly:    anomalyLabel(m.anomaly),
		Phase:      m.phase,
		Transient:  m.lastSemantic,
		PhaseClass: m.phase.Class(),
	}
}

// Payload returns the raw numbers for compact displays. A non-finite density
// is recomputed from the event window.
func (m *Model) Payload(density float64) models.DiagnosticsPayload {
	if math.IsNaN(density) || math.IsInf(density, 0) {
		density = m.EventDensity()
	}
	return models.DiagnosticsPayload{
		Phase:         m.phase,
		TemporalDrift: m.temporalDrift,
		Anomaly:       m.anomaly,
		EventDensity:  density,
	}
}
