package models

import "strings"

// Phase is the discrete system-health state driving which anomalies may run
type Phase string

const (
	PhaseNominal  Phase = "NOMINAL"  // Healthy, no anomalies scheduled
	PhaseUnstable Phase = "UNSTABLE" // Session recipe loops running
	PhaseIncident Phase = "INCIDENT" // Fixed incident recipes running
)

// ParsePhase normalizes a phase name. Anything unrecognized is NOMINAL.
func ParsePhase(s string) Phase {
	switch Phase(strings.ToUpper(strings.TrimSpace(s))) {
	case PhaseUnstable:
		return PhaseUnstable
	case PhaseIncident:
		return PhaseIncident
	default:
		return PhaseNominal
	}
}

// Active reports whether anomalies are eligible to fire in this phase
func (p Phase) Active() bool {
	return p == PhaseUnstable || p == PhaseIncident
}

// Class returns the presentation class name for the phase
func (p Phase) Class() string {
	return "diag-phase-" + strings.ToLower(string(ParsePhase(string(p))))
}

// String returns the phase name
func (p Phase) String() string {
	return string(p)
}
