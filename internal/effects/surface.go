// Package effects implements the anomaly handlers: small, reversible
// disturbances applied to the station display.
package effects

// TargetID names a fixed element of the station display.
type TargetID string

const (
	TargetClock      TargetID = "clock"
	TargetFeed1      TargetID = "feed1"
	TargetFeed2      TargetID = "feed2"
	TargetFeed3      TargetID = "feed3"
	TargetSensorPill TargetID = "sensor"
	TargetSensorHot  TargetID = "sensor.hot"
	TargetNodePill   TargetID = "node"
	TargetAvail      TargetID = "avail"
	TargetPhaseIcon  TargetID = "phase.icon"

	TargetDiagDrift     TargetID = "diag.drift"
	TargetDiagDensity   TargetID = "diag.density"
	TargetDiagCoherence TargetID = "diag.coherence"
	TargetDiagAnomaly   TargetID = "diag.anomaly"
	TargetDiagPhase     TargetID = "diag.phase"
	TargetDiagTransient TargetID = "diag.transient"
)

// Class is a presentation flag on a target.
type Class string

const (
	ClassFlip        Class = "anomaly-flip-line"
	ClassFade        Class = "anomaly-fade-line"
	ClassSensorBurn  Class = "anomaly-sensor-burn"
	ClassIconFlicker Class = "anomaly-phase-icon-flicker"
	ClassLinkGhost   Class = "anomaly-link-ghost"

	// ClassGarbled marks a target whose text is swapped by a live effect.
	// Text handlers skip garbled targets so an undo never restores another
	// effect's output.
	ClassGarbled Class = "anomaly-garbled"
)

// Target is one mutable display element.
type Target interface {
	Text() string
	SetText(s string)
	AddClass(c Class)
	RemoveClass(c Class)
	HasClass(c Class) bool

	// Connected is false once the element has been replaced on the display.
	Connected() bool
}

// Surface is the display as seen by effect handlers.
type Surface interface {
	// Target returns a fixed element. ok is false if the display lacks it.
	Target(id TargetID) (Target, bool)

	// Lines returns the line-shaped elements: diagnostics lines followed by
	// archive log lines.
	Lines() []Target

	// Links returns the archive link elements.
	Links() []Target
}

// targets resolves ids, skipping missing elements.
func targets(s Surface, ids ...TargetID) []Target {
	out := make([]Target, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Target(id); ok {
			out = append(out, t)
		}
	}
	return out
}

func filter(list []Target, keep func(Target) bool) []Target {
	out := make([]Target, 0, len(list))
	for _, t := range list {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
