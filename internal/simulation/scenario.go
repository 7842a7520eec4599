package simulation

import (
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/diagnostics"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/station"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name     string
	Seed     uint32
	Duration time.Duration

	// Step is the sampling interval. Zero means one second.
	Step time.Duration

	// Events are scripted at offsets from session start. They need not be
	// sorted.
	Events []Event

	AmbientFeed bool

	// Start is the virtual wall clock at session start. Zero means
	// 2026-01-01T00:00:00Z.
	Start time.Time
}

// Event is one scripted action. Exactly one of Activity and Visible is set.
type Event struct {
	At       time.Duration
	Activity constants.Activity
	Visible  *bool
}

// Inject returns an activity event at offset at.
func Inject(at time.Duration, a constants.Activity) Event {
	return Event{At: at, Activity: a}
}

// Hide returns an event hiding the station at offset at.
func Hide(at time.Duration) Event {
	v := false
	return Event{At: at, Visible: &v}
}

// Show returns an event showing the station at offset at.
func Show(at time.Duration) Event {
	v := true
	return Event{At: at, Visible: &v}
}

// Repeat returns activity events every interval in [from, to).
func Repeat(from, interval, to time.Duration, a constants.Activity) []Event {
	if interval <= 0 {
		return nil
	}
	var out []Event
	for at := from; at < to; at += interval {
		out = append(out, Inject(at, a))
	}
	return out
}

// Transition is one recorded phase change.
type Transition struct {
	From     models.Phase `json:"from"`
	To       models.Phase `json:"to"`
	Pressure float64      `json:"pressure"`
	At       time.Time    `json:"at"`
}

// Fire is one applied effect.
type Fire struct {
	RecipeID string           `json:"recipe_id"`
	Key      models.EffectKey `json:"effect_key"`
	Duration time.Duration    `json:"duration"`
	At       time.Time        `json:"at"`
	Phase    models.Phase     `json:"phase"`

	// Active is the number of active effects right after this one applied.
	Active int `json:"active"`
}

// Sample is the session state at the end of one step.
type Sample struct {
	At            time.Time           `json:"at"`
	Metrics       diagnostics.Metrics `json:"metrics"`
	ActiveEffects int                 `json:"active_effects"`
	Visible       bool                `json:"visible"`
}

// Result captures everything a run produced.
type Result struct {
	Scenario    string        `json:"scenario"`
	SessionID   string        `json:"session_id"`
	Seed        uint32        `json:"seed"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Step        time.Duration `json:"step"`
	Transitions []Transition  `json:"transitions"`
	Fires       []Fire        `json:"fires"`
	Samples     []Sample      `json:"samples"`
	Final       station.Stats `json:"final"`
}

// PhaseAt returns the phase in effect at t, judging by recorded transitions.
func (r Result) PhaseAt(t time.Time) models.Phase {
	p := models.PhaseNominal
	for _, tr := range r.Transitions {
		if tr.At.After(t) {
			break
		}
		p = tr.To
	}
	return p
}

// Count returns how many transitions entered phase p.
func (r Result) Count(p models.Phase) int {
	n := 0
	for _, tr := range r.Transitions {
		if tr.To == p {
			n++
		}
	}
	return n
}
