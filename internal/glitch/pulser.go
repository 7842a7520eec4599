// Package glitch drives the incident overlay: short full-screen bursts that
// only happen while the station is in INCIDENT.
package glitch

import (
	"log/slog"
	"time"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/display"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// Overlay effects.
const (
	ScanlineBurst = "scanline-burst"
	NoiseGrain    = "noise-grain"
	SignalDrop    = "signal-drop"
	InverseFlash  = "inverse-flash"
	JitterPulse   = "jitter-pulse"
)

// Overlay intensities.
const (
	Subtle = "subtle"
	Normal = "normal"
	Strong = "strong"
)

// Weighted by repetition.
var (
	entryEffects   = []string{ScanlineBurst, SignalDrop, ScanlineBurst, NoiseGrain, InverseFlash}
	runtimeEffects = []string{ScanlineBurst, NoiseGrain, SignalDrop, NoiseGrain, JitterPulse, ScanlineBurst, InverseFlash}

	entryIntensities   = []string{Normal, Strong, Strong}
	runtimeIntensities = []string{Subtle, Normal, Normal, Strong}
)

// TriggerPrefix starts the glitch:trigger type of every overlay pulse.
const TriggerPrefix = "incident:"

// Overlay is the part of the display a Pulser draws on.
type Overlay interface {
	SetOverlay(o display.Overlay)
	ClearOverlay()
}

// Pulser schedules overlay pulses. It is loop-bound.
type Pulser struct {
	sched   eventloop.Scheduler
	rng     *prng.Source
	bus     *bus.Bus
	overlay Overlay
	logger  *slog.Logger

	incident bool
	hidden   bool
	pulse    eventloop.Timer
	burst    eventloop.Timer
	pulses   int
}

// New creates an idle Pulser.
func New(sched eventloop.Scheduler, rng *prng.Source, b *bus.Bus, overlay Overlay, logger *slog.Logger) *Pulser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pulser{sched: sched, rng: rng, bus: b, overlay: overlay, logger: logger}
}

// Attach subscribes to phase and visibility changes.
func (p *Pulser) Attach(b *bus.Bus) (detach func()) {
	unsubPhase := b.Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
		if pl, ok := bus.Payload[bus.PhasePayload](ev); ok {
			p.SetPhase(pl.Phase)
		}
	})
	unsubVis := b.Subscribe(bus.TopicVisibility, func(ev bus.Event) {
		if pl, ok := bus.Payload[bus.VisibilityPayload](ev); ok {
			p.SetVisible(!pl.Hidden)
		}
	})
	return func() {
		unsubPhase()
		unsubVis()
	}
}

// Pulses returns how many pulses have been drawn.
func (p *Pulser) Pulses() int { return p.pulses }

// Pending reports whether a pulse or burst timer is outstanding.
func (p *Pulser) Pending() bool { return p.pulse != nil || p.burst != nil }

// SetPhase starts pulsing on entering INCIDENT and stops on leaving it.
func (p *Pulser) SetPhase(phase models.Phase) {
	if phase == models.PhaseIncident {
		entering := !p.incident
		p.incident = true
		if entering {
			p.run(true)
		}
		if p.pulse == nil {
			p.schedule(p.rng.Duration(constants.GlitchPulseMin, constants.GlitchPulseMax))
		}
		return
	}
	p.incident = false
	p.Stop()
}

// SetVisible pauses pulses while hidden. Coming back during an incident
// pulses at once and again shortly after.
func (p *Pulser) SetVisible(visible bool) {
	p.hidden = !visible
	if !visible {
		p.stopPulse()
		return
	}
	if !p.incident {
		return
	}
	p.run(false)
	p.schedule(constants.GlitchHiddenRetry)
}

// Stop cancels timers and clears the overlay.
func (p *Pulser) Stop() {
	p.stopPulse()
	if p.burst != nil {
		p.burst.Stop()
		p.burst = nil
	}
	p.overlay.ClearOverlay()
}

func (p *Pulser) stopPulse() {
	if p.pulse != nil {
		p.pulse.Stop()
		p.pulse = nil
	}
}

func (p *Pulser) schedule(delay time.Duration) {
	if !p.incident {
		return
	}
	p.stopPulse()
	p.pulse = p.sched.AfterFunc(delay, func() {
		p.pulse = nil
		if !p.incident {
			return
		}
		p.run(false)
		p.schedule(p.rng.Duration(constants.GlitchPulseMin, constants.GlitchPulseMax))
	})
}

func (p *Pulser) run(entry bool) {
	if !p.incident {
		return
	}
	if p.hidden {
		p.schedule(constants.GlitchHiddenRetry)
		return
	}

	effects, intensities := runtimeEffects, runtimeIntensities
	if entry {
		effects, intensities = entryEffects, entryIntensities
	}
	effect, _ := prng.PickOne(p.rng, effects)
	intensity, _ := prng.PickOne(p.rng, intensities)
	burst := p.rng.Duration(constants.GlitchBurstMin, constants.GlitchBurstMax)

	p.overlay.SetOverlay(display.Overlay{Effect: effect, Intensity: intensity})
	p.pulses++
	p.logger.Debug("incident pulse", "effect", effect, "intensity", intensity, "burst", burst, "entry", entry)
	p.bus.Publish(bus.TopicGlitchTrigger, bus.GlitchPayload{Type: TriggerPrefix + effect})

	if p.burst != nil {
		p.burst.Stop()
	}
	p.burst = p.sched.AfterFunc(burst, func() {
		p.burst = nil
		p.overlay.ClearOverlay()
	})
}

