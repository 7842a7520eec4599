package glitch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/display"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type overlayRecorder struct {
	current *display.Overlay
	sets    int
}

func (o *overlayRecorder) SetOverlay(ov display.Overlay) {
	o.current = &ov
	o.sets++
}

func (o *overlayRecorder) ClearOverlay() { o.current = nil }

func newPulser(t *testing.T) (*Pulser, *eventloop.Virtual, *bus.Bus, *overlayRecorder, *[]string) {
	t.Helper()
	v := eventloop.NewVirtual(t0)
	b := bus.New(logging.Discard())
	ov := &overlayRecorder{}
	var triggers []string
	b.Subscribe(bus.TopicGlitchTrigger, func(ev bus.Event) {
		p, ok := bus.Payload[bus.GlitchPayload](ev)
		require.True(t, ok)
		triggers = append(triggers, p.Type)
	})
	return New(v, prng.New(3), b, ov, logging.Discard()), v, b, ov, &triggers
}

func TestPulser_EntryPulse(t *testing.T) {
	p, v, _, ov, triggers := newPulser(t)

	p.SetPhase(models.PhaseIncident)
	require.Len(t, *triggers, 1)
	assert.True(t, strings.HasPrefix((*triggers)[0], "incident:"))
	require.NotNil(t, ov.current)
	assert.Contains(t, []string{Normal, Strong}, ov.current.Intensity)
	assert.Contains(t, entryEffects, ov.current.Effect)
	assert.True(t, p.Pending())

	// burst clears within 800ms
	v.Advance(800 * time.Millisecond)
	assert.Nil(t, ov.current)
}

func TestPulser_RepeatsDuringIncident(t *testing.T) {
	p, v, _, _, triggers := newPulser(t)
	p.SetPhase(models.PhaseIncident)

	v.Advance(5 * time.Second)
	assert.Len(t, *triggers, 1, "next pulse is at least 6s out")

	v.Advance(120 * time.Second)
	// at most one pulse every 6s, at least one every 22s
	n := len(*triggers) - 1
	assert.GreaterOrEqual(t, n, 120/22)
	assert.LessOrEqual(t, n, 125/6)
	assert.Equal(t, len(*triggers), p.Pulses())
}

func TestPulser_RepeatedIncidentIsNotReentry(t *testing.T) {
	p, _, _, _, triggers := newPulser(t)
	p.SetPhase(models.PhaseIncident)
	p.SetPhase(models.PhaseIncident)
	assert.Len(t, *triggers, 1)
}

func TestPulser_LeavingIncidentStops(t *testing.T) {
	p, v, _, ov, triggers := newPulser(t)
	p.SetPhase(models.PhaseIncident)
	p.SetPhase(models.PhaseUnstable)

	assert.Nil(t, ov.current)
	assert.False(t, p.Pending())
	assert.Equal(t, 0, v.Pending())

	v.Advance(time.Minute)
	assert.Len(t, *triggers, 1)
}

func TestPulser_NominalNeverPulses(t *testing.T) {
	p, v, _, ov, triggers := newPulser(t)
	p.SetPhase(models.PhaseUnstable)
	v.Advance(time.Minute)
	assert.Empty(t, *triggers)
	assert.Equal(t, 0, ov.sets)
}

func TestPulser_HiddenPausesAndResumes(t *testing.T) {
	p, v, _, _, triggers := newPulser(t)
	p.SetPhase(models.PhaseIncident)
	require.Len(t, *triggers, 1)

	p.SetVisible(false)
	v.Advance(time.Minute)
	assert.Len(t, *triggers, 1)

	p.SetVisible(true)
	assert.Len(t, *triggers, 2, "resume pulses at once")
	v.Advance(1200 * time.Millisecond)
	assert.Len(t, *triggers, 3)
}

func TestPulser_HiddenEntryRetries(t *testing.T) {
	p, v, _, _, triggers := newPulser(t)
	p.SetVisible(false)
	p.SetPhase(models.PhaseIncident)
	assert.Empty(t, *triggers)

	p.hidden = false
	v.Advance(1200 * time.Millisecond)
	assert.Len(t, *triggers, 1)
}

func TestPulser_AttachFollowsBus(t *testing.T) {
	p, _, b, ov, triggers := newPulser(t)
	detach := p.Attach(b)

	b.Publish(bus.TopicSystemPhase, bus.PhasePayload{Phase: models.PhaseIncident})
	assert.Len(t, *triggers, 1)

	b.Publish(bus.TopicSystemPhase, bus.PhasePayload{Phase: models.PhaseNominal})
	assert.Nil(t, ov.current)

	detach()
	b.Publish(bus.TopicSystemPhase, bus.PhasePayload{Phase: models.PhaseIncident})
	assert.Len(t, *triggers, 1)
}
