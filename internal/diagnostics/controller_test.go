package diagnostics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

type recorder struct {
	phases  []bus.PhasePayload
	renders []models.Snapshot
	updates []models.DiagnosticsPayload
}

func newHarness(t *testing.T, decisions *logging.DecisionLogger) (*Controller, *bus.Bus, *eventloop.Virtual, *recorder) {
	t.Helper()
	v := eventloop.NewVirtual(t0)
	b := bus.New(logging.Discard())
	rec := &recorder{}
	b.Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
		p, ok := bus.Payload[bus.PhasePayload](ev)
		require.True(t, ok)
		rec.phases = append(rec.phases, p)
	})
	b.Subscribe(bus.TopicDiagnosticsRender, func(ev bus.Event) {
		s, _ := bus.Payload[models.Snapshot](ev)
		rec.renders = append(rec.renders, s)
	})
	b.Subscribe(bus.TopicDiagnosticsUpdate, func(ev bus.Event) {
		p, _ := bus.Payload[models.DiagnosticsPayload](ev)
		rec.updates = append(rec.updates, p)
	})
	c := NewController(b, v, prng.New(1), logging.Discard(), decisions)
	return c, b, v, rec
}

func TestController_StartAnnouncesPhase(t *testing.T) {
	c, _, _, rec := newHarness(t, nil)
	c.Start()
	defer c.Stop()

	require.Len(t, rec.phases, 1)
	assert.Equal(t, models.PhaseNominal, rec.phases[0].Phase)
	require.Len(t, rec.renders, 1)
	assert.Equal(t, "ARCHIVE LINK STABLE", rec.renders[0].Transient)
	require.Len(t, rec.updates, 1)
	assert.Equal(t, models.PhaseNominal, c.Snapshot().Phase)
}

func TestController_ActivityTopicsReachModel(t *testing.T) {
	c, b, _, _ := newHarness(t, nil)
	c.Start()
	defer c.Stop()

	b.Publish(bus.TopicFeedPush, nil)
	b.Publish(bus.TopicLogsPageLoaded, nil)
	b.Publish(bus.TopicLogChanged, nil)
	b.Publish(bus.TopicBootComplete, nil)
	b.Publish(bus.TopicGlitchTrigger, bus.GlitchPayload{Type: "whisper"})

	m := c.Model().Metrics()
	assert.Equal(t, 5, m.RecentEvents)
	assert.Equal(t, "WHISPER CHANNEL BREACHED", m.LastSemantic)
	assert.InDelta(t, 0.24+0.02+0.025+0.03+0.05, m.Pressure, 1e-9)
}

func TestController_TickPublishesRender(t *testing.T) {
	c, b, v, rec := newHarness(t, nil)
	c.Start()
	defer c.Stop()

	v.Advance(time.Second)
	b.Publish(bus.TopicTick, bus.TickPayload{TS: v.Now()})

	require.Len(t, rec.renders, 2)
	require.Len(t, rec.updates, 2)
	assert.Equal(t, rec.renders[1], c.Snapshot())
	assert.Equal(t, rec.updates[1], c.Payload())
	assert.Equal(t, 0, c.Metrics().RecentEvents)
}

func TestController_PhaseChangePublishes(t *testing.T) {
	var buf bytes.Buffer
	c, b, v, rec := newHarness(t, logging.NewDecisionWriter(&buf))
	c.Start()
	defer c.Stop()

	c.Model().SetPressure(0.75)
	for i := 0; i < 3; i++ {
		v.Advance(100 * time.Millisecond)
		b.Publish(bus.TopicGlitchTrigger, bus.GlitchPayload{})
	}
	v.Advance(700 * time.Millisecond)
	b.Publish(bus.TopicTick, bus.TickPayload{TS: v.Now()})

	require.Len(t, rec.phases, 2, "initial announcement plus one transition")
	got := rec.phases[1]
	assert.Equal(t, models.PhaseUnstable, got.Phase)
	assert.Equal(t, models.PhaseNominal, got.Previous)
	assert.Equal(t, t0.Add(time.Second), got.At)
	assert.True(t, strings.Contains(buf.String(), `"to":"UNSTABLE"`), buf.String())
}

func TestController_StopUnsubscribes(t *testing.T) {
	c, b, _, _ := newHarness(t, nil)
	c.Start()
	c.Stop()

	b.Publish(bus.TopicFeedPush, nil)
	assert.Equal(t, 0, c.Model().Metrics().RecentEvents)
	assert.Equal(t, 0, b.Subscribers(bus.TopicTick))
}
