package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/ox500/internal/effects"
	"github.com/nvandessel/ox500/internal/models"
)

func newTestBoard() *Board {
	return NewBoard("07", []string{"> 1983-04-11 relay sweep complete", "> 1983-04-12 vault door 3 sealed"}, []string{"INDEX", "LOGS"})
}

func TestNewBoard_FixedTargets(t *testing.T) {
	b := newTestBoard()

	ids := []effects.TargetID{
		effects.TargetClock, effects.TargetFeed1, effects.TargetFeed2, effects.TargetFeed3,
		effects.TargetSensorPill, effects.TargetSensorHot, effects.TargetNodePill,
		effects.TargetAvail, effects.TargetPhaseIcon,
		effects.TargetDiagDrift, effects.TargetDiagDensity, effects.TargetDiagCoherence,
		effects.TargetDiagAnomaly, effects.TargetDiagPhase, effects.TargetDiagTransient,
	}
	for _, id := range ids {
		tgt, ok := b.Target(id)
		require.True(t, ok, "missing %s", id)
		assert.True(t, tgt.Connected())
	}

	_, ok := b.Target("nope")
	assert.False(t, ok)

	assert.Equal(t, "NODE 07", b.TextOf(effects.TargetNodePill))
	assert.Len(t, b.Lines(), 6+2)
	assert.Len(t, b.Links(), 2)
}

func TestDiagLine_KeepsLabel(t *testing.T) {
	b := newTestBoard()
	line := b.Lines()[0]
	assert.Equal(t, "TEMPORAL DRIFT: +0.000", line.Text())

	line.SetText("+9.999")
	assert.Equal(t, "TEMPORAL DRIFT: +9.999", line.Text())
	assert.Equal(t, "+9.999", b.TextOf(effects.TargetDiagDrift))
}

func TestSetLogLines_DisconnectsOld(t *testing.T) {
	b := newTestBoard()
	old := b.Lines()[6]
	require.True(t, old.Connected())

	b.SetLogLines([]string{"> page 2"})

	assert.False(t, old.Connected())
	lines := b.Lines()
	require.Len(t, lines, 7)
	assert.Equal(t, "> page 2", lines[6].Text())
	assert.True(t, lines[6].Connected())
}

func TestApplySnapshot(t *testing.T) {
	b := newTestBoard()
	b.ApplySnapshot(models.Snapshot{
		Drift:      "+0.412",
		Density:    "HIGH",
		Coherence:  "0.61",
		Anomaly:    "ELEVATED",
		Phase:      models.PhaseUnstable,
		Transient:  "PHASE SHIFT DETECTED",
		PhaseClass: models.PhaseUnstable.Class(),
	})

	assert.Equal(t, "+0.412", b.TextOf(effects.TargetDiagDrift))
	assert.Equal(t, "HIGH", b.TextOf(effects.TargetDiagDensity))
	assert.Equal(t, "0.61", b.TextOf(effects.TargetDiagCoherence))
	assert.Equal(t, "ELEVATED", b.TextOf(effects.TargetDiagAnomaly))
	assert.Equal(t, "UNSTABLE", b.TextOf(effects.TargetDiagPhase))
	assert.Equal(t, "PHASE SHIFT DETECTED", b.TextOf(effects.TargetDiagTransient))
}

func TestClasses(t *testing.T) {
	b := newTestBoard()
	tgt, _ := b.Target(effects.TargetSensorHot)

	tgt.AddClass(effects.ClassSensorBurn)
	assert.True(t, tgt.HasClass(effects.ClassSensorBurn))
	assert.Equal(t, 1, b.ActiveClasses())

	tgt.RemoveClass(effects.ClassSensorBurn)
	assert.False(t, tgt.HasClass(effects.ClassSensorBurn))
	assert.Equal(t, 0, b.ActiveClasses())
}

func TestSetters(t *testing.T) {
	b := newTestBoard()

	b.SetClock("03:14:15")
	b.SetAvail(27)
	b.SetFeed(1, "[00:00:01] SIGNAL VARIANCE: RISING")
	b.SetPhase(models.PhaseIncident)

	assert.Equal(t, "03:14:15", b.TextOf(effects.TargetClock))
	assert.Equal(t, "AVAIL 0027", b.TextOf(effects.TargetAvail))
	assert.Equal(t, "[00:00:01] SIGNAL VARIANCE: RISING", b.TextOf(effects.TargetFeed2))
	assert.Equal(t, models.PhaseIncident, b.Phase())

	_, ok := b.CurrentOverlay()
	assert.False(t, ok)
	b.SetOverlay(Overlay{Effect: "tear", Intensity: "high"})
	o, ok := b.CurrentOverlay()
	require.True(t, ok)
	assert.Equal(t, "tear", o.Effect)
	b.ClearOverlay()
	_, ok = b.CurrentOverlay()
	assert.False(t, ok)
}

func TestRender_Plain(t *testing.T) {
	b := newTestBoard()
	b.SetClock("03:14:15")
	b.SetOverlay(Overlay{Effect: "tear", Intensity: "high"})

	out := b.Render(100, nil)

	assert.NotContains(t, out, "\x1b[")
	for _, want := range []string{
		"OX-500 // ARCHIVE TERMINAL",
		"03:14:15",
		"NOMINAL",
		"TEMPORAL DRIFT: +0.000",
		"SIGNAL COHERENCE: 0.98",
		"relay sweep complete",
		"INDEX",
		"// TEAR :: HIGH //",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRender_Pulse(t *testing.T) {
	b := newTestBoard()
	assert.False(t, b.Pulsing())
	assert.NotContains(t, b.Render(100, nil), "▌")

	b.SetPulse(true)
	assert.True(t, b.Pulsing())
	out := b.Render(100, nil)
	assert.Contains(t, out, "▌ SYSTEM PHASE: NOMINAL")
	assert.Contains(t, out, "▌ TEMPORAL DRIFT: +0.000")

	b.SetPulse(false)
	assert.NotContains(t, b.Render(100, nil), "▌")
}

func TestRender_NarrowWidthClamped(t *testing.T) {
	b := newTestBoard()
	out := b.Render(5, nil)
	assert.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, "NOMINAL"))
}
