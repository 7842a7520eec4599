package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/eventloop"
	"github.com/nvandessel/ox500/internal/logging"
	"github.com/nvandessel/ox500/internal/ratelimit"
	"github.com/nvandessel/ox500/internal/station"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestModel(t *testing.T, opts Options, withInjector bool) (Model, *station.Station) {
	t.Helper()
	v := eventloop.NewVirtual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	st := station.New(v, station.Options{Seed: 42, Logger: logging.Discard()})
	st.Start()
	t.Cleanup(st.Stop)

	if opts.Renderer == nil {
		opts.Renderer = lipgloss.NewRenderer(io.Discard)
	}
	var in *station.Injector
	if withInjector {
		in = station.NewInjector(st, ratelimit.NewLimiter[constants.Activity](0, 1))
	}
	return New(context.Background(), st, in, opts), st
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send runs msg through Update and feeds back the message its command
// produces, once.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func TestInit_SchedulesRepaint(t *testing.T) {
	m, _ := newTestModel(t, Options{}, true)
	assert.NotNil(t, m.Init())

	_, cmd := m.Update(repaintMsg(time.Now()))
	assert.NotNil(t, cmd)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, Options{}, true)
	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd, k.String())
		assert.Equal(t, tea.QuitMsg{}, cmd(), k.String())
	}
}

func TestInjectKeys(t *testing.T) {
	m, st := newTestModel(t, Options{}, true)

	m = send(t, m, key("g"))
	assert.Equal(t, "glitch sent", m.status)
	assert.Equal(t, constants.LabelGlitch, st.Diagnostics().Model().Metrics().LastSemantic)

	m = send(t, m, key("g"))
	assert.Contains(t, m.status, "rate limit exceeded")

	m = send(t, m, key("f"))
	assert.Equal(t, "feed sent", m.status)
}

func TestInjectKeys_Disabled(t *testing.T) {
	m, _ := newTestModel(t, Options{}, false)
	next, cmd := m.Update(key("p"))
	assert.Nil(t, cmd)
	assert.Equal(t, "input disabled", next.(Model).status)
}

func TestHideToggle(t *testing.T) {
	m, st := newTestModel(t, Options{}, true)

	m = send(t, m, key("h"))
	assert.False(t, st.Visible())
	assert.Equal(t, "station hidden", m.status)
	assert.Contains(t, m.View(), "(hidden)")

	m = send(t, m, key("h"))
	assert.True(t, st.Visible())
	assert.Equal(t, "station visible", m.status)
}

func TestFocusFollowsVisibility(t *testing.T) {
	m, st := newTestModel(t, Options{FollowFocus: true}, true)
	m = send(t, m, tea.BlurMsg{})
	assert.False(t, st.Visible())
	m = send(t, m, tea.FocusMsg{})
	assert.True(t, st.Visible())

	plain, st2 := newTestModel(t, Options{}, true)
	_, cmd := plain.Update(tea.BlurMsg{})
	assert.Nil(t, cmd)
	assert.True(t, st2.Visible())
}

func TestBoardWidth(t *testing.T) {
	tests := []struct {
		name   string
		opt    int
		window int
		want   int
	}{
		{"defaults", 0, 0, 72},
		{"window only", 0, 100, 100},
		{"option caps window", 60, 100, 60},
		{"narrow window wins", 80, 50, 50},
		{"option without window", 90, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, Options{Width: tt.opt}, true)
			if tt.window > 0 {
				next, _ := m.Update(tea.WindowSizeMsg{Width: tt.window, Height: 40})
				m = next.(Model)
			}
			assert.Equal(t, tt.want, m.boardWidth())
		})
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, Options{}, true)
	out := m.View()
	assert.Contains(t, out, "OX-500")
	assert.Contains(t, out, "NOMINAL")
	assert.Contains(t, out, "q quit")

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[len(lines)-1], "g glitch")
}
