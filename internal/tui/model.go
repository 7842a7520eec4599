// Package tui paints a running station in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/station"
)

// RepaintInterval is how often the board is redrawn.
const RepaintInterval = 250 * time.Millisecond

// keyActivity maps keys to injected activity.
var keyActivity = map[string]constants.Activity{
	"f": constants.ActivityFeed,
	"p": constants.ActivityPage,
	"l": constants.ActivityLog,
	"g": constants.ActivityGlitch,
	"w": constants.ActivityWhisper,
}

type repaintMsg time.Time

type injectedMsg struct {
	kind constants.Activity
	err  error
}

type visibilityMsg struct {
	visible bool
	err     error
}

// Options configures a Model.
type Options struct {
	// Width caps the board width. Zero follows the window.
	Width int

	// Renderer paints the board. Nil means plain text.
	Renderer *lipgloss.Renderer

	// FollowFocus hides the station when the terminal loses focus. The
	// program must be started with tea.WithReportFocus.
	FollowFocus bool
}

// Model is the bubbletea model for one station.
type Model struct {
	ctx      context.Context
	st       *station.Station
	injector *station.Injector
	opts     Options
	styles   styles

	width  int
	height int
	status string
}

// New returns a model painting st. A nil injector disables the activity keys.
func New(ctx context.Context, st *station.Station, injector *station.Injector, opts Options) Model {
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	return Model{
		ctx:      ctx,
		st:       st,
		injector: injector,
		opts:     opts,
		styles:   newStyles(opts.Renderer),
	}
}

func (m Model) Init() tea.Cmd {
	return repaint()
}

func repaint() tea.Cmd {
	return tea.Tick(RepaintInterval, func(t time.Time) tea.Msg {
		return repaintMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "h":
			return m, m.setVisible(!m.st.Visible())
		default:
			if a, ok := keyActivity[key]; ok {
				if m.injector == nil {
					m.status = "input disabled"
					return m, nil
				}
				return m, m.inject(a)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.FocusMsg:
		if m.opts.FollowFocus {
			return m, m.setVisible(true)
		}

	case tea.BlurMsg:
		if m.opts.FollowFocus {
			return m, m.setVisible(false)
		}

	case injectedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = fmt.Sprintf("%s sent", msg.kind)
		}

	case visibilityMsg:
		switch {
		case msg.err != nil:
			m.status = msg.err.Error()
		case msg.visible:
			m.status = "station visible"
		default:
			m.status = "station hidden"
		}

	case repaintMsg:
		return m, repaint()
	}

	return m, nil
}

func (m Model) inject(a constants.Activity) tea.Cmd {
	ctx, in := m.ctx, m.injector
	return func() tea.Msg {
		return injectedMsg{kind: a, err: in.Inject(ctx, a)}
	}
}

func (m Model) setVisible(visible bool) tea.Cmd {
	ctx, st := m.ctx, m.st
	return func() tea.Msg {
		err := st.Exec(ctx, func() { st.SetVisible(visible) })
		return visibilityMsg{visible: visible, err: err}
	}
}

// boardWidth is the width the board is drawn at.
func (m Model) boardWidth() int {
	w := m.opts.Width
	if m.width > 0 && (w == 0 || m.width < w) {
		w = m.width
	}
	if w == 0 {
		w = 72
	}
	return w
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.st.Board().Render(m.boardWidth(), m.opts.Renderer))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderStatusBar() string {
	snap := m.st.Snapshot()
	left := m.styles.phase.Render(string(snap.Phase))
	if !m.st.Visible() {
		left += " " + m.styles.dim.Render("(hidden)")
	}
	if m.status != "" {
		left += "  " + m.styles.status.Render(m.status)
	}
	help := m.styles.dim.Render("f feed  p page  l log  g glitch  w whisper  h hide  q quit")
	gap := strings.Repeat(" ", max(1, m.boardWidth()-lipgloss.Width(left)-lipgloss.Width(help)))
	return left + gap + help
}
