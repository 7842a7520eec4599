package display

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvandessel/ox500/internal/effects"
	"github.com/nvandessel/ox500/internal/models"
)

// Phase palette (ANSI 256).
var phaseColors = map[models.Phase]lipgloss.Color{
	models.PhaseNominal:  lipgloss.Color("42"),
	models.PhaseUnstable: lipgloss.Color("214"),
	models.PhaseIncident: lipgloss.Color("196"),
}

// Styles is the set of styles a board is painted with.
type Styles struct {
	Frame   lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Phase   lipgloss.Style
	Overlay lipgloss.Style
}

// NewStyles builds the styles for a phase on the given renderer.
func NewStyles(r *lipgloss.Renderer, phase models.Phase) Styles {
	accent, ok := phaseColors[phase]
	if !ok {
		accent = phaseColors[models.PhaseNominal]
	}
	return Styles{
		Frame:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		Title:   r.NewStyle().Bold(true).Foreground(accent),
		Label:   r.NewStyle().Foreground(lipgloss.Color("245")),
		Value:   r.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
		Phase:   r.NewStyle().Bold(true).Foreground(accent),
		Overlay: r.NewStyle().Bold(true).Reverse(true).Foreground(accent),
	}
}

// decorate layers the element's anomaly classes onto a base style.
func decorate(base lipgloss.Style, classes map[effects.Class]bool) lipgloss.Style {
	s := base
	if classes[effects.ClassFlip] {
		s = s.Reverse(true)
	}
	if classes[effects.ClassFade] {
		s = s.Faint(true)
	}
	if classes[effects.ClassSensorBurn] || classes[effects.ClassIconFlicker] {
		s = s.Blink(true)
	}
	if classes[effects.ClassLinkGhost] {
		s = s.Strikethrough(true)
	}
	return s
}

// Render draws the board at the given width. A nil renderer produces plain
// text with no escape sequences.
func (b *Board) Render(width int, r *lipgloss.Renderer) string {
	if r == nil {
		r = lipgloss.NewRenderer(io.Discard)
	}
	if width < 40 {
		width = 40
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	st := NewStyles(r, b.phase)
	el := func(id effects.TargetID, base lipgloss.Style) string {
		e := b.byID[id]
		return decorate(base, e.classes).Render(e.text)
	}

	var rows []string

	header := st.Title.Render(b.title) + "  " +
		el(effects.TargetClock, st.Value) + "  " +
		el(effects.TargetPhaseIcon, st.Phase) + " " + st.Phase.Render(string(b.phase))
	rows = append(rows, header)

	pills := el(effects.TargetSensorPill, st.Label) + " " +
		el(effects.TargetSensorHot, st.Value) + "  " +
		el(effects.TargetNodePill, st.Label) + "  " +
		el(effects.TargetAvail, st.Label)
	rows = append(rows, pills, "")

	for _, id := range []effects.TargetID{effects.TargetFeed1, effects.TargetFeed2, effects.TargetFeed3} {
		if b.byID[id].text == "" {
			rows = append(rows, st.Muted.Render("..."))
			continue
		}
		rows = append(rows, el(id, st.Muted))
	}
	rows = append(rows, "")

	labelStyle, gutter := st.Label, ""
	if b.pulse {
		labelStyle = st.Phase
		gutter = st.Phase.Render("▌") + " "
	}
	for _, line := range b.diagLines {
		label := decorate(labelStyle, line.classes).Render(line.label)
		value := decorate(st.Value, line.classes)
		value = decorate(value, line.value.classes)
		rows = append(rows, gutter+label+" "+value.Render(line.value.text))
	}

	if len(b.logLines) > 0 {
		rows = append(rows, "")
		for _, line := range b.logLines {
			rows = append(rows, decorate(st.Muted, line.classes).Render(line.text))
		}
	}

	if len(b.links) > 0 {
		links := make([]string, 0, len(b.links))
		for _, l := range b.links {
			links = append(links, decorate(st.Label.Underline(true), l.classes).Render(l.text))
		}
		rows = append(rows, "", strings.Join(links, "  "))
	}

	if b.overlay != nil {
		tag := "// " + strings.ToUpper(b.overlay.Effect) + " :: " + strings.ToUpper(b.overlay.Intensity) + " //"
		rows = append(rows, "", st.Overlay.Render(tag))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return st.Frame.Width(width - 2).Render(body)
}
