package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	phase  lipgloss.Style
	status lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		phase:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		status: r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
