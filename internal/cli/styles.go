package cli

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Faint   lipgloss.Style
}

func defaultStyles() styles {
	base := lipgloss.NewStyle()
	return styles{
		Title:   base.Bold(true).Foreground(lipgloss.Color("#DC2626")),
		Label:   base.Foreground(lipgloss.Color("#A3A3A3")).Width(18),
		Value:   base.Bold(true),
		Success: base.Foreground(lipgloss.Color("#22C55E")),
		Error:   base.Foreground(lipgloss.Color("#EF4444")),
		Faint:   base.Faint(true),
	}
}
