package content

import "github.com/charmbracelet/lipgloss"

var (
	cpBlue     = lipgloss.Color("#89b4fa")
	cpMauve    = lipgloss.Color("#cba6f7")
	cpPeach    = lipgloss.Color("#fab387")
	cpSubtext0 = lipgloss.Color("#a6adc8")
	cpOverlay1 = lipgloss.Color("#7f849c")

	linkStyle   = lipgloss.NewStyle().Foreground(cpBlue).Faint(true)
	quotePrefix = lipgloss.NewStyle().Foreground(cpOverlay1).Render("│ ")
	quoteText   = lipgloss.NewStyle().Italic(true).Foreground(cpSubtext0)
	warningText = lipgloss.NewStyle().Bold(true).Foreground(cpPeach)
	mediaLabel  = lipgloss.NewStyle().Foreground(cpMauve).Faint(true).Italic(true)
)
