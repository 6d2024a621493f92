package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	Count      lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style

	Author    lipgloss.Style
	BoostedBy lipgloss.Style
	Sign      lipgloss.Style
	Overlay   lipgloss.Style
	ErrorBox  lipgloss.Style

	ContentPlain      lipgloss.Style
	ContentFavourited lipgloss.Style
	ContentBookmarked lipgloss.Style
	ContentBoth       lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpSky := lipgloss.Color("#89dceb")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		Count:      lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),

		Author:    lipgloss.NewStyle().Foreground(cpSky),
		BoostedBy: lipgloss.NewStyle().Italic(true).Foreground(cpOverlay1),
		Sign:      lipgloss.NewStyle().Foreground(cpTeal),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cpLavender).
			Padding(0, 1),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cpRed).
			Foreground(cpRed).
			Padding(0, 1),

		ContentPlain:      lipgloss.NewStyle().Foreground(cpText),
		ContentFavourited: lipgloss.NewStyle().Foreground(cpYellow),
		ContentBookmarked: lipgloss.NewStyle().Italic(true).Foreground(cpLavender),
		ContentBoth:       lipgloss.NewStyle().Bold(true).Italic(true).Foreground(cpRosewater),
	}
}

// StyleContent colors a preview by the user's own engagement with status.
func (t Theme) StyleContent(status *mastodon.Status, text string) string {
	if text == "" {
		return text
	}
	s := status.Original()
	if s == nil {
		return t.ContentPlain.Render(text)
	}
	switch {
	case s.Favourited && s.Bookmarked:
		return t.ContentBoth.Render(text)
	case s.Favourited:
		return t.ContentFavourited.Render(text)
	case s.Bookmarked:
		return t.ContentBookmarked.Render(text)
	default:
		return t.ContentPlain.Render(text)
	}
}

// RenderSign draws a notification glyph, in color when one is configured.
func (t Theme) RenderSign(glyph, color string) string {
	if glyph == "" {
		return ""
	}
	if color == "" {
		return t.Sign.Render(glyph)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(glyph)
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
