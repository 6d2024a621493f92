package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	tuitheme "github.com/glabrego/fedi-cli/internal/tui/theme"
)

// SwitchMenuEntry pairs a menu key with the timeline title it opens.
type SwitchMenuEntry struct {
	Key   string
	Title string
}

var SwitchMenuEntries = []SwitchMenuEntry{
	{Key: "h", Title: "Home"},
	{Key: "l", Title: "Local"},
	{Key: "g", Title: "Global"},
	{Key: "n", Title: "Notifications"},
	{Key: "p", Title: "Personal"},
	{Key: "b", Title: "Bookmarks"},
}

var helpLines = []string{
	"j/k, arrows   move (past the last row loads older posts)",
	"ctrl+d/u      half page down/up",
	"1-9           jump to row",
	"enter, l      open status",
	"t             open thread",
	"g             switch timeline",
	"r             refresh",
	"p             new post",
	"R             reply",
	"f / b / B     favourite / boost / bookmark",
	"o / y         open in browser / copy URL",
	"d / N / c     time format / numbering / compact",
	"q             back, or quit on the first screen",
	"ctrl+c        quit",
}

func HelpOverlay(width, height int, th tuitheme.Theme) string {
	body := th.Section.Render("Keys") + "\n\n" + strings.Join(helpLines, "\n") + "\n\n" + th.MetaLabel.Render("esc/? close")
	return place(width, height, th.Overlay.Render(body))
}

func SwitchMenu(width, height int, th tuitheme.Theme) string {
	lines := make([]string, 0, len(SwitchMenuEntries)+2)
	lines = append(lines, th.Section.Render("Switch timeline"), "")
	for _, e := range SwitchMenuEntries {
		lines = append(lines, th.Count.Render(e.Key)+"  "+e.Title)
	}
	return place(width, height, th.Overlay.Render(strings.Join(lines, "\n")))
}

// ErrorOverlay shows err wrapped to fit the screen. It is dismissed with
// esc, q or enter.
func ErrorOverlay(err error, width, height int, th tuitheme.Theme) string {
	if err == nil {
		return ""
	}
	boxWidth := max(20, min(width-4, 72))
	msg := lipgloss.NewStyle().Width(boxWidth - 4).Render(err.Error())
	body := th.StateWarn.Render("Error") + "\n\n" + msg + "\n\n" + th.MetaLabel.Render("esc/q/enter dismiss")
	return place(width, height, th.ErrorBox.Render(body))
}

func JumpPrompt(input string, th tuitheme.Theme) string {
	return th.MetaLabel.Render("jump to row:") + " " + th.MetaValue.Render(input) + "_"
}

func place(width, height int, box string) string {
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
