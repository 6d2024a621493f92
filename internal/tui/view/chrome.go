package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/fedi-cli/internal/tui/theme"
)

// Header is the top line: app name, current screen and account.
func Header(screen, account string, th tuitheme.Theme) string {
	parts := []string{th.Title.Render("fedi"), th.ModePill.Render(screen)}
	if account != "" {
		parts = append(parts, th.MetaValue.Render(account))
	}
	return strings.Join(parts, " ")
}

func Toolbar(inDetail bool) string {
	if inDetail {
		return "j/k scroll | f/b/B toggle | R reply | t thread | o open | y copy | q back | ? help"
	}
	return "j/k move | enter open | t thread | g switch | r refresh | p post | R reply | ? help | q back"
}

func CompactFooter(timeline string, shown int, hasMore bool, th tuitheme.Theme) string {
	more := "end"
	if hasMore {
		more = "more below"
	}
	parts := []string{
		th.MetaLabel.Render("timeline") + " " + th.MetaValue.Render(timeline),
		th.Count.Render(fmt.Sprintf("%d", shown)) + " " + th.MetaValue.Render("shown"),
		th.MetaValue.Render(more),
	}
	return strings.Join(parts, " • ")
}

// StatusLine sits between the body and the footer while a request is in
// flight or a transient message is shown.
func StatusLine(loading bool, text string, th tuitheme.Theme) string {
	label := th.StateIdle.Render("ready")
	if loading {
		label = th.StateLoad.Render("loading")
		if text == "" {
			text = "fetching..."
		}
	}
	if text == "" {
		return label
	}
	return label + " " + th.MetaValue.Render(text)
}
