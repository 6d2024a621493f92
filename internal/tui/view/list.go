package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/render/content"
	"github.com/glabrego/fedi-cli/internal/timeline"
	tuitheme "github.com/glabrego/fedi-cli/internal/tui/theme"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const (
	AuthorWidth   = 25
	dateWidth     = 14
	absoluteDate  = "Jan 02 15:04"
	replyMarker   = "↵"
	boostedMarker = "⮂"
)

// Sign is the resolved glyph and color for one notification type.
type Sign struct {
	Glyph string
	Color string
}

type RowLineParams struct {
	Row          timeline.Row
	Now          time.Time
	RelativeTime bool
	Compact      bool
	ShowNumbers  bool
	Pos          int
	Active       bool
	Width        int
	Sign         Sign
}

// RenderRowLine lays out one table row: number, date, author, preview,
// reply marker and notification sign. Compact mode drops number and date.
func RenderRowLine(p RowLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	prefix := cursorMarker + " "
	if p.ShowNumbers && !p.Compact {
		prefix += fmt.Sprintf("%3d ", p.Pos+1)
	}
	if !p.Compact {
		date := p.Row.CreatedAt.Local().Format(absoluteDate)
		if p.RelativeTime {
			date = RelativeTimeLabel(p.Now, p.Row.CreatedAt)
		}
		prefix += runewidth.FillRight(runewidth.Truncate(date, dateWidth, ""), dateWidth) + " "
	}

	author := runewidth.FillRight(runewidth.Truncate(p.Row.Author, AuthorWidth, "…"), AuthorWidth)

	reply := " "
	if p.Row.IsReply() {
		reply = replyMarker
	}
	signWidth := runewidth.StringWidth(p.Sign.Glyph)
	suffixWidth := 1 + runewidth.StringWidth(reply)
	if signWidth > 0 {
		suffixWidth += 1 + signWidth
	}

	available := p.Width - runewidth.StringWidth(prefix) - AuthorWidth - 1 - suffixWidth
	if available < 1 {
		available = 1
	}
	preview := truncateRunes(RowPreview(p.Row), available)
	gap := available - runewidth.StringWidth(preview)

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(th.Author.Render(author))
	b.WriteString(" ")
	b.WriteString(th.StyleContent(p.Row.Status, preview))
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(" ")
	b.WriteString(reply)
	if signWidth > 0 {
		b.WriteString(" ")
		b.WriteString(th.RenderSign(p.Sign.Glyph, p.Sign.Color))
	}
	return th.RenderActiveLine(p.Active, b.String())
}

// RowPreview is the single-line text of a row. Rows without a status
// describe the notification instead.
func RowPreview(row timeline.Row) string {
	if row.Status != nil {
		text := content.Preview(row.Status.Content)
		if cw := strings.TrimSpace(row.Status.SpoilerText); cw != "" {
			text = "CW: " + cw
		}
		if text == "" && len(row.Status.MediaAttachments) > 0 {
			text = fmt.Sprintf("[%d attachments]", len(row.Status.MediaAttachments))
		}
		if row.BoostedBy != "" {
			text = boostedMarker + " " + text
		}
		return text
	}
	switch row.NotificationType {
	case mastodon.NotificationFollow:
		return "followed you"
	case mastodon.NotificationFollowRequest:
		return "requested to follow you"
	case mastodon.NotificationModerationWarning:
		return "received a moderation warning"
	case mastodon.NotificationSeveredRelationships:
		return "some of your relationships were severed"
	case mastodon.NotificationAdminSignUp:
		return "signed up"
	case mastodon.NotificationAdminReport:
		return "filed a report"
	case "":
		return ""
	default:
		return string(row.NotificationType)
	}
}

func RelativeTimeLabel(now, then time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if then.IsZero() {
		return "unknown"
	}
	if then.After(now) || now.Sub(then) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

func truncateRunes(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

func visibleLen(s string) int {
	return runewidth.StringWidth(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
