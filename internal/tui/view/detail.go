package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/render/content"
	"github.com/glabrego/fedi-cli/internal/timeline"
)

type MediaPreviewState struct {
	Enabled bool
	Loading bool
	Raw     string
	Err     string
}

// StatusDetailLines is the full-screen view of one row: metadata, counts,
// rendered content, then the media preview when one is enabled.
func StatusDetailLines(row timeline.Row, width, margin int, opts content.Options, preview MediaPreviewState) []string {
	contentWidth := max(10, width-2*margin)
	lines := detailMetaLines(row, contentWidth)
	if s := row.Status.Original(); s != nil {
		if body := content.StatusLinesWithOptions(s, contentWidth, opts); len(body) > 0 {
			lines = append(lines, "")
			lines = append(lines, body...)
		}
	}
	lines = appendMediaPreview(lines, preview, contentWidth)
	return leftPadLines(lines, margin)
}

func detailMetaLines(row timeline.Row, width int) []string {
	lines := make([]string, 0, 12)
	s := row.Status.Original()

	name := row.Author
	if s != nil && strings.TrimSpace(s.Account.DisplayName) != "" {
		name = s.Account.DisplayName + " (" + row.Author + ")"
	}
	lines = append(lines, name)
	lines = append(lines, strings.Repeat("=", max(1, min(width, visibleLen(name)))))
	lines = append(lines, "")

	if row.BoostedBy != "" {
		lines = append(lines, "Boosted by: "+row.BoostedBy)
	}
	if row.NotificationType != "" {
		lines = append(lines, "Notification: "+string(row.NotificationType))
	}
	if !row.CreatedAt.IsZero() {
		lines = append(lines, "Date: "+row.CreatedAt.Local().Format(time.RFC1123))
	}
	if s == nil {
		if text := RowPreview(row); text != "" {
			lines = append(lines, "", row.Author+" "+text)
		}
		return lines
	}

	if s.Visibility != "" {
		lines = append(lines, "Visibility: "+s.Visibility)
	}
	if s.InReplyToID != "" {
		lines = append(lines, "In reply to: "+s.InReplyToID)
	}
	lines = append(lines, fmt.Sprintf("Replies: %d  Boosts: %d  Favourites: %d", s.RepliesCount, s.ReblogsCount, s.FavouritesCount))
	if flags := engagementFlags(s); flags != "" {
		lines = append(lines, "You: "+flags)
	}
	if url := row.URL(); url != "" {
		lines = append(lines, "URL: "+url)
	}
	return lines
}

func engagementFlags(s *mastodon.Status) string {
	flags := make([]string, 0, 3)
	if s.Favourited {
		flags = append(flags, "favourited")
	}
	if s.Reblogged {
		flags = append(flags, "boosted")
	}
	if s.Bookmarked {
		flags = append(flags, "bookmarked")
	}
	return strings.Join(flags, ", ")
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func appendMediaPreview(lines []string, preview MediaPreviewState, contentWidth int) []string {
	if !preview.Enabled {
		return lines
	}
	var previewLines []string
	switch {
	case preview.Loading:
		previewLines = []string{"Loading image preview..."}
	case strings.TrimSpace(preview.Raw) != "":
		raw := strings.TrimRight(preview.Raw, "\r\n")
		if ContainsKittyGraphicsEscape(raw) {
			previewLines = []string{raw}
		} else {
			previewLines = centerLines(strings.Split(raw, "\n"), contentWidth)
		}
	case strings.TrimSpace(preview.Err) != "":
		previewLines = []string{"Image preview unavailable: " + strings.TrimSpace(preview.Err)}
	}
	if len(previewLines) == 0 {
		return lines
	}
	out := append(lines, "")
	return append(out, previewLines...)
}

func leftPadLines(lines []string, padding int) []string {
	if padding <= 0 || len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat(" ", padding)
	out := make([]string, len(lines))
	for i, line := range lines {
		if ContainsKittyGraphicsEscape(line) || line == "" {
			out[i] = line
			continue
		}
		out[i] = prefix + line
	}
	return out
}

func centerLines(lines []string, width int) []string {
	if width <= 0 || len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		visible := visibleLen(line)
		if visible >= width {
			out[i] = line
			continue
		}
		out[i] = strings.Repeat(" ", (width-visible)/2) + line
	}
	return out
}
