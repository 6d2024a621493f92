package content

import (
	"strings"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

// StatusLines renders the body of a status: content warning, content and
// one label per media attachment.
func StatusLines(s *mastodon.Status, width int) []string {
	return StatusLinesWithOptions(s, width, DefaultOptions)
}

func StatusLinesWithOptions(s *mastodon.Status, width int, opts Options) []string {
	s = s.Original()
	if s == nil {
		return nil
	}
	lines := make([]string, 0, 8)
	if cw := strings.TrimSpace(s.SpoilerText); cw != "" {
		for _, line := range wrapText("CW: "+cw, width) {
			if opts.StyleLinks {
				line = warningText.Render(line)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}
	lines = append(lines, LinesWithOptions(s.Content, width, opts)...)

	if len(s.MediaAttachments) > 0 {
		lines = append(lines, "")
	}
	for _, m := range s.MediaAttachments {
		label := "[" + mediaKind(m.Type) + "]"
		if d := strings.Join(strings.Fields(m.Description), " "); d != "" {
			label += " " + d
		}
		for _, line := range wrapText(label, width) {
			if opts.StyleLinks {
				line = mediaLabel.Render(line)
			}
			lines = append(lines, line)
		}
		if u := mediaURL(m); u != "" {
			lines = append(lines, styleLinksIf(opts.StyleLinks, u))
		}
	}
	return squeezeBlankLines(lines)
}

func mediaKind(t string) string {
	if t == "" || t == "unknown" {
		return "attachment"
	}
	return t
}

func mediaURL(m mastodon.MediaAttachment) string {
	if m.URL != "" {
		return m.URL
	}
	return m.RemoteURL
}

func styleLinksIf(style bool, line string) string {
	if !style {
		return line
	}
	return styleLinks([]string{line})[0]
}
