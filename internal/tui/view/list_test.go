package view

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/timeline"
	tuitheme "github.com/glabrego/fedi-cli/internal/tui/theme"
)

// setLocalZone swaps time.Local for the duration of the test.
func setLocalZone(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestRenderRowLine_Columns(t *testing.T) {
	setLocalZone(t, time.UTC)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	row := timeline.Row{
		ID:        "1",
		Author:    "@bob@example.social",
		CreatedAt: time.Date(2026, 2, 9, 10, 30, 0, 0, time.UTC),
		Status: &mastodon.Status{
			ID:          "1",
			Content:     "<p>hello <b>world</b></p>",
			InReplyToID: "0",
		},
	}

	line := stripANSI(RenderRowLine(RowLineParams{
		Row:         row,
		Now:         now,
		ShowNumbers: true,
		Pos:         2,
		Active:      true,
		Width:       80,
		Sign:        Sign{Glyph: "@", Color: "#82C8E5"},
	}, tuitheme.Default()))

	if !strings.HasPrefix(line, ">   3 Feb 09 10:30   @bob@example.social") {
		t.Fatalf("unexpected row prefix: %q", line)
	}
	if !strings.Contains(line, "hello world") {
		t.Fatalf("expected preview, got %q", line)
	}
	if !strings.HasSuffix(line, " ↵ @") {
		t.Fatalf("expected reply marker and sign at the end, got %q", line)
	}
	if got := runewidth.StringWidth(line); got != 80 {
		t.Fatalf("expected line width 80, got %d: %q", got, line)
	}
}

func TestRenderRowLine_CompactAndRelative(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	row := timeline.Row{
		ID:        "1",
		Author:    "@a_very_long_handle_that_overflows@example.social",
		CreatedAt: now.Add(-3 * time.Hour),
		Status:    &mastodon.Status{Content: "<p>text</p>"},
	}
	th := tuitheme.Default()

	compact := stripANSI(RenderRowLine(RowLineParams{Row: row, Now: now, Compact: true, ShowNumbers: true, Width: 60}, th))
	if strings.Contains(compact, "  1 ") || strings.Contains(compact, "Feb") {
		t.Fatalf("compact row must hide number and date: %q", compact)
	}
	if !strings.Contains(compact, "@a_very_long_handle_that…") {
		t.Fatalf("expected author truncated to column width, got %q", compact)
	}

	relative := stripANSI(RenderRowLine(RowLineParams{Row: row, Now: now, RelativeTime: true, Width: 80}, th))
	if !strings.Contains(relative, "3 hours ago") {
		t.Fatalf("expected relative date, got %q", relative)
	}
}

func TestRenderRowLine_DateInLocalZone(t *testing.T) {
	setLocalZone(t, time.FixedZone("EST", -5*60*60))
	row := timeline.Row{
		ID:        "1",
		Author:    "@a@example.social",
		CreatedAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		Status:    &mastodon.Status{Content: "<p>hi</p>"},
	}

	line := stripANSI(RenderRowLine(RowLineParams{Row: row, Now: row.CreatedAt, Width: 80}, tuitheme.Default()))
	if !strings.HasPrefix(line, "  Jan 02 05:00   @a@example.social") {
		t.Fatalf("expected date in local zone, got %q", line)
	}
}

func TestRowPreview(t *testing.T) {
	cases := []struct {
		name string
		row  timeline.Row
		want string
	}{
		{name: "status", row: timeline.Row{Status: &mastodon.Status{Content: "<p>a</p><p>b</p>"}}, want: "a b"},
		{name: "content warning", row: timeline.Row{Status: &mastodon.Status{Content: "<p>x</p>", SpoilerText: "spoilers"}}, want: "CW: spoilers"},
		{name: "boost", row: timeline.Row{BoostedBy: "@carol", Status: &mastodon.Status{Content: "<p>x</p>"}}, want: "⮂ x"},
		{name: "media only", row: timeline.Row{Status: &mastodon.Status{MediaAttachments: []mastodon.MediaAttachment{{}, {}}}}, want: "[2 attachments]"},
		{name: "follow", row: timeline.Row{NotificationType: mastodon.NotificationFollow}, want: "followed you"},
		{name: "unknown type", row: timeline.Row{NotificationType: "quote"}, want: "quote"},
	}
	for _, tc := range cases {
		if got := RowPreview(tc.row); got != tc.want {
			t.Fatalf("%s: RowPreview = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRelativeTimeLabel(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		then time.Time
		want string
	}{
		{then: now.Add(-30 * time.Second), want: "just now"},
		{then: now.Add(time.Hour), want: "just now"},
		{then: now.Add(-1 * time.Minute), want: "1 minute ago"},
		{then: now.Add(-3 * time.Minute), want: "3 minutes ago"},
		{then: now.Add(-1 * time.Hour), want: "1 hour ago"},
		{then: now.Add(-7 * time.Hour), want: "7 hours ago"},
		{then: now.Add(-1 * 24 * time.Hour), want: "1 day ago"},
		{then: now.Add(-3 * 24 * time.Hour), want: "3 days ago"},
		{then: time.Time{}, want: "unknown"},
	}
	for _, tc := range cases {
		if got := RelativeTimeLabel(now, tc.then); got != tc.want {
			t.Fatalf("RelativeTimeLabel(%s) = %q, want %q", tc.then.UTC().Format(time.RFC3339), got, tc.want)
		}
	}
}
