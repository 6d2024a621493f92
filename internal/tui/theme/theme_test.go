package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

func TestStyleContent_ByEngagement(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	cases := map[string]*mastodon.Status{
		"plain":      {},
		"favourited": {Favourited: true},
		"bookmarked": {Bookmarked: true},
		"both":       {Favourited: true, Bookmarked: true},
		"nil":        nil,
	}
	for name, status := range cases {
		got := th.StyleContent(status, name)
		if !strings.Contains(got, "\x1b[") || !strings.Contains(got, name) {
			t.Fatalf("expected styled %s content, got %q", name, got)
		}
	}
	if th.StyleContent(&mastodon.Status{}, "") != "" {
		t.Fatal("expected empty text to stay empty")
	}
}

func TestStyleContent_UsesReblogFlags(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	wrapper := &mastodon.Status{Reblog: &mastodon.Status{Favourited: true}}
	if th.StyleContent(wrapper, "x") != th.ContentFavourited.Render("x") {
		t.Fatal("expected reblogged original flags to drive the style")
	}
}

func TestRenderSign(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()

	colored := th.RenderSign("★", "#E5E500")
	if !strings.Contains(colored, "★") || !strings.Contains(colored, "\x1b[") {
		t.Fatalf("expected colored sign, got %q", colored)
	}
	plain := th.RenderSign("@", "")
	if plain != th.Sign.Render("@") {
		t.Fatalf("expected default sign style, got %q", plain)
	}
	if th.RenderSign("", "#ffffff") != "" {
		t.Fatal("expected empty glyph to render nothing")
	}
}

func TestRenderActiveLine(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI)
	th := Default()
	if th.RenderActiveLine(false, "row") != "row" {
		t.Fatal("inactive line must be unchanged")
	}
	if !strings.Contains(th.RenderActiveLine(true, "row"), "\x1b[") {
		t.Fatal("expected active line to be styled")
	}
}
