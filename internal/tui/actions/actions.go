package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/fedi-cli/internal/app"
	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/storage"
	"github.com/glabrego/fedi-cli/internal/timeline"
	"github.com/glabrego/fedi-cli/internal/tui/platform"
)

type Service interface {
	Toggle(ctx context.Context, action app.Action, status *mastodon.Status) (*mastodon.Status, error)
	ComposeFor(ctx context.Context, replyTo *mastodon.Status) (app.Compose, error)
	Post(ctx context.Context, c app.Compose, text string) (*mastodon.Status, error)
	SavePreferences(ctx context.Context, p storage.Preferences) error
}

// FeedLoadedMsg carries the full row list of feed after a fetch. Rows is the
// feed's current list even when Err is set.
type FeedLoadedMsg struct {
	Feed     timeline.Feed
	Rows     []timeline.Row
	Older    bool
	Err      error
	Duration time.Duration
}

type ToggleSuccessMsg struct {
	Action app.Action
	Status *mastodon.Status
	Text   string
}

type ToggleErrorMsg struct {
	Err error
}

type ComposeReadyMsg struct {
	Compose app.Compose
	Path    string
}

type ComposeErrorMsg struct {
	Err error
}

type EditorFinishedMsg struct {
	Compose app.Compose
	Path    string
	Err     error
}

type PostSuccessMsg struct {
	Status *mastodon.Status
}

type PostErrorMsg struct {
	Err error
}

type PostAbortedMsg struct{}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

type PreferenceSaveErrorMsg struct {
	Err error
}

func FetchCmd(feed timeline.Feed, older bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		var (
			rows []timeline.Row
			err  error
		)
		if older {
			rows, err = feed.FetchOld(ctx)
		} else {
			rows, err = feed.FetchNew(ctx)
		}
		return FeedLoadedMsg{Feed: feed, Rows: rows, Older: older, Err: err, Duration: time.Since(start)}
	}
}

func ToggleCmd(service Service, action app.Action, status *mastodon.Status) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		updated, err := service.Toggle(ctx, action, status)
		if err != nil {
			return ToggleErrorMsg{Err: err}
		}
		return ToggleSuccessMsg{Action: action, Status: updated, Text: toggleText(action, updated)}
	}
}

func toggleText(action app.Action, s *mastodon.Status) string {
	switch action {
	case app.ActionFavourite:
		if s.Favourited {
			return "Favourited"
		}
		return "Unfavourited"
	case app.ActionReblog:
		if s.Reblogged {
			return "Boosted"
		}
		return "Unboosted"
	case app.ActionBookmark:
		if s.Bookmarked {
			return "Bookmarked"
		}
		return "Removed bookmark"
	}
	return string(action)
}

// ComposeCmd prepares the compose session and writes the editor file.
func ComposeCmd(service Service, replyTo *mastodon.Status) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := service.ComposeFor(ctx, replyTo)
		if err != nil {
			return ComposeErrorMsg{Err: err}
		}
		path, err := platform.WriteComposeFile(c.Prefill)
		if err != nil {
			return ComposeErrorMsg{Err: err}
		}
		return ComposeReadyMsg{Compose: c, Path: path}
	}
}

// EditCmd suspends the program and runs the editor on path.
func EditCmd(editor string, args []string, c app.Compose, path string) tea.Cmd {
	cmd := platform.EditorCommand(editor, args, path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return EditorFinishedMsg{Compose: c, Path: path, Err: err}
	})
}

// PostCmd reads the edited file and publishes it.
func PostCmd(service Service, c app.Compose, path string) tea.Cmd {
	return func() tea.Msg {
		text, err := platform.ReadComposeFile(path)
		if err != nil {
			return PostErrorMsg{Err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := service.Post(ctx, c, text)
		if errors.Is(err, app.ErrEmptyPost) {
			return PostAbortedMsg{}
		}
		if err != nil {
			return PostErrorMsg{Err: err}
		}
		return PostSuccessMsg{Status: status}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened URL in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}

func SavePreferencesCmd(service Service, p storage.Preferences) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := service.SavePreferences(ctx, p); err != nil {
			return PreferenceSaveErrorMsg{Err: err}
		}
		return nil
	}
}
