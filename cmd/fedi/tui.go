package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glabrego/fedi-cli/internal/app"
	"github.com/glabrego/fedi-cli/internal/config"
	"github.com/glabrego/fedi-cli/internal/logging"
	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/storage"
	"github.com/glabrego/fedi-cli/internal/timeline"
	"github.com/glabrego/fedi-cli/internal/tui"
	"github.com/glabrego/fedi-cli/internal/tui/view"
)

func newTUICmd() *cobra.Command {
	var startTimeline string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen timeline browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := timeline.ParseKind(startTimeline)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), kind)
		},
	}
	cmd.Flags().StringVar(&startTimeline, "timeline", string(timeline.Home), "starting timeline: home, local, global, notifications, personal, bookmarks")
	return cmd
}

func runTUI(ctx context.Context, kind timeline.Kind) error {
	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(cfg.AuthFile)
	if err != nil {
		return err
	}
	session, err := creds.CurrentSession()
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer repo.Close()

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := repo.Init(initCtx); err != nil {
		return fmt.Errorf("storage schema: %w", err)
	}

	client := mastodon.NewClient(session.InstanceURL(), session.AccessToken, nil, mastodon.WithLogger(logger))
	service := app.NewService(client, repo, app.Account{
		ID:       session.AccountID,
		Acct:     session.Acct,
		Username: session.Username,
	}, app.WithNotificationTypes(cfg.ShowTypes()), app.WithLogger(logger))

	prefs, err := service.LoadPreferences(initCtx)
	if err != nil {
		color.New(color.FgYellow).Fprintf(os.Stderr, "warning: could not load preferences (%v), using defaults\n", err)
		prefs = storage.DefaultPreferences
	}

	editor, editorArgs := cfg.EditorCommand()
	logger.Info("starting tui", "account", session.Username, "timeline", kind)
	return tui.Run(service, tui.Options{
		Account:     session.Username,
		Timeline:    kind,
		Editor:      editor,
		EditorArgs:  editorArgs,
		Signs:       viewSigns(cfg.Signs()),
		Preferences: prefs,
	})
}

func viewSigns(signs map[mastodon.NotificationType]config.Sign) map[mastodon.NotificationType]view.Sign {
	out := make(map[mastodon.NotificationType]view.Sign, len(signs))
	for t, s := range signs {
		out[t] = view.Sign{Glyph: s.Glyph, Color: s.Color}
	}
	return out
}
