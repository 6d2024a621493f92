package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/storage"
	"github.com/glabrego/fedi-cli/internal/timeline"
)

type Client interface {
	timeline.Getter
	timeline.ContextFetcher
	PostStatus(ctx context.Context, p mastodon.PostParams) (*mastodon.Status, error)
	ToggleFavourite(ctx context.Context, s *mastodon.Status) error
	ToggleReblog(ctx context.Context, s *mastodon.Status) error
	ToggleBookmark(ctx context.Context, s *mastodon.Status) error
}

type Repository interface {
	LoadPreferences(ctx context.Context) (storage.Preferences, error)
	SavePreferences(ctx context.Context, p storage.Preferences) error
	SaveDraft(ctx context.Context, d storage.Draft) error
	LoadDraft(ctx context.Context, account, inReplyToID string) (storage.Draft, bool, error)
	DeleteDraft(ctx context.Context, account, inReplyToID string) error
}

// Account identifies the logged-in user. Username is "acct@domain".
type Account struct {
	ID       string
	Acct     string
	Username string
}

type Action string

const (
	ActionFavourite Action = "favourite"
	ActionReblog    Action = "reblog"
	ActionBookmark  Action = "bookmark"
)

// ErrEmptyPost means the composed text had nothing beyond the prefilled mentions.
var ErrEmptyPost = errors.New("status is empty")

// Compose describes one compose session. Mentions is the generated prefix,
// Prefill is what the editor starts with (the mentions or a saved draft).
type Compose struct {
	InReplyToID string
	Visibility  string
	Mentions    string
	Prefill     string
}

type Service struct {
	client            Client
	repo              Repository
	account           Account
	notificationTypes []string
	logger            *slog.Logger
}

type Option func(*Service)

func WithNotificationTypes(types []string) Option {
	return func(s *Service) {
		s.notificationTypes = append([]string(nil), types...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(client Client, repo Repository, account Account, opts ...Option) *Service {
	s := &Service{
		client:  client,
		repo:    repo,
		account: account,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Account() Account {
	return s.account
}

// OpenTimeline returns a fresh, unfetched feed for kind.
func (s *Service) OpenTimeline(kind timeline.Kind) (timeline.Feed, error) {
	cursor, err := timeline.Open(s.client, kind, timeline.Options{
		AccountID:         s.account.ID,
		NotificationTypes: s.notificationTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s timeline: %w", kind, err)
	}
	s.logger.Debug("timeline opened", "kind", kind)
	return cursor, nil
}

func (s *Service) OpenThread(status *mastodon.Status) timeline.Feed {
	return timeline.NewThread(s.client, status)
}

// Toggle flips one engagement flag on a copy of status and returns the copy.
// The caller's status is never touched.
func (s *Service) Toggle(ctx context.Context, action Action, status *mastodon.Status) (*mastodon.Status, error) {
	if status == nil {
		return nil, errors.New("no status selected")
	}
	updated := *status.Original()
	var err error
	switch action {
	case ActionFavourite:
		err = s.client.ToggleFavourite(ctx, &updated)
	case ActionReblog:
		err = s.client.ToggleReblog(ctx, &updated)
	case ActionBookmark:
		err = s.client.ToggleBookmark(ctx, &updated)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return nil, fmt.Errorf("%s status %s: %w", action, updated.ID, err)
	}
	s.logger.Debug("status toggled", "action", action, "id", updated.ID)
	return &updated, nil
}

// ComposeFor prepares a new status, or a reply when replyTo is not nil. A
// saved draft for the same target replaces the generated prefill.
func (s *Service) ComposeFor(ctx context.Context, replyTo *mastodon.Status) (Compose, error) {
	var c Compose
	if replyTo != nil {
		original := replyTo.Original()
		c.InReplyToID = original.ID
		c.Visibility = original.Visibility
		c.Mentions = timeline.ReplyMentions(original, s.account.Username)
	}
	c.Prefill = c.Mentions

	draft, ok, err := s.repo.LoadDraft(ctx, s.account.Username, c.InReplyToID)
	if err != nil {
		return Compose{}, fmt.Errorf("load draft: %w", err)
	}
	if ok && strings.TrimSpace(draft.Content) != "" {
		c.Prefill = draft.Content
		if draft.Visibility != "" {
			c.Visibility = draft.Visibility
		}
	}
	return c, nil
}

// Post publishes text. ErrEmptyPost is returned without a request when text
// is blank or only the generated mentions. A failed request keeps the text as
// a draft for the next compose on the same target.
func (s *Service) Post(ctx context.Context, c Compose, text string) (*mastodon.Status, error) {
	text = strings.TrimRight(text, "\n")
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == strings.TrimSpace(c.Mentions) {
		if err := s.repo.DeleteDraft(ctx, s.account.Username, c.InReplyToID); err != nil {
			s.logger.Warn("delete draft failed", "error", err)
		}
		return nil, ErrEmptyPost
	}

	status, err := s.client.PostStatus(ctx, mastodon.PostParams{
		Content:     text,
		InReplyToID: c.InReplyToID,
		Visibility:  c.Visibility,
	})
	if err != nil {
		draft := storage.Draft{
			Account:     s.account.Username,
			InReplyToID: c.InReplyToID,
			Content:     text,
			Visibility:  c.Visibility,
		}
		if saveErr := s.repo.SaveDraft(ctx, draft); saveErr != nil {
			return nil, fmt.Errorf("post status: %w (draft not saved: %v)", err, saveErr)
		}
		return nil, fmt.Errorf("post status (kept as draft): %w", err)
	}

	if err := s.repo.DeleteDraft(ctx, s.account.Username, c.InReplyToID); err != nil {
		s.logger.Warn("delete draft failed", "error", err)
	}
	s.logger.Info("status posted", "id", status.ID, "in_reply_to", c.InReplyToID)
	return status, nil
}

func (s *Service) LoadPreferences(ctx context.Context) (storage.Preferences, error) {
	p, err := s.repo.LoadPreferences(ctx)
	if err != nil {
		return storage.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

func (s *Service) SavePreferences(ctx context.Context, p storage.Preferences) error {
	if err := s.repo.SavePreferences(ctx, p); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
