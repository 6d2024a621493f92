package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// PostParams describes a new status. InReplyToID and Visibility are optional.
type PostParams struct {
	Content     string
	InReplyToID string
	Visibility  string
}

func (c *Client) PostStatus(ctx context.Context, p PostParams) (*Status, error) {
	if strings.TrimSpace(p.Content) == "" {
		return nil, errors.New("status content is empty")
	}
	form := url.Values{}
	form.Set("status", p.Content)
	if p.InReplyToID != "" {
		form.Set("in_reply_to_id", p.InReplyToID)
	}
	if p.Visibility != "" {
		form.Set("visibility", p.Visibility)
	}

	header := http.Header{}
	header.Set("Idempotency-Key", c.newKey())
	body, err := c.post(ctx, "/api/v1/statuses", form, header)
	if err != nil {
		return nil, err
	}
	return decodeStatus(body, "/api/v1/statuses")
}

// StatusContext fetches the ancestors and descendants of a status.
func (c *Client) StatusContext(ctx context.Context, id string) (Context, error) {
	var out Context
	if err := c.getJSON(ctx, "/api/v1/statuses/"+url.PathEscape(id)+"/context", nil, &out); err != nil {
		return Context{}, err
	}
	return out, nil
}

func (c *Client) Favourite(ctx context.Context, id string) (*Status, error) {
	return c.statusAction(ctx, id, "favourite")
}

func (c *Client) Unfavourite(ctx context.Context, id string) (*Status, error) {
	return c.statusAction(ctx, id, "unfavourite")
}

func (c *Client) Reblog(ctx context.Context, id string) (*Status, error) {
	return c.statusAction(ctx, id, "reblog")
}

func (c *Client) Unreblog(ctx context.Context, id string) (*Status, error) {
	return c.statusAction(ctx, id, "unreblog")
}

func (c *Client) Bookmark(ctx context.Context, id string) (*Status, error) {
	return c.statusAction(ctx, id, "bookmark")
}

func (c *Client) Unbookmark(ctx context.Context, id string) (*Status, error) {
	return c.statusAction(ctx, id, "unbookmark")
}

// ToggleFavourite calls favourite or unfavourite depending on the current flag
// and flips it on success. A concurrent change by another client is not detected.
func (c *Client) ToggleFavourite(ctx context.Context, s *Status) error {
	return c.toggle(ctx, s, "favourite", &s.Favourited)
}

func (c *Client) ToggleReblog(ctx context.Context, s *Status) error {
	return c.toggle(ctx, s, "reblog", &s.Reblogged)
}

func (c *Client) ToggleBookmark(ctx context.Context, s *Status) error {
	return c.toggle(ctx, s, "bookmark", &s.Bookmarked)
}

func (c *Client) toggle(ctx context.Context, s *Status, action string, flag *bool) error {
	if s == nil || s.ID == "" {
		return errors.New("no status selected")
	}
	if *flag {
		action = "un" + action
	}
	if _, err := c.statusAction(ctx, s.ID, action); err != nil {
		return err
	}
	*flag = !*flag
	return nil
}

func (c *Client) statusAction(ctx context.Context, id, action string) (*Status, error) {
	endpoint := "/api/v1/statuses/" + url.PathEscape(id) + "/" + action
	body, err := c.post(ctx, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeStatus(body, endpoint)
}

func decodeStatus(body []byte, endpoint string) (*Status, error) {
	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return &status, nil
}

func newIdempotencyKey() string {
	return uuid.NewString()
}
