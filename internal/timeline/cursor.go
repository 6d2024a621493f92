package timeline

import (
	"context"
	"net/url"
	"sync"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

// Getter is the part of the API client a cursor needs.
type Getter interface {
	Get(ctx context.Context, endpoint string, query url.Values) (mastodon.Page, error)
	GetURL(ctx context.Context, rawURL string) (mastodon.Page, error)
}

// Feed is anything the UI can show as a refreshable, extendable list of rows.
type Feed interface {
	FetchNew(ctx context.Context) ([]Row, error)
	FetchOld(ctx context.Context) ([]Row, error)
	Rows() []Row
}

// Cursor accumulates one paginated collection. It remembers the server's next
// link between calls; the shared client does not.
type Cursor[R any] struct {
	getter   Getter
	endpoint string
	query    url.Values
	decode   func([]byte) ([]R, error)
	key      func(R) string

	mu   sync.Mutex
	rows []R
	next string
}

func NewCursor[R any](getter Getter, endpoint string, query url.Values, decode func([]byte) ([]R, error), key func(R) string) *Cursor[R] {
	return &Cursor[R]{
		getter:   getter,
		endpoint: endpoint,
		query:    query,
		decode:   decode,
		key:      key,
	}
}

// FetchNew loads the newest page and replaces the list with it. An empty page
// keeps the current list and next link.
func (c *Cursor[R]) FetchNew(ctx context.Context) ([]R, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, err := c.getter.Get(ctx, c.endpoint, c.query)
	if err != nil {
		return c.snapshot(), err
	}
	items, err := c.decode(page.Body)
	if err != nil {
		return c.snapshot(), err
	}
	if len(items) == 0 {
		return c.snapshot(), nil
	}

	c.rows = c.unique(items, nil)
	c.next = page.Next
	if c.next == page.URL {
		c.next = ""
	}
	return c.snapshot(), nil
}

// FetchOld follows the remembered next link and appends the rows not already
// present. Without a next link it does nothing.
func (c *Cursor[R]) FetchOld(ctx context.Context) ([]R, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.next == "" {
		return c.snapshot(), nil
	}
	page, err := c.getter.GetURL(ctx, c.next)
	if err != nil {
		return c.snapshot(), err
	}
	items, err := c.decode(page.Body)
	if err != nil {
		return c.snapshot(), err
	}

	seen := make(map[string]struct{}, len(c.rows))
	for _, r := range c.rows {
		seen[c.key(r)] = struct{}{}
	}
	fresh := c.unique(items, seen)
	c.rows = append(c.rows, fresh...)

	switch {
	case len(fresh) == 0, page.Next == page.URL:
		c.next = ""
	default:
		c.next = page.Next
	}
	return c.snapshot(), nil
}

func (c *Cursor[R]) Rows() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// HasMore reports whether FetchOld would issue a request.
func (c *Cursor[R]) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next != ""
}

func (c *Cursor[R]) unique(items []R, seen map[string]struct{}) []R {
	if seen == nil {
		seen = make(map[string]struct{}, len(items))
	}
	out := make([]R, 0, len(items))
	for _, item := range items {
		k := c.key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

func (c *Cursor[R]) snapshot() []R {
	out := make([]R, len(c.rows))
	copy(out, c.rows)
	return out
}
