package timeline

import (
	"context"
	"errors"
	"sync"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

type ContextFetcher interface {
	StatusContext(ctx context.Context, id string) (mastodon.Context, error)
}

// Thread is the reply chain around one status. Every FetchNew is a full
// refetch; there is nothing older to page through.
type Thread struct {
	fetcher ContextFetcher
	focal   *mastodon.Status

	mu   sync.Mutex
	rows []Row
}

func NewThread(fetcher ContextFetcher, focal *mastodon.Status) *Thread {
	return &Thread{fetcher: fetcher, focal: focal.Original()}
}

func (t *Thread) Focal() *mastodon.Status {
	return t.focal
}

// FocalIndex is the row position of the focal status after the last fetch.
func (t *Thread) FocalIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.focal == nil {
		return 0
	}
	for i, r := range t.rows {
		if r.ID == t.focal.ID {
			return i
		}
	}
	return 0
}

func (t *Thread) FetchNew(ctx context.Context) ([]Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.focal == nil || t.focal.ID == "" {
		return nil, errors.New("thread has no focal status")
	}
	c, err := t.fetcher.StatusContext(ctx, t.focal.ID)
	if err != nil {
		return t.snapshot(), err
	}
	t.rows = ContextToRows(c, t.focal)
	return t.snapshot(), nil
}

func (t *Thread) FetchOld(context.Context) ([]Row, error) {
	return t.Rows(), nil
}

func (t *Thread) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Thread) snapshot() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}
