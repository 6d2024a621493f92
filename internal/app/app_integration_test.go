package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/storage"
	"github.com/glabrego/fedi-cli/internal/timeline"
)

// Runs the service against a fake instance and a real SQLite file.
func TestIntegration_HomePagingToggleAndDraft(t *testing.T) {
	var posts atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/api/v1/timelines/home", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("max_id") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/timelines/home?max_id=2>; rel="next"`, srv.URL))
			_, _ = w.Write([]byte(`[{"id":"3","account":{"acct":"bob"},"content":"<p>three</p>"},{"id":"2","account":{"acct":"bob"},"content":"<p>two</p>"}]`))
		case "2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/timelines/home?max_id=1>; rel="next"`, srv.URL))
			_, _ = w.Write([]byte(`[{"id":"2","account":{"acct":"bob"}},{"id":"1","account":{"acct":"carol"},"content":"<p>one</p>"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	mux.HandleFunc("/api/v1/statuses/3/favourite", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"3","favourited":true}`))
	})
	mux.HandleFunc("/api/v1/statuses", func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"try later"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"99","content":"<p>ok</p>"}`))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "fedi-integration.db"))
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	client := mastodon.NewClient(srv.URL, "tok", srv.Client())
	svc := NewService(client, repo, alice)

	feed, err := svc.OpenTimeline(timeline.Home)
	if err != nil {
		t.Fatalf("OpenTimeline returned error: %v", err)
	}
	rows, err := feed.FetchNew(ctx)
	if err != nil {
		t.Fatalf("FetchNew returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected first page, got %+v", rows)
	}
	rows, err = feed.FetchOld(ctx)
	if err != nil {
		t.Fatalf("FetchOld returned error: %v", err)
	}
	if len(rows) != 3 || rows[2].ID != "1" {
		t.Fatalf("expected deduplicated second page, got %+v", rows)
	}

	updated, err := svc.Toggle(ctx, ActionFavourite, rows[0].Status)
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !updated.Favourited || rows[0].Status.Favourited {
		t.Fatalf("unexpected toggle result: updated=%v original=%v", updated.Favourited, rows[0].Status.Favourited)
	}

	c, err := svc.ComposeFor(ctx, rows[0].Status)
	if err != nil {
		t.Fatalf("ComposeFor returned error: %v", err)
	}
	if _, err := svc.Post(ctx, c, c.Mentions+"nice"); err == nil {
		t.Fatal("expected first post to fail")
	}
	again, err := svc.ComposeFor(ctx, rows[0].Status)
	if err != nil {
		t.Fatalf("ComposeFor returned error: %v", err)
	}
	if again.Prefill != "@bob nice" {
		t.Fatalf("expected draft prefill, got %q", again.Prefill)
	}
	if _, err := svc.Post(ctx, again, again.Prefill); err != nil {
		t.Fatalf("second Post returned error: %v", err)
	}
	if _, ok, _ := repo.LoadDraft(ctx, alice.Username, "3"); ok {
		t.Fatal("expected draft cleared after successful post")
	}
}
