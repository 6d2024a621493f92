package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glabrego/fedi-cli/internal/config"
	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/tui/view"
)

func TestRunLogin_RegistersAppAndStoresUser(t *testing.T) {
	var registrations atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/apps", func(w http.ResponseWriter, r *http.Request) {
		registrations.Add(1)
		if err := r.ParseForm(); err != nil || r.PostForm.Get("redirect_uris") != mastodon.RedirectURI {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","client_id":"cid","client_secret":"csecret"}`))
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "the-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/api/v1/accounts/verify_credentials", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"109","username":"alice","acct":"alice"}`))
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	authFile := filepath.Join(t.TempDir(), "auth.json")
	var opened string
	login := func() string {
		var out bytes.Buffer
		err := runLogin(context.Background(), loginParams{
			Instance: srv.URL,
			AuthFile: authFile,
			In:       strings.NewReader("the-code\n"),
			Out:      &out,
			HTTP:     srv.Client(),
			Open:     func(u string) error { opened = u; return nil },
		})
		if err != nil {
			t.Fatalf("runLogin returned error: %v\n%s", err, out.String())
		}
		return out.String()
	}

	out := login()
	domain := strings.TrimPrefix(srv.URL, "https://")
	if !strings.Contains(out, "Logged in as alice@"+domain) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(opened, "/oauth/authorize") || !strings.Contains(opened, "client_id=cid") {
		t.Fatalf("unexpected authorize URL %q", opened)
	}

	creds, err := config.LoadCredentials(authFile)
	if err != nil {
		t.Fatalf("LoadCredentials returned error: %v", err)
	}
	session, err := creds.CurrentSession()
	if err != nil {
		t.Fatalf("CurrentSession returned error: %v", err)
	}
	if session.AccessToken != "tok" || session.AccountID != "109" || session.Instance != domain {
		t.Fatalf("unexpected session %+v", session)
	}

	login()
	if got := registrations.Load(); got != 1 {
		t.Fatalf("expected app registered once per instance, got %d", got)
	}
}

func TestRunLogin_RejectsBadInstance(t *testing.T) {
	err := runLogin(context.Background(), loginParams{
		Instance: "https://",
		AuthFile: filepath.Join(t.TempDir(), "auth.json"),
		In:       strings.NewReader(""),
		Out:      &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for invalid instance")
	}
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "line", input: "  mastodon.social \n", want: "mastodon.social"},
		{name: "no trailing newline", input: "abc", want: "abc"},
		{name: "empty", input: "\n", wantErr: true},
		{name: "eof", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := prompt(bufio.NewReader(strings.NewReader(tt.input)), &out, "Instance: ")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("prompt() = %q, %v; want %q", got, err, tt.want)
			}
			if out.String() != "Instance: " {
				t.Fatalf("unexpected prompt output %q", out.String())
			}
		})
	}
}

func TestViewSigns(t *testing.T) {
	got := viewSigns(map[mastodon.NotificationType]config.Sign{
		mastodon.NotificationFavourite: {Glyph: "★", Color: "#FFD32C"},
	})
	want := view.Sign{Glyph: "★", Color: "#FFD32C"}
	if got[mastodon.NotificationFavourite] != want {
		t.Fatalf("unexpected signs %+v", got)
	}
}
