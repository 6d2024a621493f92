package mastodon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestRegisterApp_SendsOOBRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/apps" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("app registration must be anonymous, got %q", got)
		}
		_ = r.ParseForm()
		if r.PostForm.Get("redirect_uris") != RedirectURI || r.PostForm.Get("scopes") != DefaultScopes {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"id":"1","name":"fedi-cli","client_id":"cid","client_secret":"csecret"}`))
	}))
	defer ts.Close()

	app, err := RegisterApp(context.Background(), ts.Client(), ts.URL)
	if err != nil {
		t.Fatalf("RegisterApp returned error: %v", err)
	}
	if app.ClientID != "cid" || app.ClientSecret != "csecret" {
		t.Fatalf("unexpected app: %+v", app)
	}
}

func TestRegisterApp_FailureIsAppRegistrationError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"Validation failed: Redirect URI must be an absolute URI."}`))
	}))
	defer ts.Close()

	_, err := RegisterApp(context.Background(), ts.Client(), ts.URL)
	var regErr *AppRegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected AppRegistrationError, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "Validation failed") {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
}

func TestAuthorizeURL(t *testing.T) {
	cfg := OAuthConfig("https://example.social/", "cid", "secret")
	raw := AuthorizeURL(cfg)
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	if parsed.Host != "example.social" || parsed.Path != "/oauth/authorize" {
		t.Fatalf("unexpected authorize url: %s", raw)
	}
	q := parsed.Query()
	if q.Get("client_id") != "cid" || q.Get("response_type") != "code" || q.Get("redirect_uri") != RedirectURI || q.Get("scope") != DefaultScopes {
		t.Fatalf("unexpected authorize query: %s", parsed.RawQuery)
	}
}

func TestExchangeCode_PostsToTokenEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "abc" {
			t.Fatalf("unexpected token form: %v", r.PostForm)
		}
		if r.PostForm.Get("client_id") != "cid" || r.PostForm.Get("client_secret") != "secret" {
			t.Fatalf("expected client credentials in params: %v", r.PostForm)
		}
		if r.PostForm.Get("scope") != DefaultScopes {
			t.Fatalf("expected scope in token request: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","scope":"read write follow","created_at":1}`))
	}))
	defer ts.Close()

	cfg := OAuthConfig(ts.URL, "cid", "secret")
	token, err := ExchangeCode(context.Background(), cfg, ts.Client(), " abc\n")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	if token != "tok" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestVerifyCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer good" {
			_, _ = w.Write([]byte(`{"id":"123456","username":"test_user","acct":"test_user"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"The access token is invalid"}`))
	}))
	defer ts.Close()

	account, err := NewClient(ts.URL, "good", ts.Client()).VerifyCredentials(context.Background())
	if err != nil {
		t.Fatalf("VerifyCredentials returned error: %v", err)
	}
	if account.ID != "123456" || account.Acct != "test_user" {
		t.Fatalf("unexpected account: %+v", account)
	}

	_, err = NewClient(ts.URL, "bad", ts.Client()).VerifyCredentials(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if !strings.Contains(err.Error(), "The access token is invalid") {
		t.Fatalf("expected server message in error, got %v", err)
	}
}
