package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// RedirectURI makes the instance display the authorization code instead
	// of redirecting, so the user can paste it into the terminal.
	RedirectURI   = "urn:ietf:wg:oauth:2.0:oob"
	DefaultScopes = "read write follow"
	ClientName    = "fedi-cli"
	ClientWebsite = "https://github.com/glabrego/fedi-cli"
)

// RegisterApp creates an OAuth application on the instance.
func RegisterApp(ctx context.Context, httpClient *http.Client, instanceURL string) (Application, error) {
	c := NewClient(instanceURL, "", httpClient)
	form := url.Values{}
	form.Set("client_name", ClientName)
	form.Set("redirect_uris", RedirectURI)
	form.Set("scopes", DefaultScopes)
	form.Set("website", ClientWebsite)

	body, err := c.Post(ctx, "/api/v1/apps", form)
	if err != nil {
		return Application{}, &AppRegistrationError{Instance: c.baseURL, Err: err}
	}
	var app Application
	if err := json.Unmarshal(body, &app); err != nil {
		return Application{}, &AppRegistrationError{Instance: c.baseURL, Err: fmt.Errorf("decode app response: %w", err)}
	}
	if app.ClientID == "" || app.ClientSecret == "" {
		return Application{}, &AppRegistrationError{Instance: c.baseURL, Err: errors.New("response has no client credentials")}
	}
	return app, nil
}

// OAuthConfig describes the authorization-code flow against one instance.
func OAuthConfig(instanceURL, clientID, clientSecret string) *oauth2.Config {
	instanceURL = strings.TrimRight(instanceURL, "/")
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   instanceURL + "/oauth/authorize",
			TokenURL:  instanceURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: RedirectURI,
		Scopes:      strings.Fields(DefaultScopes),
	}
}

func AuthorizeURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("")
}

// ExchangeCode trades the user-supplied authorization code for an access token.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, httpClient *http.Client, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errors.New("authorization code is empty")
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	token, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("scope", DefaultScopes))
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("token response has no access token")
	}
	return token.AccessToken, nil
}

// VerifyCredentials returns the account owning the access token.
func (c *Client) VerifyCredentials(ctx context.Context) (Account, error) {
	var account Account
	err := c.getJSON(ctx, "/api/v1/accounts/verify_credentials", nil, &account)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return Account{}, &AuthError{Err: apiErr}
		}
		return Account{}, err
	}
	if account.ID == "" {
		return Account{}, &AuthError{Err: errors.New("response has no account id")}
	}
	return account, nil
}
