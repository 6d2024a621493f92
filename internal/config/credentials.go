package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// SettingsLoadError is returned when the credentials or config file is
// missing or malformed.
type SettingsLoadError struct {
	Path string
	Err  error
}

func (e *SettingsLoadError) Error() string {
	hint := "check the config file"
	if errors.Is(e.Err, os.ErrNotExist) || errors.Is(e.Err, ErrNoSession) {
		hint = "run `fedi login` first"
	}
	if e.Path == "" {
		return fmt.Sprintf("load settings: %v (%s)", e.Err, hint)
	}
	return fmt.Sprintf("load settings from %s: %v (%s)", e.Path, e.Err, hint)
}

func (e *SettingsLoadError) Unwrap() error { return e.Err }

var ErrNoSession = errors.New("no logged-in user")

type AppCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type UserCredentials struct {
	ID          string `json:"id"`
	Instance    string `json:"instance"`
	AccessToken string `json:"access_token"`
}

// Credentials is the content of auth.json. Apps are keyed by instance domain,
// users by "acct@domain".
type Credentials struct {
	Current string                     `json:"current"`
	Apps    map[string]AppCredentials  `json:"apps"`
	Users   map[string]UserCredentials `json:"users"`
}

// Session is the logged-in user resolved from Credentials.
type Session struct {
	Username    string
	Acct        string
	AccountID   string
	Instance    string
	AccessToken string
}

func (s Session) InstanceURL() string {
	return InstanceURL(s.Instance)
}

func InstanceURL(domain string) string {
	return "https://" + domain
}

// NormalizeInstance turns "https://example.social/", "example.social" or
// "@me@example.social" into "example.social".
func NormalizeInstance(input string) (string, error) {
	s := strings.TrimSpace(input)
	if i := strings.LastIndex(s, "@"); i >= 0 && !strings.Contains(s, "://") {
		s = s[i+1:]
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid instance %q", input)
	}
	return strings.ToLower(u.Host), nil
}

// LoadCredentials reads auth.json. A missing file is a SettingsLoadError.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, &SettingsLoadError{Path: path, Err: err}
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, &SettingsLoadError{Path: path, Err: fmt.Errorf("decode credentials: %w", err)}
	}
	c.init()
	return c, nil
}

// LoadCredentialsOrEmpty is LoadCredentials but a missing file yields empty
// credentials, for the login flow.
func LoadCredentialsOrEmpty(path string) (Credentials, error) {
	c, err := LoadCredentials(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		c = Credentials{}
		c.init()
		return c, nil
	}
	return c, err
}

// Save writes the file with owner-only permissions through a temp file.
func (c Credentials) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".auth-*.json")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

func (c *Credentials) init() {
	if c.Apps == nil {
		c.Apps = map[string]AppCredentials{}
	}
	if c.Users == nil {
		c.Users = map[string]UserCredentials{}
	}
}

func (c Credentials) App(domain string) (AppCredentials, bool) {
	app, ok := c.Apps[domain]
	return app, ok && app.ClientID != "" && app.ClientSecret != ""
}

func (c *Credentials) SetApp(domain string, app AppCredentials) {
	c.init()
	c.Apps[domain] = app
}

// AddUser stores a user and makes it current.
func (c *Credentials) AddUser(acct, domain string, user UserCredentials) string {
	c.init()
	user.Instance = domain
	key := acct + "@" + domain
	c.Users[key] = user
	c.Current = key
	return key
}

func (c Credentials) Usernames() []string {
	return sortedKeys(c.Users)
}

// CurrentSession resolves the current user.
func (c Credentials) CurrentSession() (Session, error) {
	if c.Current == "" {
		return Session{}, &SettingsLoadError{Err: ErrNoSession}
	}
	user, ok := c.Users[c.Current]
	if !ok || user.AccessToken == "" || user.Instance == "" {
		return Session{}, &SettingsLoadError{Err: fmt.Errorf("%w: %s has no stored token", ErrNoSession, c.Current)}
	}
	acct := c.Current
	if i := strings.LastIndex(acct, "@"); i > 0 {
		acct = acct[:i]
	}
	return Session{
		Username:    c.Current,
		Acct:        acct,
		AccountID:   user.ID,
		Instance:    user.Instance,
		AccessToken: user.AccessToken,
	}, nil
}
