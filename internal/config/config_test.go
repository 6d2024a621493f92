package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("EDITOR", "")
	t.Setenv("FEDI_EDITOR", "")
	os.Unsetenv("FEDI_EDITOR")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_UsesDefaultsWithoutConfigFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Editor != "vim" {
		t.Fatalf("unexpected editor: %s", cfg.Editor)
	}
	if cfg.AuthFile != filepath.Join(dir, "fedi", "auth.json") {
		t.Fatalf("unexpected auth file: %s", cfg.AuthFile)
	}
	if cfg.DBPath != filepath.Join(dir, "fedi", "fedi.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if strings.Join(cfg.ShowTypes(), ",") != "favourite,mention,reblog,follow" {
		t.Fatalf("unexpected notification types: %v", cfg.ShowTypes())
	}
	if cfg.Debug {
		t.Fatal("expected debug off by default")
	}
}

func TestLoad_ReadsTOMLAndMergesSigns(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "fedi", "config.toml"), `
editor = "nvim -f"

[notifications]
show = ["mention", "follow"]

[notifications.signs]
favourite = ["*"]
mention = ["@", "#112233"]
`)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	name, args := cfg.EditorCommand()
	if name != "nvim" || len(args) != 1 || args[0] != "-f" {
		t.Fatalf("unexpected editor command: %s %v", name, args)
	}
	if strings.Join(cfg.ShowTypes(), ",") != "mention,follow" {
		t.Fatalf("unexpected notification types: %v", cfg.ShowTypes())
	}

	signs := cfg.Signs()
	if got := signs[mastodon.NotificationFavourite]; got.Glyph != "*" || got.Color != "" {
		t.Fatalf("unexpected favourite sign: %+v", got)
	}
	if got := signs[mastodon.NotificationMention]; got.Glyph != "@" || got.Color != "#112233" {
		t.Fatalf("unexpected mention sign: %+v", got)
	}
	if got := signs[mastodon.NotificationReblog]; got.Glyph != "⮂" || got.Color != "#79BD9A" {
		t.Fatalf("expected default reblog sign, got %+v", got)
	}
}

func TestLoad_SignsForDottedNotificationTypes(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
[notifications]
show = ["admin.sign_up", "mention"]

[notifications.signs]
"admin.sign_up" = ["S", "#112233"]
"admin.report" = ["!"]
`)

	cfg, err := Load(Overrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if strings.Join(cfg.ShowTypes(), ",") != "admin.sign_up,mention" {
		t.Fatalf("unexpected notification types: %v", cfg.ShowTypes())
	}
	signs := cfg.Signs()
	if got := signs[mastodon.NotificationAdminSignUp]; got != (Sign{Glyph: "S", Color: "#112233"}) {
		t.Fatalf("unexpected admin.sign_up sign: %+v", got)
	}
	if got := signs[mastodon.NotificationAdminReport]; got.Glyph != "!" {
		t.Fatalf("unexpected admin.report sign: %+v", got)
	}
}

func TestDefaultEditor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix executable lookup")
	}
	withVim := t.TempDir()
	writeFile(t, filepath.Join(withVim, "vim"), "#!/bin/sh\n")
	if err := os.Chmod(filepath.Join(withVim, "vim"), 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	withoutVim := t.TempDir()

	tests := []struct {
		name   string
		path   string
		editor string
		want   string
	}{
		{name: "vim installed wins over EDITOR", path: withVim, editor: "nano", want: "vim"},
		{name: "EDITOR when vim missing", path: withoutVim, editor: "nano", want: "nano"},
		{name: "vim when nothing else is set", path: withoutVim, editor: "", want: "vim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATH", tt.path)
			t.Setenv("EDITOR", tt.editor)
			if got := defaultEditor(); got != tt.want {
				t.Fatalf("defaultEditor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_OverridesAndEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("FEDI_EDITOR", "nano")

	cfg, err := Load(Overrides{
		AuthFile: filepath.Join(dir, "other-auth.json"),
		DBPath:   filepath.Join(dir, "other.db"),
		Debug:    true,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Editor != "nano" {
		t.Fatalf("expected env editor, got %s", cfg.Editor)
	}
	if cfg.AuthFile != filepath.Join(dir, "other-auth.json") || cfg.DBPath != filepath.Join(dir, "other.db") || !cfg.Debug {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidNotificationType(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[notifications]\nshow = [\"bogus\"]\n")

	_, err := Load(Overrides{ConfigFile: path})
	var loadErr *SettingsLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected SettingsLoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected offending type in error, got %v", err)
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(Overrides{ConfigFile: filepath.Join(dir, "missing.toml")}); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate_SignColor(t *testing.T) {
	cfg := Config{
		Editor:   "vim",
		AuthFile: "auth.json",
		DBPath:   "fedi.db",
		Notifications: NotificationsConfig{
			Signs: map[string][]string{"mention": {"@", "blue"}},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for color")
	}
	cfg.Notifications.Signs = map[string][]string{"mention": {}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty sign")
	}
}
