package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

const appDirName = "fedi"

var reHexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config holds runtime settings for the CLI app.
type Config struct {
	Editor        string              `mapstructure:"editor"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	AuthFile      string              `mapstructure:"auth_file"`
	DBPath        string              `mapstructure:"db_path"`
	LogPath       string              `mapstructure:"log_path"`
	Debug         bool                `mapstructure:"debug"`
}

type NotificationsConfig struct {
	Show  []string            `mapstructure:"show"`
	Signs map[string][]string `mapstructure:"signs"`
}

// Sign is the glyph shown next to a notification row. Color is empty or a
// "#RRGGBB" value.
type Sign struct {
	Glyph string
	Color string
}

var DefaultNotificationTypes = []string{"favourite", "mention", "reblog", "follow"}

var defaultSigns = map[string]Sign{
	"favourite":          {Glyph: "★", Color: "#FFD32C"},
	"mention":            {Glyph: "@", Color: "#82C8E5"},
	"reblog":             {Glyph: "⮂", Color: "#79BD9A"},
	"follow":             {Glyph: "+"},
	"follow_request":     {Glyph: "r"},
	"moderation_warning": {Glyph: "w", Color: "#C04657"},
}

// Overrides are values from command-line flags. Empty fields keep the file,
// environment or default value.
type Overrides struct {
	ConfigFile string
	AuthFile   string
	DBPath     string
	Debug      bool
}

// Dir is the directory holding config.toml, auth.json, the database and the log.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// Load reads config.toml and FEDI_* environment variables.
func Load(o Overrides) (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	// Notification types such as admin.sign_up contain dots, so nested keys
	// use "::" to keep them intact under [notifications.signs].
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigType("toml")
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("FEDI")
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_"))
	v.AutomaticEnv()
	setDefaults(v, dir)

	if o.AuthFile != "" {
		v.Set("auth_file", o.AuthFile)
	}
	if o.DBPath != "" {
		v.Set("db_path", o.DBPath)
	}
	if o.Debug {
		v.Set("debug", true)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, &SettingsLoadError{Path: v.ConfigFileUsed(), Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, &SettingsLoadError{Path: v.ConfigFileUsed(), Err: fmt.Errorf("unmarshal config: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, &SettingsLoadError{Path: v.ConfigFileUsed(), Err: err}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("editor", defaultEditor())
	v.SetDefault("notifications::show", DefaultNotificationTypes)
	v.SetDefault("auth_file", filepath.Join(dir, "auth.json"))
	v.SetDefault("db_path", filepath.Join(dir, "fedi.db"))
	v.SetDefault("log_path", filepath.Join(dir, "fedi.log"))
	v.SetDefault("debug", false)
}

// defaultEditor is vim, or $EDITOR when vim is not installed.
func defaultEditor() string {
	if _, err := exec.LookPath("vim"); err != nil {
		if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
			return editor
		}
	}
	return "vim"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Editor) == "" {
		return errors.New("editor is required")
	}
	if c.AuthFile == "" {
		return errors.New("auth_file is required")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	for _, t := range c.Notifications.Show {
		if !mastodon.NotificationType(t).Known() {
			return fmt.Errorf("notifications.show: unknown notification type %q", t)
		}
	}
	for _, name := range sortedKeys(c.Notifications.Signs) {
		raw := c.Notifications.Signs[name]
		if len(raw) == 0 || len(raw) > 2 {
			return fmt.Errorf("notifications.signs.%s must be [glyph] or [glyph, color]", name)
		}
		if len(raw) == 2 && !reHexColor.MatchString(raw[1]) {
			return fmt.Errorf("notifications.signs.%s: color must be #RRGGBB: %s", name, raw[1])
		}
	}
	return nil
}

// ShowTypes is the notification allow-list sent to the server.
func (c Config) ShowTypes() []string {
	if len(c.Notifications.Show) == 0 {
		return append([]string(nil), DefaultNotificationTypes...)
	}
	return append([]string(nil), c.Notifications.Show...)
}

// Signs merges configured signs over the defaults.
func (c Config) Signs() map[mastodon.NotificationType]Sign {
	out := make(map[mastodon.NotificationType]Sign, len(defaultSigns)+len(c.Notifications.Signs))
	for name, sign := range defaultSigns {
		out[mastodon.NotificationType(name)] = sign
	}
	for name, raw := range c.Notifications.Signs {
		if len(raw) == 0 {
			continue
		}
		sign := Sign{Glyph: raw[0]}
		if len(raw) > 1 {
			sign.Color = raw[1]
		}
		out[mastodon.NotificationType(name)] = sign
	}
	return out
}

// EditorCommand splits the editor setting into a program and its arguments.
func (c Config) EditorCommand() (string, []string) {
	fields := strings.Fields(c.Editor)
	if len(fields) == 0 {
		return "vim", nil
	}
	return fields[0], fields[1:]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
