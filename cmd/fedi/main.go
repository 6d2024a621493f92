package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glabrego/fedi-cli/internal/config"
)

var (
	overrides config.Overrides
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "fedi",
	Short: "Mastodon client for the terminal",
	Long: `fedi reads and posts to a Mastodon instance from the terminal.

Example usage:
  fedi login --instance mastodon.social   # authorize an account
  fedi tui                                 # open the home timeline
  fedi tui --timeline notifications        # start on notifications`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&overrides.ConfigFile, "config", "", "config file (default is $XDG_CONFIG_HOME/fedi/config.toml)")
	rootCmd.PersistentFlags().StringVar(&overrides.AuthFile, "auth-file", "", "credentials file (default is $XDG_CONFIG_HOME/fedi/auth.json)")
	rootCmd.PersistentFlags().StringVar(&overrides.DBPath, "db", "", "SQLite database for preferences and drafts")
	rootCmd.PersistentFlags().BoolVar(&overrides.Debug, "debug", false, "write debug entries to the log file")

	rootCmd.AddCommand(newLoginCmd(), newTUICmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
