package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/glabrego/fedi-cli/internal/config"
	"github.com/glabrego/fedi-cli/internal/mastodon"
	"github.com/glabrego/fedi-cli/internal/tui/platform"
)

func newLoginCmd() *cobra.Command {
	var instance string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize fedi against a Mastodon account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(overrides)
			if err != nil {
				return err
			}
			if instance == "" && !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("--instance is required when stdin is not a terminal")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			return runLogin(ctx, loginParams{
				Instance: instance,
				AuthFile: cfg.AuthFile,
				In:       cmd.InOrStdin(),
				Out:      cmd.OutOrStdout(),
				HTTP:     &http.Client{Timeout: 30 * time.Second},
				Open:     platform.OpenURLInBrowser,
			})
		},
	}
	cmd.Flags().StringVar(&instance, "instance", "", "instance domain or URL, e.g. mastodon.social")
	return cmd
}

type loginParams struct {
	Instance string
	AuthFile string
	In       io.Reader
	Out      io.Writer
	HTTP     *http.Client
	Open     func(string) error
}

// runLogin registers the app once per instance, walks the user through the
// out-of-band authorization code flow and stores the token as current user.
func runLogin(ctx context.Context, p loginParams) error {
	in := bufio.NewReader(p.In)
	info := color.New(color.FgCyan)
	ok := color.New(color.FgGreen, color.Bold)

	raw := p.Instance
	if raw == "" {
		var err error
		if raw, err = prompt(in, p.Out, "Instance: "); err != nil {
			return err
		}
	}
	domain, err := config.NormalizeInstance(raw)
	if err != nil {
		return err
	}
	instanceURL := config.InstanceURL(domain)

	creds, err := config.LoadCredentialsOrEmpty(p.AuthFile)
	if err != nil {
		return err
	}

	app, found := creds.App(domain)
	if !found {
		info.Fprintf(p.Out, "Registering application on %s...\n", domain)
		registered, err := mastodon.RegisterApp(ctx, p.HTTP, instanceURL)
		if err != nil {
			return err
		}
		app = config.AppCredentials{ClientID: registered.ClientID, ClientSecret: registered.ClientSecret}
		creds.SetApp(domain, app)
		if err := creds.Save(p.AuthFile); err != nil {
			return err
		}
	}

	oauthCfg := mastodon.OAuthConfig(instanceURL, app.ClientID, app.ClientSecret)
	authURL := mastodon.AuthorizeURL(oauthCfg)
	if p.Open == nil || p.Open(authURL) != nil {
		fmt.Fprintln(p.Out, "Open this URL in your browser to authorize fedi:")
	} else {
		fmt.Fprintln(p.Out, "Opened your browser. If nothing happened, visit:")
	}
	fmt.Fprintln(p.Out, authURL)

	code, err := prompt(in, p.Out, "Authorization code: ")
	if err != nil {
		return err
	}
	token, err := mastodon.ExchangeCode(ctx, oauthCfg, p.HTTP, code)
	if err != nil {
		return err
	}

	account, err := mastodon.NewClient(instanceURL, token, p.HTTP).VerifyCredentials(ctx)
	if err != nil {
		return err
	}
	acct := account.Username
	if acct == "" {
		acct = account.Acct
	}
	key := creds.AddUser(acct, domain, config.UserCredentials{ID: account.ID, AccessToken: token})
	if err := creds.Save(p.AuthFile); err != nil {
		return err
	}
	ok.Fprintf(p.Out, "Logged in as %s\n", key)
	return nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.TrimSuffix(strings.ToLower(label), ": "))
	}
	return line, nil
}
