package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

const (
	mediaPreviewRows  = 18
	maxMediaDownload  = 5 * 1024 * 1024
	minPreviewColumns = 30
)

// PreviewAvailable reports whether chafa can be used to draw images.
func PreviewAvailable() bool {
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewImageURL picks the first image attachment of a status, preferring
// the small preview rendition.
func PreviewImageURL(s *mastodon.Status) string {
	s = s.Original()
	if s == nil {
		return ""
	}
	for _, m := range s.MediaAttachments {
		if m.Type != "image" && m.Type != "gifv" {
			continue
		}
		for _, u := range []string{m.PreviewURL, m.URL, m.RemoteURL} {
			if u != "" {
				return u
			}
		}
	}
	return ""
}

// RenderMediaPreview downloads imageURL and converts it to terminal output
// via chafa, using kitty graphics where the terminal supports them.
func RenderMediaPreview(ctx context.Context, httpClient *http.Client, imageURL string, width int) (string, error) {
	chafaPath, err := exec.LookPath("chafa")
	if err != nil {
		return "", errors.New("chafa is not installed")
	}
	img, err := fetchImage(ctx, httpClient, imageURL)
	if err != nil {
		return "", err
	}
	if width < minPreviewColumns {
		width = 40
	}

	kitty := SupportsKittyGraphics()
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, chafaPath, chafaArgs(width, kitty)...)
	cmd.Stdin = bytes.NewReader(img)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("chafa: %w: %s", err, strings.TrimSpace(out.String()))
	}

	rendered := out.String()
	if kitty && ContainsKittyGraphicsEscape(rendered) {
		// Kitty placements depend on the trailing escape bytes; only drop newlines.
		return strings.TrimRight(rendered, "\r\n"), nil
	}
	if rendered = strings.TrimSpace(rendered); rendered == "" {
		return "", errors.New("chafa produced no output")
	}
	return rendered, nil
}

// fetchImage downloads at most maxMediaDownload bytes of an attachment.
func fetchImage(ctx context.Context, httpClient *http.Client, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("media request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("media download: %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("media download: unexpected content type %s", ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaDownload))
	if err != nil {
		return nil, fmt.Errorf("media download: %w", err)
	}
	return data, nil
}

func chafaArgs(width int, kitty bool) []string {
	size := fmt.Sprintf("%dx%d", width, mediaPreviewRows)
	args := []string{"--size", size, "--view-size", size, "--align", "top,center"}
	if kitty {
		args = append(args, "--format", "kitty", "--passthrough", KittyPassthroughMode(), "--relative", "on")
	} else {
		args = append(args, "--format", "symbols")
	}
	return append(args, "-")
}

// kittyTerminals are substrings of TERM or TERM_PROGRAM for terminals that
// speak the kitty graphics protocol.
var kittyTerminals = []string{"kitty", "ghostty"}

func SupportsKittyGraphics() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	for _, env := range []string{"TERM_PROGRAM", "TERM"} {
		v := strings.ToLower(os.Getenv(env))
		for _, name := range kittyTerminals {
			if strings.Contains(v, name) {
				return true
			}
		}
	}
	return false
}

func ContainsKittyGraphicsEscape(s string) bool {
	return strings.Contains(s, "\x1b_G")
}

func inTmux() bool {
	return os.Getenv("TMUX") != ""
}

// ClearKittyGraphicsSequence deletes every placed kitty image. Inside tmux the
// command is wrapped in a DCS passthrough with ESC doubled.
func ClearKittyGraphicsSequence() string {
	const deleteAll = "\x1b_Ga=d,d=A\x1b\\"
	if !inTmux() {
		return deleteAll
	}
	return "\x1bPtmux;" + strings.ReplaceAll(deleteAll, "\x1b", "\x1b\x1b") + "\x1b\\"
}

func KittyPassthroughMode() string {
	if inTmux() {
		return "screen"
	}
	return "none"
}
