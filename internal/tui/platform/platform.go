package platform

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
)

// ValidateURL accepts absolute http(s) URLs only and returns the trimmed form.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("status has no URL")
	}
	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return "", fmt.Errorf("malformed URL %q", raw)
	case u.Scheme != "http" && u.Scheme != "https":
		return "", fmt.Errorf("refusing to open %s URL", cmp.Or(u.Scheme, "relative"))
	case u.Host == "":
		return "", fmt.Errorf("URL %q has no host", raw)
	}
	return raw, nil
}

func OpenURLInBrowser(target string) error {
	argv := browserArgv(runtime.GOOS, target)
	return exec.Command(argv[0], argv[1:]...).Run()
}

func browserArgv(goos, target string) []string {
	switch goos {
	case "darwin":
		return []string{"open", target}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		return []string{"xdg-open", target}
	}
}

var clipboardCommands = [][]string{
	{"pbcopy"},
	{"xclip", "-selection", "clipboard"},
	{"wl-copy"},
}

func CopyURLToClipboard(target string) error {
	argv, ok := clipboardArgv(exec.LookPath)
	if !ok {
		return errors.New("no clipboard tool found (tried pbcopy, xclip, wl-copy)")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(target)
	return cmd.Run()
}

// clipboardArgv picks the first installed clipboard tool.
func clipboardArgv(lookPath func(string) (string, error)) ([]string, bool) {
	i := slices.IndexFunc(clipboardCommands, func(argv []string) bool {
		_, err := lookPath(argv[0])
		return err == nil
	})
	if i < 0 {
		return nil, false
	}
	return clipboardCommands[i], true
}

// WriteComposeFile stores prefill in a fresh temp file for the editor.
func WriteComposeFile(prefill string) (string, error) {
	f, err := os.CreateTemp("", "fedi-compose-*.md")
	if err != nil {
		return "", fmt.Errorf("create compose file: %w", err)
	}
	if _, err := f.WriteString(prefill); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write compose file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close compose file: %w", err)
	}
	return f.Name(), nil
}

// ReadComposeFile returns the edited text and removes the file.
func ReadComposeFile(path string) (string, error) {
	defer os.Remove(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read compose file: %w", err)
	}
	return string(data), nil
}

// EditorCommand builds the editor invocation for path. The process inherits
// the terminal.
func EditorCommand(name string, args []string, path string) *exec.Cmd {
	full := append(append([]string(nil), args...), path)
	return exec.Command(name, full...)
}
