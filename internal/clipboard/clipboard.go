// Package clipboard copies resolved snippet text to the system clipboard,
// falling back to platform commands when the native bindings fail.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	apperrors "github.com/snipline/snipline/internal/errors"
)

// Clipboard is the system clipboard. The zero value is ready to use.
type Clipboard struct{}

// New returns a Clipboard.
func New() Clipboard {
	return Clipboard{}
}

// Copy writes text to the system clipboard.
func (Clipboard) Copy(text string) error {
	return Copy(text)
}

// Copy writes text to the system clipboard, trying the native bindings
// first and then each platform command in turn.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}

	var lastErr error
	for _, args := range fallbackCommands() {
		if err := copyWithCommand(args, text); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return apperrors.ClipboardUnavailableError(lastErr).WithDetails(installHint())
}

// fallbackCommands lists the copy commands to try for this platform, in
// preference order.
func fallbackCommands() [][]string {
	switch runtime.GOOS {
	case "darwin":
		return [][]string{{"pbcopy"}}
	case "windows":
		return [][]string{{"clip"}}
	default:
		return [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}
}

func copyWithCommand(args []string, text string) error {
	if _, err := exec.LookPath(args[0]); err != nil {
		return err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

// installHint names the packages that provide a clipboard on this platform.
func installHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "pbcopy ships with macOS; check your PATH"
	case "windows":
		return "clip.exe ships with Windows; check your PATH"
	default:
		return "install xclip, xsel or wl-clipboard (Wayland)"
	}
}
