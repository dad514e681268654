// Package clipboard copies text (IP lists, mostly) from the TUI.
package clipboard

import (
	"encoding/base64"
	"os/exec"
	"strings"
	"sync"

	tea "charm.land/bubbletea/v2"
	atclip "github.com/atotto/clipboard"
	cblog "github.com/charmbracelet/log"
)

var (
	// customCopyCmd is the configured clipboard copy command (set from config)
	customCopyCmd string
	customCopyMu  sync.RWMutex

	// writeNative is swapped out in tests.
	writeNative = atclip.WriteAll
)

// Copy methods reported in CopyMsg.
const (
	MethodCommand = "command"
	MethodNative  = "native"
	MethodOSC52   = "osc52"
)

// SetCopyCommand configures a custom clipboard copy command.
// The command receives text via stdin, e.g. "wl-copy" or "xclip -selection clipboard".
// An empty string restores auto-detection.
func SetCopyCommand(cmd string) {
	customCopyMu.Lock()
	defer customCopyMu.Unlock()
	customCopyCmd = strings.TrimSpace(cmd)
}

// GetCopyCommand returns the custom copy command, or "" when auto-detecting.
func GetCopyCommand() string {
	customCopyMu.RLock()
	defer customCopyMu.RUnlock()
	return customCopyCmd
}

// CopyMsg is sent after a clipboard copy operation completes.
type CopyMsg struct {
	Success bool
	Text    string
	// Lines is the number of copied lines, e.g. IP addresses.
	Lines int
	// Method is how the copy was performed. For MethodOSC52 Success is
	// optimistic: the terminal never acknowledges the sequence.
	Method string
}

// CopyLinesCmd copies one item per line.
func CopyLinesCmd(items []string) tea.Cmd {
	return CopyCmd(strings.Join(items, "\n"))
}

// CopyCmd returns a tea.Cmd that copies text. It tries the configured
// command, then the system clipboard, then falls back to OSC 52.
func CopyCmd(text string) tea.Cmd {
	if text == "" {
		return func() tea.Msg {
			return CopyMsg{Success: false}
		}
	}
	lines := strings.Count(text, "\n") + 1
	log := cblog.With("component", "clipboard")

	if method, err := copyNative(text); err == nil {
		log.Info("copied to clipboard", "method", method, "lines", lines)
		return func() tea.Msg {
			return CopyMsg{Success: true, Text: text, Lines: lines, Method: method}
		}
	} else {
		log.Info("native clipboard failed, trying OSC 52", "err", err)
	}

	return tea.Batch(
		tea.Printf("%s", osc52Sequence(text)),
		func() tea.Msg {
			return CopyMsg{Success: true, Text: text, Lines: lines, Method: MethodOSC52}
		},
	)
}

// osc52Sequence is ESC ] 52 ; c ; <base64> BEL.
func osc52Sequence(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\x07"
}

func copyNative(text string) (string, error) {
	if customCmd := GetCopyCommand(); customCmd != "" {
		parts := strings.Fields(customCmd)
		cmd := exec.Command(parts[0], parts[1:]...)
		cmd.Stdin = strings.NewReader(text)
		return MethodCommand, cmd.Run()
	}
	if atclip.Unsupported {
		return MethodNative, exec.ErrNotFound
	}
	return MethodNative, writeNative(text)
}
