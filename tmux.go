package rasteroid

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

var (
	tmuxPassthroughOnce sync.Once
	tmuxPassthroughErr  error
)

// EnableTmuxPassthrough turns on allow-passthrough for the current tmux pane.
// Without it tmux drops the wrapped graphics sequences. Only the first call
// runs tmux; later calls return the same result.
func EnableTmuxPassthrough() error {
	tmuxPassthroughOnce.Do(func() {
		// -p sets the option for the current pane only
		cmd := exec.Command("tmux", "set", "-p", "allow-passthrough", "on")
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Run(); err != nil {
			tmuxPassthroughErr = fmt.Errorf("failed to enable tmux passthrough: %w", err)
		}
	})
	return tmuxPassthroughErr
}

// wrapTmux wraps an escape sequence in the tmux DCS passthrough envelope.
// Every ESC inside the sequence is doubled.
func wrapTmux(seq string, tmux bool) string {
	if !tmux || !strings.HasPrefix(seq, "\x1b") {
		return seq
	}
	return "\x1bPtmux;" + strings.ReplaceAll(seq, "\x1b", "\x1b\x1b") + "\x1b\\"
}

// writeSeq writes one escape sequence, wrapped for tmux when needed.
func writeSeq(w io.Writer, wi *Wininfo, seq string) error {
	_, err := io.WriteString(w, wrapTmux(seq, wi.IsTmux))
	return err
}
