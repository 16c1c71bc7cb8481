/*
Package csi queries the controlling terminal with CSI window reports
*/
package csi

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// QueryTimeout is how long a query waits for the terminal to answer.
const QueryTimeout = 100 * time.Millisecond

// QueryTextAreaSizeInPixels asks for the text area size in pixels (CSI 14t).
// The terminal answers CSI 4 ; height ; width t.
func QueryTextAreaSizeInPixels() (width, height int, ok bool) {
	resp, ok := query("\x1b[14t", 't')
	if !ok {
		return 0, 0, false
	}
	return ParseWindowReport(resp, 4)
}

// QueryCharacterCellSizeInPixels asks for the size of one cell in pixels
// (CSI 16t). The terminal answers CSI 6 ; height ; width t.
func QueryCharacterCellSizeInPixels() (width, height int, ok bool) {
	resp, ok := query("\x1b[16t", 't')
	if !ok {
		return 0, 0, false
	}
	return ParseWindowReport(resp, 6)
}

// QueryXTSMGRAPHICS asks for the maximum sixel geometry (xterm 344+).
func QueryXTSMGRAPHICS() (width, height int, ok bool) {
	// Pi=2 (sixel geometry), Pa=1 (read)
	resp, ok := query("\x1b[?2;1;0S", 'S')
	if !ok {
		return 0, 0, false
	}
	return ParseXTSMGRAPHICS(resp)
}

// ParseWindowReport parses "CSI code ; height ; width t" and returns width
// and height.
func ParseWindowReport(resp string, code int) (width, height int, ok bool) {
	prefix := "\x1b[" + strconv.Itoa(code) + ";"
	i := strings.Index(resp, prefix)
	if i < 0 {
		return 0, 0, false
	}
	body, _, found := strings.Cut(resp[i+len(prefix):], "t")
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(body, ";")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	w, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// ParseXTSMGRAPHICS parses "CSI ? 2 ; status ; width ; height S". Only a
// zero status is a success.
func ParseXTSMGRAPHICS(resp string) (width, height int, ok bool) {
	i := strings.Index(resp, "\x1b[?2;")
	if i < 0 {
		return 0, 0, false
	}
	body, _, found := strings.Cut(resp[i+len("\x1b[?2;"):], "S")
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(body, ";")
	if len(parts) != 3 || parts[0] != "0" {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(parts[1])
	h, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// QueryFontSize derives the cell size from the text area size and the
// window size in cells. Implausible results are rejected.
func QueryFontSize() (fontWidth, fontHeight int, ok bool) {
	pixelWidth, pixelHeight, ok := QueryTextAreaSizeInPixels()
	if !ok {
		return 0, 0, false
	}
	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 0, 0, false
	}
	fontWidth = pixelWidth / cols
	fontHeight = pixelHeight / rows
	if fontWidth < 4 || fontWidth > 50 || fontHeight < 4 || fontHeight > 50 {
		return 0, 0, false
	}
	return fontWidth, fontHeight, true
}

// QuerySupported reports whether stdin is a terminal likely to answer
// queries.
func QuerySupported() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal", "vscode":
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// query writes seq to the controlling terminal in raw mode and reads the
// reply up to and including terminator.
func query(seq string, terminator byte) (string, bool) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", false
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return "", false
	}
	defer term.Restore(int(tty.Fd()), oldState)

	if _, err := tty.WriteString(wrapTmuxPassthrough(seq)); err != nil {
		return "", false
	}

	reply := make(chan string, 1)
	go func() {
		var resp []byte
		buf := make([]byte, 64)
		for len(resp) < 256 {
			n, err := tty.Read(buf)
			if n > 0 {
				resp = append(resp, buf[:n]...)
				if strings.IndexByte(string(buf[:n]), terminator) >= 0 {
					break
				}
			}
			if err != nil {
				break
			}
		}
		reply <- string(resp)
	}()

	select {
	case resp := <-reply:
		return resp, resp != ""
	case <-time.After(QueryTimeout):
		return "", false
	}
}

func inTmux() bool {
	return os.Getenv("TMUX") != "" || os.Getenv("TERM_PROGRAM") == "tmux"
}

// wrapTmuxPassthrough wraps seq in the tmux DCS passthrough envelope.
func wrapTmuxPassthrough(seq string) string {
	if !inTmux() || !strings.HasPrefix(seq, "\x1b") {
		return seq
	}
	return "\x1bPtmux;" + strings.ReplaceAll(seq, "\x1b", "\x1b\x1b") + "\x1b\\"
}
