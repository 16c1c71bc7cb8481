//go:build unix

package rasteroid

import (
	"os"

	"golang.org/x/sys/unix"
)

// ttyPixelSize reads the text area size in pixels from TIOCGWINSZ.
// Many terminals leave the pixel fields zeroed.
func ttyPixelSize() (uint16, uint16, bool) {
	for _, f := range []*os.File{os.Stdout, os.Stdin, os.Stderr} {
		ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err != nil {
			continue
		}
		if ws.Xpixel > 0 && ws.Ypixel > 0 {
			return ws.Xpixel, ws.Ypixel, true
		}
	}
	return 0, 0, false
}
