package rasteroid

import (
	"io"
	"strconv"
)

// ItermEncodeImage writes data as a single iTerm2 inline image
// (OSC 1337 File=inline=1). The protocol has no chunking or video support;
// animations are sent as animated GIF bytes. Inside tmux the sequence is
// passthrough-wrapped.
func ItermEncodeImage(w io.Writer, data []byte, wi *Wininfo, p Placement) error {
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	encoded := Base64Encode(data)
	if _, err := io.WriteString(w, p.prefix()); err != nil {
		return err
	}
	return writeSeq(w, wi, "\x1b]1337;File=inline=1;size="+strconv.Itoa(len(encoded))+":"+encoded+"\x07")
}
