package rasteroid

import (
	"io"
	"strconv"

	"github.com/charmbracelet/x/ansi"
)

// Kitty graphics control keys are single letters whose meaning depends on
// the action, so each action gets its own command type.
type kittyCommand interface {
	options() []string
}

// kittyFormat is the f= key.
type kittyFormat int

const (
	kittyRGB kittyFormat = 24
	kittyPNG kittyFormat = 100
)

// kittyTransmit is a=T: transmit and display.
type kittyTransmit struct {
	Format     kittyFormat
	Compressed bool
	Shared     bool
	ID         uint32
	Width      uint32
	Height     uint32
	// Virtual creates a unicode placeholder placement of Cols x Rows cells.
	Virtual bool
	Cols    uint32
	Rows    uint32
}

func (t kittyTransmit) options() []string {
	opts := []string{"a=T", "f=" + strconv.Itoa(int(t.Format))}
	if t.Compressed {
		opts = append(opts, "o=z")
	}
	if t.Shared {
		opts = append(opts, "t=s")
	}
	opts = append(opts, "i="+u32(t.ID))
	if t.Width > 0 && t.Height > 0 {
		opts = append(opts, "s="+u32(t.Width), "v="+u32(t.Height))
	}
	if t.Virtual {
		opts = append(opts, "U=1", "c="+u32(t.Cols), "r="+u32(t.Rows))
	}
	return opts
}

// kittyFrame is a=f: add an animation frame to image ID.
type kittyFrame struct {
	Format     kittyFormat
	Compressed bool
	Shared     bool
	ID         uint32
	// Number is the frame number, increasing by one per frame.
	Number uint32
	Width  uint32
	Height uint32
	// Delay is the time in milliseconds since the previous frame.
	Delay uint32
}

func (f kittyFrame) options() []string {
	opts := []string{"a=f", "f=" + strconv.Itoa(int(f.Format))}
	if f.Compressed {
		opts = append(opts, "o=z")
	}
	if f.Shared {
		opts = append(opts, "t=s")
	}
	return append(opts,
		"i="+u32(f.ID),
		"c="+u32(f.Number),
		"s="+u32(f.Width),
		"v="+u32(f.Height),
		"z="+u32(f.Delay),
	)
}

// Animation states for a=a.
const (
	kittyAnimLoop = 2
	kittyAnimStop = 3
)

// kittyAnimate is a=a: control playback of image ID.
type kittyAnimate struct {
	ID    uint32
	State int
	Loops uint32
	Frame uint32
	Gap   uint32
}

func (a kittyAnimate) options() []string {
	return []string{
		"a=a",
		"s=" + strconv.Itoa(a.State),
		"v=" + u32(a.Loops),
		"r=" + u32(a.Frame),
		"i=" + u32(a.ID),
		"z=" + u32(a.Gap),
	}
}

// kittyDelete is a=d. A zero ID deletes every visible placement.
type kittyDelete struct {
	ID uint32
}

func (d kittyDelete) options() []string {
	if d.ID == 0 {
		return []string{"a=d", "d=a"}
	}
	return []string{"a=d", "d=i", "i=" + u32(d.ID)}
}

// writeKittyChunked sends payload in chunks of at most MaxChunkSize base64
// characters. Only the first chunk carries the command keys; every chunk
// carries q=2 and m=1 until the last, which carries m=0.
func writeKittyChunked(w io.Writer, wi *Wininfo, cmd kittyCommand, payload string) error {
	chunks := SplitChunks(payload, MaxChunkSize)
	for i, chunk := range chunks {
		var keys []string
		if i == 0 {
			keys = cmd.options()
		}
		more := "m=0"
		if i < len(chunks)-1 {
			more = "m=1"
		}
		keys = append(keys, "q=2", more)
		if err := writeSeq(w, wi, ansi.KittyGraphics([]byte(chunk), keys...)); err != nil {
			return err
		}
	}
	return nil
}

// writeKittyControl sends a payload-less command.
func writeKittyControl(w io.Writer, wi *Wininfo, cmd kittyCommand) error {
	return writeSeq(w, wi, ansi.KittyGraphics(nil, append(cmd.options(), "q=2")...))
}

func u32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
