package rasteroid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"iter"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi/kitty"
	"github.com/klauspost/compress/zlib"
)

var (
	// ErrEmptyPayload is returned before anything is written when there is no
	// data to transmit.
	ErrEmptyPayload = errors.New("payload is empty")
	// ErrSharedMemoryUnsupported is returned for shared memory transmission on
	// platforms without POSIX shared memory objects.
	ErrSharedMemoryUnsupported = errors.New("shared memory transmission is not supported on this platform")
	// ErrPlaceholderTooLarge is returned when an inline image needs more rows
	// or columns than the placeholder diacritics can address.
	ErrPlaceholderTooLarge = errors.New("image too large for unicode placeholders")
)

// MaxPlaceholderCells bounds the rows and columns of a placeholder grid.
const MaxPlaceholderCells = 256

// kittyRootGap is the gap in milliseconds given to the root frame of a video.
const kittyRootGap = 100

// TransferredSegment names a shared memory object whose ownership has passed
// to the terminal. The terminal unlinks it after reading; the sender must not
// free or reuse it. If the terminal never reads it, it lives until the OS
// reclaims it.
type TransferredSegment struct {
	Name string
	Size int
}

// KittyOptions configures KittyEncodeImage.
type KittyOptions struct {
	Placement
	// ID is the image id; zero picks a random one.
	ID uint32
	// SharedMemory transmits through a shared memory object instead of
	// in-band base64. See TransferredSegment.
	SharedMemory bool
}

// KittyResult describes what was sent to the terminal.
type KittyResult struct {
	ID uint32
	// Cols and Rows are the placeholder grid size for inline placements.
	Cols     uint32
	Rows     uint32
	Segments []*TransferredSegment
}

// KittyEncodeImage writes a PNG with the Kitty graphics protocol. When the
// terminal needs inline placement the image is transmitted as a virtual
// placement and a grid of unicode placeholders is printed in its place.
func KittyEncodeImage(w io.Writer, data []byte, wi *Wininfo, opts KittyOptions) (*KittyResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	res := &KittyResult{ID: opts.ID}
	if res.ID == 0 {
		res.ID = newImageID()
	}

	cmd := kittyTransmit{Format: kittyPNG, ID: res.ID}
	if wi.NeedsInline {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image size: %w", err)
		}
		cols, rows, err := wi.placeholderCells(uint32(cfg.Width), uint32(cfg.Height))
		if err != nil {
			return nil, err
		}
		cmd.Virtual, cmd.Cols, cmd.Rows = true, cols, rows
		res.Cols, res.Rows = cols, rows
	}

	payload, seg, err := kittyPayload(data, opts.SharedMemory, false)
	if err != nil {
		return nil, err
	}
	if seg != nil {
		cmd.Shared = true
		res.Segments = append(res.Segments, seg)
	}

	if !cmd.Virtual {
		if _, err := io.WriteString(w, opts.prefix()); err != nil {
			return res, err
		}
	}
	if err := writeKittyChunked(w, wi, cmd, payload); err != nil {
		return res, err
	}
	if cmd.Virtual {
		if err := writePlaceholders(w, res.ID, res.Cols, res.Rows, opts.Placement); err != nil {
			return res, err
		}
	}
	return res, nil
}

// KittyVideoOptions configures KittyEncodeFrames.
type KittyVideoOptions struct {
	Placement
	ID uint32
	// Center horizontally centers the video when no offset is given.
	Center       bool
	SharedMemory bool
}

// KittyEncodeFrames streams frames as a Kitty animation: the first frame is
// transmitted as the root image, each following frame is added with its delay
// since the previous one, and playback is stopped when the source is
// exhausted or ctx is done. ctx is checked once per frame; cancellation ends
// playback early and is not an error.
func KittyEncodeFrames(ctx context.Context, w io.Writer, frames iter.Seq[Frame], wi *Wininfo, opts KittyVideoOptions) (*KittyResult, error) {
	next, stop := iter.Pull(frames)
	defer stop()

	first, ok := next()
	if !ok {
		return nil, ErrNoFrames
	}
	if err := first.Validate(); err != nil {
		return nil, err
	}

	res := &KittyResult{ID: opts.ID}
	if res.ID == 0 {
		res.ID = newImageID()
	}
	if opts.Center && opts.Offset == nil {
		opts.Offset = Offset(wi.CenterImage(uint32(first.Width), false))
	}

	root := kittyTransmit{
		Format: kittyRGB,
		ID:     res.ID,
		Width:  uint32(first.Width),
		Height: uint32(first.Height),
	}
	if wi.NeedsInline {
		cols, rows, err := wi.placeholderCells(root.Width, root.Height)
		if err != nil {
			return nil, err
		}
		root.Virtual, root.Cols, root.Rows = true, cols, rows
		res.Cols, res.Rows = cols, rows
	}

	payload, seg, err := kittyPayload(first.Data, opts.SharedMemory, true)
	if err != nil {
		return nil, err
	}
	root.Shared, root.Compressed = seg != nil, seg == nil
	if seg != nil {
		res.Segments = append(res.Segments, seg)
	}

	if !root.Virtual {
		if _, err := io.WriteString(w, opts.prefix()); err != nil {
			return res, err
		}
	}
	if err := writeKittyChunked(w, wi, root, payload); err != nil {
		return res, err
	}

	anim := kittyAnimate{ID: res.ID, State: kittyAnimLoop, Loops: 1, Frame: 1, Gap: kittyRootGap}
	if err := writeKittyControl(w, wi, anim); err != nil {
		return res, err
	}

	prev := first.Timestamp
	for n := uint32(1); ctx.Err() == nil; n++ {
		frame, ok := next()
		if !ok {
			break
		}
		if err := frame.Validate(); err != nil {
			return res, fmt.Errorf("frame %d: %w", n, err)
		}
		delay := max(float64(frame.Timestamp-prev)*1000, 0)
		prev = frame.Timestamp

		payload, seg, err := kittyPayload(frame.Data, opts.SharedMemory, true)
		if err != nil {
			return res, err
		}
		if seg != nil {
			res.Segments = append(res.Segments, seg)
		}
		cmd := kittyFrame{
			Format:     kittyRGB,
			Compressed: seg == nil,
			Shared:     seg != nil,
			ID:         res.ID,
			Number:     n,
			Width:      uint32(frame.Width),
			Height:     uint32(frame.Height),
			Delay:      uint32(min(delay, math.MaxUint32)),
		}
		if err := writeKittyChunked(w, wi, cmd, payload); err != nil {
			return res, err
		}
	}

	if root.Virtual {
		if err := writePlaceholders(w, res.ID, res.Cols, res.Rows, opts.Placement); err != nil {
			return res, err
		}
	}
	anim.State = kittyAnimStop
	if err := writeKittyControl(w, wi, anim); err != nil {
		return res, err
	}
	return res, nil
}

// KittyDelete removes the placements of image id, or every visible placement
// when id is zero.
func KittyDelete(w io.Writer, wi *Wininfo, id uint32) error {
	return writeKittyControl(w, wi, kittyDelete{ID: id})
}

// kittyPayload prepares the payload of one transmission: base64 of the
// (optionally zlib-compressed) data, or the base64 name of a shared memory
// object holding the raw data.
func kittyPayload(data []byte, shared, compress bool) (string, *TransferredSegment, error) {
	if len(data) == 0 {
		return "", nil, ErrEmptyPayload
	}
	if shared {
		seg, err := createSharedSegment(data)
		if err != nil {
			return "", nil, err
		}
		return Base64Encode([]byte(seg.Name)), seg, nil
	}
	if !compress {
		return Base64Encode(data), nil, nil
	}
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return "", nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return "", nil, fmt.Errorf("failed to compress frame: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to compress frame: %w", err)
	}
	return Base64Encode(buf.Bytes()), nil, nil
}

// placeholderCells converts a pixel size to the cells it covers.
func (w *Wininfo) placeholderCells(width, height uint32) (cols, rows uint32, err error) {
	cellW, cellH := w.CellPixels()
	if cellW == 0 || cellH == 0 {
		return 0, 0, fmt.Errorf("sizing placeholders: %w", ErrZeroTerminalSize)
	}
	cols = max(uint32(math.Ceil(float64(width)/cellW)), 1)
	rows = max(uint32(math.Ceil(float64(height)/cellH)), 1)
	if cols > MaxPlaceholderCells || rows > MaxPlaceholderCells {
		return 0, 0, fmt.Errorf("%w: %dx%d cells", ErrPlaceholderTooLarge, cols, rows)
	}
	return cols, rows, nil
}

// writePlaceholders prints the unicode placeholder grid for a virtual
// placement. Each cell is U+10EEEE followed by the row, column and id
// high-byte diacritics; the foreground color carries the low 24 bits of the
// id.
func writePlaceholders(w io.Writer, id, cols, rows uint32, p Placement) error {
	var b strings.Builder
	fg := "\x1b[38;2;" + strconv.Itoa(int(id>>16&0xff)) + ";" +
		strconv.Itoa(int(id>>8&0xff)) + ";" +
		strconv.Itoa(int(id&0xff)) + "m"
	high := kitty.Diacritic(int(id >> 24))

	for r := range rows {
		if p.At != nil {
			b.WriteString("\x1b[" + strconv.Itoa(p.At.Y+int(r)) + ";" + strconv.Itoa(p.At.X) + "H")
		}
		b.WriteString(offsetPrefix(p.Offset))
		b.WriteString(fg)
		row := kitty.Diacritic(int(r))
		for c := range cols {
			b.WriteRune(kitty.Placeholder)
			b.WriteRune(row)
			b.WriteRune(kitty.Diacritic(int(c)))
			b.WriteRune(high)
		}
		b.WriteString("\x1b[39m\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func newImageID() uint32 {
	for {
		if id := rand.Uint32(); id != 0 {
			return id
		}
	}
}
