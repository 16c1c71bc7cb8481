package rasteroid

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/blacktop/go-rasteroid/pkg/csi"
	"golang.org/x/term"
)

// Built-in fallbacks used when the terminal cannot be queried.
var (
	DefaultPixelSize = Size{Width: 1920, Height: 1080}
	DefaultCellSize  = Size{Width: 100, Height: 20}
)

// ErrWininfoInitialized is returned by InitWininfo when the process-wide
// geometry has already been set.
var ErrWininfoInitialized = errors.New("window info already initialized")

// Size is a requested fallback size. Force means the value wins even when the
// terminal reports its own size.
type Size struct {
	Width  uint16
	Height uint16
	Force  bool
}

// ParseSize parses "WxH" or "WxHxforce".
func ParseSize(s string) (Size, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) < 2 || len(parts) > 3 {
		return Size{}, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT[xforce]", s)
	}
	w, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: bad width: %w", s, err)
	}
	h, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: bad height: %w", s, err)
	}
	size := Size{Width: uint16(w), Height: uint16(h)}
	if len(parts) == 3 {
		if parts[2] != "force" {
			return Size{}, fmt.Errorf("invalid size %q: unknown suffix %q", s, parts[2])
		}
		size.Force = true
	}
	return size, nil
}

func (s Size) String() string {
	if s.Force {
		return fmt.Sprintf("%dx%dxforce", s.Width, s.Height)
	}
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// WininfoOptions configures NewWininfo.
type WininfoOptions struct {
	PixelFallback *Size
	CellFallback  *Size
	// Scale multiplies both pixel axes. Zero means 1.
	Scale       float32
	IsTmux      bool
	NeedsInline bool
	// Query asks the terminal for its text area size (CSI 14t) when the
	// window-size ioctl does not report pixels.
	Query bool
}

// DefaultWininfoOptions returns the options used for lazy initialization.
func DefaultWininfoOptions() WininfoOptions {
	return WininfoOptions{
		Scale:  1,
		IsTmux: IsTmux(NewEnvIdentifiers()),
	}
}

// Wininfo describes the terminal in character cells and in pixels.
// It is never modified after construction.
type Wininfo struct {
	ScWidth     uint16
	ScHeight    uint16
	SpxWidth    uint16
	SpxHeight   uint16
	IsTmux      bool
	NeedsInline bool
}

// probes are swapped out in tests
var (
	pixelSizeProbe = ttyPixelSize
	cellSizeProbe  = ttyCellSize
	csiPixelProbe  = func() (uint16, uint16, bool) {
		w, h, ok := csi.QueryTextAreaSizeInPixels()
		if !ok || w <= 0 || h <= 0 {
			return 0, 0, false
		}
		return clampU16(float64(w)), clampU16(float64(h)), true
	}
)

// NewWininfo probes the terminal and builds an immutable Wininfo.
func NewWininfo(opts WininfoOptions) *Wininfo {
	spx := DefaultPixelSize
	if opts.PixelFallback != nil {
		spx = *opts.PixelFallback
	}
	sc := DefaultCellSize
	if opts.CellFallback != nil {
		sc = *opts.CellFallback
	}

	if !spx.Force {
		if w, h, ok := pixelSizeProbe(); ok && w > 0 && h > 0 {
			spx.Width, spx.Height = w, h
		} else if opts.Query {
			if w, h, ok := csiPixelProbe(); ok {
				spx.Width, spx.Height = w, h
			}
		}
	}
	if !sc.Force {
		if w, h, ok := cellSizeProbe(); ok && w > 0 && h > 0 {
			sc.Width, sc.Height = w, h
		}
	}

	scale := float64(opts.Scale)
	if scale <= 0 {
		scale = 1
	}

	return &Wininfo{
		ScWidth:     sc.Width,
		ScHeight:    sc.Height,
		SpxWidth:    clampU16(math.Round(float64(spx.Width) * scale)),
		SpxHeight:   clampU16(math.Round(float64(spx.Height) * scale)),
		IsTmux:      opts.IsTmux,
		NeedsInline: opts.NeedsInline || opts.IsTmux,
	}
}

func ttyCellSize() (uint16, uint16, bool) {
	for _, f := range []*os.File{os.Stdout, os.Stdin, os.Stderr} {
		cols, rows, err := term.GetSize(int(f.Fd()))
		if err == nil && cols > 0 && rows > 0 {
			return clampU16(float64(cols)), clampU16(float64(rows)), true
		}
	}
	return 0, 0, false
}

var (
	globalMu  sync.Mutex
	globalWin *Wininfo
)

// InitWininfo sets the process-wide Wininfo. It may succeed at most once.
func InitWininfo(opts WininfoOptions) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalWin != nil {
		return ErrWininfoInitialized
	}
	globalWin = NewWininfo(opts)
	return nil
}

// GetWininfo returns the process-wide Wininfo, initializing it with the
// built-in fallbacks when InitWininfo was never called.
func GetWininfo() *Wininfo {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalWin == nil {
		globalWin = NewWininfo(DefaultWininfoOptions())
	}
	return globalWin
}

// CellPixels returns the average pixel size of one cell on each axis.
func (w *Wininfo) CellPixels() (float64, float64) {
	var cw, ch float64
	if w.ScWidth > 0 {
		cw = float64(w.SpxWidth) / float64(w.ScWidth)
	}
	if w.ScHeight > 0 {
		ch = float64(w.SpxHeight) / float64(w.ScHeight)
	}
	return cw, ch
}

// CenterImage returns the horizontal cell offset that centers an object of
// the given width. The width is in cells for ASCII output and in pixels
// otherwise.
func (w *Wininfo) CenterImage(imageWidth uint32, isASCII bool) uint16 {
	if isASCII {
		if imageWidth >= uint32(w.ScWidth) {
			return 0
		}
		return uint16((uint32(w.ScWidth) - imageWidth) / 2)
	}
	if w.ScWidth == 0 || w.SpxWidth == 0 || imageWidth >= uint32(w.SpxWidth) {
		return 0
	}
	perCell := float64(w.SpxWidth) / float64(w.ScWidth)
	offset := (float64(w.SpxWidth) - float64(imageWidth)) / 2 / perCell
	return clampU16(math.Round(offset))
}

func (w *Wininfo) String() string {
	return fmt.Sprintf("cells=%dx%d pixels=%dx%d tmux=%t inline=%t",
		w.ScWidth, w.ScHeight, w.SpxWidth, w.SpxHeight, w.IsTmux, w.NeedsInline)
}

func clampU16(v float64) uint16 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
