package rasteroid

import (
	"fmt"
	"image"
	"io"
)

// RenderOptions controls how an image is sized and placed before encoding.
type RenderOptions struct {
	Placement
	// Width and Height are dimension strings; nil keeps the native size.
	Width  *string
	Height *string
	// Center horizontally centers the image when no Offset is set.
	Center bool
	// Pad centers the fitted image on a transparent canvas of the exact
	// requested size.
	Pad bool
	// SharedMemory selects shared memory transmission for Kitty.
	SharedMemory bool
	// ID is the Kitty image id. Zero picks a random one per render.
	ID uint32
	// SixelColors is the Sixel palette size.
	SixelColors int
}

// Renderer draws images with one wire protocol.
type Renderer interface {
	// Render sizes img per opts and writes it to w.
	Render(w io.Writer, img image.Image, wi *Wininfo, opts RenderOptions) error
	// Clear removes what Render drew, where the protocol allows it.
	Clear(w io.Writer, wi *Wininfo) error
	// Encoder returns the protocol this renderer speaks.
	Encoder() InlineEncoder
}

// GetRenderer returns a renderer for the given protocol.
func GetRenderer(enc InlineEncoder) (Renderer, error) {
	switch enc {
	case Kitty:
		return &KittyRenderer{}, nil
	case Iterm:
		return &ItermRenderer{}, nil
	case Sixel:
		return &SixelRenderer{}, nil
	case Ascii:
		return &HalfblocksRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoder, enc)
	}
}

// prepare resizes img and fills in the centering offset.
func prepare(img image.Image, wi *Wininfo, opts RenderOptions, forASCII bool) (*ResizeResult, Placement, error) {
	res, err := ResizePlus(img, wi, opts.Width, opts.Height, forASCII, opts.Pad)
	if err != nil {
		return nil, Placement{}, fmt.Errorf("failed to resize image: %w", err)
	}
	p := opts.Placement
	if opts.Center && p.Offset == nil {
		p.Offset = Offset(res.Offset)
	}
	return res, p, nil
}

// KittyRenderer renders with the Kitty graphics protocol.
type KittyRenderer struct {
	lastID uint32
}

func (r *KittyRenderer) Encoder() InlineEncoder { return Kitty }

func (r *KittyRenderer) Render(w io.Writer, img image.Image, wi *Wininfo, opts RenderOptions) error {
	res, p, err := prepare(img, wi, opts, false)
	if err != nil {
		return err
	}
	out, err := KittyEncodeImage(w, res.PNG, wi, KittyOptions{Placement: p, ID: opts.ID, SharedMemory: opts.SharedMemory})
	if out != nil {
		r.lastID = out.ID
	}
	return err
}

// Clear deletes the last rendered image, or every placement if none was drawn.
func (r *KittyRenderer) Clear(w io.Writer, wi *Wininfo) error {
	return KittyDelete(w, wi, r.lastID)
}

// ItermRenderer renders with the iTerm2 inline image protocol.
type ItermRenderer struct{}

func (r *ItermRenderer) Encoder() InlineEncoder { return Iterm }

func (r *ItermRenderer) Render(w io.Writer, img image.Image, wi *Wininfo, opts RenderOptions) error {
	res, p, err := prepare(img, wi, opts, false)
	if err != nil {
		return err
	}
	return ItermEncodeImage(w, res.PNG, wi, p)
}

// Clear clears the screen; iTerm2 has no way to delete a single image.
func (r *ItermRenderer) Clear(w io.Writer, _ *Wininfo) error {
	_, err := io.WriteString(w, clearHome)
	return err
}

// SixelRenderer renders DEC sixels.
type SixelRenderer struct{}

func (r *SixelRenderer) Encoder() InlineEncoder { return Sixel }

func (r *SixelRenderer) Render(w io.Writer, img image.Image, wi *Wininfo, opts RenderOptions) error {
	fitted, err := FitImage(img, wi, opts.Width, opts.Height, false, opts.Pad)
	if err != nil {
		return fmt.Errorf("failed to resize image: %w", err)
	}
	p := opts.Placement
	if opts.Center && p.Offset == nil {
		p.Offset = Offset(wi.CenterImage(uint32(fitted.Bounds().Dx()), false))
	}
	return SixelEncodeImage(w, fitted, wi, SixelOptions{Placement: p, Colors: opts.SixelColors})
}

// Clear clears the screen; sixels are plain cell contents.
func (r *SixelRenderer) Clear(w io.Writer, _ *Wininfo) error {
	_, err := io.WriteString(w, clearHome)
	return err
}

// HalfblocksRenderer renders colored half blocks. Width and Height are
// resolved in cells.
type HalfblocksRenderer struct{}

func (r *HalfblocksRenderer) Encoder() InlineEncoder { return Ascii }

func (r *HalfblocksRenderer) Render(w io.Writer, img image.Image, wi *Wininfo, opts RenderOptions) error {
	fitted, err := FitImage(img, wi, opts.Width, opts.Height, true, opts.Pad)
	if err != nil {
		return fmt.Errorf("failed to resize image: %w", err)
	}
	p := opts.Placement
	if opts.Center && p.Offset == nil {
		p.Offset = Offset(wi.CenterImage(uint32(fitted.Bounds().Dx()), true))
	}
	return ASCIIEncodeImage(w, fitted, p)
}

func (r *HalfblocksRenderer) Clear(w io.Writer, _ *Wininfo) error {
	_, err := io.WriteString(w, clearHome)
	return err
}
