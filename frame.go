package rasteroid

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"iter"

	"golang.org/x/image/draw"
)

var (
	// ErrNoFrames is returned when a video source yields nothing.
	ErrNoFrames = errors.New("video doesn't contain any frames")
	// ErrFrameSize is returned when a frame's buffer does not match its size.
	ErrFrameSize = errors.New("frame data does not match frame size")
)

// Frame is one decoded video frame.
type Frame struct {
	// Timestamp is the presentation time in seconds.
	Timestamp float32
	Width     uint16
	Height    uint16
	// Data is packed 8-bit RGB, row-major.
	Data []byte
}

// Validate checks that Data holds exactly Width*Height RGB pixels.
func (f Frame) Validate() error {
	if f.Width == 0 || f.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, f.Width, f.Height)
	}
	if want := int(f.Width) * int(f.Height) * 3; len(f.Data) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrFrameSize, f.Width, f.Height, want, len(f.Data))
	}
	return nil
}

// Image converts the frame to an opaque RGBA image.
func (f Frame) Image() (*image.RGBA, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return rgbImage(f.Data, int(f.Width), int(f.Height)), nil
}

// rgbImage expands packed RGB into an opaque RGBA image.
func rgbImage(data []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(data) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = data[i]
		img.Pix[j+1] = data[i+1]
		img.Pix[j+2] = data[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FrameFromImage flattens img into a frame shown at ts seconds.
func FrameFromImage(img image.Image, ts float32) Frame {
	data, w, h := toRGB(img)
	return Frame{
		Timestamp: ts,
		Width:     clampU16(float64(w)),
		Height:    clampU16(float64(h)),
		Data:      data,
	}
}

// FramesFromGIF composites the frames of an animated GIF onto a full canvas,
// honouring the disposal methods, and yields them with timestamps derived
// from the per-frame delays.
func FramesFromGIF(g *gif.GIF) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		if len(g.Image) == 0 {
			return
		}
		w, h := g.Config.Width, g.Config.Height
		if w == 0 || h == 0 {
			b := g.Image[0].Bounds()
			w, h = b.Max.X, b.Max.Y
		}
		canvas := image.NewRGBA(image.Rect(0, 0, w, h))
		var ts float32
		for i, frame := range g.Image {
			var previous *image.RGBA
			if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
				previous = image.NewRGBA(canvas.Bounds())
				copy(previous.Pix, canvas.Pix)
			}

			draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
			if !yield(FrameFromImage(canvas, ts)) {
				return
			}

			if i < len(g.Delay) {
				ts += float32(g.Delay[i]) / 100
			}
			if i < len(g.Disposal) {
				switch g.Disposal[i] {
				case gif.DisposalBackground:
					draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
				case gif.DisposalPrevious:
					copy(canvas.Pix, previous.Pix)
				}
			}
		}
	}
}
