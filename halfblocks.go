package rasteroid

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"iter"
	"strconv"
	"time"

	"golang.org/x/image/draw"
)

// MinVisualWeight is the luminance × alpha level a pixel must exceed to be
// drawn. Fainter pixels, such as anti-aliased edges, render as blank.
const MinVisualWeight = 25.0

// MinFrameDelay caps ASCII video playback at about 30 frames per second.
const MinFrameDelay = 33 * time.Millisecond

const (
	upperHalf = "▀"
	lowerHalf = "▄"
	resetSGR  = "\x1b[0m"
	clearHome = "\x1b[2J\x1b[H"
)

// Luminance is the perceptual brightness of an RGB color, 0 to 255.
func Luminance(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// VisualWeight is the luminance scaled by opacity.
func VisualWeight(c color.NRGBA) float64 {
	if c.A == 0 {
		return 0
	}
	return Luminance(c.R, c.G, c.B) * float64(c.A) / 255
}

func visible(c color.NRGBA) bool {
	return VisualWeight(c) > MinVisualWeight
}

// ASCIIEncodeImage draws img with colored half blocks, two pixel rows per
// line of text.
func ASCIIEncodeImage(w io.Writer, img image.Image, p Placement) error {
	b := img.Bounds()
	if b.Empty() {
		return ErrEmptyImage
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	var buf bytes.Buffer
	width, height := b.Dx(), b.Dy()
	for y := 0; y < height; y += 2 {
		if p.At != nil {
			buf.WriteString("\x1b[" + strconv.Itoa(p.At.Y+y/2) + ";" + strconv.Itoa(p.At.X) + "H")
		}
		buf.WriteString(offsetPrefix(p.Offset))
		for x := range width {
			upper := nrgba.NRGBAAt(x, y)
			if y+1 >= height {
				writeHalfBlock(&buf, upper, color.NRGBA{}, visible(upper), false)
				continue
			}
			lower := nrgba.NRGBAAt(x, y+1)
			writeHalfBlock(&buf, upper, lower, visible(upper), visible(lower))
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(resetSGR)

	_, err := w.Write(buf.Bytes())
	return err
}

func writeHalfBlock(buf *bytes.Buffer, upper, lower color.NRGBA, showUpper, showLower bool) {
	switch {
	case showUpper && showLower:
		writeSGRColor(buf, 38, upper)
		writeSGRColor(buf, 48, lower)
		buf.WriteString(upperHalf + resetSGR)
	case showUpper:
		writeSGRColor(buf, 38, upper)
		buf.WriteString(upperHalf + resetSGR)
	case showLower:
		writeSGRColor(buf, 38, lower)
		buf.WriteString(lowerHalf + resetSGR)
	default:
		buf.WriteByte(' ')
	}
}

func writeSGRColor(buf *bytes.Buffer, layer int, c color.NRGBA) {
	buf.WriteString("\x1b[")
	buf.WriteString(strconv.Itoa(layer))
	buf.WriteString(";2;")
	buf.WriteString(strconv.Itoa(int(c.R)))
	buf.WriteByte(';')
	buf.WriteString(strconv.Itoa(int(c.G)))
	buf.WriteByte(';')
	buf.WriteString(strconv.Itoa(int(c.B)))
	buf.WriteByte('m')
}

// ASCIIVideoOptions configures ASCIIEncodeFrames.
type ASCIIVideoOptions struct {
	// Width and Height size each frame in cells; nil keeps the frame size.
	Width  *string
	Height *string
	Center bool
	// Loop replays the rendered frames until ctx is done.
	Loop bool
}

type renderedFrame struct {
	out   []byte
	delay time.Duration
}

// ASCIIEncodeFrames plays frames as half-block art, clearing the screen
// before each one and waiting the larger of the timestamp delta and
// MinFrameDelay between them. ctx is checked once per frame; cancellation
// ends playback early and is not an error.
func ASCIIEncodeFrames(ctx context.Context, w io.Writer, frames iter.Seq[Frame], wi *Wininfo, opts ASCIIVideoOptions) error {
	var (
		played  []renderedFrame
		last    float32
		started bool
	)
	for frame := range frames {
		if ctx.Err() != nil {
			return nil
		}
		img, err := frame.Image()
		if err != nil {
			return err
		}
		var fitted image.Image = img
		if opts.Width != nil || opts.Height != nil {
			if fitted, err = FitImage(img, wi, opts.Width, opts.Height, true, false); err != nil {
				return err
			}
		}

		var p Placement
		if opts.Center {
			p.Offset = Offset(wi.CenterImage(uint32(fitted.Bounds().Dx()), true))
		}
		var buf bytes.Buffer
		buf.WriteString(clearHome)
		if err := ASCIIEncodeImage(&buf, fitted, p); err != nil {
			return err
		}

		delay := MinFrameDelay
		if started && frame.Timestamp > last {
			delay = max(time.Duration(float64(frame.Timestamp-last)*float64(time.Second)), MinFrameDelay)
		}
		last, started = frame.Timestamp, true

		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if opts.Loop {
			played = append(played, renderedFrame{out: buf.Bytes(), delay: delay})
		}
		if !sleepContext(ctx, delay) {
			return nil
		}
	}
	if !started {
		return ErrNoFrames
	}

	for opts.Loop && ctx.Err() == nil {
		for _, f := range played {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := w.Write(f.out); err != nil {
				return err
			}
			if !sleepContext(ctx, f.delay) {
				return nil
			}
		}
	}
	return nil
}

// sleepContext waits for d and reports false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
