package rasteroid

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has zero size")

// ResizeResult is the output of ResizePlus.
type ResizeResult struct {
	// PNG holds the encoded, resized (and optionally padded) image.
	PNG []byte
	// Offset is the horizontal cell offset that centers the result.
	Offset uint16
	// Width and Height are the pixel size of the encoded image.
	Width  uint32
	Height uint32
}

// FitImage scales img into the box described by width and height (dimension
// strings; nil or "none" keeps the native size on that axis). The aspect
// ratio is preserved exactly as computed by CalcFit.
//
// With forASCII the box is resolved in cells and its height doubled, since a
// half-block cell holds two pixel rows. With pad the fitted image is centered
// on a transparent canvas of exactly the requested size.
func FitImage(img image.Image, wi *Wininfo, width, height *string, forASCII, pad bool) (image.Image, error) {
	b := img.Bounds()
	srcW, srcH := uint32(b.Dx()), uint32(b.Dy())
	if srcW == 0 || srcH == 0 {
		return nil, ErrEmptyImage
	}

	dstW, err := resolveTarget(wi, width, AxisWidth, srcW, forASCII)
	if err != nil {
		return nil, err
	}
	dstH, err := resolveTarget(wi, height, AxisHeight, srcH, forASCII)
	if err != nil {
		return nil, err
	}
	if dstW == 0 || dstH == 0 {
		return nil, fmt.Errorf("resize to %dx%d: %w", dstW, dstH, ErrEmptyImage)
	}

	w, h := CalcFit(srcW, srcH, dstW, dstH)

	out := img
	if w != srcW || h != srcH {
		out = resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	}

	if pad && (w < dstW || h < dstH) {
		canvas := image.NewNRGBA(image.Rect(0, 0, int(dstW), int(dstH)))
		x := int(dstW-w) / 2
		y := int(dstH-h) / 2
		draw.Draw(canvas, image.Rect(x, y, x+int(w), y+int(h)), out, out.Bounds().Min, draw.Over)
		out = canvas
	}
	return out, nil
}

// ResizePlus fits img like FitImage and encodes the result as PNG, the
// intermediate format every encoder accepts. It also returns the horizontal
// offset that centers the result.
func ResizePlus(img image.Image, wi *Wininfo, width, height *string, forASCII, pad bool) (*ResizeResult, error) {
	out, err := FitImage(img, wi, width, height, forASCII, pad)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	ob := out.Bounds()
	w, h := uint32(ob.Dx()), uint32(ob.Dy())
	return &ResizeResult{
		PNG:    buf.Bytes(),
		Offset: wi.CenterImage(w, forASCII),
		Width:  w,
		Height: h,
	}, nil
}

func resolveTarget(wi *Wininfo, dim *string, axis Axis, native uint32, forASCII bool) (uint32, error) {
	if dim == nil {
		return native, nil
	}
	var (
		v   uint32
		err error
	)
	if forASCII {
		v, err = wi.DimToCells(*dim, axis)
	} else {
		v, err = wi.DimToPx(*dim, axis)
	}
	if errors.Is(err, ErrNoneDimension) {
		return native, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %s: %w", axis, err)
	}
	if forASCII && axis == AxisHeight {
		v *= 2
	}
	return v, nil
}

// toRGB flattens img to packed 8-bit RGB, dropping alpha.
func toRGB(img image.Image) (data []byte, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	data = make([]byte, 0, width*height*3)
	for y := range height {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
		for x := 0; x < len(row); x += 4 {
			data = append(data, row[x], row[x+1], row[x+2])
		}
	}
	return data, width, height
}
