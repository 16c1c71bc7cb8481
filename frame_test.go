package rasteroid

import (
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameValidate(t *testing.T) {
	assert.NoError(t, Frame{Width: 1, Height: 2, Data: make([]byte, 6)}.Validate())
	assert.ErrorIs(t, Frame{Width: 1, Height: 2, Data: make([]byte, 5)}.Validate(), ErrFrameSize)
	assert.ErrorIs(t, Frame{Width: 0, Height: 2}.Validate(), ErrEmptyImage)
}

func TestFrameImageRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{10, 20, 30, 255})
	src.Set(1, 0, color.RGBA{40, 50, 60, 255})

	f := FrameFromImage(src, 1.5)
	assert.Equal(t, float32(1.5), f.Timestamp)
	assert.Equal(t, []byte{10, 20, 30, 40, 50, 60}, f.Data)

	img, err := f.Image()
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Pix)
}

func palettedFrame(r image.Rectangle, idx uint8) *image.Paletted {
	img := image.NewPaletted(r, color.Palette{color.Transparent, color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}})
	for i := range img.Pix {
		img.Pix[i] = idx
	}
	return img
}

func collectFrames(g *gif.GIF) []Frame {
	var out []Frame
	for f := range FramesFromGIF(g) {
		out = append(out, f)
	}
	return out
}

func TestFramesFromGIF(t *testing.T) {
	g := &gif.GIF{
		Image: []*image.Paletted{
			palettedFrame(image.Rect(0, 0, 2, 1), 1),
			palettedFrame(image.Rect(1, 0, 2, 1), 2),
			palettedFrame(image.Rect(0, 0, 1, 1), 0),
		},
		Delay:    []int{10, 25, 5},
		Disposal: []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalNone},
		Config:   image.Config{Width: 2, Height: 1},
	}

	frames := collectFrames(g)
	require.Len(t, frames, 3)

	assert.Equal(t, float32(0), frames[0].Timestamp)
	assert.InDelta(t, 0.1, frames[1].Timestamp, 1e-6)
	assert.InDelta(t, 0.35, frames[2].Timestamp, 1e-6)

	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0}, frames[0].Data)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 255}, frames[1].Data, "partial frame composites over the first")
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 0}, frames[2].Data, "background disposal cleared the second frame")
	for _, f := range frames {
		assert.NoError(t, f.Validate())
	}
}

func TestFramesFromGIFDisposePrevious(t *testing.T) {
	g := &gif.GIF{
		Image: []*image.Paletted{
			palettedFrame(image.Rect(0, 0, 1, 1), 1),
			palettedFrame(image.Rect(0, 0, 1, 1), 2),
			palettedFrame(image.Rect(0, 0, 1, 1), 0),
		},
		Delay:    []int{1, 1, 1},
		Disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
		Config:   image.Config{Width: 1, Height: 1},
	}

	frames := collectFrames(g)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{0, 0, 255}, frames[1].Data)
	assert.Equal(t, []byte{255, 0, 0}, frames[2].Data, "restored to the first frame")
}

func TestFramesFromGIFStopsEarly(t *testing.T) {
	g := &gif.GIF{
		Image:  []*image.Paletted{palettedFrame(image.Rect(0, 0, 1, 1), 1), palettedFrame(image.Rect(0, 0, 1, 1), 2)},
		Config: image.Config{Width: 1, Height: 1},
	}
	n := 0
	for range FramesFromGIF(g) {
		n++
		break
	}
	assert.Equal(t, 1, n)
	assert.Empty(t, collectFrames(&gif.GIF{}))
}
