package rasteroid

import (
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/soniakeys/quant/median"
)

// DefaultSixelColors is the palette size used when none is given.
const DefaultSixelColors = 256

// SixelOptions configures SixelEncodeImage.
type SixelOptions struct {
	Placement
	// Colors is the palette size, 1 to 256. Zero means DefaultSixelColors.
	Colors int
}

// SixelEncodeImage writes img as a DECSIXEL image. The image is flattened to
// RGB, reduced to a median cut palette and drawn in bands of six rows with
// run-length encoding.
func SixelEncodeImage(w io.Writer, img image.Image, wi *Wininfo, opts SixelOptions) error {
	rgb, width, height := toRGB(img)
	if width == 0 || height == 0 {
		return ErrEmptyImage
	}

	colors := opts.Colors
	if colors <= 0 || colors > DefaultSixelColors {
		colors = DefaultSixelColors
	}
	palette := sixelPalette(rgb, width, height, colors)
	indices := classify(rgb, palette)

	var b strings.Builder
	b.WriteString("\x1bP0;1q\"1;1;")
	b.WriteString(strconv.Itoa(width))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(height))

	for i, c := range palette {
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(i))
		b.WriteString(";2;")
		b.WriteString(strconv.Itoa(int(c.R) * 100 / 255))
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(int(c.G) * 100 / 255))
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(int(c.B) * 100 / 255))
	}

	bands := make([][]byte, len(palette))
	for y0 := 0; y0 < height; y0 += 6 {
		if y0 > 0 {
			b.WriteByte('-')
		}
		clear(bands)
		for dy := 0; dy < 6 && y0+dy < height; dy++ {
			row := indices[(y0+dy)*width : (y0+dy+1)*width]
			for x, idx := range row {
				if bands[idx] == nil {
					bands[idx] = make([]byte, width)
				}
				bands[idx][x] |= 1 << dy
			}
		}
		first := true
		for idx, masks := range bands {
			if masks == nil {
				continue
			}
			if !first {
				b.WriteByte('$')
			}
			first = false
			b.WriteByte('#')
			b.WriteString(strconv.Itoa(idx))
			writeSixelRuns(&b, masks)
		}
	}
	b.WriteString("\x1b\\")

	if _, err := io.WriteString(w, opts.prefix()); err != nil {
		return err
	}
	return writeSeq(w, wi, b.String())
}

// writeSixelRuns writes one color's sixel row, collapsing runs longer than
// three with the repeat introducer.
func writeSixelRuns(b *strings.Builder, masks []byte) {
	for i := 0; i < len(masks); {
		j := i + 1
		for j < len(masks) && masks[j] == masks[i] {
			j++
		}
		ch := byte(0x3f) + masks[i]
		if n := j - i; n > 3 {
			b.WriteByte('!')
			b.WriteString(strconv.Itoa(n))
			b.WriteByte(ch)
		} else {
			for range n {
				b.WriteByte(ch)
			}
		}
		i = j
	}
}

// sixelPalette returns the distinct colors of the image when they fit in
// the palette, otherwise a median cut palette of at most n colors.
func sixelPalette(rgb []byte, width, height, n int) []color.RGBA {
	seen := make(map[uint32]struct{}, n)
	exact := make([]color.RGBA, 0, n)
	for i := 0; i+2 < len(rgb); i += 3 {
		key := uint32(rgb[i])<<16 | uint32(rgb[i+1])<<8 | uint32(rgb[i+2])
		if _, ok := seen[key]; ok {
			continue
		}
		if len(exact) == n {
			exact = nil
			break
		}
		seen[key] = struct{}{}
		exact = append(exact, color.RGBA{rgb[i], rgb[i+1], rgb[i+2], 0xff})
	}
	if exact != nil {
		return exact
	}

	q := median.Quantizer(n)
	quantized := q.Palette(rgbImage(rgb, width, height)).ColorPalette()
	palette := make([]color.RGBA, 0, len(quantized))
	clear(seen)
	for _, c := range quantized {
		r, g, b, _ := c.RGBA()
		rc := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xff}
		key := uint32(rc.R)<<16 | uint32(rc.G)<<8 | uint32(rc.B)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		palette = append(palette, rc)
	}
	return palette
}

// classify maps every pixel to its nearest palette entry by Euclidean RGB
// distance.
func classify(rgb []byte, palette []color.RGBA) []int {
	out := make([]int, len(rgb)/3)
	cache := make(map[uint32]int)
	for i := range out {
		r, g, b := rgb[i*3], rgb[i*3+1], rgb[i*3+2]
		key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		idx, ok := cache[key]
		if !ok {
			idx = nearest(r, g, b, palette)
			cache[key] = idx
		}
		out[i] = idx
	}
	return out
}

func nearest(r, g, b uint8, palette []color.RGBA) int {
	best, bestDist := 0, -1
	for i, c := range palette {
		dr := int(r) - int(c.R)
		dg := int(g) - int(c.G)
		db := int(b) - int(c.B)
		if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best
}
