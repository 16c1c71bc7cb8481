package rasteroid

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
)

// Gallery lays images out in a grid of equally sized tiles. Tiles are padded
// to the exact tile size so that images of different shapes do not shift
// the layout.
type Gallery struct {
	images  []image.Image
	columns int
	spacing int
	// tile size in cells
	tileWidth  uint32
	tileHeight uint32
}

// NewGallery returns a gallery with the given number of columns and tile
// size in cells.
func NewGallery(columns int, tileWidth, tileHeight uint32) *Gallery {
	return &Gallery{
		columns:    max(columns, 1),
		spacing:    2,
		tileWidth:  max(tileWidth, 1),
		tileHeight: max(tileHeight, 1),
	}
}

// Add appends an image.
func (g *Gallery) Add(img image.Image) *Gallery {
	g.images = append(g.images, img)
	return g
}

// SetSpacing sets the gap between tiles in cells.
func (g *Gallery) SetSpacing(spacing int) *Gallery {
	g.spacing = max(spacing, 0)
	return g
}

// Len returns the number of images.
func (g *Gallery) Len() int { return len(g.images) }

// Render draws the grid. Half-block tiles are joined line by line; the
// graphics protocols clear the screen and place each tile at an absolute
// position.
func (g *Gallery) Render(w io.Writer, enc InlineEncoder, wi *Wininfo) error {
	if len(g.images) == 0 {
		return nil
	}
	if enc == Ascii {
		return g.renderText(w, wi)
	}
	return g.renderPlaced(w, enc, wi)
}

func (g *Gallery) tileDims() (width, height *string) {
	tw := strconv.FormatUint(uint64(g.tileWidth), 10) + "c"
	th := strconv.FormatUint(uint64(g.tileHeight), 10) + "c"
	return &tw, &th
}

func (g *Gallery) renderText(w io.Writer, wi *Wininfo) error {
	tw, th := g.tileDims()
	rows := (len(g.images) + g.columns - 1) / g.columns
	for row := range rows {
		var tiles []string
		maxLines := 0
		for col := range g.columns {
			idx := row*g.columns + col
			if idx >= len(g.images) {
				break
			}
			fitted, err := FitImage(g.images[idx], wi, tw, th, true, true)
			if err != nil {
				return fmt.Errorf("failed to fit image %d: %w", idx, err)
			}
			var buf bytes.Buffer
			if err := ASCIIEncodeImage(&buf, fitted, Placement{}); err != nil {
				return fmt.Errorf("failed to render image %d: %w", idx, err)
			}
			tile := strings.TrimSuffix(strings.TrimSuffix(buf.String(), resetSGR), "\n")
			tiles = append(tiles, tile)
			maxLines = max(maxLines, strings.Count(tile, "\n")+1)
		}
		out := combineHorizontally(tiles, g.spacing, int(g.tileWidth), maxLines)
		if _, err := io.WriteString(w, out+"\n"+strings.Repeat("\n", g.spacing)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, resetSGR)
	return err
}

func (g *Gallery) renderPlaced(w io.Writer, enc InlineEncoder, wi *Wininfo) error {
	renderer, err := GetRenderer(enc)
	if err != nil {
		return err
	}
	tw, th := g.tileDims()
	if _, err := io.WriteString(w, clearHome); err != nil {
		return err
	}
	rows := (len(g.images) + g.columns - 1) / g.columns
	for idx, img := range g.images {
		row, col := idx/g.columns, idx%g.columns
		at := image.Point{
			X: 1 + col*(int(g.tileWidth)+g.spacing),
			Y: 1 + row*(int(g.tileHeight)+g.spacing),
		}
		err := renderer.Render(w, img, wi, RenderOptions{
			Placement: Placement{At: &at},
			Width:     tw,
			Height:    th,
			Pad:       true,
		})
		if err != nil {
			return fmt.Errorf("failed to render image %d: %w", idx, err)
		}
	}
	// leave the cursor below the grid
	below := 1 + rows*(int(g.tileHeight)+g.spacing)
	_, err = io.WriteString(w, "\x1b["+strconv.Itoa(below)+";1H")
	return err
}

// combineHorizontally joins rendered tiles side by side. Missing lines of
// shorter tiles are filled with blanks of the tile width.
func combineHorizontally(tiles []string, spacing, width, maxLines int) string {
	lines := make([][]string, len(tiles))
	for i, tile := range tiles {
		lines[i] = strings.Split(tile, "\n")
	}
	gap := strings.Repeat(" ", spacing)
	blank := strings.Repeat(" ", width)

	var b strings.Builder
	for line := range maxLines {
		for i, tl := range lines {
			if i > 0 {
				b.WriteString(gap)
			}
			if line < len(tl) {
				b.WriteString(tl[line])
			} else {
				b.WriteString(blank)
			}
		}
		if line < maxLines-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
