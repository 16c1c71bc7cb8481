package rasteroid

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryEmpty(t *testing.T) {
	var buf bytes.Buffer
	g := NewGallery(0, 0, 0)
	require.NoError(t, g.Render(&buf, Kitty, testWininfo()))
	assert.Zero(t, buf.Len())
	assert.Zero(t, g.Len())
}

func TestGalleryText(t *testing.T) {
	g := NewGallery(2, 4, 2).SetSpacing(1)
	g.Add(solidImage(4, 4, color.White)).Add(solidImage(4, 4, color.White))
	require.Equal(t, 2, g.Len())

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, Ascii, testWininfo()))

	cell := fgWhite + bgWhite + "▀\x1b[0m"
	row := strings.Repeat(cell, 4) + " " + strings.Repeat(cell, 4)
	assert.Equal(t, row+"\n"+row+"\n\n\x1b[0m", buf.String())
}

func TestGalleryTextRaggedRow(t *testing.T) {
	g := NewGallery(2, 2, 1).SetSpacing(0)
	g.Add(solidImage(2, 2, color.White)).Add(solidImage(2, 2, color.White)).Add(solidImage(2, 2, color.White))

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, Ascii, testWininfo()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\x1b[0m"), "\n")
	assert.Len(t, lines, 3, "two grid rows of one line each")
}

func TestGalleryPlaced(t *testing.T) {
	g := NewGallery(2, 10, 5)
	for range 3 {
		g.Add(solidImage(8, 8, color.White))
	}

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, Kitty, testWininfo()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, clearHome))
	assert.Equal(t, 3, strings.Count(out, "a=T"))
	first := strings.Index(out, "\x1b[1;1H")
	second := strings.Index(out, "\x1b[1;13H")
	third := strings.Index(out, "\x1b[8;1H")
	require.True(t, first >= 0 && second >= 0 && third >= 0, "tile positions missing")
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.True(t, strings.HasSuffix(out, "\x1b[15;1H"))
}

func TestGalleryPropagatesErrors(t *testing.T) {
	g := NewGallery(1, 4, 4).Add(solidImage(0, 0, color.White))
	var buf bytes.Buffer
	assert.ErrorIs(t, g.Render(&buf, Sixel, testWininfo()), ErrEmptyImage)
	assert.ErrorIs(t, g.Render(&buf, Ascii, testWininfo()), ErrEmptyImage)
}

func TestCombineHorizontally(t *testing.T) {
	assert.Equal(t, "ab  cd\nef    ", combineHorizontally([]string{"ab\nef", "cd"}, 2, 2, 2))
}
