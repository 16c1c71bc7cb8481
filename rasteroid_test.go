package rasteroid

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageConstructors(t *testing.T) {
	assert.Nil(t, New(nil))
	assert.Nil(t, From(nil))

	_, err := Open("")
	assert.Error(t, err)

	_, err = Render(nil)
	assert.Error(t, err)
	assert.Error(t, Print(nil))
}

func TestImageRenderFluent(t *testing.T) {
	out, err := New(solidImage(8, 8, color.White)).
		Encoder(Sixel).
		Wininfo(smallTerm()).
		Width("20px").
		Height("20px").
		Center(true).
		Render()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\x1b[49C\x1bP0;1q\"1;1;20;20"))
}

func TestImageFromReader(t *testing.T) {
	data := encodePNG(t, solidImage(6, 4, color.White))

	img := From(bytes.NewReader(data)).Encoder(Iterm).Wininfo(testWininfo())
	assert.Equal(t, "memory (6x4)", img.Info())

	out, err := img.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b]1337;File=inline=1;")
}

func TestImageOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "white.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, solidImage(2, 2, color.White)), 0o644))

	img, err := Open(path)
	require.NoError(t, err)
	img.Encoder(Ascii).Wininfo(testWininfo())
	assert.Equal(t, path+" (2x2)", img.Info())

	out, err := img.Render()
	require.NoError(t, err)
	assert.Equal(t, fgWhite+bgWhite+"▀\x1b[0m"+fgWhite+bgWhite+"▀\x1b[0m\n\x1b[0m", out)

	missing, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	require.NoError(t, err)
	_, err = missing.Wininfo(testWininfo()).Render()
	assert.ErrorContains(t, err, "failed to open file")
	assert.True(t, strings.HasPrefix(missing.Info(), "error:"))
}

func TestImageDetect(t *testing.T) {
	img := New(solidImage(1, 1, color.White))
	assert.Equal(t, Kitty, img.Env(EnvFromMap(map[string]string{"KITTY_WINDOW_ID": "3"})).Detect())
	assert.Equal(t, Ascii, img.Env(EnvFromMap(map[string]string{})).Detect())
	assert.Equal(t, Sixel, img.Encoder(Sixel).Detect(), "a forced encoder beats the environment")
}

func TestImageZoom(t *testing.T) {
	wi := &Wininfo{ScWidth: 10, ScHeight: 10, SpxWidth: 100, SpxHeight: 100}

	out, err := New(solidImage(200, 200, color.White)).
		Encoder(Sixel).
		Wininfo(wi).
		Zoom(2, 0, 0).
		Render()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\x1bP0;1q\"1;1;50;50"))
}

func TestImageClear(t *testing.T) {
	var buf bytes.Buffer
	img := New(solidImage(1, 1, color.White)).Encoder(Ascii).Wininfo(testWininfo())
	require.NoError(t, img.Clear(&buf))
	assert.Equal(t, clearHome, buf.String())
}
