package rasteroid

import (
	"image"
	"image/color"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestViewer(t *testing.T) *ViewerModel {
	t.Helper()
	m, err := NewViewer(solidImage(400, 400, color.White), Ascii, smallTerm(), "white.png")
	require.NoError(t, err)
	return m
}

func TestViewerPanKeys(t *testing.T) {
	m := newTestViewer(t)
	assert.Nil(t, m.Init())

	m.Update(key("j"))
	_, y := m.Viewport().Offset()
	assert.Equal(t, int32(PanStep), y)

	m.Update(key("d"))
	_, y = m.Viewport().Offset()
	assert.Equal(t, int32(200), y, "clamped to the pan limit")

	m.Update(key("g"))
	_, y = m.Viewport().Offset()
	assert.Zero(t, y)

	m.Update(key("G"))
	_, y = m.Viewport().Offset()
	assert.Equal(t, int32(200), y)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	_, y = m.Viewport().Offset()
	assert.Equal(t, int32(150), y)

	m.Update(key("l"))
	x, _ := m.Viewport().Offset()
	assert.Zero(t, x, "image narrower than the terminal")
}

func TestViewerZoomKeys(t *testing.T) {
	m := newTestViewer(t)

	m.Update(key("+"))
	m.Update(key("="))
	assert.Equal(t, 3, m.Viewport().ZoomLevel())

	m.Update(key("-"))
	assert.Equal(t, 2, m.Viewport().ZoomLevel())

	m.Update(key("0"))
	assert.Equal(t, 1, m.Viewport().ZoomLevel())
	m.Update(key("-"))
	assert.Equal(t, 1, m.Viewport().ZoomLevel())
}

func TestViewerQuit(t *testing.T) {
	m := newTestViewer(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewerResize(t *testing.T) {
	m := newTestViewer(t)
	m.Update(key("+"))

	m.Update(tea.WindowSizeMsg{Width: 50, Height: 10})
	assert.Equal(t, uint16(50), m.wi.ScWidth)
	assert.Equal(t, uint16(500), m.wi.SpxWidth)
	assert.Equal(t, uint16(100), m.wi.SpxHeight)
	assert.Equal(t, 2, m.Viewport().ZoomLevel(), "zoom survives a resize")

	m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
	assert.Equal(t, uint16(50), m.wi.ScWidth)
}

func TestViewerView(t *testing.T) {
	m := newTestViewer(t)
	out := m.View()
	require.NoError(t, m.Err())
	assert.Contains(t, out, "▀")
	assert.Contains(t, out, "white.png  zoom 1x  pan 0,0")
}

func TestNewViewerErrors(t *testing.T) {
	_, err := NewViewer(image.NewRGBA(image.Rectangle{}), Ascii, smallTerm(), "")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewViewer(solidImage(1, 1, color.White), InlineEncoder(42), smallTerm(), "")
	assert.ErrorIs(t, err, ErrUnknownEncoder)
}
