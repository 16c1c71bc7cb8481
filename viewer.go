package rasteroid

import (
	"fmt"
	"image"

	tea "github.com/charmbracelet/bubbletea"
)

// Pan steps in zoomed pixels.
const (
	PanStep     = 50
	PanPageStep = 200
)

// ViewerModel is a bubbletea model for zooming and panning a single image.
// It maps key presses onto a Viewport and renders the visible region with
// the configured protocol.
type ViewerModel struct {
	img      image.Image
	renderer Renderer
	wi       *Wininfo
	vp       *Viewport
	title    string
	err      error
	// Kitty renders replace this image instead of stacking new ones
	imageID uint32

	// set by Async
	worker *RenderWorker
	frame  string
}

// renderedMsg carries a finished background render.
type renderedMsg RenderOutcome

// NewViewer returns a viewer for img sized to the terminal in wi.
func NewViewer(img image.Image, enc InlineEncoder, wi *Wininfo, title string) (*ViewerModel, error) {
	renderer, err := GetRenderer(enc)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	return &ViewerModel{
		img:      img,
		renderer: renderer,
		wi:       wi,
		vp:       NewViewport(uint32(wi.SpxWidth), uint32(wi.SpxHeight), uint32(b.Dx()), uint32(b.Dy())),
		title:    title,
		imageID:  newImageID(),
	}, nil
}

// Async moves rendering onto a RenderWorker. View then shows the latest
// finished frame while newer ones render. Call Close when done.
func (m *ViewerModel) Async(opts RenderWorkerOptions) *ViewerModel {
	m.worker = NewRenderWorker(m.img, m.renderer, opts)
	return m
}

// Close stops the background worker, if any.
func (m *ViewerModel) Close() {
	if m.worker != nil {
		m.worker.Close()
	}
}

// Viewport exposes the current zoom and pan state.
func (m *ViewerModel) Viewport() *Viewport { return m.vp }

// Err returns the last render error.
func (m *ViewerModel) Err() error { return m.err }

func (m *ViewerModel) Init() tea.Cmd {
	if m.worker == nil {
		return nil
	}
	m.worker.Schedule(m.request())
	return m.awaitRender
}

func (m *ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKey(msg.String()); cmd != nil {
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case renderedMsg:
		m.frame, m.err = msg.Output, msg.Err
		return m, m.awaitRender
	default:
		return m, nil
	}
	if m.worker != nil {
		m.worker.Schedule(m.request())
	}
	return m, nil
}

func (m *ViewerModel) awaitRender() tea.Msg {
	res, ok := m.worker.Wait()
	if !ok {
		return nil
	}
	return renderedMsg(res)
}

func (m *ViewerModel) request() RenderRequest {
	x, y := m.vp.Offset()
	return RenderRequest{Zoom: m.vp.ZoomLevel(), X: x, Y: y, Wininfo: *m.wi, ImageID: m.imageID}
}

func (m *ViewerModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "esc", "ctrl+c":
		return tea.Quit
	case "left", "h":
		m.vp.Pan(-PanStep, 0)
	case "right", "l":
		m.vp.Pan(PanStep, 0)
	case "up", "k":
		m.vp.Pan(0, -PanStep)
	case "down", "j":
		m.vp.Pan(0, PanStep)
	case "ctrl+u", "u":
		m.vp.Pan(0, -PanPageStep)
	case "ctrl+d", "d":
		m.vp.Pan(0, PanPageStep)
	case "+", "=":
		m.vp.SetZoom(m.vp.ZoomLevel() + 1)
	case "-":
		if m.vp.ZoomLevel() > 1 {
			m.vp.SetZoom(m.vp.ZoomLevel() - 1)
		}
	case "g":
		x, _ := m.vp.Offset()
		m.vp.SetPan(x, 0)
	case "G":
		x, _ := m.vp.Offset()
		_, maxY := m.vp.PanLimits()
		m.vp.SetPan(x, maxY)
	case "0":
		m.vp.Reset()
	}
	return nil
}

// resize keeps zoom and pan but refits the viewport to a new terminal size.
func (m *ViewerModel) resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	cellW, cellH := m.wi.CellPixels()
	if cellW == 0 || cellH == 0 {
		return
	}
	next := *m.wi
	next.ScWidth, next.ScHeight = clampU16(float64(cols)), clampU16(float64(rows))
	next.SpxWidth = clampU16(float64(cols) * cellW)
	next.SpxHeight = clampU16(float64(rows) * cellH)
	m.wi = &next

	zoom := m.vp.ZoomLevel()
	x, y := m.vp.Offset()
	b := m.img.Bounds()
	m.vp = NewViewport(uint32(next.SpxWidth), uint32(next.SpxHeight), uint32(b.Dx()), uint32(b.Dy()))
	m.vp.SetZoom(zoom)
	m.vp.SetPan(x, y)
}

func (m *ViewerModel) View() string {
	out := m.frame
	if m.worker == nil {
		res := renderRequest(m.img, m.renderer, m.request())
		out, m.err = res.Output, res.Err
	}
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}
	x, y := m.vp.Offset()
	return out + fmt.Sprintf("\n%s  zoom %dx  pan %d,%d  [hjkl pan, +/- zoom, 0 reset, q quit]", m.title, m.vp.ZoomLevel(), x, y)
}
