package rasteroid

import (
	"bytes"
	"fmt"
	"image"
	"sync"
	"time"
)

// RenderRequest is one viewport state of an image.
type RenderRequest struct {
	Zoom int
	X    int32
	Y    int32
	// Wininfo is copied so a request never observes later resizes.
	Wininfo Wininfo
	// ImageID is reused by every Kitty render of the same image; the
	// previous placement is deleted before the new one is drawn.
	ImageID uint32
}

// RenderOutcome is the result of rendering a RenderRequest.
type RenderOutcome struct {
	Request  RenderRequest
	Output   string
	Duration time.Duration
	Err      error
}

// RenderWorkerOptions configures a RenderWorker.
type RenderWorkerOptions struct {
	// Workers is the number of goroutines; defaults to 1. More than one
	// needs a renderer that is safe for concurrent use.
	Workers int
	Queue   int // size of the request/result buffers; defaults to 1 (latest wins)
}

// RenderWorker renders viewport states on background goroutines so a UI loop
// stays responsive. When a queue is full the oldest entry is dropped, so the
// latest viewport always wins.
type RenderWorker struct {
	img      image.Image
	renderer Renderer

	reqCh  chan RenderRequest
	resCh  chan RenderOutcome
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu            sync.Mutex
	lastRequested *RenderRequest
	lastResult    *RenderOutcome
}

// NewRenderWorker starts a worker for img.
func NewRenderWorker(img image.Image, renderer Renderer, opts RenderWorkerOptions) *RenderWorker {
	workers := max(opts.Workers, 1)
	queue := max(opts.Queue, 1)

	w := &RenderWorker{
		img:      img,
		renderer: renderer,
		reqCh:    make(chan RenderRequest, queue),
		resCh:    make(chan RenderOutcome, queue),
		stopCh:   make(chan struct{}),
	}
	for range workers {
		w.wg.Add(1)
		go w.loop()
	}
	return w
}

// Close stops all worker goroutines. It is safe to call more than once.
func (w *RenderWorker) Close() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
	})
}

// Schedule enqueues a request. A request identical to the most recent one is
// skipped.
func (w *RenderWorker) Schedule(req RenderRequest) {
	w.mu.Lock()
	if w.lastRequested != nil && *w.lastRequested == req {
		w.mu.Unlock()
		return
	}
	w.lastRequested = &req
	w.mu.Unlock()

	select {
	case w.reqCh <- req:
	default:
		select {
		case <-w.reqCh:
		default:
		}
		select {
		case w.reqCh <- req:
		default:
		}
	}
}

// Wait blocks until a render completes or the worker is closed.
func (w *RenderWorker) Wait() (RenderOutcome, bool) {
	select {
	case res := <-w.resCh:
		w.remember(res)
		return res, true
	case <-w.stopCh:
		return RenderOutcome{}, false
	}
}

// TryLatest returns the newest completed render without blocking.
func (w *RenderWorker) TryLatest() (RenderOutcome, bool) {
	for {
		select {
		case res := <-w.resCh:
			w.remember(res)
		default:
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.lastResult == nil {
				return RenderOutcome{}, false
			}
			return *w.lastResult, true
		}
	}
}

func (w *RenderWorker) remember(res RenderOutcome) {
	w.mu.Lock()
	w.lastResult = &res
	w.mu.Unlock()
}

func (w *RenderWorker) loop() {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.reqCh:
			res := renderRequest(w.img, w.renderer, req)
			select {
			case w.resCh <- res:
			default:
				select {
				case <-w.resCh:
				default:
				}
				select {
				case w.resCh <- res:
				default:
				}
			}
		case <-w.stopCh:
			return
		}
	}
}

// renderRequest draws the visible region of img for one viewport state,
// fitted below a one-line status bar.
func renderRequest(img image.Image, renderer Renderer, req RenderRequest) RenderOutcome {
	start := time.Now()
	wi := req.Wininfo
	b := img.Bounds()

	vp := NewViewport(uint32(wi.SpxWidth), uint32(wi.SpxHeight), uint32(b.Dx()), uint32(b.Dy()))
	vp.SetZoom(req.Zoom)
	vp.SetPan(req.X, req.Y)

	var buf bytes.Buffer
	if req.ImageID != 0 && renderer.Encoder() == Kitty {
		if err := KittyDelete(&buf, &wi, req.ImageID); err != nil {
			return RenderOutcome{Request: req, Duration: time.Since(start), Err: err}
		}
	}
	width, height := "100%", fmt.Sprintf("%dc", max(int(wi.ScHeight)-1, 1))
	err := renderer.Render(&buf, vp.Apply(img), &wi, RenderOptions{
		ID:        req.ImageID,
		Placement: Placement{At: &image.Point{X: 1, Y: 1}},
		Width:     &width,
		Height:    &height,
		Center:    true,
	})
	return RenderOutcome{
		Request:  req,
		Output:   buf.String(),
		Duration: time.Since(start),
		Err:      err,
	}
}
