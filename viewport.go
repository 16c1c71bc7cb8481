package rasteroid

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Viewport tracks the zoom level and pan offset of an image shown in a
// terminal-sized pixel box. Pan offsets are in zoomed pixel space and are
// always clamped to [0, max(0, imageDim*zoom - termDim)].
type Viewport struct {
	zoom        int
	x, y        int32
	imageWidth  uint32
	imageHeight uint32
	termWidth   uint32
	termHeight  uint32
}

// NewViewport returns an unzoomed, unpanned viewport.
func NewViewport(termWidth, termHeight, imageWidth, imageHeight uint32) *Viewport {
	return &Viewport{
		zoom:        1,
		imageWidth:  imageWidth,
		imageHeight: imageHeight,
		termWidth:   termWidth,
		termHeight:  termHeight,
	}
}

// ZoomLevel returns the current integer zoom factor.
func (v *Viewport) ZoomLevel() int { return v.zoom }

// Offset returns the current pan offset.
func (v *Viewport) Offset() (x, y int32) { return v.x, v.y }

// PanLimits returns the largest allowed pan offset on each axis.
func (v *Viewport) PanLimits() (maxX, maxY int32) {
	return panLimit(v.imageWidth, v.zoom, v.termWidth), panLimit(v.imageHeight, v.zoom, v.termHeight)
}

func panLimit(imageDim uint32, zoom int, termDim uint32) int32 {
	limit := int64(imageDim)*int64(zoom) - int64(termDim)
	if limit <= 0 {
		return 0
	}
	if limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(limit)
}

func (v *Viewport) clamp() {
	maxX, maxY := v.PanLimits()
	v.x = min(max(v.x, 0), maxX)
	v.y = min(max(v.y, 0), maxY)
}

// Pan moves the viewport by (dx, dy) zoomed pixels.
func (v *Viewport) Pan(dx, dy int32) {
	v.x = saturatingAdd(v.x, dx)
	v.y = saturatingAdd(v.y, dy)
	v.clamp()
}

// SetPan moves the viewport to an absolute offset.
func (v *Viewport) SetPan(x, y int32) {
	v.x, v.y = x, y
	v.clamp()
}

// Zoom multiplies the zoom level by factor, keeping focal (in unzoomed image
// coordinates) at the same screen position. A nil focal point means the
// center of the terminal box.
func (v *Viewport) Zoom(factor float64, focal *image.Point) {
	old := v.zoom
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		factor = 1
	}
	next := max(int(math.Round(float64(old)*factor)), 1)

	var fx, fy float64
	if focal != nil {
		fx, fy = float64(focal.X), float64(focal.Y)
	} else {
		fx = (float64(v.x) + float64(v.termWidth)/2) / float64(old)
		fy = (float64(v.y) + float64(v.termHeight)/2) / float64(old)
	}

	screenX := fx*float64(old) - float64(v.x)
	screenY := fy*float64(old) - float64(v.y)

	v.zoom = next
	v.x = clampI32(math.Round(fx*float64(next) - screenX))
	v.y = clampI32(math.Round(fy*float64(next) - screenY))
	v.clamp()
}

// SetZoom sets an absolute zoom level around the terminal center.
func (v *Viewport) SetZoom(zoom int) {
	v.Zoom(float64(max(zoom, 1))/float64(v.zoom), nil)
}

// Reset returns to zoom 1 with no pan.
func (v *Viewport) Reset() {
	v.zoom = 1
	v.x, v.y = 0, 0
}

// Apply returns the visible region of img. At zoom 1 with no pan it returns
// an unmodified copy.
func (v *Viewport) Apply(img image.Image) image.Image {
	b := img.Bounds()
	if v.zoom == 1 && v.x == 0 && v.y == 0 {
		return copyImage(img, b)
	}

	z := v.zoom
	x0 := int(v.x) / z
	y0 := int(v.y) / z
	rect := image.Rect(x0, y0, x0+int(v.termWidth)/z, y0+int(v.termHeight)/z).
		Add(b.Min).
		Intersect(b)
	if rect.Empty() {
		return copyImage(img, b)
	}
	return copyImage(img, rect)
}

func copyImage(img image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// CalcFit returns the largest size with the source aspect ratio that fits in
// the destination box. Neither axis of the result is zero for positive input.
func CalcFit(srcW, srcH, dstW, dstH uint32) (uint32, uint32) {
	if srcW == 0 || srcH == 0 || dstW == 0 || dstH == 0 {
		return 0, 0
	}
	srcAR := float64(srcW) / float64(srcH)
	dstAR := float64(dstW) / float64(dstH)

	var w, h uint32
	if srcAR > dstAR {
		w = dstW
		h = uint32(math.Round(float64(dstW) / srcAR))
	} else {
		w = uint32(math.Round(float64(dstH) * srcAR))
		h = dstH
	}
	return max(w, 1), max(h, 1)
}

func saturatingAdd(a, b int32) int32 {
	return clampI32(float64(a) + float64(b))
}

func clampI32(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}
