package rasteroid

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a terminal image with a fluent configuration API.
type Image struct {
	source image.Image
	reader io.Reader
	path   string

	width   *string
	height  *string
	encoder *InlineEncoder
	center  bool
	pad     bool
	shm     bool
	at      *image.Point
	zoom    int
	panX    int32
	panY    int32

	wi  *Wininfo
	env *EnvIdentifiers

	renderer Renderer
}

// New wraps an already decoded image.
func New(img image.Image) *Image {
	if img == nil {
		return nil
	}
	return &Image{source: img}
}

// Open returns an Image that decodes path on first use.
func Open(path string) (*Image, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	return &Image{path: path}, nil
}

// From returns an Image that decodes r on first use.
func From(r io.Reader) *Image {
	if r == nil {
		return nil
	}
	return &Image{reader: r}
}

// Width sets the target width as a dimension string such as "80%" or "40c".
func (i *Image) Width(w string) *Image {
	i.width = &w
	return i
}

// Height sets the target height as a dimension string.
func (i *Image) Height(h string) *Image {
	i.height = &h
	return i
}

// Encoder forces a protocol instead of auto-detecting one.
func (i *Image) Encoder(enc InlineEncoder) *Image {
	i.encoder = &enc
	i.renderer = nil
	return i
}

// Center horizontally centers the image.
func (i *Image) Center(c bool) *Image {
	i.center = c
	return i
}

// Pad pads the image to the exact requested size.
func (i *Image) Pad(p bool) *Image {
	i.pad = p
	return i
}

// SharedMemory enables Kitty shared memory transmission.
func (i *Image) SharedMemory(s bool) *Image {
	i.shm = s
	return i
}

// At places the image at an absolute 1-based cell position.
func (i *Image) At(x, y int) *Image {
	i.at = &image.Point{X: x, Y: y}
	return i
}

// Zoom shows only part of the image, magnified zoom times and panned by
// (x, y) zoomed pixels.
func (i *Image) Zoom(zoom int, x, y int32) *Image {
	i.zoom, i.panX, i.panY = zoom, x, y
	return i
}

// Wininfo sets the terminal geometry. Defaults to GetWininfo().
func (i *Image) Wininfo(wi *Wininfo) *Image {
	i.wi = wi
	return i
}

// Env sets the environment used for auto-detection.
func (i *Image) Env(env *EnvIdentifiers) *Image {
	i.env = env
	i.renderer = nil
	return i
}

// Render returns the escape sequences for the image.
func (i *Image) Render() (string, error) {
	var buf bytes.Buffer
	if err := i.Write(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Print writes the image to stdout.
func (i *Image) Print() error {
	return i.Write(os.Stdout)
}

// Write encodes the image to w.
func (i *Image) Write(w io.Writer) error {
	img, err := i.loadImage()
	if err != nil {
		return err
	}
	renderer, err := i.getRenderer()
	if err != nil {
		return err
	}
	wi := i.geometry()
	if i.zoom > 1 || i.panX != 0 || i.panY != 0 {
		b := img.Bounds()
		vp := NewViewport(uint32(wi.SpxWidth), uint32(wi.SpxHeight), uint32(b.Dx()), uint32(b.Dy()))
		vp.SetZoom(max(i.zoom, 1))
		vp.SetPan(i.panX, i.panY)
		img = vp.Apply(img)
	}
	return renderer.Render(w, img, wi, RenderOptions{
		Placement:    Placement{At: i.at},
		Width:        i.width,
		Height:       i.height,
		Center:       i.center,
		Pad:          i.pad,
		SharedMemory: i.shm,
	})
}

// Clear removes the image from the terminal.
func (i *Image) Clear(w io.Writer) error {
	renderer, err := i.getRenderer()
	if err != nil {
		return err
	}
	return renderer.Clear(w, i.geometry())
}

// Info describes the image source and size.
func (i *Image) Info() string {
	img, err := i.loadImage()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	b := img.Bounds()
	src := i.path
	if src == "" {
		src = "memory"
	}
	return fmt.Sprintf("%s (%dx%d)", src, b.Dx(), b.Dy())
}

// Detect returns the protocol the image will be drawn with.
func (i *Image) Detect() InlineEncoder {
	if i.encoder != nil {
		return *i.encoder
	}
	env := i.env
	if env == nil {
		env = NewEnvIdentifiers()
	}
	return AutoDetect(false, false, false, false, env)
}

func (i *Image) geometry() *Wininfo {
	if i.wi != nil {
		return i.wi
	}
	return GetWininfo()
}

func (i *Image) loadImage() (image.Image, error) {
	if i.source != nil {
		return i.source, nil
	}
	var r io.Reader
	switch {
	case i.path != "":
		f, err := os.Open(i.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		r = f
	case i.reader != nil:
		r = i.reader
	default:
		return nil, errors.New("no image source configured")
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	i.source = img
	return img, nil
}

func (i *Image) getRenderer() (Renderer, error) {
	if i.renderer != nil {
		return i.renderer, nil
	}
	renderer, err := GetRenderer(i.Detect())
	if err != nil {
		return nil, err
	}
	i.renderer = renderer
	return renderer, nil
}

// Render renders an image with default settings.
func Render(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("image cannot be nil")
	}
	return New(img).Render()
}

// RenderFile renders an image file with default settings.
func RenderFile(path string) (string, error) {
	img, err := Open(path)
	if err != nil {
		return "", err
	}
	return img.Render()
}

// Print prints an image with default settings.
func Print(img image.Image) error {
	if img == nil {
		return errors.New("image cannot be nil")
	}
	return New(img).Print()
}

// PrintFile prints an image file with default settings.
func PrintFile(path string) error {
	img, err := Open(path)
	if err != nil {
		return err
	}
	return img.Print()
}
