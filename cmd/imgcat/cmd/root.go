/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/go-rasteroid"
	"github.com/blacktop/go-rasteroid/pkg/csi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func init() {
	log.SetHandler(clihander.Default)
}

// options is the merged result of config files and flags.
type options struct {
	encoder     rasteroid.InlineEncoder
	wininfo     rasteroid.WininfoOptions
	width       *string
	height      *string
	center      bool
	shm         bool
	loop        bool
	clear       bool
	interactive bool
	grid        int
	zoom        int
	panX        int32
	panY        int32
	at          *image.Point
	id          uint32
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "imgcat [files...]",
		Short:         "Display images and animations in your terminal",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	f := cmd.Flags()
	f.BoolP("verbose", "V", false, "Enable verbose logging")
	f.BoolP("clear", "c", false, "Clear the image after displaying it")
	f.Bool("detect", false, "Print the detected protocol and terminal geometry")
	f.Bool("delete", false, "Delete every Kitty image on screen and exit")

	f.Bool("kitty", false, "Force the Kitty graphics protocol")
	f.Bool("iterm", false, "Force the iTerm2 inline image protocol")
	f.Bool("sixel", false, "Force sixel graphics")
	f.Bool("ascii", false, "Force colored half blocks")

	f.StringP("width", "W", "", "Target width (e.g. 800, 800px, 40c, 80%, none)")
	f.StringP("height", "H", "", "Target height (e.g. 600, 600px, 20c, 50%, none)")
	f.Bool("center", false, "Center the image horizontally")
	f.Bool("inline", false, "Force inline placement (Kitty unicode placeholders)")
	f.Bool("shm", false, "Transfer Kitty images through shared memory")
	f.Bool("loop", false, "Loop half block animations until interrupted")
	f.IntP("x", "x", 0, "Absolute column to draw at (1-based, 0 to disable)")
	f.IntP("y", "y", 0, "Absolute row to draw at (1-based, 0 to disable)")
	f.String("id", "", "Kitty image id for animations")

	f.Int("zoom", 1, "Zoom level")
	f.Int32("pan-x", 0, "Horizontal pan offset in zoomed pixels")
	f.Int32("pan-y", 0, "Vertical pan offset in zoomed pixels")

	f.String("spx", "", "Fallback terminal size in pixels (WxH[xforce])")
	f.String("sc", "", "Fallback terminal size in cells (WxH[xforce])")
	f.Float64("scale", 1, "Scale factor applied to the terminal pixel size")

	f.Int("grid", 0, "Lay images out in a grid with this many columns")
	f.BoolP("interactive", "i", false, "Open the image in a zoom/pan viewer")
	return cmd
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func run(cmd *cobra.Command, args []string) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := LoadConfig(configPaths()...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := resolveOptions(cmd, cfg, rasteroid.NewEnvIdentifiers())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if del, _ := cmd.Flags().GetBool("delete"); del {
		return deleteImages(out, opts.wininfo.IsTmux)
	}

	opts.wininfo.Query = csi.QuerySupported()
	if err := rasteroid.InitWininfo(opts.wininfo); err != nil {
		if !errors.Is(err, rasteroid.ErrWininfoInitialized) {
			return err
		}
		log.Debug("window info already initialized")
	}
	wi := rasteroid.GetWininfo()
	log.WithFields(log.Fields{
		"encoder": opts.encoder,
		"wininfo": wi.String(),
	}).Debug("Terminal")

	if detect, _ := cmd.Flags().GetBool("detect"); detect {
		fmt.Fprintf(out, "Best protocol: %s\n", opts.encoder)
		fmt.Fprintf(out, "Terminal: %s\n", wi)
		return nil
	}
	if len(args) == 0 {
		return errors.New("requires at least 1 image path")
	}

	if wi.IsTmux {
		if err := rasteroid.EnableTmuxPassthrough(); err != nil {
			log.WithError(err).Warn("Images may not show up inside tmux")
		}
	}

	ctx, stop := rasteroid.SetupSignalHandler(cmd.Context())
	defer stop()

	switch {
	case opts.grid > 0:
		return renderGrid(out, args, opts, wi)
	case opts.interactive:
		if len(args) > 1 {
			log.Warnf("Interactive mode shows only %s", args[0])
		}
		return runViewer(args[0], opts, wi)
	}

	for _, path := range args {
		if ctx.Err() != nil {
			break
		}
		if err := renderFile(ctx, out, path, opts, wi); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// resolveOptions merges flags over config file values. Flags only win when
// they were given explicitly.
func resolveOptions(cmd *cobra.Command, cfg *Config, env *rasteroid.EnvIdentifiers) (*options, error) {
	f := cmd.Flags()
	opts := &options{}

	forceKitty, _ := f.GetBool("kitty")
	forceIterm, _ := f.GetBool("iterm")
	forceSixel, _ := f.GetBool("sixel")
	forceASCII, _ := f.GetBool("ascii")
	switch {
	case forceKitty || forceIterm || forceSixel || forceASCII:
		opts.encoder = rasteroid.AutoDetect(forceKitty, forceIterm, forceSixel, forceASCII, env)
	case cfg.Encoder != "":
		enc, err := rasteroid.ParseInlineEncoder(cfg.Encoder)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts.encoder = enc
	default:
		opts.encoder = rasteroid.AutoDetect(false, false, false, false, env)
	}

	opts.wininfo = rasteroid.WininfoOptions{IsTmux: rasteroid.IsTmux(env)}
	if s := pickString(cmd, "spx", cfg.Spx); s != "" {
		size, err := rasteroid.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("--spx: %w", err)
		}
		opts.wininfo.PixelFallback = &size
	}
	if s := pickString(cmd, "sc", cfg.Sc); s != "" {
		size, err := rasteroid.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("--sc: %w", err)
		}
		opts.wininfo.CellFallback = &size
	}
	scale := cfg.Scale
	if f.Changed("scale") {
		scale, _ = f.GetFloat64("scale")
	}
	if scale <= 0 {
		return nil, fmt.Errorf("--scale must be positive, got %v", scale)
	}
	opts.wininfo.Scale = float32(scale)
	opts.wininfo.NeedsInline = pickBool(cmd, "inline", cfg.Inline)

	if s := pickString(cmd, "width", cfg.Width); s != "" {
		opts.width = &s
	}
	if s := pickString(cmd, "height", cfg.Height); s != "" {
		opts.height = &s
	}
	opts.center = pickBool(cmd, "center", cfg.Center)
	opts.shm = pickBool(cmd, "shm", cfg.Shm)
	opts.loop, _ = f.GetBool("loop")
	opts.clear, _ = f.GetBool("clear")
	opts.interactive, _ = f.GetBool("interactive")
	opts.grid, _ = f.GetInt("grid")
	opts.zoom, _ = f.GetInt("zoom")
	opts.panX, _ = f.GetInt32("pan-x")
	opts.panY, _ = f.GetInt32("pan-y")
	if opts.zoom < 1 {
		return nil, fmt.Errorf("--zoom must be at least 1, got %d", opts.zoom)
	}

	x, _ := f.GetInt("x")
	y, _ := f.GetInt("y")
	if err := validatePlacementCoordinates(x, y); err != nil {
		return nil, err
	}
	if x > 0 || y > 0 {
		opts.at = &image.Point{X: max(x, 1), Y: max(y, 1)}
	}

	idStr, _ := f.GetString("id")
	id, _, err := parseImageID(idStr)
	if err != nil {
		return nil, err
	}
	opts.id = id
	return opts, nil
}

func pickString(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func pickBool(cmd *cobra.Command, name string, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return fallback
}

// deleteImages removes every Kitty image placement from the screen.
func deleteImages(w io.Writer, tmux bool) error {
	if err := rasteroid.KittyDelete(w, &rasteroid.Wininfo{IsTmux: tmux}, 0); err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	return nil
}

func validatePlacementCoordinates(x, y int) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("placement coordinates must be non-negative, got %d,%d", x, y)
	}
	return nil
}

// parseImageID parses a Kitty image id. An empty string means "pick one".
func parseImageID(s string) (uint32, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("invalid image id %q: %w", s, err)
	}
	if id == 0 {
		return 0, false, fmt.Errorf("invalid image id %q: must be non-zero", s)
	}
	return uint32(id), true, nil
}

func renderFile(ctx context.Context, w io.Writer, path string, opts *options, wi *rasteroid.Wininfo) error {
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		played, err := playGIF(ctx, w, path, opts, wi)
		if err != nil || played {
			return err
		}
	}

	img, err := rasteroid.Open(path)
	if err != nil {
		return err
	}
	img.Encoder(opts.encoder).
		Wininfo(wi).
		Center(opts.center).
		SharedMemory(opts.shm).
		Zoom(opts.zoom, opts.panX, opts.panY)
	if opts.width != nil {
		img.Width(*opts.width)
	}
	if opts.height != nil {
		img.Height(*opts.height)
	}
	if opts.at != nil {
		img.At(opts.at.X, opts.at.Y)
	}

	log.Debugf("Image Info: %s", img.Info())

	if err := img.Write(w); err != nil {
		return fmt.Errorf("failed to display image: %w", err)
	}
	fmt.Fprintln(w)

	if opts.clear { // Clear the image after displaying it
		time.Sleep(1 * time.Second)
		if err := img.Clear(w); err != nil {
			return fmt.Errorf("failed to clear image: %w", err)
		}
	}
	return nil
}

// playGIF streams an animated GIF with the protocols that support motion.
// It reports false when the file should be drawn as a still image instead.
func playGIF(ctx context.Context, w io.Writer, path string, opts *options, wi *rasteroid.Wininfo) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return false, fmt.Errorf("failed to decode gif: %w", err)
	}
	if len(g.Image) < 2 {
		return false, nil
	}
	log.WithFields(log.Fields{
		"frames":  len(g.Image),
		"encoder": opts.encoder,
	}).Debug("Playing animation")

	switch opts.encoder {
	case rasteroid.Kitty:
		frames := rasteroid.FramesFromGIF(g)
		if opts.width != nil || opts.height != nil {
			frames = fitFrames(frames, wi, opts.width, opts.height)
		}
		res, err := rasteroid.KittyEncodeFrames(ctx, w, frames, wi, rasteroid.KittyVideoOptions{
			Placement:    rasteroid.Placement{At: opts.at},
			ID:           opts.id,
			Center:       opts.center,
			SharedMemory: opts.shm,
		})
		if res != nil {
			log.WithField("id", res.ID).Debug("Animation sent")
		}
		return true, err
	case rasteroid.Ascii:
		return true, rasteroid.ASCIIEncodeFrames(ctx, w, rasteroid.FramesFromGIF(g), wi, rasteroid.ASCIIVideoOptions{
			Width:  opts.width,
			Height: opts.height,
			Center: opts.center,
			Loop:   opts.loop,
		})
	case rasteroid.Iterm:
		// iTerm2 animates GIF bytes by itself
		data, err := os.ReadFile(path)
		if err != nil {
			return true, err
		}
		if err := rasteroid.ItermEncodeImage(w, data, wi, rasteroid.Placement{At: opts.at}); err != nil {
			return true, err
		}
		fmt.Fprintln(w)
		return true, nil
	}
	return false, nil
}

// fitFrames resizes every frame into the requested box.
func fitFrames(frames iter.Seq[rasteroid.Frame], wi *rasteroid.Wininfo, width, height *string) iter.Seq[rasteroid.Frame] {
	return func(yield func(rasteroid.Frame) bool) {
		for frame := range frames {
			img, err := frame.Image()
			if err != nil {
				log.WithError(err).Warn("Skipping frame")
				continue
			}
			fitted, err := rasteroid.FitImage(img, wi, width, height, false, false)
			if err != nil {
				log.WithError(err).Error("Failed to resize frame")
				return
			}
			if !yield(rasteroid.FrameFromImage(fitted, frame.Timestamp)) {
				return
			}
		}
	}
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func renderGrid(w io.Writer, paths []string, opts *options, wi *rasteroid.Wininfo) error {
	width, height := "20c", "10c"
	if opts.width != nil {
		width = *opts.width
	}
	if opts.height != nil {
		height = *opts.height
	}
	cols, rows, err := wi.ReportSize(width, height)
	if err != nil {
		return err
	}

	g := rasteroid.NewGallery(opts.grid, cols, rows)
	for _, path := range paths {
		img, err := decodeFile(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("Skipping")
			continue
		}
		g.Add(img)
	}
	log.WithFields(log.Fields{
		"images":  g.Len(),
		"columns": opts.grid,
		"tile":    fmt.Sprintf("%dx%d", cols, rows),
	}).Debug("Rendering grid")
	return g.Render(w, opts.encoder, wi)
}

func runViewer(path string, opts *options, wi *rasteroid.Wininfo) error {
	img, err := decodeFile(path)
	if err != nil {
		return err
	}
	m, err := rasteroid.NewViewer(img, opts.encoder, wi, filepath.Base(path))
	if err != nil {
		return err
	}
	m.Viewport().SetZoom(opts.zoom)
	m.Viewport().SetPan(opts.panX, opts.panY)
	m.Async(rasteroid.RenderWorkerOptions{})
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return m.Err()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
