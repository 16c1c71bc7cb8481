/*
Package rasteroid draws images and video in terminal emulators using the
Kitty graphics protocol, the iTerm2 inline image protocol, DEC sixels or
colored Unicode half blocks.

The protocol is picked from the environment (see AutoDetect) unless one is
forced. Sequences are wrapped for tmux passthrough when running inside tmux.

Basic Usage:

	// Simple one-liner
	rasteroid.PrintFile("image.png")

	// With configuration
	img, err := rasteroid.Open("image.png")
	if err != nil {
	    log.Fatal(err)
	}
	err = img.Width("80%").Height("20c").Center(true).Print()

Dimensions:

Sizes are strings: a bare number or "px" suffix is pixels (cells for half
blocks), "c" is cells, "%" is a percentage of the terminal, and "none"
keeps the native size. Terminal geometry comes from Wininfo, built once per
process by InitWininfo or lazily by GetWininfo.

Encoders:

	KittyEncodeImage(w, png, wi, KittyOptions{})
	ItermEncodeImage(w, png, wi, Placement{})
	SixelEncodeImage(w, img, wi, SixelOptions{})
	ASCIIEncodeImage(w, img, Placement{})

Video:

Frames are supplied as an iter.Seq[Frame] of packed RGB data. Kitty streams
them as a native animation, half blocks redraw the screen per frame.

	ctx, stop := rasteroid.SetupSignalHandler(context.Background())
	defer stop()
	g, _ := gif.DecodeAll(f)
	rasteroid.KittyEncodeFrames(ctx, os.Stdout, rasteroid.FramesFromGIF(g), wi, rasteroid.KittyVideoOptions{})

Viewer:

ViewerModel is a bubbletea model that zooms and pans an image with vim-style
keys.
*/
package rasteroid
