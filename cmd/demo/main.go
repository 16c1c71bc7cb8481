package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"strings"

	"github.com/blacktop/go-rasteroid"
)

func main() {
	if len(os.Args) > 1 {
		// If a file is provided, render it
		renderFile(os.Args[1])
	} else {
		// Otherwise, create a test pattern
		renderTestPattern()
	}
}

func renderFile(path string) {
	fmt.Printf("Rendering image: %s\n\n", path)

	// Simple one-liner to render a file
	err := rasteroid.PrintFile(path)
	if err != nil {
		log.Fatalf("Error rendering file: %v", err)
	}

	fmt.Println("\n\nUsing fluent API with custom settings:")

	// More complex example with configuration
	img, err := rasteroid.Open(path)
	if err != nil {
		log.Fatalf("Error opening file: %v", err)
	}

	err = img.
		Width("80%").
		Height("40c").
		Center(true).
		Print()

	if err != nil {
		log.Fatalf("Error rendering with fluent API: %v", err)
	}
}

func renderTestPattern() {
	fmt.Print("Creating test pattern...\n\n")

	// Create a colorful test pattern
	img := createTestPattern()
	env := rasteroid.NewEnvIdentifiers()

	// Test all encoders
	encoders := []struct {
		name      string
		encoder   rasteroid.InlineEncoder
		supported func(*rasteroid.EnvIdentifiers) bool
	}{
		{"Half blocks", rasteroid.Ascii, nil},
		{"Kitty", rasteroid.Kitty, rasteroid.IsKittyCapable},
		{"Sixel", rasteroid.Sixel, rasteroid.IsSixelCapable},
		{"iTerm2", rasteroid.Iterm, rasteroid.IsItermCapable},
	}

	for _, e := range encoders {
		fmt.Printf("\n=== %s ===\n", e.name)
		if e.supported != nil && !e.supported(env) {
			fmt.Printf("❌ %s is not supported in this terminal\n", e.name)
			continue
		}
		err := rasteroid.New(img).
			Width("40c").
			Height("20c").
			Encoder(e.encoder).
			Print()

		if err != nil {
			fmt.Printf("Error with %s: %v\n", e.name, err)
		} else {
			fmt.Printf("\n%s rendering completed\n", e.name)
		}

		fmt.Print(strings.Repeat("-", 50) + "\n")
	}

	fmt.Printf("\n=== Auto-detect (%s) ===\n", rasteroid.AutoDetect(false, false, false, false, env))
	if err := rasteroid.Print(img); err != nil {
		fmt.Printf("Error: %v\n", err)
	}

	// Test with different configurations
	fmt.Println("\n=== Configuration Examples ===")

	fmt.Println("\nCentered:")
	err := rasteroid.New(img).
		Width("30c").
		Height("15c").
		Center(true).
		Encoder(rasteroid.Ascii).
		Print()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}

	fmt.Println("\n\nZoomed 3x into the center:")
	err = rasteroid.New(img).
		Width("30c").
		Height("15c").
		Zoom(3, 200, 200).
		Encoder(rasteroid.Ascii).
		Print()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func createTestPattern() image.Image {
	const size = 200
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	// Create a gradient pattern
	for y := range size {
		for x := range size {
			r := uint8((x * 255) / size)
			g := uint8((y * 255) / size)
			b := uint8(((x + y) * 255) / (2 * size))
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	// Add some shapes
	// Red square
	draw.Draw(img, image.Rect(20, 20, 60, 60),
		&image.Uniform{color.RGBA{255, 0, 0, 255}},
		image.Point{}, draw.Src)

	// Green circle (approximated with a square for simplicity)
	draw.Draw(img, image.Rect(140, 20, 180, 60),
		&image.Uniform{color.RGBA{0, 255, 0, 255}},
		image.Point{}, draw.Src)

	// Blue square
	draw.Draw(img, image.Rect(20, 140, 60, 180),
		&image.Uniform{color.RGBA{0, 0, 255, 255}},
		image.Point{}, draw.Src)

	// White square
	draw.Draw(img, image.Rect(140, 140, 180, 180),
		&image.Uniform{color.RGBA{255, 255, 255, 255}},
		image.Point{}, draw.Src)

	return img
}
