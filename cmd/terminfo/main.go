package main

import (
	"fmt"
	"slices"

	"github.com/blacktop/go-rasteroid"
	"github.com/blacktop/go-rasteroid/pkg/csi"
)

func main() {
	fmt.Println("=== Terminal Capability Detection Utility ===")
	fmt.Println()

	env := rasteroid.NewEnvIdentifiers()

	// Display environment information
	fmt.Println("Terminal Environment:")
	vars := env.Vars()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, vars[k])
	}
	fmt.Printf("  In tmux: %v\n", rasteroid.IsTmux(env))
	fmt.Println()

	// Display graphics protocol support
	fmt.Println("Graphics Protocol Support:")
	fmt.Printf("  Kitty Graphics: %v\n", rasteroid.IsKittyCapable(env))
	fmt.Printf("  Sixel Graphics: %v\n", rasteroid.IsSixelCapable(env))
	fmt.Printf("  iTerm2 Graphics: %v\n", rasteroid.IsItermCapable(env))
	fmt.Println()

	opts := rasteroid.DefaultWininfoOptions()
	opts.Query = csi.QuerySupported()
	wi := rasteroid.NewWininfo(opts)

	fmt.Println("Font and Size Information:")
	fmt.Printf("  Window: %s\n", wi)
	cw, ch := wi.CellPixels()
	fmt.Printf("  Cell Size: %.1fx%.1f pixels\n", cw, ch)
	if opts.Query {
		if w, h, ok := csi.QueryTextAreaSizeInPixels(); ok {
			fmt.Printf("  Text Area (CSI 14t): %dx%d pixels\n", w, h)
		}
		if w, h, ok := csi.QueryFontSize(); ok {
			fmt.Printf("  Font Size: %dx%d pixels\n", w, h)
		}
		if w, h, ok := csi.QueryXTSMGRAPHICS(); ok {
			fmt.Printf("  Sixel Geometry (XTSMGRAPHICS): %dx%d pixels\n", w, h)
		}
	} else {
		fmt.Println("  Terminal queries: unavailable (not a tty)")
	}
	fmt.Println()

	fmt.Println("=== Protocol Auto-Detection ===")
	detected := rasteroid.AutoDetect(false, false, false, false, env)
	fmt.Printf("Auto-detected protocol: %s\n", detected)
	fmt.Println()

	fmt.Println("=== Summary ===")
	showRecommendations(env, detected)
}

// showRecommendations provides recommendations based on detected capabilities
func showRecommendations(env *rasteroid.EnvIdentifiers, detected rasteroid.InlineEncoder) {
	switch detected {
	case rasteroid.Kitty:
		fmt.Println("✓ Kitty graphics protocol is available - best performance and features")
	case rasteroid.Iterm:
		fmt.Println("✓ iTerm2 graphics protocol is available - good for macOS terminal apps")
	case rasteroid.Sixel:
		fmt.Println("✓ Sixel graphics protocol is available - good compatibility and quality")
	default:
		fmt.Println("• No graphics protocols detected - will use colored half blocks")
	}

	if rasteroid.IsTmux(env) {
		fmt.Println("• Running in tmux - sequences are wrapped for passthrough")
	}
}
