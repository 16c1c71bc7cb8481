package rasteroid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEncoder is returned by ParseInlineEncoder.
var ErrUnknownEncoder = errors.New("unknown encoder")

// InlineEncoder is the wire protocol used to draw images.
type InlineEncoder int

const (
	Kitty InlineEncoder = iota
	Iterm
	Sixel
	Ascii
)

func (e InlineEncoder) String() string {
	switch e {
	case Kitty:
		return "kitty"
	case Iterm:
		return "iterm"
	case Sixel:
		return "sixel"
	case Ascii:
		return "ascii"
	default:
		return fmt.Sprintf("InlineEncoder(%d)", int(e))
	}
}

// ParseInlineEncoder maps a name such as "kitty" or "iterm2" to an encoder.
func ParseInlineEncoder(name string) (InlineEncoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kitty":
		return Kitty, nil
	case "iterm", "iterm2":
		return Iterm, nil
	case "sixel":
		return Sixel, nil
	case "ascii", "halfblocks", "blocks":
		return Ascii, nil
	default:
		return Ascii, fmt.Errorf("%w: %q", ErrUnknownEncoder, name)
	}
}

// itermTerminals are terminal names that speak the iTerm2 image protocol.
var itermTerminals = []string{"mintty", "wezterm", "iterm2", "rio"}

// AutoDetect picks an encoder. Force flags win in the order
// Kitty > iTerm > Sixel > ASCII; otherwise the environment is probed in the
// same order and ASCII is the fallback.
func AutoDetect(forceKitty, forceIterm, forceSixel, forceASCII bool, env *EnvIdentifiers) InlineEncoder {
	switch {
	case forceKitty:
		return Kitty
	case forceIterm:
		return Iterm
	case forceSixel:
		return Sixel
	case forceASCII:
		return Ascii
	}
	switch {
	case IsKittyCapable(env):
		return Kitty
	case IsItermCapable(env):
		return Iterm
	case IsSixelCapable(env):
		return Sixel
	default:
		return Ascii
	}
}

// IsKittyCapable reports whether the terminal speaks the Kitty graphics protocol.
func IsKittyCapable(env *EnvIdentifiers) bool {
	return env.Has("KITTY_WINDOW_ID") || env.TermContains("kitty") || env.TermContains("ghostty")
}

// IsItermCapable reports whether the terminal speaks the iTerm2 image protocol.
func IsItermCapable(env *EnvIdentifiers) bool {
	for _, name := range itermTerminals {
		if env.TermContains(name) {
			return true
		}
	}
	// Warp only renders iTerm2 images on linux
	if env.TermContains("warp") && env.Contains("OS", "linux") {
		return true
	}
	return env.Has("KONSOLE_VERSION")
}

// IsSixelCapable reports whether the terminal draws sixels.
func IsSixelCapable(env *EnvIdentifiers) bool {
	return env.TermContains("foot") || env.Has("WT_PROFILE_ID") || env.TermContains("sixel-tmux")
}

// IsTmux reports whether the session runs inside tmux.
func IsTmux(env *EnvIdentifiers) bool {
	return env.TermContains("tmux") || env.Has("TMUX")
}
