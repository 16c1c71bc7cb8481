package rasteroid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want InlineEncoder
	}{
		{name: "kitty window id", env: map[string]string{"KITTY_WINDOW_ID": "1"}, want: Kitty},
		{name: "kitty term", env: map[string]string{"TERM": "xterm-kitty"}, want: Kitty},
		{name: "ghostty", env: map[string]string{"TERM_PROGRAM": "Ghostty"}, want: Kitty},
		{name: "wezterm", env: map[string]string{"TERM_PROGRAM": "WezTerm"}, want: Iterm},
		{name: "iterm2 via lc_terminal", env: map[string]string{"LC_TERMINAL": "iTerm2"}, want: Iterm},
		{name: "mintty", env: map[string]string{"TERM": "mintty"}, want: Iterm},
		{name: "rio", env: map[string]string{"TERM_PROGRAM": "rio"}, want: Iterm},
		{name: "konsole", env: map[string]string{"KONSOLE_VERSION": "230805"}, want: Iterm},
		{name: "warp on linux", env: map[string]string{"TERM_PROGRAM": "WarpTerminal", "OS": "linux"}, want: Iterm},
		{name: "warp on darwin", env: map[string]string{"TERM_PROGRAM": "WarpTerminal", "OS": "darwin"}, want: Ascii},
		{name: "foot", env: map[string]string{"TERM": "foot"}, want: Sixel},
		{name: "windows terminal", env: map[string]string{"WT_PROFILE_ID": "{abc}"}, want: Sixel},
		{name: "sixel-tmux", env: map[string]string{"TERM": "sixel-tmux"}, want: Sixel},
		{name: "kitty beats iterm", env: map[string]string{"KITTY_WINDOW_ID": "1", "TERM_PROGRAM": "wezterm"}, want: Kitty},
		{name: "plain xterm", env: map[string]string{"TERM": "xterm-256color"}, want: Ascii},
		{name: "empty", env: map[string]string{}, want: Ascii},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AutoDetect(false, false, false, false, EnvFromMap(tt.env)))
		})
	}
}

func TestAutoDetectForceOrder(t *testing.T) {
	env := EnvFromMap(map[string]string{"TERM": "foot"})

	assert.Equal(t, Kitty, AutoDetect(true, true, true, true, env))
	assert.Equal(t, Iterm, AutoDetect(false, true, true, true, env))
	assert.Equal(t, Sixel, AutoDetect(false, false, true, true, env))
	assert.Equal(t, Ascii, AutoDetect(false, false, false, true, env))
}

func TestIsTmux(t *testing.T) {
	assert.True(t, IsTmux(EnvFromMap(map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"})))
	assert.True(t, IsTmux(EnvFromMap(map[string]string{"TERM_PROGRAM": "tmux"})))
	assert.True(t, IsTmux(EnvFromMap(map[string]string{"TERM": "tmux-256color"})))
	assert.False(t, IsTmux(EnvFromMap(map[string]string{"TERM": "xterm"})))
}

func TestEnvIdentifiers(t *testing.T) {
	env := EnvFromMap(map[string]string{"TERM_PROGRAM": "WezTerm", "HOME": "/root"})

	assert.True(t, env.Has("TERM_PROGRAM"))
	assert.False(t, env.Has("HOME"), "only the known keys are captured")
	assert.Equal(t, "wezterm", env.Get("TERM_PROGRAM"))
	assert.True(t, env.TermContains("wez"))
	assert.False(t, env.Contains("TERM", "wez"))
	assert.NotEmpty(t, env.Get("OS"))

	vars := env.Vars()
	vars["TERM_PROGRAM"] = "changed"
	assert.Equal(t, "wezterm", env.Get("TERM_PROGRAM"), "Vars returns a copy")
}

func TestParseInlineEncoder(t *testing.T) {
	for name, want := range map[string]InlineEncoder{
		"kitty": Kitty, "iTerm2": Iterm, "iterm": Iterm, "sixel": Sixel, "ascii": Ascii, "halfblocks": Ascii,
	} {
		got, err := ParseInlineEncoder(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
		if name == want.String() {
			assert.Equal(t, name, got.String())
		}
	}
	_, err := ParseInlineEncoder("vt340")
	assert.ErrorIs(t, err, ErrUnknownEncoder)
}
