package csi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWindowReport(t *testing.T) {
	tests := []struct {
		name   string
		resp   string
		code   int
		wantW  int
		wantH  int
		wantOK bool
	}{
		{name: "text area", resp: "\x1b[4;1080;1920t", code: 4, wantW: 1920, wantH: 1080, wantOK: true},
		{name: "cell size", resp: "\x1b[6;20;10t", code: 6, wantW: 10, wantH: 20, wantOK: true},
		{name: "leading noise", resp: "junk\x1b[4;200;1000t", code: 4, wantW: 1000, wantH: 200, wantOK: true},
		{name: "wrong code", resp: "\x1b[6;20;10t", code: 4},
		{name: "truncated", resp: "\x1b[4;1080;19", code: 4},
		{name: "zero", resp: "\x1b[4;0;0t", code: 4},
		{name: "empty", resp: "", code: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := ParseWindowReport(tt.resp, tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestParseXTSMGRAPHICS(t *testing.T) {
	w, h, ok := ParseXTSMGRAPHICS("\x1b[?2;0;1000;800S")
	assert.True(t, ok)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 800, h)

	_, _, ok = ParseXTSMGRAPHICS("\x1b[?2;3;0;0S")
	assert.False(t, ok, "non-zero status is a failure")

	_, _, ok = ParseXTSMGRAPHICS("\x1b[?1;0;256S")
	assert.False(t, ok)
}

func TestWrapTmuxPassthrough(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")
	assert.Equal(t, "\x1bPtmux;\x1b\x1b[14t\x1b\\", wrapTmuxPassthrough("\x1b[14t"))

	t.Setenv("TMUX", "")
	t.Setenv("TERM_PROGRAM", "")
	assert.Equal(t, "\x1b[14t", wrapTmuxPassthrough("\x1b[14t"))
}
