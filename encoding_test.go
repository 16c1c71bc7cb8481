package rasteroid

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase64Encode(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 100, MaxChunkSize * 4} {
		src := bytes.Repeat([]byte{0x5a, 0xff, 0x00}, n)
		assert.Equal(t, base64.StdEncoding.EncodeToString(src), Base64Encode(src), "len %d", len(src))
	}
}

func TestSplitChunks(t *testing.T) {
	assert.Equal(t, []string{""}, SplitChunks("", MaxChunkSize))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, SplitChunks("abcdefghij", 4))
	assert.Equal(t, []string{"abcd"}, SplitChunks("abcd", 4))
	assert.Equal(t, []string{"abc"}, SplitChunks("abc", 0))

	s := strings.Repeat("x", 3*MaxChunkSize+1)
	chunks := SplitChunks(s, MaxChunkSize)
	assert.Len(t, chunks, 4)
	assert.Equal(t, s, strings.Join(chunks, ""))
}

func TestWrapTmux(t *testing.T) {
	assert.Equal(t, "\x1b_Ga=d\x1b\\", wrapTmux("\x1b_Ga=d\x1b\\", false))
	assert.Equal(t, "\x1bPtmux;\x1b\x1b_Ga=d\x1b\x1b\\\x1b\\", wrapTmux("\x1b_Ga=d\x1b\\", true))
	assert.Equal(t, "plain", wrapTmux("plain", true), "only escape sequences are wrapped")
}
