package rasteroid

import (
	"encoding/base64"
	"sync"
)

// MaxChunkSize is the largest base64 payload carried by one Kitty command.
const MaxChunkSize = 4096

// base64 buffer pool, sized for a few chunks
var base64Pool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, MaxChunkSize*4)
		return &buf
	},
}

// Base64Encode encodes src with the standard alphabet, reusing scratch buffers.
func Base64Encode(src []byte) string {
	bufPtr := base64Pool.Get().(*[]byte)
	defer base64Pool.Put(bufPtr)

	n := base64.StdEncoding.EncodedLen(len(src))
	if cap(*bufPtr) < n {
		*bufPtr = make([]byte, n)
	} else {
		*bufPtr = (*bufPtr)[:n]
	}
	base64.StdEncoding.Encode(*bufPtr, src)
	return string(*bufPtr)
}

// SplitChunks splits an encoded payload into pieces of at most size bytes.
// The pieces concatenate back to s. An empty string yields one empty chunk
// so that a command is still emitted.
func SplitChunks(s string, size int) []string {
	if size <= 0 || len(s) <= size {
		return []string{s}
	}
	chunks := make([]string, 0, (len(s)+size-1)/size)
	for i := 0; i < len(s); i += size {
		chunks = append(chunks, s[i:min(i+size, len(s))])
	}
	return chunks
}
