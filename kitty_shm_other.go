//go:build !linux

package rasteroid

func createSharedSegment(data []byte) (*TransferredSegment, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return nil, ErrSharedMemoryUnsupported
}
