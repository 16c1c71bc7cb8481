//go:build !unix

package rasteroid

// ttyPixelSize has no ioctl equivalent here; callers fall back to the CSI
// query or the configured size.
func ttyPixelSize() (uint16, uint16, bool) {
	return 0, 0, false
}
