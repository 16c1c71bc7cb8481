package rasteroid

import (
	"image"
	"strconv"
)

// Placement positions an image before it is drawn. At is an absolute 1-based
// cell position (column X, row Y); Offset moves the cursor right by that many
// cells. Both may be nil.
type Placement struct {
	Offset *uint16
	At     *image.Point
}

// prefix returns the cursor movement written ahead of the image.
func (p Placement) prefix() string {
	var s string
	if p.At != nil {
		s += "\x1b[" + strconv.Itoa(p.At.Y) + ";" + strconv.Itoa(p.At.X) + "H"
	}
	s += offsetPrefix(p.Offset)
	return s
}

func offsetPrefix(offset *uint16) string {
	if offset == nil || *offset == 0 {
		return ""
	}
	return "\x1b[" + strconv.Itoa(int(*offset)) + "C"
}

// Offset is a convenience for building a Placement offset.
func Offset(cells uint16) *uint16 {
	return &cells
}
