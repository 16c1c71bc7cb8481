package rasteroid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDimension is returned for strings outside the dimension grammar.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrZeroTerminalSize is returned when a unit conversion would divide by a
	// zero terminal axis.
	ErrZeroTerminalSize = errors.New("terminal reports zero size")
	// ErrNoneDimension is returned when "none" is resolved; callers treat it
	// as "no constraint on this axis".
	ErrNoneDimension = errors.New("dimension is none")
)

// Axis selects the terminal axis a dimension resolves against.
type Axis int

const (
	AxisWidth Axis = iota
	AxisHeight
)

func (a Axis) String() string {
	if a == AxisHeight {
		return "height"
	}
	return "width"
}

// Unit is the unit suffix of a dimension string.
type Unit int

const (
	UnitBare Unit = iota
	UnitPixels
	UnitCells
	UnitPercent
	UnitNone
)

// Dimension is a parsed dimension string: 10, 10px, 10c, 50% or none.
type Dimension struct {
	Value float64
	Unit  Unit
}

// ParseDimension parses a dimension string.
func ParseDimension(s string) (Dimension, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "none" {
		return Dimension{Unit: UnitNone}, nil
	}

	unit := UnitBare
	num := in
	switch {
	case strings.HasSuffix(in, "px"):
		unit, num = UnitPixels, strings.TrimSuffix(in, "px")
	case strings.HasSuffix(in, "%"):
		unit, num = UnitPercent, strings.TrimSuffix(in, "%")
	case strings.HasSuffix(in, "c"):
		unit, num = UnitCells, strings.TrimSuffix(in, "c")
	}

	var (
		v   float64
		err error
	)
	if unit == UnitPercent {
		v, err = strconv.ParseFloat(num, 64)
	} else {
		var n uint64
		n, err = strconv.ParseUint(num, 10, 32)
		v = float64(n)
	}
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Dimension{}, fmt.Errorf("%w: %q", ErrInvalidDimension, s)
	}
	return Dimension{Value: v, Unit: unit}, nil
}

func (w *Wininfo) axis(a Axis) (cells, pixels uint16) {
	if a == AxisHeight {
		return w.ScHeight, w.SpxHeight
	}
	return w.ScWidth, w.SpxWidth
}

// DimToPx resolves a dimension string to pixels on the given axis.
// A bare number is taken as pixels.
func (w *Wininfo) DimToPx(s string, a Axis) (uint32, error) {
	d, err := ParseDimension(s)
	if err != nil {
		return 0, err
	}
	cells, pixels := w.axis(a)
	switch d.Unit {
	case UnitNone:
		return 0, ErrNoneDimension
	case UnitBare, UnitPixels:
		return uint32(d.Value), nil
	case UnitCells:
		if cells == 0 {
			return 0, fmt.Errorf("converting %q to pixels: %w", s, ErrZeroTerminalSize)
		}
		return roundU32(d.Value * float64(pixels) / float64(cells)), nil
	default:
		return roundU32(float64(pixels) * d.Value / 100), nil
	}
}

// DimToCells resolves a dimension string to cells on the given axis.
// A bare number is taken as cells.
func (w *Wininfo) DimToCells(s string, a Axis) (uint32, error) {
	d, err := ParseDimension(s)
	if err != nil {
		return 0, err
	}
	cells, pixels := w.axis(a)
	switch d.Unit {
	case UnitNone:
		return 0, ErrNoneDimension
	case UnitBare, UnitCells:
		return uint32(d.Value), nil
	case UnitPixels:
		if cells == 0 || pixels == 0 {
			return 0, fmt.Errorf("converting %q to cells: %w", s, ErrZeroTerminalSize)
		}
		return roundU32(d.Value * float64(cells) / float64(pixels)), nil
	default:
		return roundU32(float64(cells) * d.Value / 100), nil
	}
}

// ReportSize resolves a width/height pair to cells, defaulting missing
// values to the full terminal.
func (w *Wininfo) ReportSize(width, height string) (cols, rows uint32, err error) {
	cols, rows = uint32(w.ScWidth), uint32(w.ScHeight)
	if width != "" {
		if cols, err = w.DimToCells(width, AxisWidth); errors.Is(err, ErrNoneDimension) {
			cols, err = uint32(w.ScWidth), nil
		} else if err != nil {
			return 0, 0, err
		}
	}
	if height != "" {
		if rows, err = w.DimToCells(height, AxisHeight); errors.Is(err, ErrNoneDimension) {
			rows, err = uint32(w.ScHeight), nil
		} else if err != nil {
			return 0, 0, err
		}
	}
	return cols, rows, nil
}

func roundU32(v float64) uint32 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(math.Round(v))
	}
}
