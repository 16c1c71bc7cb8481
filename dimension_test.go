package rasteroid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWininfo() *Wininfo {
	return &Wininfo{ScWidth: 100, ScHeight: 20, SpxWidth: 1920, SpxHeight: 1080}
}

func TestDimensionRoundTrip(t *testing.T) {
	wi := testWininfo()

	px, err := wi.DimToPx("50%", AxisWidth)
	require.NoError(t, err)
	assert.Equal(t, uint32(960), px)

	cells, err := wi.DimToCells("960px", AxisWidth)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), cells)
}

func TestDimToPx(t *testing.T) {
	wi := testWininfo()
	tests := []struct {
		in   string
		axis Axis
		want uint32
	}{
		{"200", AxisWidth, 200},
		{"200px", AxisWidth, 200},
		{"10c", AxisWidth, 192},
		{"10c", AxisHeight, 540},
		{"100%", AxisHeight, 1080},
		{"12.5%", AxisWidth, 240},
		{" 64PX ", AxisWidth, 64},
	}
	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.axis.String(), func(t *testing.T) {
			got, err := wi.DimToPx(tt.in, tt.axis)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimToCells(t *testing.T) {
	wi := testWininfo()
	tests := []struct {
		in   string
		axis Axis
		want uint32
	}{
		{"40", AxisWidth, 40},
		{"40c", AxisWidth, 40},
		{"1080px", AxisHeight, 20},
		{"96px", AxisWidth, 5},
		{"50%", AxisHeight, 10},
	}
	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.axis.String(), func(t *testing.T) {
			got, err := wi.DimToCells(tt.in, tt.axis)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensionErrors(t *testing.T) {
	wi := testWininfo()
	for _, in := range []string{"", "abc", "10em", "-5", "px", "1.5c", "%"} {
		t.Run(in, func(t *testing.T) {
			_, err := wi.DimToPx(in, AxisWidth)
			require.ErrorIs(t, err, ErrInvalidDimension)
			assert.Contains(t, err.Error(), in)

			_, err = wi.DimToCells(in, AxisWidth)
			require.ErrorIs(t, err, ErrInvalidDimension)
		})
	}
}

func TestDimensionNone(t *testing.T) {
	wi := testWininfo()
	_, err := wi.DimToPx("none", AxisWidth)
	assert.ErrorIs(t, err, ErrNoneDimension)
	_, err = wi.DimToCells("none", AxisHeight)
	assert.ErrorIs(t, err, ErrNoneDimension)
}

func TestDimensionZeroTerminal(t *testing.T) {
	wi := &Wininfo{}

	_, err := wi.DimToPx("10c", AxisWidth)
	assert.ErrorIs(t, err, ErrZeroTerminalSize)

	_, err = wi.DimToCells("10px", AxisHeight)
	assert.ErrorIs(t, err, ErrZeroTerminalSize)

	px, err := wi.DimToPx("50%", AxisWidth)
	require.NoError(t, err)
	assert.Zero(t, px)
}

func TestReportSize(t *testing.T) {
	wi := testWininfo()

	cols, rows, err := wi.ReportSize("50%", "540px")
	require.NoError(t, err)
	assert.Equal(t, uint32(50), cols)
	assert.Equal(t, uint32(10), rows)

	cols, rows, err = wi.ReportSize("", "none")
	require.NoError(t, err)
	assert.Equal(t, uint32(100), cols)
	assert.Equal(t, uint32(20), rows)

	_, _, err = wi.ReportSize("wide", "")
	assert.ErrorIs(t, err, ErrInvalidDimension)
}
