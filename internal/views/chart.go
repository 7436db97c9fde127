package views

import (
	"strconv"
	"strings"
)

// PlotPoint is a chart sample in drawing area coordinates, origin top left.
type PlotPoint struct {
	X float64
	Y float64
}

// ValueRange is the span a chart scales its points to: the observed minimum
// and maximum padded by a tenth of their distance. Near-constant series get
// a span of one.
func ValueRange(points []ChartPoint) (float64, float64) {
	if len(points) == 0 {
		return 0, 1
	}

	low, high := points[0].Value, points[0].Value
	for _, point := range points {
		low = min(low, point.Value)
		high = max(high, point.Value)
	}

	span := high - low
	if span < 0.1 {
		span = 1
	}
	padding := span * 0.1
	return low - padding, high + padding
}

// Plot maps points onto a width by height area. Points are spaced evenly in
// input order, since timestamps may be missing or unparseable. A single
// point sits in the middle.
func Plot(points []ChartPoint, width float64, height float64) []PlotPoint {
	if len(points) == 0 {
		return nil
	}

	low, high := ValueRange(points)
	plotted := make([]PlotPoint, len(points))
	for i, point := range points {
		x := width / 2
		if len(points) > 1 {
			x = float64(i) / float64(len(points)-1) * width
		}
		plotted[i] = PlotPoint{
			X: x,
			Y: (high - point.Value) / (high - low) * height,
		}
	}
	return plotted
}

// RGB splits a "#rrggbb" color into channels between 0 and 1.
func RGB(color string) (float64, float64, float64, bool) {
	r, g, b, ok := parseHex(strings.TrimPrefix(color, "#"))
	if !ok {
		return 0, 0, 0, false
	}
	return float64(r) / 255, float64(g) / 255, float64(b) / 255, true
}

func parseHex(hex string) (uint8, uint8, uint8, bool) {
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(value >> 16), uint8(value >> 8), uint8(value), true
}
