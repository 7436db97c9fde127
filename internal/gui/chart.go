package gui

import (
	"strconv"

	"github.com/diamondburned/gotk4/pkg/cairo"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/views"
)

const (
	chartMarginLeft   = 64
	chartMarginRight  = 16
	chartMarginTop    = 16
	chartMarginBottom = 32
	chartGridLines    = 5
)

// drawChart plots one sensor's readings as a filled line chart.
func drawChart(cr *cairo.Context, points []views.ChartPoint, sensorType string, color string, width, height int) {
	graphWidth := float64(width - chartMarginLeft - chartMarginRight)
	graphHeight := float64(height - chartMarginTop - chartMarginBottom)
	if graphWidth <= 0 || graphHeight <= 0 {
		return
	}

	if len(points) == 0 {
		cr.SetSourceRGB(0.5, 0.5, 0.5)
		cr.MoveTo(float64(width/2-50), float64(height/2))
		cr.ShowText("No data available")
		return
	}

	low, high := views.ValueRange(points)
	unit := enums.MeasurementUnit(sensorType)

	cr.SetSourceRGBA(0.5, 0.5, 0.5, 0.3)
	cr.SetLineWidth(1)
	for i := 0; i <= chartGridLines; i++ {
		y := chartMarginTop + float64(i)/chartGridLines*graphHeight
		cr.MoveTo(chartMarginLeft, y)
		cr.LineTo(chartMarginLeft+graphWidth, y)
		cr.Stroke()
	}

	cr.SetSourceRGB(0.5, 0.5, 0.5)
	for i := 0; i <= chartGridLines; i++ {
		y := chartMarginTop + float64(i)/chartGridLines*graphHeight
		value := high - float64(i)/chartGridLines*(high-low)
		cr.MoveTo(4, y+4)
		cr.ShowText(strconv.FormatFloat(value, 'f', 1, 64) + unit)
	}

	first, last := points[0], points[len(points)-1]
	cr.MoveTo(chartMarginLeft, chartMarginTop+graphHeight+20)
	cr.ShowText(first.Time)
	if len(points) > 1 {
		extents := cr.TextExtents(last.Time)
		cr.MoveTo(chartMarginLeft+graphWidth-extents.Width, chartMarginTop+graphHeight+20)
		cr.ShowText(last.Time)
	}

	plotted := views.Plot(points, graphWidth, graphHeight)
	r, g, b, ok := views.RGB(color)
	if !ok {
		r, g, b = 0.23, 0.51, 0.96
	}

	cr.SetSourceRGBA(r, g, b, 0.3)
	cr.MoveTo(chartMarginLeft+plotted[0].X, chartMarginTop+graphHeight)
	for _, point := range plotted {
		cr.LineTo(chartMarginLeft+point.X, chartMarginTop+point.Y)
	}
	cr.LineTo(chartMarginLeft+plotted[len(plotted)-1].X, chartMarginTop+graphHeight)
	cr.ClosePath()
	cr.Fill()

	cr.SetSourceRGB(r, g, b)
	cr.SetLineWidth(2)
	cr.MoveTo(chartMarginLeft+plotted[0].X, chartMarginTop+plotted[0].Y)
	for _, point := range plotted[1:] {
		cr.LineTo(chartMarginLeft+point.X, chartMarginTop+point.Y)
	}
	cr.Stroke()
}

// drawSlices renders a distribution as one stacked horizontal bar.
func drawSlices(cr *cairo.Context, slices []views.Slice, width, height int) {
	total := 0
	for _, slice := range slices {
		total += slice.Count
	}
	if total == 0 || width <= 0 {
		cr.SetSourceRGBA(0.5, 0.5, 0.5, 0.3)
		cr.Rectangle(0, 0, float64(width), float64(height))
		cr.Fill()
		return
	}

	x := 0.0
	for _, slice := range slices {
		if slice.Count == 0 {
			continue
		}
		segment := float64(slice.Count) / float64(total) * float64(width)
		if r, g, b, ok := views.RGB(slice.Color); ok {
			cr.SetSourceRGB(r, g, b)
		} else {
			cr.SetSourceRGB(0.5, 0.5, 0.5)
		}
		cr.Rectangle(x, 0, segment, float64(height))
		cr.Fill()
		x += segment
	}
}
