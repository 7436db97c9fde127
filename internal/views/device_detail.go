package views

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/format"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const (
	CHART_TIME_FORMAT     = "HH:mm"
	CHART_TIME_FALLBACK   = "--:--"
	READING_TIME_FORMAT   = "MMM DD, HH:mm"
	TOOLTIP_TIME_FORMAT   = "MMM DD, YYYY HH:mm"
	TOOLTIP_TIME_FALLBACK = "Invalid Date"

	// How much history a device page loads.
	DETAIL_WINDOW         = 24 * time.Hour
	DETAIL_READINGS_LIMIT = 100
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sensor types in display order. Anything else follows alphabetically.
var readingOrder = []string{"temperature", "humidity", "pressure", "voltage", "current", "light"}

// ChartPoint is one sample of a per-sensor time series.
type ChartPoint struct {
	Time      string
	Timestamp string
	Value     float64
}

// ChartPoints selects the readings of one sensor type, in input order.
func ChartPoints(data []api.SensorData, sensorType string) []ChartPoint {
	var points []ChartPoint
	for _, item := range data {
		if item.SensorType != sensorType {
			continue
		}
		points = append(points, ChartPoint{
			Time:      format.SafeFormatDateOr(item.Timestamp, CHART_TIME_FORMAT, CHART_TIME_FALLBACK),
			Timestamp: item.Timestamp,
			Value:     item.Value,
		})
	}
	return points
}

// Sparkline scales values onto eight block characters. A flat series renders
// at mid height.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	low, high := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		index := top / 2
		if high > low {
			index = int(math.Round((v - low) / (high - low) * float64(top)))
		}
		b.WriteRune(sparkBlocks[index])
	}
	return b.String()
}

// SortedSensorTypes orders the keys of readings for display.
func SortedSensorTypes(readings api.Readings) []string {
	types := make([]string, 0, len(readings))
	for sensorType := range readings {
		types = append(types, sensorType)
	}

	rank := func(sensorType string) int {
		if i := slices.Index(readingOrder, sensorType); i >= 0 {
			return i
		}
		return len(readingOrder)
	}
	sort.Slice(types, func(i, j int) bool {
		ri, rj := rank(types[i]), rank(types[j])
		if ri != rj {
			return ri < rj
		}
		return types[i] < types[j]
	})
	return types
}

// FormatReading renders a value with its unit, e.g. "21.5°C".
func FormatReading(sensorType string, value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + enums.MeasurementUnit(sensorType)
}

// FormatAverage renders an average to two decimals with its unit.
func FormatAverage(sensorType string, value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64) + enums.MeasurementUnit(sensorType)
}

// SensorLabel title-cases a sensor type code, e.g. "air_quality" to
// "Air Quality".
func SensorLabel(sensorType string) string {
	words := strings.Fields(strings.ReplaceAll(sensorType, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// DeviceDetail writes the device header and information block, the readings
// folded to the latest value per sensor type, and one chart per sensor type.
func DeviceDetail(w io.Writer, device *api.Device, data []api.SensorData, styler Styler) error {
	if device == nil {
		_, err := fmt.Fprintln(w, "Device not found.")
		return err
	}

	fmt.Fprintln(w, styler.Paint(device.Name, "font-bold"))
	fmt.Fprintf(w, "%s • %s\n",
		enums.DeviceTypeLabel(device.Type),
		enums.LocationLabel(device.Location),
	)
	fmt.Fprintln(w)

	tw := NewTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", device.ID)
	if device.Status != "" {
		fmt.Fprintf(tw, "Status\t%s\n", statusCell(device.Status, styler))
	}
	fmt.Fprintf(tw, "Location\t%s\n", enums.LocationLabel(device.Location))
	fmt.Fprintf(tw, "Created\t%s\n", format.SafeFormatDate(device.CreatedAt, LIST_DATE_FORMAT))
	fmt.Fprintf(tw, "Last Updated\t%s\n", format.SafeFormatDate(device.UpdatedAt, LIST_DATE_FORMAT))
	if err := tw.Flush(); err != nil {
		return err
	}

	readings, timestamp := api.LatestReadings(data)
	if len(readings) == 0 {
		readings = device.LatestData
		timestamp = device.LastReading
	}
	if len(readings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styler.Paint("Current Readings", "font-bold"))
		if err := Readings(w, readings, timestamp, styler); err != nil {
			return err
		}
	}

	if len(data) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styler.Paint("Charts", "font-bold"))
		return Charts(w, data, styler)
	}

	return nil
}

// Readings writes one row per sensor type with the shared reading time.
func Readings(w io.Writer, readings api.Readings, timestamp string, styler Styler) error {
	tw := NewTable(w)
	when := format.SafeFormatDate(timestamp, READING_TIME_FORMAT)
	for _, sensorType := range SortedSensorTypes(readings) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			SensorLabel(sensorType),
			FormatReading(sensorType, readings[sensorType]),
			styler.Paint(when, "text-muted"),
		)
	}
	return tw.Flush()
}

// Charts writes a sparkline per sensor type with its range and time span.
func Charts(w io.Writer, data []api.SensorData, styler Styler) error {
	present := api.Readings{}
	for _, item := range data {
		if item.SensorType != "" {
			present[item.SensorType] = 0
		}
	}

	tw := NewTable(w)
	for _, sensorType := range SortedSensorTypes(present) {
		points := ChartPoints(data, sensorType)
		values := make([]float64, len(points))
		low, high := math.Inf(1), math.Inf(-1)
		for i, point := range points {
			values[i] = point.Value
			low = math.Min(low, point.Value)
			high = math.Max(high, point.Value)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s..%s\t%s\n",
			SensorLabel(sensorType),
			styler.Paint(Sparkline(values), "text-cyan"),
			FormatReading(sensorType, low),
			FormatReading(sensorType, high),
			styler.Paint(points[0].Time+" - "+points[len(points)-1].Time, "text-muted"),
		)
	}
	return tw.Flush()
}

// ChartTable lists the points of one series with full timestamps.
func ChartTable(w io.Writer, points []ChartPoint, sensorType string) error {
	tw := NewTable(w)
	fmt.Fprintln(tw, "TIME\tVALUE")
	for _, point := range points {
		fmt.Fprintf(tw, "%s\t%s\n",
			format.SafeFormatDateOr(point.Timestamp, TOOLTIP_TIME_FORMAT, TOOLTIP_TIME_FALLBACK),
			FormatReading(sensorType, point.Value),
		)
	}
	return tw.Flush()
}

// Stats writes the aggregate statistics for one device.
func Stats(w io.Writer, stats *api.DeviceStats, styler Styler) error {
	if stats == nil {
		_, err := fmt.Fprintln(w, "No statistics available.")
		return err
	}

	tw := NewTable(w)
	fmt.Fprintf(tw, "Total Readings\t%d\n", stats.TotalReadings)
	fmt.Fprintf(tw, "First Reading\t%s\n", format.SafeFormatDate(stats.DateRange.Start, TOOLTIP_TIME_FORMAT))
	fmt.Fprintf(tw, "Last Reading\t%s\n", format.SafeFormatDate(stats.DateRange.End, TOOLTIP_TIME_FORMAT))
	if err := tw.Flush(); err != nil {
		return err
	}

	types := api.Readings{}
	for sensorType := range stats.Current {
		types[sensorType] = 0
	}
	for sensorType := range stats.Averages {
		types[sensorType] = 0
	}
	if len(types) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = NewTable(w)
	fmt.Fprintln(tw, "SENSOR\tCURRENT\tAVERAGE")
	for _, sensorType := range SortedSensorTypes(types) {
		current, average := "-", "-"
		if v, ok := stats.Current[sensorType]; ok {
			current = FormatReading(sensorType, v)
		}
		if v, ok := stats.Averages[sensorType]; ok {
			average = FormatAverage(sensorType, v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", SensorLabel(sensorType), current, styler.Paint(average, "text-muted"))
	}
	return tw.Flush()
}
