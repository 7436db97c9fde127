package views

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/format"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const (
	ACTIVITY_TIME_FORMAT = "MMM DD, HH:mm"
	BAR_WIDTH            = 30
)

// Palette cycles through distribution slices in order.
var Palette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6",
	"#06b6d4", "#84cc16", "#f97316", "#ec4899", "#6366f1",
	"#14b8a6", "#eab308", "#dc2626", "#7c3aed", "#059669",
	"#0891b2", "#65a30d", "#ea580c", "#db2777", "#4f46e5",
}

// Slice is one labeled count in a chart.
type Slice struct {
	Label string
	Count int
	Color string
}

func PaletteColor(index int) string {
	return Palette[index%len(Palette)]
}

// StatusSplit is the active/inactive chart. Active is the total minus the
// inactive count; the windowed active counts are not consulted.
func StatusSplit(overview api.AnalyticsOverview) []Slice {
	return []Slice{
		{
			Label: enums.DeviceStatusLabel(string(enums.DeviceStatusActive)),
			Count: overview.ActiveDevices(),
			Color: enums.DeviceStatusColor(string(enums.DeviceStatusActive)),
		},
		{
			Label: enums.DeviceStatusLabel(string(enums.DeviceStatusInactive)),
			Count: overview.InactiveDevices,
			Color: enums.DeviceStatusColor(string(enums.DeviceStatusInactive)),
		},
	}
}

func DeviceTypeSlices(distribution []api.DeviceTypeDistribution) []Slice {
	slices := make([]Slice, 0, len(distribution))
	for i, item := range distribution {
		slices = append(slices, Slice{
			Label: enums.DeviceTypeLabel(item.Type),
			Count: item.Count,
			Color: PaletteColor(i),
		})
	}
	return slices
}

func LocationSlices(distribution []api.LocationDistribution) []Slice {
	slices := make([]Slice, 0, len(distribution))
	for i, item := range distribution {
		slices = append(slices, Slice{
			Label: enums.LocationLabel(item.Location),
			Count: item.Count,
			Color: PaletteColor(i),
		})
	}
	return slices
}

// ActiveInRange picks the windowed active count and data point count for a
// time range. Ranges other than 24h and 7d read the 30 day values.
func ActiveInRange(data *api.AnalyticsData, timeRange string) (int, int, string) {
	switch enums.TimeRange(timeRange) {
	case enums.TimeRangeLast24Hours:
		return data.Overview.ActiveDevices24h, data.DataPoints.Last24Hours, "24h"
	case enums.TimeRangeLast7Days:
		return data.Overview.ActiveDevices7d, data.DataPoints.Last7Days, "7d"
	default:
		return data.Overview.ActiveDevices30d, data.DataPoints.Last30Days, "30d"
	}
}

func bars(w io.Writer, slices []Slice, styler Styler, empty string) error {
	if len(slices) == 0 {
		_, err := fmt.Fprintln(w, styler.Paint(empty, "text-muted"))
		return err
	}

	highest := 0
	for _, slice := range slices {
		highest = max(highest, slice.Count)
	}

	tw := NewTable(w)
	for _, slice := range slices {
		width := 0
		if highest > 0 {
			width = slice.Count * BAR_WIDTH / highest
		}
		if slice.Count > 0 && width == 0 {
			width = 1
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n",
			slice.Label,
			slice.Count,
			styler.Paint(strings.Repeat("█", width), HexClass(slice.Color)),
		)
	}
	return tw.Flush()
}

// Analytics writes the overview cards for timeRange, the status and
// distribution charts and the recent activity list.
func Analytics(w io.Writer, data *api.AnalyticsData, timeRange string, styler Styler) error {
	if data == nil {
		_, err := fmt.Fprintln(w, "No data available")
		return err
	}

	active, points, window := ActiveInRange(data, timeRange)
	fmt.Fprintln(w, styler.Paint("Analytics", "font-bold"), styler.Paint(enums.TimeRangeLabel(timeRange), "text-muted"))
	fmt.Fprintln(w)

	err := statCards(w, []StatCard{
		{"Total Devices", strconv.Itoa(data.Overview.TotalDevices), fmt.Sprintf("%d inactive", data.Overview.InactiveDevices)},
		{"Active Devices", strconv.Itoa(active), "Last " + window},
		{"Data Points", GroupThousands(int64(points)), "Avg " + strconv.FormatFloat(data.DataPoints.AveragePerDay, 'f', -1, 64) + "/day"},
		{"Sensor Types", strconv.Itoa(len(data.Distributions.SensorTypes)), "Different sensor types"},
	}, styler)
	if err != nil {
		return err
	}

	sections := []struct {
		title  string
		slices []Slice
		empty  string
	}{
		{"Device Status Distribution", StatusSplit(data.Overview), "No data available"},
		{"Device Types", DeviceTypeSlices(data.Distributions.DeviceTypes), "No device types available"},
		{"Device Locations", LocationSlices(data.Distributions.Locations), "No location data available"},
	}
	for _, section := range sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styler.Paint(section.title, "font-bold"))
		if err := bars(w, section.slices, styler, section.empty); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styler.Paint("Sensor Types", "font-bold"))
	if err := SensorTypes(w, data.Distributions.SensorTypes); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styler.Paint("Recent Activity", "font-bold"))
	return RecentActivity(w, data.RecentActivity, styler)
}

func SensorTypes(w io.Writer, distribution []api.SensorTypeDistribution) error {
	if len(distribution) == 0 {
		_, err := fmt.Fprintln(w, "No sensor data available")
		return err
	}

	tw := NewTable(w)
	fmt.Fprintln(tw, "SENSOR\tREADINGS\tAVERAGE")
	for _, item := range distribution {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			SensorLabel(item.SensorType),
			GroupThousands(int64(item.Count)),
			FormatAverage(item.SensorType, item.AverageValue),
		)
	}
	return tw.Flush()
}

func RecentActivity(w io.Writer, activity []api.RecentActivity, styler Styler) error {
	if len(activity) == 0 {
		_, err := fmt.Fprintln(w, "No recent activity")
		return err
	}

	tw := NewTable(w)
	for _, item := range activity {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			item.DeviceName,
			enums.LocationLabel(item.DeviceLocation),
			FormatReading(item.SensorType, item.Value),
			styler.Paint(format.SafeFormatDate(item.Timestamp, ACTIVITY_TIME_FORMAT), "text-muted"),
		)
	}
	return tw.Flush()
}
