package views

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/iot/api"
)

// Number of devices the dashboard asks for and shows.
const DASHBOARD_DEVICE_LIMIT = 6

// Sensor types shown on a dashboard device card.
var cardReadings = []string{"temperature", "humidity", "voltage", "pressure", "current", "light"}

type StatCard struct {
	Title       string
	Value       string
	Description string
}

// DashboardCards are the headline numbers, in display order. Missing data
// shows as zero.
func DashboardCards(data *api.AnalyticsData) []StatCard {
	var overview api.AnalyticsOverview
	var points api.AnalyticsDataPoints
	if data != nil {
		overview = data.Overview
		points = data.DataPoints
	}

	return []StatCard{
		{"Total Devices", strconv.Itoa(overview.TotalDevices), "Registered devices"},
		{"Active Devices (24h)", strconv.Itoa(overview.ActiveDevices24h), "Data in last 24h"},
		{"Inactive Devices", strconv.Itoa(overview.InactiveDevices), "No recent data"},
		{"Data Points (24h)", GroupThousands(int64(points.Last24Hours)), "Last 24 hours"},
		{"Active Devices (7d)", strconv.Itoa(overview.ActiveDevices7d), "Data in last 7 days"},
		{"Active Devices (30d)", strconv.Itoa(overview.ActiveDevices30d), "Data in last 30 days"},
		{"Avg Data Points/Day", formatDecimal(points.AveragePerDay), "Average daily readings"},
	}
}

var numberPrinter = message.NewPrinter(language.English)

// GroupThousands formats n with comma separators.
func GroupThousands(n int64) string {
	return numberPrinter.Sprintf("%d", n)
}

// formatDecimal groups the integer part of value and keeps its shortest
// decimal fraction.
func formatDecimal(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	whole, fraction, found := strings.Cut(s, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return s
	}
	if found {
		return GroupThousands(n) + "." + fraction
	}
	return GroupThousands(n)
}

func statCards(w io.Writer, cards []StatCard, styler Styler) error {
	tw := NewTable(w)
	for _, card := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			card.Title,
			styler.Paint(card.Value, "font-bold"),
			styler.Paint(card.Description, "text-muted"),
		)
	}
	return tw.Flush()
}

// DeviceCard writes one recent device with its headline readings.
func DeviceCard(w io.Writer, device api.Device, styler Styler) error {
	fmt.Fprintf(w, "%s  %s\n",
		styler.Paint(device.Name, "font-bold"),
		styler.Paint(enums.DeviceTypeLabel(device.Type)+" • "+enums.LocationLabel(device.Location), "text-muted"),
	)

	var line string
	for _, sensorType := range cardReadings {
		value, ok := device.LatestData[sensorType]
		if !ok || value == 0 {
			continue
		}
		if line != "" {
			line += "  "
		}
		line += FormatReading(sensorType, value)
	}
	if line != "" {
		fmt.Fprintf(w, "  %s\n", line)
	}

	_, err := fmt.Fprintf(w, "  %s\n", styler.Paint("iot-dashboard device get "+device.ID, "text-muted"))
	return err
}

// Dashboard writes the stat cards followed by the recent devices.
func Dashboard(w io.Writer, data *api.AnalyticsData, devices []api.Device, styler Styler) error {
	fmt.Fprintln(w, styler.Paint("Dashboard", "font-bold"))
	fmt.Fprintln(w, styler.Paint("Monitor your IoT devices and sensor data", "text-muted"))
	fmt.Fprintln(w)

	if err := statCards(w, DashboardCards(data), styler); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styler.Paint("Recent Devices", "font-bold"))
	if len(devices) == 0 {
		_, err := fmt.Fprintln(w, NO_DEVICES_MESSAGE)
		return err
	}

	if len(devices) > DASHBOARD_DEVICE_LIMIT {
		devices = devices[:DASHBOARD_DEVICE_LIMIT]
	}
	for _, device := range devices {
		if err := DeviceCard(w, device, styler); err != nil {
			return err
		}
	}
	return nil
}
