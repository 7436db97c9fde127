package views

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/iot/api"
)

func TestPaint(t *testing.T) {
	tests := []struct {
		name    string
		styler  Styler
		classes []any
		want    []string
		reject  []string
	}{
		{"bold", Styler{Enabled: true}, []any{"font-bold"}, []string{"\x1b[1m"}, nil},
		{"later color wins", Styler{Enabled: true}, []any{"text-red", "text-green"}, []string{"32"}, []string{"31"}},
		{"hex color", Styler{Enabled: true}, []any{HexClass("#28a745")}, []string{"38;2;40;167;69"}, nil},
		{"conditional", Styler{Enabled: true}, []any{map[string]bool{"font-bold": false, "underline": true}}, []string{"\x1b[4m"}, []string{"\x1b[1m"}},
		{"muted light", Styler{Enabled: true, Theme: enums.ThemeLight}, []any{"text-muted"}, []string{"90"}, nil},
		{"muted dark", Styler{Enabled: true, Theme: enums.ThemeDark}, []any{"text-muted"}, []string{"37"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.styler.Paint("x", tt.classes...)
			if !strings.Contains(got, "x") || !strings.HasPrefix(got, "\x1b[") {
				t.Fatalf("Paint() = %q, want styled x", got)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Paint() = %q, want it to contain %q", got, want)
				}
			}
			for _, reject := range tt.reject {
				if strings.Contains(got, reject) {
					t.Errorf("Paint() = %q, should not contain %q", got, reject)
				}
			}
		})
	}
}

func TestPaintLeavesTextAlone(t *testing.T) {
	tests := []struct {
		name    string
		styler  Styler
		text    string
		classes []any
	}{
		{"disabled", PlainStyler(), "x", []any{"font-bold"}},
		{"unknown classes", Styler{Enabled: true}, "x", []any{"rounded-lg p-4"}},
		{"bad hex", Styler{Enabled: true}, "x", []any{"text-[#zz0000]"}},
		{"empty text", Styler{Enabled: true}, "", []any{"font-bold"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.styler.Paint(tt.text, tt.classes...); got != tt.text {
				t.Errorf("Paint() = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestPlot(t *testing.T) {
	points := []ChartPoint{{Value: 10}, {Value: 20}, {Value: 15}}

	low, high := ValueRange(points)
	if low != 9 || high != 21 {
		t.Fatalf("ValueRange() = %v, %v, want 9, 21", low, high)
	}

	got := Plot(points, 100, 120)
	want := []PlotPoint{{X: 0, Y: 110}, {X: 50, Y: 10}, {X: 100, Y: 60}}
	if len(got) != len(want) {
		t.Fatalf("Plot() = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-9 || math.Abs(got[i].Y-want[i].Y) > 1e-9 {
			t.Errorf("Plot()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPlotEdgeCases(t *testing.T) {
	if got := Plot(nil, 100, 100); got != nil {
		t.Errorf("Plot(nil) = %v, want nil", got)
	}

	flat := []ChartPoint{{Value: 5}, {Value: 5}}
	low, high := ValueRange(flat)
	if math.Abs(low-4.9) > 1e-9 || math.Abs(high-5.1) > 1e-9 {
		t.Errorf("ValueRange(flat) = %v, %v, want 4.9, 5.1", low, high)
	}
	for _, point := range Plot(flat, 100, 100) {
		if math.Abs(point.Y-50) > 1e-9 {
			t.Errorf("flat series Y = %v, want 50", point.Y)
		}
	}

	single := Plot([]ChartPoint{{Value: 3}}, 80, 40)
	if len(single) != 1 || single[0].X != 40 {
		t.Errorf("Plot(single) = %v, want X 40", single)
	}
}

func TestRGB(t *testing.T) {
	r, g, b, ok := RGB("#ff8000")
	if !ok || r != 1 || b != 0 || math.Abs(g-128.0/255) > 1e-9 {
		t.Errorf("RGB(#ff8000) = %v %v %v %v", r, g, b, ok)
	}
	if _, _, _, ok := RGB("orange"); ok {
		t.Error("RGB(orange) should fail")
	}
}

func TestPaginationSummary(t *testing.T) {
	tests := []struct {
		name       string
		pagination api.Pagination
		want       string
	}{
		{"first page", api.Pagination{Page: 1, Limit: 25, Total: 120}, "Showing 1 to 25 of 120 devices"},
		{"middle page", api.Pagination{Page: 2, Limit: 25, Total: 120}, "Showing 26 to 50 of 120 devices"},
		{"last partial page", api.Pagination{Page: 5, Limit: 25, Total: 120}, "Showing 101 to 120 of 120 devices"},
		{"empty", api.Pagination{Page: 1, Limit: 25}, "Showing 0 devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaginationSummary(tt.pagination); got != tt.want {
				t.Errorf("PaginationSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		want       []int
	}{
		{"start", 1, 10, []int{1, 2, 3, 4, 5}},
		{"centered", 5, 10, []int{3, 4, 5, 6, 7}},
		{"end", 10, 10, []int{6, 7, 8, 9, 10}},
		{"near end", 9, 10, []int{6, 7, 8, 9, 10}},
		{"few pages", 2, 3, []int{1, 2, 3}},
		{"no pages", 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageWindow(api.Pagination{Page: tt.page, TotalPages: tt.totalPages})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PageWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeviceTable(t *testing.T) {
	devices := []api.Device{
		{
			ID:        "d1",
			Name:      "Kitchen Sensor",
			Type:      "temperature_sensor",
			Location:  "kitchen",
			Status:    "active",
			CreatedAt: "2024-01-15T10:00:00Z",
			UpdatedAt: "not-a-date",
		},
		{ID: "d2", Name: "Mystery", Type: "quantum_probe", Location: "moon"},
	}

	var out bytes.Buffer
	if err := DeviceTable(&out, devices, PlainStyler()); err != nil {
		t.Fatalf("DeviceTable() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Kitchen Sensor",
		enums.DeviceTypeLabel("temperature_sensor"),
		enums.LocationLabel("kitchen"),
		"Active",
		"Jan 15, 2024",
		"N/A",
		"quantum_probe",
		"moon",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DeviceTable() output missing %q:\n%s", want, got)
		}
	}
}

func TestDeviceTableEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := DevicePage(&out, &api.DevicePage{}, PlainStyler()); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != NO_DEVICES_MESSAGE {
		t.Errorf("DevicePage() = %q, want %q", got, NO_DEVICES_MESSAGE)
	}
}

func TestPaginationControls(t *testing.T) {
	var out bytes.Buffer
	pagination := api.Pagination{Page: 2, Limit: 10, Total: 35, TotalPages: 4, HasNextPage: true, HasPreviousPage: true}
	if err := Pagination(&out, pagination, PlainStyler()); err != nil {
		t.Fatal(err)
	}

	want := "Showing 11 to 20 of 35 devices\n< 1 [2] 3 4 >\n"
	if got := out.String(); got != want {
		t.Errorf("Pagination() = %q, want %q", got, want)
	}

	out.Reset()
	Pagination(&out, api.Pagination{Page: 1, TotalPages: 1}, PlainStyler())
	if out.Len() != 0 {
		t.Errorf("Pagination() for one page = %q, want nothing", out.String())
	}
}

func TestChartPoints(t *testing.T) {
	data := []api.SensorData{
		{SensorType: "temperature", Value: 20, Timestamp: "2024-01-15T10:05:00Z"},
		{SensorType: "humidity", Value: 40, Timestamp: "2024-01-15T10:05:00Z"},
		{SensorType: "temperature", Value: 21.5, Timestamp: "garbage"},
	}

	want := []ChartPoint{
		{Time: "10:05", Timestamp: "2024-01-15T10:05:00Z", Value: 20},
		{Time: CHART_TIME_FALLBACK, Timestamp: "garbage", Value: 21.5},
	}
	if got := ChartPoints(data, "temperature"); !reflect.DeepEqual(got, want) {
		t.Errorf("ChartPoints() = %+v, want %+v", got, want)
	}
	if got := ChartPoints(data, "pressure"); len(got) != 0 {
		t.Errorf("ChartPoints(pressure) = %+v, want none", got)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"empty", nil, ""},
		{"flat", []float64{3, 3, 3}, "▄▄▄"},
		{"two points", []float64{0, 1}, "▁█"},
		{"ramp", []float64{0, 1, 2, 3, 4, 5, 6, 7}, "▁▂▃▄▅▆▇█"},
		{"negative", []float64{-7, 0}, "▁█"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sparkline(tt.values); got != tt.want {
				t.Errorf("Sparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSortedSensorTypes(t *testing.T) {
	readings := api.Readings{"noise": 1, "humidity": 2, "air_quality": 3, "temperature": 4}
	want := []string{"temperature", "humidity", "air_quality", "noise"}
	if got := SortedSensorTypes(readings); !reflect.DeepEqual(got, want) {
		t.Errorf("SortedSensorTypes() = %v, want %v", got, want)
	}
}

func TestFormatReading(t *testing.T) {
	tests := []struct {
		sensorType string
		value      float64
		want       string
	}{
		{"temperature", 21.5, "21.5°C"},
		{"humidity", 40, "40%"},
		{"unknown", 3.25, "3.25"},
	}

	for _, tt := range tests {
		t.Run(tt.sensorType, func(t *testing.T) {
			if got := FormatReading(tt.sensorType, tt.value); got != tt.want {
				t.Errorf("FormatReading() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := FormatAverage("pressure", 1013.256); got != "1013.26hPa" {
		t.Errorf("FormatAverage() = %q", got)
	}
}

func TestDeviceDetailFoldsLatestReadings(t *testing.T) {
	device := &api.Device{ID: "d1", Name: "Lab", Type: "temperature_sensor", Location: "laboratory"}
	data := []api.SensorData{
		{SensorType: "temperature", Value: 20, Timestamp: "2024-01-15T10:00:00Z"},
		{SensorType: "temperature", Value: 22.5, Timestamp: "2024-01-15T10:30:00Z"},
		{SensorType: "humidity", Value: 41, Timestamp: "2024-01-15T10:30:00Z"},
	}

	var out bytes.Buffer
	if err := DeviceDetail(&out, device, data, PlainStyler()); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"Lab", "Current Readings", "22.5°C", "41%", "Jan 15, 10:30", "Charts", "▁█", "10:00 - 10:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("DeviceDetail() output missing %q:\n%s", want, got)
		}
	}
}

func TestDashboardCards(t *testing.T) {
	cards := DashboardCards(nil)
	for _, card := range cards {
		if card.Value != "0" {
			t.Errorf("%s = %q with no data, want 0", card.Title, card.Value)
		}
	}

	cards = DashboardCards(&api.AnalyticsData{
		Overview:   api.AnalyticsOverview{TotalDevices: 12, ActiveDevices24h: 9, InactiveDevices: 3},
		DataPoints: api.AnalyticsDataPoints{Last24Hours: 12345, AveragePerDay: 1234.5},
	})
	got := map[string]string{}
	for _, card := range cards {
		got[card.Title] = card.Value
	}

	want := map[string]string{
		"Total Devices":        "12",
		"Active Devices (24h)": "9",
		"Inactive Devices":     "3",
		"Data Points (24h)":    "12,345",
		"Active Devices (7d)":  "0",
		"Active Devices (30d)": "0",
		"Avg Data Points/Day":  "1,234.5",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DashboardCards() = %v, want %v", got, want)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		if got := GroupThousands(tt.n); got != tt.want {
			t.Errorf("GroupThousands(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDashboardLimitsDevices(t *testing.T) {
	devices := make([]api.Device, 8)
	for i := range devices {
		devices[i] = api.Device{ID: string(rune('a' + i)), Name: "Device", LatestData: api.Readings{"temperature": 20}}
	}

	var out bytes.Buffer
	if err := Dashboard(&out, nil, devices, PlainStyler()); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), "device get "); got != DASHBOARD_DEVICE_LIMIT {
		t.Errorf("device cards = %d, want %d", got, DASHBOARD_DEVICE_LIMIT)
	}
	if !strings.Contains(out.String(), "20°C") {
		t.Error("device card missing temperature reading")
	}
}

func TestStatusSplit(t *testing.T) {
	got := StatusSplit(api.AnalyticsOverview{TotalDevices: 10, ActiveDevices24h: 2, InactiveDevices: 4})
	want := []Slice{
		{Label: "Active", Count: 6, Color: "#28a745"},
		{Label: "Inactive", Count: 4, Color: "#6c757d"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StatusSplit() = %+v, want %+v", got, want)
	}
}

func TestLocationSlicesCyclePalette(t *testing.T) {
	distribution := make([]api.LocationDistribution, len(Palette)+1)
	for i := range distribution {
		distribution[i] = api.LocationDistribution{Location: "kitchen", Count: i}
	}

	slices := LocationSlices(distribution)
	if slices[0].Color != Palette[0] || slices[len(Palette)].Color != Palette[0] {
		t.Errorf("palette did not wrap: first %s, last %s", slices[0].Color, slices[len(Palette)].Color)
	}
	if slices[1].Label != enums.LocationLabel("kitchen") {
		t.Errorf("Label = %q", slices[1].Label)
	}
}

func TestActiveInRange(t *testing.T) {
	data := &api.AnalyticsData{
		Overview:   api.AnalyticsOverview{ActiveDevices24h: 1, ActiveDevices7d: 2, ActiveDevices30d: 3},
		DataPoints: api.AnalyticsDataPoints{Last24Hours: 10, Last7Days: 20, Last30Days: 30},
	}

	tests := []struct {
		timeRange  string
		wantActive int
		wantPoints int
		wantWindow string
	}{
		{string(enums.TimeRangeLast24Hours), 1, 10, "24h"},
		{string(enums.TimeRangeLast7Days), 2, 20, "7d"},
		{string(enums.TimeRangeLast30Days), 3, 30, "30d"},
		{"whenever", 3, 30, "30d"},
	}

	for _, tt := range tests {
		t.Run(tt.timeRange, func(t *testing.T) {
			active, points, window := ActiveInRange(data, tt.timeRange)
			if active != tt.wantActive || points != tt.wantPoints || window != tt.wantWindow {
				t.Errorf("ActiveInRange() = %d, %d, %q, want %d, %d, %q",
					active, points, window, tt.wantActive, tt.wantPoints, tt.wantWindow)
			}
		})
	}
}

func TestAnalytics(t *testing.T) {
	data := &api.AnalyticsData{
		Overview: api.AnalyticsOverview{TotalDevices: 5, InactiveDevices: 1, ActiveDevices7d: 4},
		Distributions: api.AnalyticsDistributions{
			DeviceTypes: []api.DeviceTypeDistribution{{Type: "humidity_sensor", Count: 3}},
			SensorTypes: []api.SensorTypeDistribution{{SensorType: "humidity", Count: 1200, AverageValue: 45.678}},
		},
		RecentActivity: []api.RecentActivity{
			{DeviceName: "Bath", DeviceLocation: "bathroom", SensorType: "humidity", Value: 60, Timestamp: "2024-01-15T10:00:00Z"},
		},
	}

	var out bytes.Buffer
	if err := Analytics(&out, data, string(enums.TimeRangeLast7Days), PlainStyler()); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"Last 7 Days",
		"Last 7d",
		enums.DeviceTypeLabel("humidity_sensor"),
		"No location data available",
		"1,200",
		"45.68%",
		"Bath",
		"60%",
		"Jan 15, 10:00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Analytics() output missing %q:\n%s", want, got)
		}
	}
}
