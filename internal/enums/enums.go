// Package enums maps the machine codes used by the device API to display labels,
// icons, colors and units. Unknown codes fall back to the raw code.
package enums

import (
	"fmt"
	"strings"
	"time"
)

const (
	FALLBACK_DEVICE_ICON = "smartphone"
	FALLBACK_COLOR       = "#6c757d"
)

// entry is one row of a registry table. Tables are slices so listing helpers
// keep the documented order.
type entry struct {
	Code  string
	Label string
	Icon  string
	Color string
}

type table []entry

func (t table) find(code string) (entry, bool) {
	for _, e := range t {
		if e.Code == code {
			return e, true
		}
	}
	return entry{}, false
}

func (t table) label(code string) string {
	if e, ok := t.find(code); ok {
		return e.Label
	}
	return code
}

func (t table) codes() []string {
	codes := make([]string, 0, len(t))
	for _, e := range t {
		codes = append(codes, e.Code)
	}
	return codes
}

type DeviceType string

const (
	DeviceTypeTemperature    DeviceType = "temperature"
	DeviceTypeHumidity       DeviceType = "humidity"
	DeviceTypePressure       DeviceType = "pressure"
	DeviceTypeMotion         DeviceType = "motion"
	DeviceTypeLight          DeviceType = "light"
	DeviceTypeVoltage        DeviceType = "voltage"
	DeviceTypeCurrent        DeviceType = "current"
	DeviceTypeAirQuality     DeviceType = "air_quality"
	DeviceTypeSmoke          DeviceType = "smoke"
	DeviceTypeWaterLevel     DeviceType = "water_level"
	DeviceTypeDoorSensor     DeviceType = "door_sensor"
	DeviceTypeWindowSensor   DeviceType = "window_sensor"
	DeviceTypeCarbonMonoxide DeviceType = "carbon_monoxide"
	DeviceTypeNoise          DeviceType = "noise"
	DeviceTypeVibration      DeviceType = "vibration"
)

var deviceTypes = table{
	{Code: string(DeviceTypeTemperature), Label: "Temperature Sensor", Icon: "thermometer-half"},
	{Code: string(DeviceTypeHumidity), Label: "Humidity Sensor", Icon: "tint"},
	{Code: string(DeviceTypePressure), Label: "Pressure Sensor", Icon: "compress"},
	{Code: string(DeviceTypeMotion), Label: "Motion Sensor", Icon: "walking"},
	{Code: string(DeviceTypeLight), Label: "Light Sensor", Icon: "lightbulb"},
	{Code: string(DeviceTypeVoltage), Label: "Voltage Sensor", Icon: "bolt"},
	{Code: string(DeviceTypeCurrent), Label: "Current Sensor", Icon: "flash"},
	{Code: string(DeviceTypeAirQuality), Label: "Air Quality Sensor", Icon: "wind"},
	{Code: string(DeviceTypeSmoke), Label: "Smoke Detector", Icon: "smoke"},
	{Code: string(DeviceTypeWaterLevel), Label: "Water Level Sensor", Icon: "water"},
	{Code: string(DeviceTypeDoorSensor), Label: "Door Sensor", Icon: "door-open"},
	{Code: string(DeviceTypeWindowSensor), Label: "Window Sensor", Icon: "window-maximize"},
	{Code: string(DeviceTypeCarbonMonoxide), Label: "Carbon Monoxide Detector", Icon: "skull-crossbones"},
	{Code: string(DeviceTypeNoise), Label: "Noise Sensor", Icon: "volume-up"},
	{Code: string(DeviceTypeVibration), Label: "Vibration Sensor", Icon: "mobile-alt"},
}

type Location string

const (
	LocationLivingRoom  Location = "living_room"
	LocationKitchen     Location = "kitchen"
	LocationBedroom     Location = "bedroom"
	LocationBathroom    Location = "bathroom"
	LocationGarage      Location = "garage"
	LocationBasement    Location = "basement"
	LocationAttic       Location = "attic"
	LocationHallway     Location = "hallway"
	LocationDiningRoom  Location = "dining_room"
	LocationOffice      Location = "office"
	LocationGarden      Location = "garden"
	LocationBalcony     Location = "balcony"
	LocationLaundryRoom Location = "laundry_room"
	LocationStorageRoom Location = "storage_room"
	LocationOutdoor     Location = "outdoor"
	LocationRooftop     Location = "rooftop"
	LocationPoolArea    Location = "pool_area"
	LocationGym         Location = "gym"
	LocationLibrary     Location = "library"
	LocationGuestRoom   Location = "guest_room"
)

var locations = table{
	{Code: string(LocationLivingRoom), Label: "Living Room"},
	{Code: string(LocationKitchen), Label: "Kitchen"},
	{Code: string(LocationBedroom), Label: "Bedroom"},
	{Code: string(LocationBathroom), Label: "Bathroom"},
	{Code: string(LocationGarage), Label: "Garage"},
	{Code: string(LocationBasement), Label: "Basement"},
	{Code: string(LocationAttic), Label: "Attic"},
	{Code: string(LocationHallway), Label: "Hallway"},
	{Code: string(LocationDiningRoom), Label: "Dining Room"},
	{Code: string(LocationOffice), Label: "Office"},
	{Code: string(LocationGarden), Label: "Garden"},
	{Code: string(LocationBalcony), Label: "Balcony"},
	{Code: string(LocationLaundryRoom), Label: "Laundry Room"},
	{Code: string(LocationStorageRoom), Label: "Storage Room"},
	{Code: string(LocationOutdoor), Label: "Outdoor"},
	{Code: string(LocationRooftop), Label: "Rooftop"},
	{Code: string(LocationPoolArea), Label: "Pool Area"},
	{Code: string(LocationGym), Label: "Gym"},
	{Code: string(LocationLibrary), Label: "Library"},
	{Code: string(LocationGuestRoom), Label: "Guest Room"},
}

type DeviceStatus string

const (
	DeviceStatusActive      DeviceStatus = "active"
	DeviceStatusInactive    DeviceStatus = "inactive"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
	DeviceStatusError       DeviceStatus = "error"
	DeviceStatusOffline     DeviceStatus = "offline"
)

var deviceStatuses = table{
	{Code: string(DeviceStatusActive), Label: "Active", Color: "#28a745"},
	{Code: string(DeviceStatusInactive), Label: "Inactive", Color: "#6c757d"},
	{Code: string(DeviceStatusMaintenance), Label: "Maintenance", Color: "#ffc107"},
	{Code: string(DeviceStatusError), Label: "Error", Color: "#dc3545"},
	{Code: string(DeviceStatusOffline), Label: "Offline", Color: "#6c757d"},
}

// Units are keyed by the upper-case sensor name, lookups fold case.
var measurementUnits = []struct {
	Key  string
	Unit string
}{
	{"TEMPERATURE", "°C"},
	{"HUMIDITY", "%"},
	{"PRESSURE", "hPa"},
	{"VOLTAGE", "V"},
	{"CURRENT", "A"},
	{"LIGHT", "lux"},
	{"AIR_QUALITY", "AQI"},
	{"WATER_LEVEL", "cm"},
	{"NOISE", "dB"},
	{"VIBRATION", "Hz"},
	{"MOTION", "detected"},
	{"SMOKE", "ppm"},
	{"CARBON_MONOXIDE", "ppm"},
	{"DOOR_SENSOR", "open/closed"},
	{"WINDOW_SENSOR", "open/closed"},
}

type ChartType string

const (
	ChartTypeLine    ChartType = "line"
	ChartTypeBar     ChartType = "bar"
	ChartTypePie     ChartType = "pie"
	ChartTypeArea    ChartType = "area"
	ChartTypeScatter ChartType = "scatter"
	ChartTypeGauge   ChartType = "gauge"
	ChartTypeHeatmap ChartType = "heatmap"
)

type TimeRange string

const (
	TimeRangeLastHour    TimeRange = "last_hour"
	TimeRangeLast6Hours  TimeRange = "last_6_hours"
	TimeRangeLast24Hours TimeRange = "last_24_hours"
	TimeRangeLast7Days   TimeRange = "last_7_days"
	TimeRangeLast30Days  TimeRange = "last_30_days"
	TimeRangeLast3Months TimeRange = "last_3_months"
	TimeRangeLastYear    TimeRange = "last_year"
	TimeRangeCustom      TimeRange = "custom"
)

var timeRanges = table{
	{Code: string(TimeRangeLastHour), Label: "Last Hour"},
	{Code: string(TimeRangeLast6Hours), Label: "Last 6 Hours"},
	{Code: string(TimeRangeLast24Hours), Label: "Last 24 Hours"},
	{Code: string(TimeRangeLast7Days), Label: "Last 7 Days"},
	{Code: string(TimeRangeLast30Days), Label: "Last 30 Days"},
	{Code: string(TimeRangeLast3Months), Label: "Last 3 Months"},
	{Code: string(TimeRangeLastYear), Label: "Last Year"},
	{Code: string(TimeRangeCustom), Label: "Custom Range"},
}

var timeRangeDurations = map[TimeRange]time.Duration{
	TimeRangeLastHour:    time.Hour,
	TimeRangeLast6Hours:  6 * time.Hour,
	TimeRangeLast24Hours: 24 * time.Hour,
	TimeRangeLast7Days:   7 * 24 * time.Hour,
	TimeRangeLast30Days:  30 * 24 * time.Hour,
	TimeRangeLast3Months: 90 * 24 * time.Hour,
	TimeRangeLastYear:    365 * 24 * time.Hour,
}

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

var alertSeverities = table{
	{Code: string(AlertSeverityLow), Label: "Low", Color: "#17a2b8"},
	{Code: string(AlertSeverityMedium), Label: "Medium", Color: "#ffc107"},
	{Code: string(AlertSeverityHigh), Label: "High", Color: "#fd7e14"},
	{Code: string(AlertSeverityCritical), Label: "Critical", Color: "#dc3545"},
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type WidgetType string

const (
	WidgetChart  WidgetType = "chart"
	WidgetMetric WidgetType = "metric"
	WidgetTable  WidgetType = "table"
	WidgetGauge  WidgetType = "gauge"
	WidgetAlert  WidgetType = "alert"
	WidgetMap    WidgetType = "map"
)

type APIStatus string

const (
	APIStatusSuccess APIStatus = "success"
	APIStatusError   APIStatus = "error"
	APIStatusLoading APIStatus = "loading"
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

var sortOrders = table{
	{Code: string(SortOrderAsc), Label: "Ascending"},
	{Code: string(SortOrderDesc), Label: "Descending"},
}

// Fields the device list endpoint accepts in sortBy.
var sortFields = []string{"created_at", "updated_at", "name", "type", "location"}

var paginationSizes = []struct {
	Size  int
	Label string
}{
	{10, "10 per page"},
	{25, "25 per page"},
	{50, "50 per page"},
	{100, "100 per page"},
}

const DEFAULT_PAGE_SIZE = 25

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

var themes = table{
	{Code: string(ThemeLight), Label: "Light"},
	{Code: string(ThemeDark), Label: "Dark"},
	{Code: string(ThemeAuto), Label: "Auto"},
}

type Language string

var languages = table{
	{Code: "en", Label: "English"},
	{Code: "es", Label: "Español"},
	{Code: "fr", Label: "Français"},
	{Code: "de", Label: "Deutsch"},
	{Code: "it", Label: "Italiano"},
	{Code: "pt", Label: "Português"},
	{Code: "ru", Label: "Русский"},
	{Code: "zh", Label: "中文"},
	{Code: "ja", Label: "日本語"},
	{Code: "ko", Label: "한국어"},
}

func DeviceTypeLabel(code string) string { return deviceTypes.label(code) }

func DeviceTypeIcon(code string) string {
	if e, ok := deviceTypes.find(code); ok {
		return e.Icon
	}
	return FALLBACK_DEVICE_ICON
}

func LocationLabel(code string) string { return locations.label(code) }

func DeviceStatusLabel(code string) string { return deviceStatuses.label(code) }

func DeviceStatusColor(code string) string {
	if e, ok := deviceStatuses.find(code); ok {
		return e.Color
	}
	return FALLBACK_COLOR
}

// MeasurementUnit returns the display unit for a sensor type, matching the
// key case-insensitively. Unknown sensor types have no unit.
func MeasurementUnit(sensorType string) string {
	for _, u := range measurementUnits {
		if strings.EqualFold(u.Key, sensorType) {
			return u.Unit
		}
	}
	return ""
}

func TimeRangeLabel(code string) string { return timeRanges.label(code) }

// TimeRangeDuration returns the window length of a relative time range.
// Custom and unknown ranges report false.
func TimeRangeDuration(code string) (time.Duration, bool) {
	d, ok := timeRangeDurations[TimeRange(code)]
	return d, ok
}

func AlertSeverityLabel(code string) string { return alertSeverities.label(code) }

func AlertSeverityColor(code string) string {
	if e, ok := alertSeverities.find(code); ok {
		return e.Color
	}
	return FALLBACK_COLOR
}

func SortOrderLabel(code string) string { return sortOrders.label(code) }

func PaginationSizeLabel(size int) string {
	for _, p := range paginationSizes {
		if p.Size == size {
			return p.Label
		}
	}
	return fmt.Sprintf("%d per page", size)
}

func ThemeLabel(code string) string { return themes.label(code) }

func LanguageLabel(code string) string { return languages.label(code) }

func IsDeviceType(code string) bool {
	_, ok := deviceTypes.find(code)
	return ok
}

func IsLocation(code string) bool {
	_, ok := locations.find(code)
	return ok
}

func IsSortOrder(code string) bool {
	_, ok := sortOrders.find(code)
	return ok
}

func IsSortField(field string) bool {
	for _, f := range sortFields {
		if f == field {
			return true
		}
	}
	return false
}

func IsPaginationSize(size int) bool {
	for _, p := range paginationSizes {
		if p.Size == size {
			return true
		}
	}
	return false
}

func IsTheme(code string) bool {
	_, ok := themes.find(code)
	return ok
}

func DeviceTypes() []string { return deviceTypes.codes() }

func Locations() []string { return locations.codes() }

func TimeRanges() []string { return timeRanges.codes() }

func Themes() []string { return themes.codes() }

func SortFields() []string { return append([]string(nil), sortFields...) }

func PaginationSizes() []int {
	sizes := make([]int, 0, len(paginationSizes))
	for _, p := range paginationSizes {
		sizes = append(sizes, p.Size)
	}
	return sizes
}
