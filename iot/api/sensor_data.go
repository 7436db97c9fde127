package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

type SensorData struct {
	ID         string  `json:"id" yaml:"id"`
	DeviceID   string  `json:"device_id" yaml:"device_id"`
	Value      float64 `json:"value" yaml:"value"`
	SensorType string  `json:"sensor_type" yaml:"sensor_type"`
	Timestamp  string  `json:"timestamp" yaml:"timestamp"`
}

type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// DeviceStats is the server computed summary of a device's readings. On the
// wire current values sit next to "averageX" fields; they are split into
// Current and Averages keyed by sensor type code.
type DeviceStats struct {
	DeviceID      string      `json:"deviceId" yaml:"deviceId"`
	TotalReadings int         `json:"totalReadings" yaml:"totalReadings"`
	Current       Readings    `json:"current,omitempty" yaml:"current,omitempty"`
	Averages      Readings    `json:"averages,omitempty" yaml:"averages,omitempty"`
	LastReading   *SensorData `json:"lastReading,omitempty" yaml:"lastReading,omitempty"`
	DateRange     DateRange   `json:"dateRange" yaml:"dateRange"`
}

const averagePrefix = "average"

func (stats *DeviceStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoded := DeviceStats{
		Current:  Readings{},
		Averages: Readings{},
	}

	for field, value := range raw {
		var err error

		switch field {
		case "deviceId":
			err = json.Unmarshal(value, &decoded.DeviceID)
		case "totalReadings":
			err = json.Unmarshal(value, &decoded.TotalReadings)
		case "lastReading":
			err = json.Unmarshal(value, &decoded.LastReading)
		case "dateRange":
			err = json.Unmarshal(value, &decoded.DateRange)
		default:
			reading, ok := readingValue(value)
			if !ok {
				continue
			}
			if sensorType, isAverage := averageSensorType(field); isAverage {
				decoded.Averages[sensorType] = reading
			} else {
				decoded.Current[field] = reading
			}
		}

		if err != nil {
			return fmt.Errorf("invalid %s in device stats: %w", field, err)
		}
	}

	*stats = decoded
	return nil
}

// averageSensorType maps "averageAirQuality" to "air_quality".
func averageSensorType(field string) (string, bool) {
	rest, found := strings.CutPrefix(field, averagePrefix)
	if !found || rest == "" || !unicode.IsUpper(rune(rest[0])) {
		return "", false
	}

	var b strings.Builder
	for i, r := range rest {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	return b.String(), true
}

// CreateSensorDataRequest is sent flat: every reading becomes a top level
// field, next to an optional customData object.
type CreateSensorDataRequest struct {
	Readings   Readings
	CustomData map[string]any
}

func (request CreateSensorDataRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(request.Readings)+1)
	for sensorType, value := range request.Readings {
		body[sensorType] = value
	}
	if len(request.CustomData) > 0 {
		body["customData"] = request.CustomData
	}

	return json.Marshal(body)
}

// SensorDataQuery narrows reading lists and stats. Dates are sent as given,
// normally ISO-8601.
type SensorDataQuery struct {
	StartDate  string
	EndDate    string
	Limit      int
	SensorType string
}

func (query *SensorDataQuery) Values() url.Values {
	values := url.Values{}
	if query == nil {
		return values
	}

	if query.StartDate != "" {
		values.Set("startDate", query.StartDate)
	}
	if query.EndDate != "" {
		values.Set("endDate", query.EndDate)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.SensorType != "" {
		values.Set("sensorType", query.SensorType)
	}

	return values
}

// LatestReadings folds a reading list into the most recent value per sensor
// type. Later entries win, and the returned timestamp is the one of the last
// entry that carried a sensor type.
func LatestReadings(data []SensorData) (Readings, string) {
	readings := Readings{}
	timestamp := ""

	for _, item := range data {
		if item.SensorType == "" {
			continue
		}
		readings[item.SensorType] = item.Value
		timestamp = item.Timestamp
	}

	return readings, timestamp
}

func (client *Client) AddSensorData(ctx context.Context, deviceID string, request CreateSensorDataRequest) (*SensorData, error) {
	var data SensorData
	if err := client.do(ctx, http.MethodPost, nil, request, &data, "devices", deviceID, "data"); err != nil {
		return nil, err
	}

	client.log(slog.LevelInfo, "Sensor data added", "device_id", deviceID, "readings", len(request.Readings))
	return &data, nil
}

func (client *Client) ListSensorData(ctx context.Context, deviceID string, query *SensorDataQuery) ([]SensorData, error) {
	var data []SensorData
	if err := client.do(ctx, http.MethodGet, query.Values(), nil, &data, "devices", deviceID, "data"); err != nil {
		return nil, err
	}

	return data, nil
}

func (client *Client) LatestReading(ctx context.Context, deviceID string) (*SensorData, error) {
	var data SensorData
	if err := client.do(ctx, http.MethodGet, nil, nil, &data, "devices", deviceID, "data", "latest"); err != nil {
		return nil, err
	}

	return &data, nil
}

func (client *Client) DeviceStats(ctx context.Context, deviceID string, query *SensorDataQuery) (*DeviceStats, error) {
	var stats DeviceStats
	if err := client.do(ctx, http.MethodGet, query.Values(), nil, &stats, "devices", deviceID, "data", "stats"); err != nil {
		return nil, err
	}

	return &stats, nil
}
