package api

import (
	"context"
	"net/http"
)

type AnalyticsOverview struct {
	TotalDevices     int `json:"totalDevices" yaml:"totalDevices"`
	ActiveDevices24h int `json:"activeDevices24h" yaml:"activeDevices24h"`
	ActiveDevices7d  int `json:"activeDevices7d" yaml:"activeDevices7d"`
	ActiveDevices30d int `json:"activeDevices30d" yaml:"activeDevices30d"`
	InactiveDevices  int `json:"inactiveDevices" yaml:"inactiveDevices"`
}

// ActiveDevices is what the status split plots as active. The server's
// windowed counts are shown as received and are not assumed to agree with it.
func (overview AnalyticsOverview) ActiveDevices() int {
	return overview.TotalDevices - overview.InactiveDevices
}

type AnalyticsDataPoints struct {
	Last24Hours   int     `json:"last24Hours" yaml:"last24Hours"`
	Last7Days     int     `json:"last7Days" yaml:"last7Days"`
	Last30Days    int     `json:"last30Days" yaml:"last30Days"`
	AveragePerDay float64 `json:"averagePerDay" yaml:"averagePerDay"`
}

type DeviceTypeDistribution struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

type LocationDistribution struct {
	Location string `json:"location" yaml:"location"`
	Count    int    `json:"count" yaml:"count"`
}

type SensorTypeDistribution struct {
	SensorType   string  `json:"sensor_type" yaml:"sensor_type"`
	Count        int     `json:"count" yaml:"count"`
	AverageValue float64 `json:"average_value" yaml:"average_value"`
}

type AnalyticsDistributions struct {
	DeviceTypes []DeviceTypeDistribution `json:"deviceTypes" yaml:"deviceTypes"`
	Locations   []LocationDistribution   `json:"locations" yaml:"locations"`
	SensorTypes []SensorTypeDistribution `json:"sensorTypes" yaml:"sensorTypes"`
}

type RecentActivity struct {
	ID             string  `json:"id" yaml:"id"`
	DeviceName     string  `json:"device_name" yaml:"device_name"`
	DeviceType     string  `json:"device_type" yaml:"device_type"`
	DeviceLocation string  `json:"device_location" yaml:"device_location"`
	SensorType     string  `json:"sensor_type" yaml:"sensor_type"`
	Value          float64 `json:"value" yaml:"value"`
	Timestamp      string  `json:"timestamp" yaml:"timestamp"`
}

type AnalyticsData struct {
	Overview       AnalyticsOverview      `json:"overview" yaml:"overview"`
	DataPoints     AnalyticsDataPoints    `json:"dataPoints" yaml:"dataPoints"`
	Distributions  AnalyticsDistributions `json:"distributions" yaml:"distributions"`
	RecentActivity []RecentActivity       `json:"recentActivity" yaml:"recentActivity"`
}

func (client *Client) AnalyticsOverview(ctx context.Context) (*AnalyticsData, error) {
	var data AnalyticsData
	if err := client.do(ctx, http.MethodGet, nil, nil, &data, "devices", "analytics", "overview"); err != nil {
		return nil, err
	}

	return &data, nil
}
