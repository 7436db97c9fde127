package queries

import (
	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/iot/api"
)

var (
	deviceListPrefix    = query.NewKey("devices", "list")
	deviceDetailPrefix  = query.NewKey("devices", "detail")
	sensorDataPrefix    = query.NewKey("sensorData")
	latestReadingPrefix = query.NewKey("latestReading")
	deviceStatsPrefix   = query.NewKey("deviceStats")
	analyticsOverview   = query.NewKey("analytics", "overview")
)

// DeviceListKey has one variant per filter set; every variant sits under the
// devices/list prefix.
func DeviceListKey(filters *api.DeviceFilters) query.Key {
	return deviceListPrefix.Append(query.Params(filters.Values()))
}

func DeviceKey(id string) query.Key {
	return deviceDetailPrefix.Append(id)
}

func SensorDataListKey(deviceID string, params *api.SensorDataQuery) query.Key {
	return sensorDataPrefix.Append(deviceID, query.Params(params.Values()))
}

func LatestReadingKey(deviceID string) query.Key {
	return latestReadingPrefix.Append(deviceID)
}

func DeviceStatsKey(deviceID string, params *api.SensorDataQuery) query.Key {
	return deviceStatsPrefix.Append(deviceID, query.Params(params.Values()))
}

func AnalyticsOverviewKey() query.Key {
	return query.NewKey(analyticsOverview...)
}
