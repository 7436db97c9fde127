// Package queries binds the device API to the query cache: one cache key per
// resource read, and the invalidations each successful mutation triggers.
package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const (
	LATEST_READING_REFETCH_INTERVAL = 30 * time.Second
	ANALYTICS_REFETCH_INTERVAL      = 60 * time.Second
)

// API is the subset of *api.Client the queries need.
type API interface {
	CreateDevice(ctx context.Context, request api.CreateDeviceRequest) (*api.Device, error)
	ListDevices(ctx context.Context, filters *api.DeviceFilters) (*api.DevicePage, error)
	GetDevice(ctx context.Context, id string) (*api.Device, error)
	UpdateDevice(ctx context.Context, id string, request api.UpdateDeviceRequest) (*api.Device, error)
	DeleteDevice(ctx context.Context, id string) error
	AddSensorData(ctx context.Context, deviceID string, request api.CreateSensorDataRequest) (*api.SensorData, error)
	ListSensorData(ctx context.Context, deviceID string, params *api.SensorDataQuery) ([]api.SensorData, error)
	LatestReading(ctx context.Context, deviceID string) (*api.SensorData, error)
	DeviceStats(ctx context.Context, deviceID string, params *api.SensorDataQuery) (*api.DeviceStats, error)
	AnalyticsOverview(ctx context.Context) (*api.AnalyticsData, error)
}

type Queries struct {
	api    API
	cache  *query.Client
	logger *slog.Logger
}

func New(client API, cache *query.Client, logger *slog.Logger) *Queries {
	return &Queries{
		api:    client,
		cache:  cache,
		logger: logger,
	}
}

func (queries *Queries) Cache() *query.Client {
	return queries.cache
}

func (queries *Queries) log(level slog.Level, msg string, args ...any) {
	if queries.logger != nil {
		queries.logger.Log(context.Background(), level, msg, args...)
	}
}

func copyFilters(filters *api.DeviceFilters) *api.DeviceFilters {
	if filters == nil {
		return nil
	}
	copied := *filters
	return &copied
}

func copyParams(params *api.SensorDataQuery) *api.SensorDataQuery {
	if params == nil {
		return nil
	}
	copied := *params
	return &copied
}

func (queries *Queries) devicesFetcher(filters *api.DeviceFilters) func(context.Context) (*api.DevicePage, error) {
	filters = copyFilters(filters)
	return func(ctx context.Context) (*api.DevicePage, error) {
		return queries.api.ListDevices(ctx, filters)
	}
}

func (queries *Queries) deviceFetcher(id string) func(context.Context) (*api.Device, error) {
	return func(ctx context.Context) (*api.Device, error) {
		return queries.api.GetDevice(ctx, id)
	}
}

func (queries *Queries) sensorDataFetcher(deviceID string, params *api.SensorDataQuery) func(context.Context) ([]api.SensorData, error) {
	params = copyParams(params)
	return func(ctx context.Context) ([]api.SensorData, error) {
		return queries.api.ListSensorData(ctx, deviceID, params)
	}
}

func (queries *Queries) latestReadingFetcher(deviceID string) func(context.Context) (*api.SensorData, error) {
	return func(ctx context.Context) (*api.SensorData, error) {
		return queries.api.LatestReading(ctx, deviceID)
	}
}

func (queries *Queries) deviceStatsFetcher(deviceID string, params *api.SensorDataQuery) func(context.Context) (*api.DeviceStats, error) {
	params = copyParams(params)
	return func(ctx context.Context) (*api.DeviceStats, error) {
		return queries.api.DeviceStats(ctx, deviceID, params)
	}
}

func (queries *Queries) analyticsFetcher() func(context.Context) (*api.AnalyticsData, error) {
	return queries.api.AnalyticsOverview
}

func (queries *Queries) Devices(ctx context.Context, filters *api.DeviceFilters) (*api.DevicePage, error) {
	return query.Get(ctx, queries.cache, DeviceListKey(filters), queries.devicesFetcher(filters))
}

func (queries *Queries) Device(ctx context.Context, id string) (*api.Device, error) {
	if id == "" {
		return nil, ErrMissingDeviceID
	}
	return query.Get(ctx, queries.cache, DeviceKey(id), queries.deviceFetcher(id))
}

func (queries *Queries) SensorData(ctx context.Context, deviceID string, params *api.SensorDataQuery) ([]api.SensorData, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return query.Get(ctx, queries.cache, SensorDataListKey(deviceID, params), queries.sensorDataFetcher(deviceID, params))
}

func (queries *Queries) LatestReading(ctx context.Context, deviceID string) (*api.SensorData, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return query.Get(ctx, queries.cache, LatestReadingKey(deviceID), queries.latestReadingFetcher(deviceID))
}

func (queries *Queries) DeviceStats(ctx context.Context, deviceID string, params *api.SensorDataQuery) (*api.DeviceStats, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return query.Get(ctx, queries.cache, DeviceStatsKey(deviceID, params), queries.deviceStatsFetcher(deviceID, params))
}

func (queries *Queries) AnalyticsOverview(ctx context.Context) (*api.AnalyticsData, error) {
	return query.Get(ctx, queries.cache, AnalyticsOverviewKey(), queries.analyticsFetcher())
}

func (queries *Queries) WatchDevices(filters *api.DeviceFilters) (*query.Subscription, error) {
	return queries.cache.Subscribe(DeviceListKey(filters), query.Erase(queries.devicesFetcher(filters)), query.SubscribeOptions{})
}

func (queries *Queries) WatchDevice(id string) (*query.Subscription, error) {
	if id == "" {
		return nil, ErrMissingDeviceID
	}
	return queries.cache.Subscribe(DeviceKey(id), query.Erase(queries.deviceFetcher(id)), query.SubscribeOptions{})
}

func (queries *Queries) WatchSensorData(deviceID string, params *api.SensorDataQuery) (*query.Subscription, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return queries.cache.Subscribe(
		SensorDataListKey(deviceID, params),
		query.Erase(queries.sensorDataFetcher(deviceID, params)),
		query.SubscribeOptions{},
	)
}

func (queries *Queries) WatchDeviceStats(deviceID string, params *api.SensorDataQuery) (*query.Subscription, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return queries.cache.Subscribe(
		DeviceStatsKey(deviceID, params),
		query.Erase(queries.deviceStatsFetcher(deviceID, params)),
		query.SubscribeOptions{},
	)
}

// WatchLatestReading polls the device's latest reading while mounted.
func (queries *Queries) WatchLatestReading(deviceID string) (*query.Subscription, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}
	return queries.cache.Subscribe(
		LatestReadingKey(deviceID),
		query.Erase(queries.latestReadingFetcher(deviceID)),
		query.SubscribeOptions{RefetchInterval: LATEST_READING_REFETCH_INTERVAL},
	)
}

// WatchAnalyticsOverview polls the analytics overview while mounted.
func (queries *Queries) WatchAnalyticsOverview() (*query.Subscription, error) {
	return queries.cache.Subscribe(
		AnalyticsOverviewKey(),
		query.Erase(queries.analyticsFetcher()),
		query.SubscribeOptions{RefetchInterval: ANALYTICS_REFETCH_INTERVAL},
	)
}
