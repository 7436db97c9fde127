package queries

import (
	"context"
	"log/slog"

	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/iot/api"
)

// Mutations always go to the API; they are never deduplicated or cached. The
// cache is only touched after a mutation succeeds.

func (queries *Queries) CreateDevice(ctx context.Context, request api.CreateDeviceRequest) (*api.Device, error) {
	device, err := queries.api.CreateDevice(ctx, request)
	if err != nil {
		return nil, err
	}

	queries.invalidate("device created", deviceListPrefix)
	return device, nil
}

func (queries *Queries) UpdateDevice(ctx context.Context, id string, request api.UpdateDeviceRequest) (*api.Device, error) {
	if id == "" {
		return nil, ErrMissingDeviceID
	}

	device, err := queries.api.UpdateDevice(ctx, id, request)
	if err != nil {
		return nil, err
	}

	queries.invalidate("device updated", deviceListPrefix, DeviceKey(id))
	return device, nil
}

func (queries *Queries) DeleteDevice(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingDeviceID
	}

	if err := queries.api.DeleteDevice(ctx, id); err != nil {
		return err
	}

	queries.invalidate("device deleted", deviceListPrefix, DeviceKey(id))
	return nil
}

func (queries *Queries) AddSensorData(ctx context.Context, deviceID string, request api.CreateSensorDataRequest) (*api.SensorData, error) {
	if deviceID == "" {
		return nil, ErrMissingDeviceID
	}

	data, err := queries.api.AddSensorData(ctx, deviceID, request)
	if err != nil {
		return nil, err
	}

	queries.invalidate("sensor data added",
		sensorDataPrefix.Append(deviceID),
		LatestReadingKey(deviceID),
		deviceStatsPrefix.Append(deviceID),
	)
	return data, nil
}

func (queries *Queries) invalidate(reason string, prefixes ...query.Key) {
	touched := queries.cache.Invalidate(prefixes...)
	queries.log(slog.LevelDebug, "Invalidated queries", "reason", reason, "entries", touched)
}
