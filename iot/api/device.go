package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Device as returned by the API. Type and Location hold the raw server codes,
// which are kept even when the client does not recognize them.
type Device struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Type        string         `json:"type" yaml:"type"`
	Location    string         `json:"location" yaml:"location"`
	Status      string         `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt   string         `json:"created_at" yaml:"created_at"`
	UpdatedAt   string         `json:"updated_at" yaml:"updated_at"`
	LatestData  Readings       `json:"latestData,omitempty" yaml:"latestData,omitempty"`
	LastReading string         `json:"lastReading,omitempty" yaml:"lastReading,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Readings maps a sensor type code to its value.
type Readings map[string]float64

// UnmarshalJSON accepts numbers and booleans (motion, door and window sensors
// report true/false) and skips nulls and anything else it can't read as a value.
func (readings *Readings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*readings = nil
		return nil
	}

	decoded := make(Readings, len(raw))
	for sensorType, value := range raw {
		if v, ok := readingValue(value); ok {
			decoded[sensorType] = v
		}
	}

	*readings = decoded
	return nil
}

func readingValue(raw json.RawMessage) (float64, bool) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, true
	}

	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		if flag {
			return 1, true
		}
		return 0, true
	}

	return 0, false
}

type CreateDeviceRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Location string         `json:"location"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UpdateDeviceRequest is a partial update; nil fields are left out of the body.
type UpdateDeviceRequest struct {
	Name     *string        `json:"name,omitempty"`
	Type     *string        `json:"type,omitempty"`
	Location *string        `json:"location,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (request UpdateDeviceRequest) IsEmpty() bool {
	return request.Name == nil && request.Type == nil && request.Location == nil && request.Metadata == nil
}

// DeviceFilters selects a page of devices. Zero values are not sent.
type DeviceFilters struct {
	Page      int    `json:"page,omitempty" yaml:"page,omitempty"`
	Limit     int    `json:"limit,omitempty" yaml:"limit,omitempty"`
	SortBy    string `json:"sortBy,omitempty" yaml:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	Search    string `json:"search,omitempty" yaml:"search,omitempty"`
}

func (filters *DeviceFilters) Values() url.Values {
	values := url.Values{}
	if filters == nil {
		return values
	}

	if filters.Page > 0 {
		values.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		values.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.SortBy != "" {
		values.Set("sortBy", filters.SortBy)
	}
	if filters.SortOrder != "" {
		values.Set("sortOrder", filters.SortOrder)
	}
	if filters.Type != "" {
		values.Set("type", filters.Type)
	}
	if filters.Location != "" {
		values.Set("location", filters.Location)
	}
	if filters.Search != "" {
		values.Set("search", filters.Search)
	}

	return values
}

type Pagination struct {
	Page            int  `json:"page" yaml:"page"`
	Limit           int  `json:"limit" yaml:"limit"`
	Total           int  `json:"total" yaml:"total"`
	TotalPages      int  `json:"totalPages" yaml:"totalPages"`
	HasNextPage     bool `json:"hasNextPage" yaml:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage" yaml:"hasPreviousPage"`
}

type DevicePage struct {
	Data       []Device   `json:"data" yaml:"data"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

func (client *Client) CreateDevice(ctx context.Context, request CreateDeviceRequest) (*Device, error) {
	var device Device
	if err := client.do(ctx, http.MethodPost, nil, request, &device, "devices"); err != nil {
		return nil, err
	}

	client.log(slog.LevelInfo, "Device created", "id", device.ID, "name", device.Name)
	return &device, nil
}

func (client *Client) ListDevices(ctx context.Context, filters *DeviceFilters) (*DevicePage, error) {
	var page DevicePage
	if err := client.do(ctx, http.MethodGet, filters.Values(), nil, &page, "devices"); err != nil {
		return nil, err
	}

	return &page, nil
}

func (client *Client) GetDevice(ctx context.Context, id string) (*Device, error) {
	var device Device
	if err := client.do(ctx, http.MethodGet, nil, nil, &device, "devices", id); err != nil {
		return nil, err
	}

	return &device, nil
}

func (client *Client) UpdateDevice(ctx context.Context, id string, request UpdateDeviceRequest) (*Device, error) {
	var device Device
	if err := client.do(ctx, http.MethodPatch, nil, request, &device, "devices", id); err != nil {
		return nil, err
	}

	client.log(slog.LevelInfo, "Device updated", "id", id)
	return &device, nil
}

func (client *Client) DeleteDevice(ctx context.Context, id string) error {
	if err := client.do(ctx, http.MethodDelete, nil, nil, nil, "devices", id); err != nil {
		return err
	}

	client.log(slog.LevelInfo, "Device deleted", "id", id)
	return nil
}
