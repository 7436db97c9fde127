package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/monorkin/iot-dashboard/iot/api"
)

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Query   string
	Header  http.Header
	Body    string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeAPI) record(r *http.Request) map[string]any {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		RawPath: r.URL.EscapedPath(),
		Query:   r.URL.RawQuery,
		Header:  r.Header.Clone(),
		Body:    string(body),
	})
	f.mu.Unlock()

	decoded := map[string]any{}
	_ = json.Unmarshal(body, &decoded)
	return decoded
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *api.Client) {
	t.Helper()

	fake := &fakeAPI{}
	router := chi.NewRouter()

	router.Post("/devices", func(w http.ResponseWriter, r *http.Request) {
		body := fake.record(r)
		if body["name"] == "" {
			writeJSON(w, http.StatusBadRequest, `{"message":"name should not be empty"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{"id":"dev-1","name":"Kitchen Temp","type":"temperature","location":"kitchen","created_at":"2024-01-15T10:00:00Z","updated_at":"2024-01-15T10:00:00Z"}`)
	})
	router.Get("/devices", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusOK, `{
			"data": [{"id":"dev-1","name":"Kitchen Temp","type":"plasma_sensor","location":"moon_base","created_at":"2024-01-15T10:00:00Z","updated_at":"2024-01-15T10:00:00Z","latestData":{"temperature":21.5,"motion":true,"door_sensor":false,"humidity":null}}],
			"pagination": {"page":2,"limit":10,"total":11,"totalPages":2,"hasNextPage":false,"hasPreviousPage":true}
		}`)
	})
	router.Get("/devices/analytics/overview", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusOK, `{
			"overview":{"totalDevices":10,"activeDevices24h":4,"activeDevices7d":6,"activeDevices30d":8,"inactiveDevices":3},
			"dataPoints":{"last24Hours":120,"last7Days":800,"last30Days":3000,"averagePerDay":100.5},
			"distributions":{
				"deviceTypes":[{"type":"temperature","count":4}],
				"locations":[{"location":"kitchen","count":2}],
				"sensorTypes":[{"sensor_type":"humidity","count":50,"average_value":45.2}]
			},
			"recentActivity":[{"id":"r1","device_name":"Kitchen Temp","device_type":"temperature","device_location":"kitchen","sensor_type":"temperature","value":21.5,"timestamp":"2024-01-15T10:00:00Z"}]
		}`)
	})
	router.Get("/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		if chi.URLParam(r, "id") == "missing" {
			writeJSON(w, http.StatusNotFound, `{"message":"Device not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"`+chi.URLParam(r, "id")+`","name":"Kitchen Temp","type":"temperature","location":"kitchen","created_at":"2024-01-15T10:00:00Z","updated_at":"2024-01-15T10:00:00Z","metadata":{"firmware":"1.2.0"}}`)
	})
	router.Patch("/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusOK, `{"id":"`+chi.URLParam(r, "id")+`","name":"Renamed","type":"temperature","location":"kitchen","created_at":"2024-01-15T10:00:00Z","updated_at":"2024-01-16T10:00:00Z"}`)
	})
	router.Delete("/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	router.Post("/devices/{id}/data", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusCreated, `{"id":"r9","device_id":"`+chi.URLParam(r, "id")+`","value":22.1,"sensor_type":"temperature","timestamp":"2024-01-15T10:05:00Z"}`)
	})
	router.Get("/devices/{id}/data", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusOK, `[
			{"id":"r1","device_id":"dev-1","value":21.0,"sensor_type":"temperature","timestamp":"2024-01-15T10:00:00Z"},
			{"id":"r2","device_id":"dev-1","value":40.0,"sensor_type":"humidity","timestamp":"2024-01-15T10:01:00Z"}
		]`)
	})
	router.Get("/devices/{id}/data/latest", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusOK, `{"id":"r2","device_id":"dev-1","value":40.0,"sensor_type":"humidity","timestamp":"2024-01-15T10:01:00Z"}`)
	})
	router.Get("/devices/{id}/data/stats", func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		writeJSON(w, http.StatusOK, `{
			"deviceId":"dev-1","totalReadings":42,
			"temperature":21.5,"humidity":40,
			"averageTemperature":20.25,"averageAirQuality":31,
			"lastReading":{"id":"r2","device_id":"dev-1","value":40.0,"sensor_type":"humidity","timestamp":"2024-01-15T10:01:00Z"},
			"dateRange":{"start":"2024-01-14T10:00:00Z","end":"2024-01-15T10:00:00Z"}
		}`)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	return fake, client
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	if _, err := api.NewClient("ftp://example.com"); err == nil {
		t.Error("NewClient(ftp://...) expected error")
	}

	client, err := api.NewClient("")
	if err != nil {
		t.Fatalf("NewClient(\"\") error = %v", err)
	}
	if got := client.BaseURL(); got != api.DEFAULT_BASE_URL {
		t.Errorf("BaseURL() = %q, want %q", got, api.DEFAULT_BASE_URL)
	}
}

func TestClientSendsJSONHeaders(t *testing.T) {
	fake, client := newFakeAPI(t)

	if _, err := client.GetDevice(context.Background(), "dev-1"); err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}

	req := fake.last(t)
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}
	if got := req.Header.Get("User-Agent"); got != api.USER_AGENT {
		t.Errorf("User-Agent = %q, want %q", got, api.USER_AGENT)
	}
	if req.Header.Get(api.REQUEST_ID_HEADER) == "" {
		t.Error("request ID header missing")
	}
}

func TestCreateDevice(t *testing.T) {
	fake, client := newFakeAPI(t)

	device, err := client.CreateDevice(context.Background(), api.CreateDeviceRequest{
		Name:     "Kitchen Temp",
		Type:     "temperature",
		Location: "kitchen",
	})
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if device.ID != "dev-1" {
		t.Errorf("device.ID = %q, want dev-1", device.ID)
	}

	req := fake.last(t)
	if req.Method != http.MethodPost || req.Path != "/devices" {
		t.Errorf("request = %s %s, want POST /devices", req.Method, req.Path)
	}
	if strings.Contains(req.Body, "metadata") {
		t.Errorf("body %s should omit empty metadata", req.Body)
	}
}

func TestCreateDeviceRejectedByServer(t *testing.T) {
	_, client := newFakeAPI(t)

	_, err := client.CreateDevice(context.Background(), api.CreateDeviceRequest{Type: "temperature", Location: "kitchen"})

	var transportErr *api.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("CreateDevice() error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", transportErr.StatusCode)
	}
	if !strings.Contains(transportErr.Body, "name should not be empty") {
		t.Errorf("Body = %q, want server message", transportErr.Body)
	}
}

func TestListDevicesEncodesFilters(t *testing.T) {
	fake, client := newFakeAPI(t)

	page, err := client.ListDevices(context.Background(), &api.DeviceFilters{
		Page:      2,
		Limit:     10,
		SortBy:    "name",
		SortOrder: "asc",
		Search:    "kitchen temp",
	})
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	req := fake.last(t)
	want := "limit=10&page=2&search=kitchen+temp&sortBy=name&sortOrder=asc"
	if req.Query != want {
		t.Errorf("query = %q, want %q", req.Query, want)
	}

	if len(page.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1", len(page.Data))
	}
	if page.Pagination.TotalPages != 2 || !page.Pagination.HasPreviousPage {
		t.Errorf("Pagination = %+v", page.Pagination)
	}

	device := page.Data[0]
	if device.Type != "plasma_sensor" || device.Location != "moon_base" {
		t.Errorf("unknown codes not preserved: type=%q location=%q", device.Type, device.Location)
	}

	wantReadings := api.Readings{"temperature": 21.5, "motion": 1, "door_sensor": 0}
	if len(device.LatestData) != len(wantReadings) {
		t.Fatalf("LatestData = %v, want %v", device.LatestData, wantReadings)
	}
	for sensorType, want := range wantReadings {
		if got := device.LatestData[sensorType]; got != want {
			t.Errorf("LatestData[%s] = %v, want %v", sensorType, got, want)
		}
	}
}

func TestListDevicesWithoutFilters(t *testing.T) {
	fake, client := newFakeAPI(t)

	if _, err := client.ListDevices(context.Background(), nil); err != nil {
		t.Fatalf("ListDevices(nil) error = %v", err)
	}
	if req := fake.last(t); req.Query != "" {
		t.Errorf("query = %q, want empty", req.Query)
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	_, client := newFakeAPI(t)

	_, err := client.GetDevice(context.Background(), "missing")
	if !api.IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestGetDeviceEscapesID(t *testing.T) {
	fake, client := newFakeAPI(t)

	device, err := client.GetDevice(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if device.ID != "a%2Fb" {
		t.Errorf("routed id = %q, want a%%2Fb", device.ID)
	}
	if req := fake.last(t); req.RawPath != "/devices/a%2Fb" {
		t.Errorf("raw path = %q, want /devices/a%%2Fb", req.RawPath)
	}
}

func TestUpdateDeviceSendsOnlySetFields(t *testing.T) {
	fake, client := newFakeAPI(t)

	name := "Renamed"
	device, err := client.UpdateDevice(context.Background(), "dev-1", api.UpdateDeviceRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}
	if device.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", device.Name)
	}

	req := fake.last(t)
	if req.Method != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", req.Method)
	}
	if req.Body != `{"name":"Renamed"}` {
		t.Errorf("body = %s, want only name", req.Body)
	}
}

func TestDeleteDevice(t *testing.T) {
	fake, client := newFakeAPI(t)

	if err := client.DeleteDevice(context.Background(), "dev-1"); err != nil {
		t.Fatalf("DeleteDevice() error = %v", err)
	}
	if req := fake.last(t); req.Method != http.MethodDelete || req.Path != "/devices/dev-1" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
}

func TestAddSensorDataFlattensReadings(t *testing.T) {
	fake, client := newFakeAPI(t)

	data, err := client.AddSensorData(context.Background(), "dev-1", api.CreateSensorDataRequest{
		Readings:   api.Readings{"temperature": 22.1, "humidity": 41},
		CustomData: map[string]any{"note": "calibrated"},
	})
	if err != nil {
		t.Fatalf("AddSensorData() error = %v", err)
	}
	if data.DeviceID != "dev-1" {
		t.Errorf("DeviceID = %q, want dev-1", data.DeviceID)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(fake.last(t).Body), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["temperature"] != 22.1 || body["humidity"] != 41.0 {
		t.Errorf("body = %v, want flattened readings", body)
	}
	custom, ok := body["customData"].(map[string]any)
	if !ok || custom["note"] != "calibrated" {
		t.Errorf("customData = %v", body["customData"])
	}
}

func TestListSensorData(t *testing.T) {
	fake, client := newFakeAPI(t)

	data, err := client.ListSensorData(context.Background(), "dev-1", &api.SensorDataQuery{
		StartDate:  "2024-01-14T10:00:00Z",
		Limit:      100,
		SensorType: "temperature",
	})
	if err != nil {
		t.Fatalf("ListSensorData() error = %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(data))
	}

	want := "limit=100&sensorType=temperature&startDate=2024-01-14T10%3A00%3A00Z"
	if got := fake.last(t).Query; got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}

func TestLatestReading(t *testing.T) {
	fake, client := newFakeAPI(t)

	reading, err := client.LatestReading(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("LatestReading() error = %v", err)
	}
	if reading.SensorType != "humidity" || reading.Value != 40 {
		t.Errorf("reading = %+v", reading)
	}
	if got := fake.last(t).Path; got != "/devices/dev-1/data/latest" {
		t.Errorf("path = %q", got)
	}
}

func TestDeviceStatsSplitsAverages(t *testing.T) {
	_, client := newFakeAPI(t)

	stats, err := client.DeviceStats(context.Background(), "dev-1", nil)
	if err != nil {
		t.Fatalf("DeviceStats() error = %v", err)
	}

	if stats.DeviceID != "dev-1" || stats.TotalReadings != 42 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Current["temperature"] != 21.5 || stats.Current["humidity"] != 40 {
		t.Errorf("Current = %v", stats.Current)
	}
	if stats.Averages["temperature"] != 20.25 || stats.Averages["air_quality"] != 31 {
		t.Errorf("Averages = %v", stats.Averages)
	}
	if _, ok := stats.Current["averageTemperature"]; ok {
		t.Error("average fields leaked into Current")
	}
	if stats.LastReading == nil || stats.LastReading.ID != "r2" {
		t.Errorf("LastReading = %+v", stats.LastReading)
	}
	if stats.DateRange.Start != "2024-01-14T10:00:00Z" {
		t.Errorf("DateRange = %+v", stats.DateRange)
	}
}

func TestAnalyticsOverview(t *testing.T) {
	_, client := newFakeAPI(t)

	data, err := client.AnalyticsOverview(context.Background())
	if err != nil {
		t.Fatalf("AnalyticsOverview() error = %v", err)
	}

	if got := data.Overview.ActiveDevices(); got != 7 {
		t.Errorf("ActiveDevices() = %d, want 7", got)
	}
	if data.DataPoints.AveragePerDay != 100.5 {
		t.Errorf("AveragePerDay = %v", data.DataPoints.AveragePerDay)
	}
	if len(data.Distributions.SensorTypes) != 1 || data.Distributions.SensorTypes[0].AverageValue != 45.2 {
		t.Errorf("SensorTypes = %+v", data.Distributions.SensorTypes)
	}
	if len(data.RecentActivity) != 1 || data.RecentActivity[0].DeviceName != "Kitchen Temp" {
		t.Errorf("RecentActivity = %+v", data.RecentActivity)
	}
}

func TestBindingsReturnTransportErrorUnwrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"CreateDevice", func() error {
			_, err := client.CreateDevice(ctx, api.CreateDeviceRequest{Name: "a", Type: "temperature", Location: "kitchen"})
			return err
		}},
		{"ListDevices", func() error { _, err := client.ListDevices(ctx, nil); return err }},
		{"GetDevice", func() error { _, err := client.GetDevice(ctx, "dev-1"); return err }},
		{"UpdateDevice", func() error {
			name := "b"
			_, err := client.UpdateDevice(ctx, "dev-1", api.UpdateDeviceRequest{Name: &name})
			return err
		}},
		{"DeleteDevice", func() error { return client.DeleteDevice(ctx, "dev-1") }},
		{"AddSensorData", func() error {
			_, err := client.AddSensorData(ctx, "dev-1", api.CreateSensorDataRequest{Readings: map[string]float64{"temperature": 1}})
			return err
		}},
		{"ListSensorData", func() error { _, err := client.ListSensorData(ctx, "dev-1", nil); return err }},
		{"LatestReading", func() error { _, err := client.LatestReading(ctx, "dev-1"); return err }},
		{"DeviceStats", func() error { _, err := client.DeviceStats(ctx, "dev-1", nil); return err }},
		{"AnalyticsOverview", func() error { _, err := client.AnalyticsOverview(ctx); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			transportErr, ok := err.(*api.TransportError)
			if !ok {
				t.Fatalf("error = %T %v, want *TransportError", err, err)
			}
			if transportErr.StatusCode != http.StatusInternalServerError {
				t.Errorf("StatusCode = %d, want 500", transportErr.StatusCode)
			}
		})
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := api.NewClient(url)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.AnalyticsOverview(context.Background())

	var transportErr *api.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for network failure", transportErr.StatusCode)
	}
	if transportErr.Unwrap() == nil {
		t.Error("network failure should wrap its cause")
	}
}

func TestCanceledContext(t *testing.T) {
	_, client := newFakeAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetDevice(ctx, "dev-1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GetDevice() error = %v, want context.Canceled", err)
	}
}

func TestLatestReadings(t *testing.T) {
	readings, timestamp := api.LatestReadings([]api.SensorData{
		{SensorType: "temperature", Value: 20, Timestamp: "2024-01-15T10:00:00Z"},
		{SensorType: "humidity", Value: 40, Timestamp: "2024-01-15T10:01:00Z"},
		{SensorType: "temperature", Value: 21, Timestamp: "2024-01-15T10:02:00Z"},
		{Value: 99, Timestamp: "2024-01-15T10:03:00Z"},
	})

	if readings["temperature"] != 21 || readings["humidity"] != 40 || len(readings) != 2 {
		t.Errorf("readings = %v", readings)
	}
	if timestamp != "2024-01-15T10:02:00Z" {
		t.Errorf("timestamp = %q, want 2024-01-15T10:02:00Z", timestamp)
	}

	empty, ts := api.LatestReadings(nil)
	if len(empty) != 0 || ts != "" {
		t.Errorf("LatestReadings(nil) = %v, %q", empty, ts)
	}
}
