package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const (
	dbusName      = APP_IDENTIFIER
	dbusPath      = "/io/github/monorkin/IoTDashboard"
	dbusInterface = APP_IDENTIFIER
)

var indicatorIntrospection = introspect.Interface{
	Name: dbusInterface,
	Methods: []introspect.Method{
		{
			Name: "GetOverview",
			Args: []introspect.Arg{
				{Name: "overview", Direction: "out", Type: "a{sv}"},
			},
		},
		{
			Name: "GetTheme",
			Args: []introspect.Arg{
				{Name: "theme", Direction: "out", Type: "s"},
			},
		},
		{Name: "Refresh"},
		{Name: "Quit"},
	},
	Signals: []introspect.Signal{
		{
			Name: "OverviewUpdated",
			Args: []introspect.Arg{
				{Name: "overview", Type: "a{sv}"},
			},
		},
	},
}

// Indicator exposes the analytics overview on the session bus for a desktop
// shell extension. The overview is polled while the indicator runs.
type Indicator struct {
	app  *App
	conn *dbus.Conn

	mu           sync.Mutex
	subscription *query.Subscription
	overview     *api.AnalyticsData
	updatedAt    time.Time

	quit     chan struct{}
	quitOnce sync.Once
}

// NewIndicator connects to the session bus, exports the service object and
// claims the bus name.
func NewIndicator(app *App) (*Indicator, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	indicator := &Indicator{
		app:  app,
		conn: conn,
		quit: make(chan struct{}),
	}

	if err := conn.Export(indicator, dbus.ObjectPath(dbusPath), dbusInterface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export service: %w", err)
	}

	node := &introspect.Node{
		Name: dbusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			indicatorIntrospection,
		},
	}
	err = conn.Export(introspect.NewIntrospectable(node), dbus.ObjectPath(dbusPath), "org.freedesktop.DBus.Introspectable")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export introspection: %w", err)
	}

	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already taken", dbusName)
	}

	return indicator, nil
}

// Run polls the analytics overview and emits OverviewUpdated after every
// completed fetch. It returns when ctx ends or Quit is called over the bus.
func (indicator *Indicator) Run(ctx context.Context) error {
	subscription, err := indicator.app.Queries.WatchAnalyticsOverview()
	if err != nil {
		return fmt.Errorf("failed to watch analytics overview: %w", err)
	}
	defer subscription.Close()

	indicator.mu.Lock()
	indicator.subscription = subscription
	indicator.mu.Unlock()

	indicator.app.Logger.Info("Indicator running", "name", dbusName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-indicator.quit:
			return nil
		case state, ok := <-subscription.Updates():
			if !ok {
				return nil
			}
			indicator.apply(state)
		}
	}
}

func (indicator *Indicator) apply(state query.State) {
	if state.IsFetching() {
		return
	}
	if state.Err != nil {
		indicator.app.Logger.Warn("Failed to refresh analytics overview", "error", state.Err)
		return
	}
	if !state.HasData {
		return
	}

	overview, err := query.Cast[*api.AnalyticsData](state.Data)
	if err != nil {
		indicator.app.Logger.Error("Unexpected analytics data", "error", err)
		return
	}

	indicator.mu.Lock()
	indicator.overview = overview
	indicator.updatedAt = state.UpdatedAt
	indicator.mu.Unlock()

	if err := indicator.EmitOverviewUpdated(); err != nil {
		indicator.app.Logger.Warn("Failed to emit overview update", "error", err)
	}
}

// GetOverview returns the last polled overview, or an empty dictionary
// before the first successful poll.
func (indicator *Indicator) GetOverview() (map[string]dbus.Variant, *dbus.Error) {
	indicator.mu.Lock()
	defer indicator.mu.Unlock()
	return overviewVariant(indicator.overview, indicator.updatedAt), nil
}

func (indicator *Indicator) GetTheme() (string, *dbus.Error) {
	return string(indicator.app.Theme.Actual(context.Background())), nil
}

// Refresh polls the overview now instead of waiting for the next tick.
func (indicator *Indicator) Refresh() *dbus.Error {
	indicator.mu.Lock()
	subscription := indicator.subscription
	indicator.mu.Unlock()

	if subscription != nil {
		subscription.Refetch()
	}
	return nil
}

func (indicator *Indicator) Quit() *dbus.Error {
	indicator.quitOnce.Do(func() { close(indicator.quit) })
	return nil
}

func (indicator *Indicator) EmitOverviewUpdated() error {
	overview, _ := indicator.GetOverview()
	return indicator.conn.Emit(dbus.ObjectPath(dbusPath), dbusInterface+".OverviewUpdated", overview)
}

func (indicator *Indicator) Close() error {
	if indicator.conn != nil {
		return indicator.conn.Close()
	}
	return nil
}

func overviewVariant(data *api.AnalyticsData, updatedAt time.Time) map[string]dbus.Variant {
	if data == nil {
		return map[string]dbus.Variant{}
	}

	overview := data.Overview
	return map[string]dbus.Variant{
		"total_devices":      dbus.MakeVariant(int32(overview.TotalDevices)),
		"active_devices":     dbus.MakeVariant(int32(overview.ActiveDevices())),
		"inactive_devices":   dbus.MakeVariant(int32(overview.InactiveDevices)),
		"active_devices_24h": dbus.MakeVariant(int32(overview.ActiveDevices24h)),
		"active_devices_7d":  dbus.MakeVariant(int32(overview.ActiveDevices7d)),
		"active_devices_30d": dbus.MakeVariant(int32(overview.ActiveDevices30d)),
		"data_points_24h":    dbus.MakeVariant(int32(data.DataPoints.Last24Hours)),
		"average_per_day":    dbus.MakeVariant(data.DataPoints.AveragePerDay),
		"timestamp":          dbus.MakeVariant(updatedAt.Unix()),
	}
}
