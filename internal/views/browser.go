package views

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/monorkin/iot-dashboard/internal/filters"
	"github.com/monorkin/iot-dashboard/internal/queries"
	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/iot/api"
)

var ErrBrowserClosed = errors.New("device browser closed")

// BrowserState is a device list state together with the filters it was
// fetched for.
type BrowserState struct {
	Filters api.DeviceFilters
	Query   query.State
}

// Page returns the fetched page, if any.
func (state BrowserState) Page() (*api.DevicePage, bool) {
	if !state.Query.HasData {
		return nil, false
	}
	page, err := query.Cast[*api.DevicePage](state.Query.Data)
	if err != nil || page == nil {
		return nil, false
	}
	return page, true
}

// DeviceBrowser is the device list screen: it owns the filter selection and
// keeps exactly one device list subscription for the current selection.
type DeviceBrowser struct {
	queries *queries.Queries
	owner   *filters.Owner
	logger  *slog.Logger

	mu           sync.Mutex
	subscription *query.Subscription
	current      api.DeviceFilters
	closed       bool
}

func NewDeviceBrowser(q *queries.Queries, initial api.DeviceFilters, logger *slog.Logger) (*DeviceBrowser, error) {
	browser := &DeviceBrowser{
		queries: q,
		logger:  logger,
	}
	browser.owner = filters.NewOwner(initial, nil)

	if err := browser.resubscribe(browser.owner.Filters()); err != nil {
		return nil, err
	}
	browser.owner.SetOnChange(func(next api.DeviceFilters) {
		if err := browser.resubscribe(next); err != nil {
			browser.log(slog.LevelWarn, "Failed to watch devices", "error", err)
		}
	})

	return browser, nil
}

func (browser *DeviceBrowser) log(level slog.Level, msg string, args ...any) {
	if browser.logger != nil {
		browser.logger.Log(context.Background(), level, msg, args...)
	}
}

// resubscribe closes the subscription for the previous selection before
// opening one for the newest selection.
func (browser *DeviceBrowser) resubscribe(next api.DeviceFilters) error {
	browser.mu.Lock()
	defer browser.mu.Unlock()

	if browser.closed {
		return ErrBrowserClosed
	}

	// The owner may have moved on since next was reported.
	next = browser.owner.Filters()
	if browser.subscription != nil && next == browser.current {
		return nil
	}

	if browser.subscription != nil {
		browser.subscription.Close()
		browser.subscription = nil
	}

	subscription, err := browser.queries.WatchDevices(&next)
	if err != nil {
		return err
	}
	browser.subscription = subscription
	browser.current = next

	browser.log(slog.LevelDebug, "Watching devices", "key", subscription.Key().String())
	return nil
}

func (browser *DeviceBrowser) Filters() api.DeviceFilters {
	return browser.owner.Filters()
}

// Next waits for the next state of the current selection. States of a
// selection that has since been replaced are never returned.
func (browser *DeviceBrowser) Next(ctx context.Context) (BrowserState, error) {
	for {
		browser.mu.Lock()
		if browser.closed {
			browser.mu.Unlock()
			return BrowserState{}, ErrBrowserClosed
		}
		subscription := browser.subscription
		current := browser.current
		browser.mu.Unlock()

		if subscription == nil {
			return BrowserState{}, query.ErrClosed
		}

		select {
		case <-ctx.Done():
			return BrowserState{}, ctx.Err()
		case state, ok := <-subscription.Updates():
			browser.mu.Lock()
			replaced := browser.subscription != subscription
			browser.mu.Unlock()

			if replaced {
				continue
			}
			if !ok {
				return BrowserState{}, query.ErrClosed
			}
			return BrowserState{Filters: current, Query: state}, nil
		}
	}
}

// Current returns the latest state of the current selection without waiting.
func (browser *DeviceBrowser) Current() BrowserState {
	browser.mu.Lock()
	subscription := browser.subscription
	current := browser.current
	browser.mu.Unlock()

	if subscription == nil {
		return BrowserState{Filters: current}
	}
	return BrowserState{Filters: current, Query: subscription.State()}
}

func (browser *DeviceBrowser) Search(search string) api.DeviceFilters {
	return browser.owner.Update(func(filters *api.DeviceFilters) {
		filters.Search = search
	})
}

func (browser *DeviceBrowser) FilterType(deviceType string) api.DeviceFilters {
	return browser.owner.Update(func(filters *api.DeviceFilters) {
		filters.Type = deviceType
	})
}

func (browser *DeviceBrowser) FilterLocation(location string) api.DeviceFilters {
	return browser.owner.Update(func(filters *api.DeviceFilters) {
		filters.Location = location
	})
}

func (browser *DeviceBrowser) Sort(field string, order string) api.DeviceFilters {
	return browser.owner.Update(func(filters *api.DeviceFilters) {
		filters.SortBy = field
		filters.SortOrder = order
	})
}

func (browser *DeviceBrowser) SetLimit(limit int) api.DeviceFilters {
	return browser.owner.Update(func(filters *api.DeviceFilters) {
		filters.Limit = limit
	})
}

func (browser *DeviceBrowser) SetPage(page int) api.DeviceFilters {
	return browser.owner.SetPage(page)
}

// NextPage and PrevPage move relative to the pagination of the current page
// and report whether the selection changed.
func (browser *DeviceBrowser) NextPage() bool {
	page, ok := browser.Current().Page()
	return ok && browser.owner.NextPage(page.Pagination)
}

func (browser *DeviceBrowser) PrevPage() bool {
	page, ok := browser.Current().Page()
	return ok && browser.owner.PrevPage(page.Pagination)
}

func (browser *DeviceBrowser) Clear() api.DeviceFilters {
	return browser.owner.Clear()
}

func (browser *DeviceBrowser) Refetch() {
	browser.mu.Lock()
	defer browser.mu.Unlock()
	if browser.subscription != nil {
		browser.subscription.Refetch()
	}
}

func (browser *DeviceBrowser) Close() {
	browser.mu.Lock()
	defer browser.mu.Unlock()

	browser.closed = true
	browser.owner.SetOnChange(nil)
	if browser.subscription != nil {
		browser.subscription.Close()
		browser.subscription = nil
	}
}
