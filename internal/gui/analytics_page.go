package gui

import (
	"strconv"

	adw "github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/cairo"
	gtk "github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

type analyticsPage struct {
	window       *Window
	subscription *query.Subscription

	root    *gtk.ScrolledWindow
	content *gtk.Box

	state  query.State
	closed bool
}

func newAnalyticsPage(window *Window) (*analyticsPage, error) {
	subscription, err := window.root.Queries.WatchAnalyticsOverview()
	if err != nil {
		return nil, err
	}

	page := &analyticsPage{
		window:       window,
		subscription: subscription,
	}
	page.root, page.content = newPageBox()

	page.apply(subscription.State())
	window.follow(subscription, page.apply)

	return page, nil
}

func (page *analyticsPage) apply(state query.State) {
	if page.closed {
		return
	}
	page.state = state
	page.render()
}

func (page *analyticsPage) render() {
	clearBox(page.content)
	page.content.Append(sectionTitle("Analytics"))

	if !page.state.HasData {
		if page.state.Err != nil {
			page.content.Append(messageBox("⚠️", "Error loading analytics", page.state.Err.Error()))
		} else {
			page.content.Append(messageBox("", "Loading analytics…", ""))
		}
		return
	}

	data, err := query.Cast[*api.AnalyticsData](page.state.Data)
	if err != nil || data == nil {
		page.window.logger.Error("Unexpected analytics data", "error", err)
		return
	}

	overviewGroup := adw.NewPreferencesGroup()
	overviewGroup.SetTitle("Overview")
	if !page.state.UpdatedAt.IsZero() {
		overviewGroup.SetDescription("Updated " + page.state.UpdatedAt.Local().Format("15:04:05"))
	}
	for _, card := range views.DashboardCards(data) {
		row := valueRow(card.Title, card.Value)
		row.SetSubtitle(card.Description)
		overviewGroup.Add(row)
	}
	page.content.Append(overviewGroup)

	page.content.Append(sliceGroup("Device Status", views.StatusSplit(data.Overview)))
	page.content.Append(sliceGroup("Device Types", views.DeviceTypeSlices(data.Distributions.DeviceTypes)))
	page.content.Append(sliceGroup("Locations", views.LocationSlices(data.Distributions.Locations)))
}

// sliceGroup is a stacked bar of slices followed by one row per slice.
func sliceGroup(title string, slices []views.Slice) *adw.PreferencesGroup {
	group := adw.NewPreferencesGroup()
	group.SetTitle(title)

	bar := gtk.NewDrawingArea()
	bar.SetSizeRequest(-1, 16)
	bar.SetMarginBottom(8)
	bar.SetDrawFunc(func(area *gtk.DrawingArea, cr *cairo.Context, width, height int) {
		drawSlices(cr, slices, width, height)
	})
	group.Add(bar)

	if len(slices) == 0 {
		group.Add(valueRow("No data", "0"))
	}
	for _, slice := range slices {
		group.Add(valueRow(slice.Label, strconv.Itoa(slice.Count)))
	}
	return group
}

func (page *analyticsPage) refetch() {
	page.subscription.Refetch()
}

func (page *analyticsPage) close() {
	page.closed = true
	page.subscription.Close()
}
