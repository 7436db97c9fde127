package gui

import (
	adw "github.com/diamondburned/gotk4-adwaita/pkg/adw"
	glib "github.com/diamondburned/gotk4/pkg/glib/v2"
	gtk "github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/filters"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

// indexPage is the device list. The browser owns the filter selection and
// its subscription; this page only renders what the browser reports.
type indexPage struct {
	window  *Window
	browser *views.DeviceBrowser

	search   *gtk.Entry
	listBox  *gtk.ListBox
	summary  *gtk.Label
	previous *gtk.Button
	next     *gtk.Button
}

func newIndexPage(window *Window) (*indexPage, error) {
	browser, err := views.NewDeviceBrowser(window.root.Queries, filters.Default(), window.logger)
	if err != nil {
		return nil, err
	}

	page := &indexPage{
		window:  window,
		browser: browser,
	}

	scrolled, contentBox := newPageBox()

	searchRow := gtk.NewBox(gtk.OrientationHorizontal, 8)
	page.search = gtk.NewEntry()
	page.search.SetPlaceholderText("Search devices")
	page.search.SetHExpand(true)
	page.search.ConnectActivate(func() {
		page.browser.Search(page.search.Text())
	})
	searchRow.Append(page.search)

	clearButton := gtk.NewButtonFromIconName("edit-clear-symbolic")
	clearButton.SetTooltipText("Clear filters")
	clearButton.ConnectClicked(func() {
		page.search.SetText("")
		page.browser.Clear()
	})
	searchRow.Append(clearButton)
	contentBox.Append(searchRow)

	page.listBox = gtk.NewListBox()
	page.listBox.SetSelectionMode(gtk.SelectionNone)
	page.listBox.AddCSSClass("boxed-list")
	contentBox.Append(page.listBox)

	navRow := gtk.NewBox(gtk.OrientationHorizontal, 8)
	page.previous = gtk.NewButtonFromIconName("go-previous-symbolic")
	page.previous.SetSensitive(false)
	page.previous.ConnectClicked(func() {
		page.browser.PrevPage()
	})
	navRow.Append(page.previous)

	page.summary = gtk.NewLabel("")
	page.summary.AddCSSClass("dim-label")
	page.summary.SetHExpand(true)
	navRow.Append(page.summary)

	page.next = gtk.NewButtonFromIconName("go-next-symbolic")
	page.next.SetSensitive(false)
	page.next.ConnectClicked(func() {
		page.browser.NextPage()
	})
	navRow.Append(page.next)
	contentBox.Append(navRow)

	page.render(browser.Current())

	window.stack.AddNamed(scrolled, INDEX_PAGE)

	go page.watch()

	return page, nil
}

// watch renders every state of the current selection until the browser is
// closed.
func (page *indexPage) watch() {
	for {
		state, err := page.browser.Next(page.window.ctx)
		if err != nil {
			page.window.logger.Debug("Stopped watching devices", "error", err)
			return
		}
		glib.IdleAdd(func() bool {
			page.render(state)
			return false
		})
	}
}

func (page *indexPage) render(state views.BrowserState) {
	clearListBox(page.listBox)

	devicePage, ok := state.Page()
	if !ok {
		page.previous.SetSensitive(false)
		page.next.SetSensitive(false)
		page.summary.SetText("")

		switch {
		case state.Query.Err != nil:
			page.listBox.Append(messageBox("⚠️", "Error loading devices", state.Query.Err.Error()))
		default:
			page.listBox.Append(messageBox("", "Loading devices…", ""))
		}
		return
	}

	if len(devicePage.Data) == 0 {
		page.listBox.Append(messageBox("", views.NO_DEVICES_MESSAGE, ""))
	}
	for _, device := range devicePage.Data {
		page.listBox.Append(page.deviceRow(device))
	}

	page.summary.SetText(views.PaginationSummary(devicePage.Pagination))
	page.previous.SetSensitive(devicePage.Pagination.HasPreviousPage)
	page.next.SetSensitive(devicePage.Pagination.HasNextPage)
}

func (page *indexPage) deviceRow(device api.Device) *adw.ActionRow {
	row := adw.NewActionRow()
	row.SetUseMarkup(false)
	row.SetTitle(device.Name)
	row.SetSubtitle(enums.DeviceTypeLabel(device.Type) + " • " + enums.LocationLabel(device.Location))
	row.SetActivatable(true)

	if device.Status != "" {
		status := gtk.NewLabel(enums.DeviceStatusLabel(device.Status))
		status.AddCSSClass("dim-label")
		status.SetVAlign(gtk.AlignCenter)
		row.AddSuffix(status)
	}
	row.AddSuffix(gtk.NewImageFromIconName("go-next-symbolic"))

	gesture := gtk.NewGestureClick()
	gesture.ConnectPressed(func(nPress int, x, y float64) {
		page.window.showDevice(device.ID, device.Name)
	})
	row.AddController(gesture)

	return row
}

func (page *indexPage) close() {
	page.browser.Close()
}
