package gui

import (
	"slices"
	"time"

	adw "github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/cairo"
	gtk "github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/format"
	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

// devicePage shows one device: its information, the latest reading per
// sensor type and a chart of the selected sensor type.
type devicePage struct {
	window *Window
	id     string

	root    *gtk.ScrolledWindow
	content *gtk.Box

	deviceSubscription *query.Subscription
	dataSubscription   *query.Subscription

	device      *api.Device
	deviceState query.State
	data        []api.SensorData
	selected    string
	closed      bool
}

func newDevicePage(window *Window, id string) (*devicePage, error) {
	deviceSubscription, err := window.root.Queries.WatchDevice(id)
	if err != nil {
		return nil, err
	}

	params := &api.SensorDataQuery{
		StartDate: time.Now().Add(-views.DETAIL_WINDOW).UTC().Format(time.RFC3339),
		Limit:     views.DETAIL_READINGS_LIMIT,
	}
	dataSubscription, err := window.root.Queries.WatchSensorData(id, params)
	if err != nil {
		deviceSubscription.Close()
		return nil, err
	}

	page := &devicePage{
		window:             window,
		id:                 id,
		deviceSubscription: deviceSubscription,
		dataSubscription:   dataSubscription,
	}
	page.root, page.content = newPageBox()

	page.applyDevice(deviceSubscription.State())
	page.applyData(dataSubscription.State())

	window.follow(deviceSubscription, page.applyDevice)
	window.follow(dataSubscription, page.applyData)

	return page, nil
}

func (page *devicePage) applyDevice(state query.State) {
	if page.closed {
		return
	}

	page.deviceState = state
	if state.HasData {
		device, err := query.Cast[*api.Device](state.Data)
		if err != nil {
			page.window.logger.Error("Unexpected device data", "error", err)
		} else {
			page.device = device
		}
	}
	page.render()
}

func (page *devicePage) applyData(state query.State) {
	if page.closed || !state.HasData {
		return
	}

	data, err := query.Cast[[]api.SensorData](state.Data)
	if err != nil {
		page.window.logger.Error("Unexpected sensor data", "error", err)
		return
	}
	page.data = data
	page.render()
}

func (page *devicePage) render() {
	clearBox(page.content)

	if page.device == nil {
		if page.deviceState.Err != nil {
			page.content.Append(messageBox("⚠️", "Error loading device", page.deviceState.Err.Error()))
		} else {
			page.content.Append(messageBox("", "Loading device…", ""))
		}
		return
	}

	device := page.device
	page.window.mainWindow.SetTitle(device.Name)

	header := gtk.NewBox(gtk.OrientationVertical, 4)
	header.Append(sectionTitle(device.Name))
	subtitle := gtk.NewLabel(enums.DeviceTypeLabel(device.Type) + " • " + enums.LocationLabel(device.Location))
	subtitle.AddCSSClass("dim-label")
	subtitle.SetHAlign(gtk.AlignStart)
	header.Append(subtitle)
	page.content.Append(header)

	readings, timestamp := api.LatestReadings(page.data)
	if len(readings) == 0 {
		readings = device.LatestData
		timestamp = device.LastReading
	}
	if len(readings) > 0 {
		readingsGroup := adw.NewPreferencesGroup()
		readingsGroup.SetTitle("Current Readings")
		readingsGroup.SetDescription(format.SafeFormatDate(timestamp, views.READING_TIME_FORMAT))
		for _, sensorType := range views.SortedSensorTypes(readings) {
			readingsGroup.Add(valueRow(views.SensorLabel(sensorType), views.FormatReading(sensorType, readings[sensorType])))
		}
		page.content.Append(readingsGroup)
	}

	if sensorTypes := page.sensorTypes(); len(sensorTypes) > 0 {
		page.content.Append(page.chartGroup(sensorTypes))
	}

	infoGroup := adw.NewPreferencesGroup()
	infoGroup.SetTitle("Device Information")
	infoGroup.Add(valueRow("ID", device.ID))
	if device.Status != "" {
		infoGroup.Add(valueRow("Status", enums.DeviceStatusLabel(device.Status)))
	}
	infoGroup.Add(valueRow("Location", enums.LocationLabel(device.Location)))
	infoGroup.Add(valueRow("Created", format.SafeFormatDate(device.CreatedAt, views.LIST_DATE_FORMAT)))
	infoGroup.Add(valueRow("Last Updated", format.SafeFormatDate(device.UpdatedAt, views.LIST_DATE_FORMAT)))
	page.content.Append(infoGroup)
}

// sensorTypes lists the sensor types present in the loaded readings, in
// display order.
func (page *devicePage) sensorTypes() []string {
	present := api.Readings{}
	for _, item := range page.data {
		present[item.SensorType] = item.Value
	}
	return views.SortedSensorTypes(present)
}

func (page *devicePage) chartGroup(sensorTypes []string) *adw.PreferencesGroup {
	if !slices.Contains(sensorTypes, page.selected) {
		page.selected = sensorTypes[0]
	}

	group := adw.NewPreferencesGroup()
	group.SetTitle("Charts")

	buttonRow := gtk.NewBox(gtk.OrientationHorizontal, 6)
	buttonRow.SetMarginBottom(8)
	for _, sensorType := range sensorTypes {
		button := gtk.NewButtonWithLabel(views.SensorLabel(sensorType))
		button.AddCSSClass("pill")
		if sensorType == page.selected {
			button.AddCSSClass("suggested-action")
		}
		button.ConnectClicked(func() {
			page.selected = sensorType
			page.render()
		})
		buttonRow.Append(button)
	}

	box := gtk.NewBox(gtk.OrientationVertical, 8)
	box.Append(buttonRow)

	chart := gtk.NewDrawingArea()
	chart.SetSizeRequest(-1, 300)
	chart.SetDrawFunc(func(area *gtk.DrawingArea, cr *cairo.Context, width, height int) {
		page.drawChart(cr, width, height)
	})
	box.Append(chart)

	group.Add(box)
	return group
}

func (page *devicePage) drawChart(cr *cairo.Context, width, height int) {
	if page.selected == "" {
		return
	}

	sensorTypes := page.sensorTypes()
	color := views.PaletteColor(max(0, slices.Index(sensorTypes, page.selected)))
	drawChart(cr, views.ChartPoints(page.data, page.selected), page.selected, color, width, height)
}

func (page *devicePage) refetch() {
	page.deviceSubscription.Refetch()
	page.dataSubscription.Refetch()
}

func (page *devicePage) close() {
	page.closed = true
	page.deviceSubscription.Close()
	page.dataSubscription.Close()
}
