// Package gui is the desktop window: a libadwaita application with the
// device list, device pages and the analytics overview, fed by the same query
// subscriptions as the terminal views.
package gui

import (
	"context"
	"log/slog"

	adw "github.com/diamondburned/gotk4-adwaita/pkg/adw"
	gio "github.com/diamondburned/gotk4/pkg/gio/v2"
	glib "github.com/diamondburned/gotk4/pkg/glib/v2"
	gtk "github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/query"
)

const (
	// The indicator owns APP_IDENTIFIER on the session bus.
	APPLICATION_ID = app.APP_IDENTIFIER + ".Window"
	WINDOW_TITLE   = "IoT Dashboard"

	INDEX_PAGE     = "index"
	DEVICE_PAGE    = "device"
	ANALYTICS_PAGE = "analytics"
)

type Window struct {
	*gtk.Application
	root   *app.App
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mainWindow      *adw.ApplicationWindow
	stack           *gtk.Stack
	headerBar       *adw.HeaderBar
	backButton      *gtk.Button
	analyticsButton *gtk.Button
	refreshButton   *gtk.Button
	themeButton     *gtk.Button

	index     *indexPage
	device    *devicePage
	analytics *analyticsPage
}

func New(root *app.App) *Window {
	application := gtk.NewApplication(APPLICATION_ID, gio.ApplicationFlagsNone)

	window := &Window{
		Application: application,
		root:        root,
		logger:      root.Logger.With("component", "window"),
		ctx:         context.Background(),
		cancel:      func() {},
	}

	window.ConnectActivate(window.onActivate)

	return window
}

// Run blocks in the GTK main loop until the window is closed or ctx ends.
func (window *Window) Run(ctx context.Context) int {
	window.ctx, window.cancel = context.WithCancel(ctx)
	defer window.cancel()

	go func() {
		<-window.ctx.Done()
		glib.IdleAdd(func() bool {
			window.Quit()
			return false
		})
	}()

	return window.Application.Run(nil)
}

func (window *Window) Quit() {
	if window.index != nil {
		window.index.close()
		window.index = nil
	}
	if window.device != nil {
		window.device.close()
		window.device = nil
	}
	if window.analytics != nil {
		window.analytics.close()
		window.analytics = nil
	}
	window.cancel()
	window.Application.Quit()
}

func (window *Window) onActivate() {
	adw.Init()

	window.mainWindow = adw.NewApplicationWindow(window.Application)
	window.mainWindow.SetDefaultSize(900, 640)
	window.mainWindow.SetTitle(WINDOW_TITLE)
	window.mainWindow.ConnectCloseRequest(func() bool {
		window.Quit()
		return false
	})

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	window.headerBar = adw.NewHeaderBar()

	window.backButton = gtk.NewButtonFromIconName("go-previous-symbolic")
	window.backButton.SetTooltipText("Devices")
	window.backButton.SetVisible(false)
	window.backButton.ConnectClicked(window.showIndex)
	window.headerBar.PackStart(window.backButton)

	window.themeButton = gtk.NewButtonFromIconName("weather-clear-night-symbolic")
	window.themeButton.SetTooltipText("Toggle theme")
	window.themeButton.ConnectClicked(window.toggleTheme)
	window.headerBar.PackEnd(window.themeButton)

	window.analyticsButton = gtk.NewButtonFromIconName("utilities-system-monitor-symbolic")
	window.analyticsButton.SetTooltipText("Analytics")
	window.analyticsButton.ConnectClicked(window.showAnalytics)
	window.headerBar.PackEnd(window.analyticsButton)

	window.refreshButton = gtk.NewButtonFromIconName("view-refresh-symbolic")
	window.refreshButton.SetTooltipText("Refresh")
	window.refreshButton.ConnectClicked(window.refresh)
	window.headerBar.PackEnd(window.refreshButton)

	mainBox.Append(window.headerBar)

	window.stack = gtk.NewStack()
	window.stack.SetTransitionType(gtk.StackTransitionTypeSlideLeftRight)
	window.stack.SetVExpand(true)
	mainBox.Append(window.stack)

	index, err := newIndexPage(window)
	if err != nil {
		window.logger.Error("Failed to watch devices", "error", err)
		window.stack.AddNamed(errorPage("Error loading devices", err.Error()), INDEX_PAGE)
	} else {
		window.index = index
	}
	window.stack.SetVisibleChildName(INDEX_PAGE)

	window.applyColorScheme(window.root.Theme.Theme())

	window.mainWindow.SetContent(mainBox)
	window.mainWindow.Present()
}

func (window *Window) showIndex() {
	if window.device != nil {
		window.device.close()
		window.device = nil
	}
	if window.analytics != nil {
		window.analytics.close()
		window.analytics = nil
	}

	window.stack.SetVisibleChildName(INDEX_PAGE)
	window.mainWindow.SetTitle(WINDOW_TITLE)
	window.backButton.SetVisible(false)
	window.analyticsButton.SetVisible(true)
}

func (window *Window) showDevice(id string, name string) {
	if window.device != nil {
		window.device.close()
	}

	page, err := newDevicePage(window, id)
	if err != nil {
		window.logger.Error("Failed to watch device", "id", id, "error", err)
		window.replacePage(DEVICE_PAGE, errorPage("Error loading device", err.Error()))
	} else {
		window.device = page
		window.replacePage(DEVICE_PAGE, page.root)
	}

	window.stack.SetVisibleChildName(DEVICE_PAGE)
	window.mainWindow.SetTitle(name)
	window.backButton.SetVisible(true)
	window.analyticsButton.SetVisible(true)
}

func (window *Window) showAnalytics() {
	if window.device != nil {
		window.device.close()
		window.device = nil
	}
	if window.analytics == nil {
		page, err := newAnalyticsPage(window)
		if err != nil {
			window.logger.Error("Failed to watch analytics overview", "error", err)
			window.replacePage(ANALYTICS_PAGE, errorPage("Error loading analytics", err.Error()))
		} else {
			window.analytics = page
			window.replacePage(ANALYTICS_PAGE, page.root)
		}
	}

	window.stack.SetVisibleChildName(ANALYTICS_PAGE)
	window.mainWindow.SetTitle("Analytics")
	window.backButton.SetVisible(true)
	window.analyticsButton.SetVisible(false)
}

// replacePage swaps the stack child registered under name.
func (window *Window) replacePage(name string, page gtk.Widgetter) {
	if existing := window.stack.ChildByName(name); existing != nil {
		window.stack.Remove(existing)
	}
	window.stack.AddNamed(page, name)
}

func (window *Window) refresh() {
	switch window.stack.VisibleChildName() {
	case DEVICE_PAGE:
		if window.device != nil {
			window.device.refetch()
		}
	case ANALYTICS_PAGE:
		if window.analytics != nil {
			window.analytics.refetch()
		}
	default:
		if window.index != nil {
			window.index.browser.Refetch()
		}
	}
}

func (window *Window) toggleTheme() {
	next, err := window.root.Theme.Toggle()
	if err != nil {
		window.logger.Warn("Failed to save theme", "error", err)
	}
	window.applyColorScheme(next)
}

func (window *Window) applyColorScheme(current enums.Theme) {
	adw.StyleManagerGetDefault().SetColorScheme(colorScheme(current))
}

func colorScheme(current enums.Theme) adw.ColorScheme {
	switch current {
	case enums.ThemeDark:
		return adw.ColorSchemeForceDark
	case enums.ThemeLight:
		return adw.ColorSchemeForceLight
	default:
		return adw.ColorSchemeDefault
	}
}

// follow hands every state of subscription to apply on the main loop until
// the subscription is closed or the window goes away.
func (window *Window) follow(subscription *query.Subscription, apply func(query.State)) {
	go func() {
		for {
			select {
			case <-window.ctx.Done():
				return
			case state, ok := <-subscription.Updates():
				if !ok {
					return
				}
				glib.IdleAdd(func() bool {
					apply(state)
					return false
				})
			}
		}
	}()
}
