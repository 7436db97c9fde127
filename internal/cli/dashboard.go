package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/filters"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the headline numbers and the most recent devices",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

type dashboardOutput struct {
	Analytics *api.AnalyticsData `json:"analytics" yaml:"analytics"`
	Devices   []api.Device       `json:"devices" yaml:"devices"`
}

func runDashboard(cmd *cobra.Command, args []string) error {
	return withApp(showDashboard)(cmd, args)
}

func showDashboard(cmd *cobra.Command, args []string, application *app.App) error {
	recent := filters.Default()
	recent.Limit = views.DASHBOARD_DEVICE_LIMIT

	var output dashboardOutput
	group, ctx := errgroup.WithContext(cmd.Context())
	group.Go(func() error {
		page, err := application.Queries.Devices(ctx, &recent)
		if page != nil {
			output.Devices = page.Data
		}
		return err
	})
	group.Go(func() error {
		data, err := application.Queries.AnalyticsOverview(ctx)
		output.Analytics = data
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), output, func(w io.Writer) error {
		return views.Dashboard(w, output.Analytics, output.Devices, styler)
	})
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
