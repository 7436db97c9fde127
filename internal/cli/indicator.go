package cli

import (
	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
)

var indicatorCmd = &cobra.Command{
	Use:   "indicator",
	Short: "Serve the analytics overview on the session bus",
	Long: `Run the desktop indicator service. It owns ` + app.APP_IDENTIFIER + ` on the DBus
session bus, polls the analytics overview and emits OverviewUpdated after every poll.`,
	Args: cobra.NoArgs,
	RunE: withApp(runIndicator),
}

func runIndicator(cmd *cobra.Command, args []string, application *app.App) error {
	indicator, err := app.NewIndicator(application)
	if err != nil {
		return err
	}
	defer indicator.Close()

	return indicator.Run(cmd.Context())
}

func init() {
	rootCmd.AddCommand(indicatorCmd)
}
