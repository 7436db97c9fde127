package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/config"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

var (
	discoverPrefix  string
	discoverTimeout time.Duration
	discoverSave    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find device API servers on the local network",
	Long: `Browse mDNS for HTTP services whose name starts with the discovery prefix.

With --save the first server found becomes the API base URL in settings.json.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}

	logger := app.NewLogger(verbose, cmd.ErrOrStderr())
	_, settings := config.LoadOrInitializeSettingsFromDefaultLocation()

	prefix := discoverPrefix
	if prefix == "" {
		prefix = settings.DiscoveryPrefix
	}

	logger.Debug("Starting server discovery", "prefix", prefix, "timeout", discoverTimeout)
	servers, err := api.Discover(cmd.Context(), prefix, discoverTimeout, logger)
	if err != nil {
		return err
	}

	if discoverSave && len(servers) > 0 {
		settings.APIBaseURL = servers[0].BaseURL
		if err := settings.Save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		logger.Info("Saved API base URL", "url", settings.APIBaseURL)
	}

	return render(cmd.OutOrStdout(), servers, func(w io.Writer) error {
		if len(servers) == 0 {
			_, err := fmt.Fprintln(w, "No API servers found.")
			return err
		}

		table := views.NewTable(w)
		fmt.Fprintln(table, "INSTANCE\tHOST\tURL")
		fmt.Fprintln(table, "--------\t----\t---")
		for _, server := range servers {
			fmt.Fprintf(table, "%s\t%s\t%s\n", server.Instance, server.Hostname, server.BaseURL)
		}
		return table.Flush()
	})
}

func init() {
	discoverCmd.Flags().StringVar(&discoverPrefix, "prefix", "", "Service name prefix (default "+api.DISCOVERY_DEFAULT_PREFIX+")")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", api.DISCOVERY_DEFAULT_TIMEOUT, "How long to browse")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Save the first server found as the API base URL")
	rootCmd.AddCommand(discoverCmd)
}
