package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/views"
)

var (
	verbose      bool
	apiURL       string
	outputFormat string
	colorMode    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iot-dashboard",
	Short: "IoT device dashboard",
	Long: `A dashboard for IoT devices and their sensor readings.

The dashboard talks to an IoT device REST API: it lists, creates and edits devices,
records and charts sensor readings, and shows fleet-wide analytics. Without a
subcommand it opens the desktop window, or prints the terminal dashboard when
no display is available.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !hasDisplay() {
			return runDashboard(cmd, args)
		}
		return withApp(runWindow)(cmd, args)
	},
}

// Execute runs the command tree and reports errors on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// ExecuteCommand runs one subcommand as if it had been typed first on the
// command line.
func ExecuteCommand(name string, args ...string) error {
	rootCmd.SetArgs(append([]string{name}, args...))
	return Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the device API")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", FORMAT_TABLE, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize table output: auto, always or never")
}

// withApp builds the application root for one command run and closes it
// afterwards.
func withApp(run func(cmd *cobra.Command, args []string, application *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := checkOutputFormat(); err != nil {
			return err
		}

		application, err := app.New(app.Options{
			Verbose:     verbose,
			APIBaseURL:  apiURL,
			LogOutput:   cmd.ErrOrStderr(),
			SystemTheme: true,
		})
		if err != nil {
			return err
		}
		defer application.Close()

		return run(cmd, args, application)
	}
}

func stylerFor(cmd *cobra.Command, application *app.App) views.Styler {
	enabled := false
	switch colorMode {
	case "always":
		enabled = true
	case "never":
		enabled = false
	default:
		_, noColor := os.LookupEnv("NO_COLOR")
		enabled = !noColor && isTerminal(cmd.OutOrStdout())
	}

	return views.Styler{
		Enabled: enabled,
		Theme:   application.Theme.Actual(cmd.Context()),
	}
}
