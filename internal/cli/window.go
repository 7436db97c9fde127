package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/gui"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Open the desktop window",
	Args:  cobra.NoArgs,
	RunE:  withApp(runWindow),
}

// hasDisplay reports whether a graphical session is reachable.
func hasDisplay() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != ""
}

func runWindow(cmd *cobra.Command, args []string, application *app.App) error {
	window := gui.New(application)
	if status := window.Run(cmd.Context()); status != 0 {
		return fmt.Errorf("window exited with status %d", status)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(windowCmd)
}
