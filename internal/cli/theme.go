package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/enums"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the color theme",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored theme and how it currently resolves",
	Args:  cobra.NoArgs,
	RunE:  withApp(runThemeGet),
}

var themeSetCmd = &cobra.Command{
	Use:       "set <" + strings.Join(enums.Themes(), "|") + ">",
	Short:     "Store a theme preference",
	Args:      cobra.ExactArgs(1),
	ValidArgs: enums.Themes(),
	RunE:      withApp(runThemeSet),
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE:  withApp(runThemeToggle),
}

type themeOutput struct {
	Theme  enums.Theme `json:"theme" yaml:"theme"`
	Actual enums.Theme `json:"actual" yaml:"actual"`
}

func printTheme(cmd *cobra.Command, application *app.App) error {
	output := themeOutput{
		Theme:  application.Theme.Theme(),
		Actual: application.Theme.Actual(cmd.Context()),
	}

	return render(cmd.OutOrStdout(), output, func(w io.Writer) error {
		if output.Theme == enums.ThemeAuto {
			_, err := fmt.Fprintf(w, "%s (%s)\n", enums.ThemeLabel(string(output.Theme)), enums.ThemeLabel(string(output.Actual)))
			return err
		}
		_, err := fmt.Fprintln(w, enums.ThemeLabel(string(output.Theme)))
		return err
	})
}

func runThemeGet(cmd *cobra.Command, args []string, application *app.App) error {
	return printTheme(cmd, application)
}

func runThemeSet(cmd *cobra.Command, args []string, application *app.App) error {
	if err := application.Theme.SetTheme(args[0]); err != nil {
		return err
	}
	return printTheme(cmd, application)
}

func runThemeToggle(cmd *cobra.Command, args []string, application *app.App) error {
	if _, err := application.Theme.Toggle(); err != nil {
		return err
	}
	return printTheme(cmd, application)
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeGetCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeToggleCmd)
}
