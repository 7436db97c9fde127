package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/filters"
	"github.com/monorkin/iot-dashboard/internal/views"
)

const browseHelp = `Commands: n(ext) p(rev) page N  /TEXT search  type CODE  loc CODE
          sort FIELD [asc|desc]  limit N  clear  r(efresh)  q(uit)`

var deviceBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through devices interactively",
	Long: `Page through devices interactively. The list refreshes whenever the selection
changes; commands are read from stdin one per line.

` + browseHelp,
	Args: cobra.NoArgs,
	RunE: withApp(runDeviceBrowse),
}

func runDeviceBrowse(cmd *cobra.Command, args []string, application *app.App) error {
	browser, err := views.NewDeviceBrowser(application.Queries, listFiltersFromFlags(cmd), application.Logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	commands := make(chan string)
	go func() {
		defer close(commands)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case commands <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	states := make(chan views.BrowserState)
	go func() {
		defer close(states)
		for {
			state, err := browser.Next(ctx)
			if err != nil {
				return
			}
			select {
			case states <- state:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := cmd.OutOrStdout()
	styler := stylerFor(cmd, application)
	interactive := isTerminal(out)

	// Once input ends, the session ends after the next settled state.
	inputDone := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-states:
			if !ok {
				return nil
			}
			if err := renderBrowserState(out, state, styler, interactive); err != nil {
				return err
			}
			if inputDone && !state.Query.IsFetching() {
				return nil
			}
		case line, ok := <-commands:
			if !ok {
				commands = nil
				inputDone = true
				if current := browser.Current(); !current.Query.IsFetching() {
					return nil
				}
				continue
			}
			quit, err := applyBrowseCommand(browser, line)
			if err != nil {
				fmt.Fprintf(out, "%v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func renderBrowserState(w io.Writer, state views.BrowserState, styler views.Styler, interactive bool) error {
	if state.Query.IsFetching() && !state.Query.HasData {
		_, err := fmt.Fprintln(w, styler.Paint("Loading devices...", "text-muted"))
		return err
	}
	if interactive {
		fmt.Fprint(w, "\x1b[H\x1b[2J")
	}

	selection := state.Filters
	summary := fmt.Sprintf("sort %s %s", selection.SortBy, selection.SortOrder)
	if filters.HasActiveFilters(selection) {
		summary = fmt.Sprintf("type=%q location=%q search=%q, %s", selection.Type, selection.Location, selection.Search, summary)
	}
	fmt.Fprintln(w, styler.Paint(summary, "text-muted"))

	if state.Query.Err != nil {
		fmt.Fprintln(w, styler.Paint("Failed to load devices: "+state.Query.Err.Error(), "text-red"))
	}
	if page, ok := state.Page(); ok {
		if err := views.DevicePage(w, page, styler); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, styler.Paint(browseHelp, "text-muted"))
	return err
}

// applyBrowseCommand runs one line of browse input and reports whether the
// user asked to quit.
func applyBrowseCommand(browser *views.DeviceBrowser, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	if search, ok := strings.CutPrefix(line, "/"); ok {
		browser.Search(strings.TrimSpace(search))
		return false, nil
	}

	fields := strings.Fields(line)
	argument := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return true, nil
	case "n", "next":
		if !browser.NextPage() {
			return false, fmt.Errorf("already on the last page")
		}
	case "p", "prev":
		if !browser.PrevPage() {
			return false, fmt.Errorf("already on the first page")
		}
	case "page", "limit":
		n, err := strconv.Atoi(argument(1))
		if err != nil {
			return false, fmt.Errorf("%s needs a number", fields[0])
		}
		if fields[0] == "page" {
			browser.SetPage(n)
		} else {
			browser.SetLimit(n)
		}
	case "type":
		browser.FilterType(argument(1))
	case "loc", "location":
		browser.FilterLocation(argument(1))
	case "sort":
		order := argument(2)
		if order == "" {
			order = browser.Filters().SortOrder
		}
		browser.Sort(argument(1), order)
	case "clear":
		browser.Clear()
	case "r", "refresh":
		browser.Refetch()
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}

	return false, nil
}

func init() {
	addListFilterFlags(deviceBrowseCmd)
	deviceCmd.AddCommand(deviceBrowseCmd)
}
