package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/format"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const (
	LIST_DATE_FORMAT   = "MMM DD, YYYY"
	PAGE_WINDOW_SIZE   = 5
	NO_DEVICES_MESSAGE = "No devices found."
)

// NewTable is the tabwriter setup shared by every table.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// DeviceTable writes one row per device with labels in place of codes.
func DeviceTable(w io.Writer, devices []api.Device, styler Styler) error {
	if len(devices) == 0 {
		_, err := fmt.Fprintln(w, NO_DEVICES_MESSAGE)
		return err
	}

	tw := NewTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tLOCATION\tSTATUS\tCREATED\tUPDATED")
	fmt.Fprintln(tw, "--\t----\t----\t--------\t------\t-------\t-------")

	for _, device := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			device.ID,
			device.Name,
			enums.DeviceTypeLabel(device.Type),
			enums.LocationLabel(device.Location),
			statusCell(device.Status, styler),
			format.SafeFormatDate(device.CreatedAt, LIST_DATE_FORMAT),
			format.SafeFormatDate(device.UpdatedAt, LIST_DATE_FORMAT),
		)
	}

	return tw.Flush()
}

func statusCell(status string, styler Styler) string {
	if status == "" {
		return "-"
	}
	return styler.Paint(enums.DeviceStatusLabel(status), HexClass(enums.DeviceStatusColor(status)))
}

// PaginationSummary describes the rows shown, e.g. "Showing 26 to 50 of 120
// devices".
func PaginationSummary(pagination api.Pagination) string {
	if pagination.Total == 0 {
		return "Showing 0 devices"
	}

	from := (pagination.Page-1)*pagination.Limit + 1
	to := min(pagination.Page*pagination.Limit, pagination.Total)
	return fmt.Sprintf("Showing %d to %d of %d devices", from, to, pagination.Total)
}

// PageWindow returns up to five page numbers centered on the current page,
// shifted to stay within 1..TotalPages.
func PageWindow(pagination api.Pagination) []int {
	count := min(PAGE_WINDOW_SIZE, pagination.TotalPages)
	if count <= 0 {
		return nil
	}

	start := max(1, min(pagination.TotalPages-(PAGE_WINDOW_SIZE-1), pagination.Page-2))

	pages := make([]int, 0, count)
	for i := 0; i < count; i++ {
		page := start + i
		if page > pagination.TotalPages {
			break
		}
		pages = append(pages, page)
	}
	return pages
}

// Pagination writes the summary line and the page window with the current
// page bracketed. Nothing is written for a single page.
func Pagination(w io.Writer, pagination api.Pagination, styler Styler) error {
	if pagination.TotalPages <= 1 {
		return nil
	}

	var pages []string
	if pagination.HasPreviousPage {
		pages = append(pages, "<")
	}
	for _, page := range PageWindow(pagination) {
		if page == pagination.Page {
			pages = append(pages, styler.Paint(fmt.Sprintf("[%d]", page), "font-bold"))
			continue
		}
		pages = append(pages, fmt.Sprintf("%d", page))
	}
	if pagination.HasNextPage {
		pages = append(pages, ">")
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n",
		styler.Paint(PaginationSummary(pagination), "text-muted"),
		strings.Join(pages, " "),
	)
	return err
}

// DevicePage writes the table followed by the pagination controls.
func DevicePage(w io.Writer, page *api.DevicePage, styler Styler) error {
	if page == nil {
		return DeviceTable(w, nil, styler)
	}
	if err := DeviceTable(w, page.Data, styler); err != nil {
		return err
	}
	if len(page.Data) == 0 || page.Pagination.TotalPages <= 1 {
		return nil
	}
	fmt.Fprintln(w)
	return Pagination(w, page.Pagination, styler)
}
