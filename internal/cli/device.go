package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/filters"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

var (
	listFilters api.DeviceFilters

	deviceName     string
	deviceType     string
	deviceLocation string
	deviceMetadata map[string]string

	detailWindow time.Duration
	detailLimit  int
)

// deviceCmd represents the device command
var deviceCmd = &cobra.Command{
	Use:     "device",
	Aliases: []string{"d", "devices"},
	Short:   "Manage and list devices",
	Long:    `Commands for listing, inspecting, creating, editing and deleting devices.`,
}

var deviceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List devices",
	Long: `List devices one page at a time, optionally narrowed by type, location or a search term.

Examples:
  iot-dashboard device list --type temperature_sensor --location kitchen
  iot-dashboard device list --search lab --sort-by name --sort-order asc --page 2`,
	Args: cobra.NoArgs,
	RunE: withApp(runDeviceList),
}

var deviceGetCmd = &cobra.Command{
	Use:   "get <device_id>",
	Short: "Show a device with its current readings and charts",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDeviceGet),
}

var deviceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new device",
	Long: `Register a new device.

Examples:
  iot-dashboard device create --name "Kitchen Sensor" --type temperature_sensor --location kitchen
  iot-dashboard device create --name Gate --type door_sensor --location garage --metadata vendor=acme`,
	Args: cobra.NoArgs,
	RunE: withApp(runDeviceCreate),
}

var deviceUpdateCmd = &cobra.Command{
	Use:   "update <device_id>",
	Short: "Change a device's name, type, location or metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDeviceUpdate),
}

var deviceDeleteCmd = &cobra.Command{
	Use:     "delete <device_id>",
	Aliases: []string{"rm"},
	Short:   "Delete a device",
	Args:    cobra.ExactArgs(1),
	RunE:    withApp(runDeviceDelete),
}

func listFiltersFromFlags(cmd *cobra.Command) api.DeviceFilters {
	selection := filters.Default()
	flags := cmd.Flags()
	if flags.Changed("page") {
		selection.Page = listFilters.Page
	}
	if flags.Changed("limit") {
		selection.Limit = listFilters.Limit
	}
	if flags.Changed("sort-by") {
		selection.SortBy = listFilters.SortBy
	}
	if flags.Changed("sort-order") {
		selection.SortOrder = listFilters.SortOrder
	}
	selection.Type = listFilters.Type
	selection.Location = listFilters.Location
	selection.Search = listFilters.Search
	return filters.Normalize(selection)
}

func runDeviceList(cmd *cobra.Command, args []string, application *app.App) error {
	selection := listFiltersFromFlags(cmd)
	application.Logger.Debug("Fetching devices", "filters", selection.Values().Encode())

	page, err := application.Queries.Devices(cmd.Context(), &selection)
	if err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), page, func(w io.Writer) error {
		return views.DevicePage(w, page, styler)
	})
}

type deviceDetail struct {
	Device     *api.Device      `json:"device" yaml:"device"`
	SensorData []api.SensorData `json:"sensorData" yaml:"sensorData"`
}

func runDeviceGet(cmd *cobra.Command, args []string, application *app.App) error {
	id := args[0]
	params := &api.SensorDataQuery{
		StartDate: time.Now().Add(-detailWindow).UTC().Format(time.RFC3339),
		Limit:     detailLimit,
	}

	var detail deviceDetail
	group, ctx := errgroup.WithContext(cmd.Context())
	group.Go(func() error {
		device, err := application.Queries.Device(ctx, id)
		detail.Device = device
		return err
	})
	group.Go(func() error {
		data, err := application.Queries.SensorData(ctx, id, params)
		detail.SensorData = data
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), detail, func(w io.Writer) error {
		return views.DeviceDetail(w, detail.Device, detail.SensorData, styler)
	})
}

func metadataFromFlags() map[string]any {
	if len(deviceMetadata) == 0 {
		return nil
	}
	metadata := make(map[string]any, len(deviceMetadata))
	for key, value := range deviceMetadata {
		metadata[key] = value
	}
	return metadata
}

func runDeviceCreate(cmd *cobra.Command, args []string, application *app.App) error {
	device, err := application.Queries.CreateDevice(cmd.Context(), api.CreateDeviceRequest{
		Name:     deviceName,
		Type:     deviceType,
		Location: deviceLocation,
		Metadata: metadataFromFlags(),
	})
	if err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), device, func(w io.Writer) error {
		fmt.Fprintf(w, "Device %s created.\n\n", device.ID)
		return views.DeviceDetail(w, device, nil, styler)
	})
}

func runDeviceUpdate(cmd *cobra.Command, args []string, application *app.App) error {
	var request api.UpdateDeviceRequest
	flags := cmd.Flags()
	if flags.Changed("name") {
		request.Name = &deviceName
	}
	if flags.Changed("type") {
		request.Type = &deviceType
	}
	if flags.Changed("location") {
		request.Location = &deviceLocation
	}
	request.Metadata = metadataFromFlags()

	if request.IsEmpty() {
		return fmt.Errorf("nothing to update: pass --name, --type, --location or --metadata")
	}

	device, err := application.Queries.UpdateDevice(cmd.Context(), args[0], request)
	if err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), device, func(w io.Writer) error {
		fmt.Fprintf(w, "Device %s updated.\n\n", device.ID)
		return views.DeviceDetail(w, device, nil, styler)
	})
}

func runDeviceDelete(cmd *cobra.Command, args []string, application *app.App) error {
	if err := application.Queries.DeleteDevice(cmd.Context(), args[0]); err != nil {
		return err
	}

	result := map[string]string{"id": args[0], "status": "deleted"}
	return render(cmd.OutOrStdout(), result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Device %s deleted.\n", args[0])
		return err
	})
}

func addDeviceFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&deviceName, "name", "", "Device name")
	cmd.Flags().StringVar(&deviceType, "type", "", "Device type code, e.g. temperature_sensor")
	cmd.Flags().StringVar(&deviceLocation, "location", "", "Location code, e.g. kitchen")
	cmd.Flags().StringToStringVar(&deviceMetadata, "metadata", nil, "Metadata as key=value pairs")
}

func addListFilterFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listFilters.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&listFilters.Limit, "limit", filters.Default().Limit, "Devices per page: 10, 25, 50 or 100")
	cmd.Flags().StringVar(&listFilters.SortBy, "sort-by", filters.DEFAULT_SORT_BY, "Sort field: created_at, updated_at, name, type or location")
	cmd.Flags().StringVar(&listFilters.SortOrder, "sort-order", filters.DEFAULT_SORT_ORDER, "Sort order: asc or desc")
	cmd.Flags().StringVar(&listFilters.Type, "type", "", "Only devices of this type")
	cmd.Flags().StringVar(&listFilters.Location, "location", "", "Only devices in this location")
	cmd.Flags().StringVar(&listFilters.Search, "search", "", "Search term")
}

func init() {
	rootCmd.AddCommand(deviceCmd)

	addListFilterFlags(deviceListCmd)
	deviceCmd.AddCommand(deviceListCmd)

	deviceGetCmd.Flags().DurationVar(&detailWindow, "window", views.DETAIL_WINDOW, "How far back to load readings")
	deviceGetCmd.Flags().IntVar(&detailLimit, "readings", views.DETAIL_READINGS_LIMIT, "Maximum number of readings to load")
	deviceCmd.AddCommand(deviceGetCmd)

	addDeviceFieldFlags(deviceCreateCmd)
	deviceCreateCmd.MarkFlagRequired("name")
	deviceCreateCmd.MarkFlagRequired("type")
	deviceCreateCmd.MarkFlagRequired("location")
	deviceCmd.AddCommand(deviceCreateCmd)

	addDeviceFieldFlags(deviceUpdateCmd)
	deviceCmd.AddCommand(deviceUpdateCmd)

	deviceCmd.AddCommand(deviceDeleteCmd)
}
