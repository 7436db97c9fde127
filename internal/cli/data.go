package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/format"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

// Sensor types that get their own flag on data add.
var readingFlags = []string{"temperature", "humidity", "pressure", "voltage", "current"}

var (
	readingValues = map[string]*float64{}
	extraReadings []string
	customData    map[string]string

	dataQuery     api.SensorDataQuery
	dataTimeRange string
	dataChart     bool
)

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:     "data",
	Aliases: []string{"readings"},
	Short:   "Record and inspect sensor readings",
}

var dataAddCmd = &cobra.Command{
	Use:   "add <device_id>",
	Short: "Record sensor readings for a device",
	Long: `Record sensor readings for a device.

Examples:
  iot-dashboard data add 42 --temperature 21.5 --humidity 40
  iot-dashboard data add 42 --reading light=300 --custom firmware=1.2.0`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runDataAdd),
}

var dataListCmd = &cobra.Command{
	Use:   "list <device_id>",
	Short: "List a device's sensor readings",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDataList),
}

var dataLatestCmd = &cobra.Command{
	Use:   "latest <device_id>",
	Short: "Show a device's most recent reading",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDataLatest),
}

var dataStatsCmd = &cobra.Command{
	Use:   "stats <device_id>",
	Short: "Show aggregate statistics for a device's readings",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDataStats),
}

// parseReadings collects readings from the per-sensor flags and the generic
// --reading type=value pairs.
func parseReadings(cmd *cobra.Command) (api.Readings, error) {
	readings := api.Readings{}
	for _, sensorType := range readingFlags {
		if cmd.Flags().Changed(sensorType) {
			readings[sensorType] = *readingValues[sensorType]
		}
	}

	for _, pair := range extraReadings {
		sensorType, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(sensorType) == "" {
			return nil, fmt.Errorf("invalid reading %q: want type=value", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for reading %q: %w", sensorType, err)
		}
		readings[strings.TrimSpace(sensorType)] = value
	}

	return readings, nil
}

func runDataAdd(cmd *cobra.Command, args []string, application *app.App) error {
	readings, err := parseReadings(cmd)
	if err != nil {
		return err
	}

	request := api.CreateSensorDataRequest{Readings: readings}
	if len(customData) > 0 {
		request.CustomData = make(map[string]any, len(customData))
		for key, value := range customData {
			request.CustomData[key] = value
		}
	}

	data, err := application.Queries.AddSensorData(cmd.Context(), args[0], request)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), data, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Recorded %d reading(s) for device %s.\n", len(readings), args[0])
		return err
	})
}

// sensorDataQueryFromFlags resolves --range into a start date unless --start
// is given explicitly.
func sensorDataQueryFromFlags(cmd *cobra.Command, now time.Time) (*api.SensorDataQuery, error) {
	params := dataQuery
	if dataTimeRange != "" && !cmd.Flags().Changed("start") {
		window, ok := enums.TimeRangeDuration(dataTimeRange)
		if !ok {
			return nil, fmt.Errorf("unknown time range %q (want one of %s)", dataTimeRange, strings.Join(enums.TimeRanges(), ", "))
		}
		params.StartDate = now.Add(-window).UTC().Format(time.RFC3339)
	}
	return &params, nil
}

func runDataList(cmd *cobra.Command, args []string, application *app.App) error {
	params, err := sensorDataQueryFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	data, err := application.Queries.SensorData(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), data, func(w io.Writer) error {
		if dataChart {
			return views.Charts(w, data, styler)
		}
		return sensorDataTable(w, data)
	})
}

func sensorDataTable(w io.Writer, data []api.SensorData) error {
	if len(data) == 0 {
		_, err := fmt.Fprintln(w, "No sensor data found.")
		return err
	}

	table := views.NewTable(w)
	fmt.Fprintln(table, "TIME\tSENSOR\tVALUE")
	fmt.Fprintln(table, "----\t------\t-----")
	for _, item := range data {
		fmt.Fprintf(table, "%s\t%s\t%s\n",
			format.SafeFormatDate(item.Timestamp, views.TOOLTIP_TIME_FORMAT),
			item.SensorType,
			views.FormatReading(item.SensorType, item.Value),
		)
	}
	return table.Flush()
}

func runDataLatest(cmd *cobra.Command, args []string, application *app.App) error {
	reading, err := application.Queries.LatestReading(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), reading, func(w io.Writer) error {
		if reading == nil {
			_, err := fmt.Fprintln(w, "No sensor data found.")
			return err
		}
		return sensorDataTable(w, []api.SensorData{*reading})
	})
}

func runDataStats(cmd *cobra.Command, args []string, application *app.App) error {
	params, err := sensorDataQueryFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	stats, err := application.Queries.DeviceStats(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	styler := stylerFor(cmd, application)
	return render(cmd.OutOrStdout(), stats, func(w io.Writer) error {
		return views.Stats(w, stats, styler)
	})
}

func addSensorQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataQuery.StartDate, "start", "", "Only readings at or after this time (RFC 3339)")
	cmd.Flags().StringVar(&dataQuery.EndDate, "end", "", "Only readings at or before this time (RFC 3339)")
	cmd.Flags().IntVar(&dataQuery.Limit, "limit", 0, "Maximum number of readings")
	cmd.Flags().StringVar(&dataQuery.SensorType, "sensor-type", "", "Only readings of this sensor type")
	cmd.Flags().StringVar(&dataTimeRange, "range", "", "Relative time range, e.g. last_24_hours")
}

func init() {
	rootCmd.AddCommand(dataCmd)

	for _, sensorType := range readingFlags {
		value := new(float64)
		readingValues[sensorType] = value
		dataAddCmd.Flags().Float64Var(value, sensorType, 0, fmt.Sprintf("%s reading in %s", sensorType, enums.MeasurementUnit(sensorType)))
	}
	dataAddCmd.Flags().StringArrayVar(&extraReadings, "reading", nil, "Additional reading as type=value, repeatable")
	dataAddCmd.Flags().StringToStringVar(&customData, "custom", nil, "Custom data as key=value pairs")
	dataCmd.AddCommand(dataAddCmd)

	addSensorQueryFlags(dataListCmd)
	dataListCmd.Flags().BoolVar(&dataChart, "chart", false, "Show a sparkline per sensor type instead of rows")
	dataCmd.AddCommand(dataListCmd)

	dataCmd.AddCommand(dataLatestCmd)

	addSensorQueryFlags(dataStatsCmd)
	dataCmd.AddCommand(dataStatsCmd)
}
