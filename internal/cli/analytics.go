package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/monorkin/iot-dashboard/internal/app"
	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/internal/views"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const METRICS_SHUTDOWN_TIMEOUT = 5 * time.Second

var (
	analyticsTimeRange   string
	analyticsWatch       bool
	analyticsMetricsAddr string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show fleet-wide analytics",
	Long: `Show device counts, data point counts, distributions by type, location and sensor,
and recent activity.

With --watch the overview is refreshed every minute until interrupted. With
--metrics-addr the query cache metrics are served on /metrics while watching.`,
	Args: cobra.NoArgs,
	RunE: withApp(runAnalytics),
}

func runAnalytics(cmd *cobra.Command, args []string, application *app.App) error {
	if _, ok := enums.TimeRangeDuration(analyticsTimeRange); !ok {
		return fmt.Errorf("unknown time range %q", analyticsTimeRange)
	}

	styler := stylerFor(cmd, application)
	out := cmd.OutOrStdout()

	if !analyticsWatch {
		data, err := application.Queries.AnalyticsOverview(cmd.Context())
		if err != nil {
			return err
		}
		return render(out, data, func(w io.Writer) error {
			return views.Analytics(w, data, analyticsTimeRange, styler)
		})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	metricsAddr := analyticsMetricsAddr
	if metricsAddr == "" {
		metricsAddr = application.Settings.MetricsAddr
	}
	if metricsAddr != "" {
		server := &http.Server{
			Addr:    metricsAddr,
			Handler: metricsRouter(application.Registry),
		}
		go func() {
			application.Logger.Info("Serving metrics", "addr", metricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				application.Logger.Error("Metrics server failed", "error", err)
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), METRICS_SHUTDOWN_TIMEOUT)
			defer done()
			server.Shutdown(shutdownCtx)
		}()
	}

	subscription, err := application.Queries.WatchAnalyticsOverview()
	if err != nil {
		return err
	}
	defer subscription.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-subscription.Updates():
			if !ok {
				return nil
			}
			if err := renderAnalyticsState(out, state, styler); err != nil {
				return err
			}
		}
	}
}

func renderAnalyticsState(w io.Writer, state query.State, styler views.Styler) error {
	if state.Err != nil {
		fmt.Fprintln(w, styler.Paint("Failed to refresh analytics: "+state.Err.Error(), "text-red"))
	}
	if state.IsFetching() || !state.HasData {
		return nil
	}

	data, err := query.Cast[*api.AnalyticsData](state.Data)
	if err != nil {
		return err
	}

	return render(w, data, func(w io.Writer) error {
		if isTerminal(w) {
			fmt.Fprint(w, "\x1b[H\x1b[2J")
		}
		if err := views.Analytics(w, data, analyticsTimeRange, styler); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, styler.Paint("Updated "+state.UpdatedAt.Format(time.TimeOnly), "text-muted"))
		return err
	})
}

// metricsRouter serves the registry on /metrics and a liveness probe on
// /healthz.
func metricsRouter(registry *prometheus.Registry) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry: registry,
	}))

	return router
}

func init() {
	analyticsCmd.Flags().StringVar(&analyticsTimeRange, "range", string(enums.TimeRangeLast24Hours), "Time range for active devices and data points: last_24_hours, last_7_days or last_30_days")
	analyticsCmd.Flags().BoolVarP(&analyticsWatch, "watch", "w", false, "Keep refreshing until interrupted")
	analyticsCmd.Flags().StringVar(&analyticsMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching, e.g. :9090")
	rootCmd.AddCommand(analyticsCmd)
}
