// Package app builds the application root: logger, settings, local storage,
// theme, API client and query cache, constructed once and passed down.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/monorkin/iot-dashboard/internal/config"
	"github.com/monorkin/iot-dashboard/internal/database"
	"github.com/monorkin/iot-dashboard/internal/queries"
	"github.com/monorkin/iot-dashboard/internal/query"
	"github.com/monorkin/iot-dashboard/internal/theme"
	"github.com/monorkin/iot-dashboard/internal/version"
	"github.com/monorkin/iot-dashboard/iot/api"
)

const APP_IDENTIFIER = "io.github.monorkin.IoTDashboard"

type Options struct {
	Verbose    bool
	APIBaseURL string

	// Optional overrides, mostly for tests.
	LogOutput    io.Writer
	DBPath       string
	SettingsPath string
	EnvFiles     []string

	// SystemTheme enables reading the desktop color scheme over DBus.
	SystemTheme bool
}

type App struct {
	Logger   *slog.Logger
	Settings *config.Settings
	DB       *gorm.DB
	Storage  *database.LocalStorage
	Theme    *theme.Context
	API      *api.Client
	Cache    *query.Client
	Queries  *queries.Queries
	Registry *prometheus.Registry

	portal *theme.Portal
}

// New loads configuration and opens every dependency. The returned App must
// be closed.
func New(options Options) (*App, error) {
	if err := config.LoadEnv(options.EnvFiles...); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	output := options.LogOutput
	if output == nil {
		output = os.Stderr
	}
	logger := NewLogger(options.Verbose, output)
	slog.SetDefault(logger)

	settingsPath := options.SettingsPath
	if settingsPath == "" {
		settingsPath = config.DefaultSettingsPath()
	}
	created, settings := config.LoadOrInitializeSettings(settingsPath)
	if created {
		logger.Debug("Created new settings file", "path", settingsPath)
		if err := settings.SaveTo(settingsPath); err != nil {
			logger.Warn("Failed to save new settings", "error", err)
		}
	}

	dbPath := options.DBPath
	if dbPath == "" {
		dbPath = config.DBPath()
	}
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Database ready", "path", dbPath)

	app := &App{
		Logger:   logger,
		Settings: settings,
		DB:       db,
		Storage:  database.NewLocalStorage(db),
		Registry: prometheus.NewRegistry(),
	}

	var system theme.SystemPreference
	if options.SystemTheme {
		if portal, err := theme.ConnectPortal(); err != nil {
			logger.Debug("System color scheme unavailable", "error", err)
		} else {
			app.portal = portal
			system = portal
		}
	}
	app.Theme = theme.New(app.Storage, system, logger)

	baseURL := config.ResolveAPIBaseURL(options.APIBaseURL, settings)
	app.API, err = api.NewClientWithLogger(baseURL, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.API.SetUserAgent(version.UserAgent())

	app.Registry.MustRegister(collectors.NewGoCollector())
	app.Cache = query.NewClient(query.Options{
		Logger:  logger,
		Metrics: query.NewMetrics(app.Registry),
	})
	app.Queries = queries.New(app.API, app.Cache, logger)

	logger.Debug("Application initialized", "api", app.API.BaseURL(), "theme", app.Theme.Theme())
	return app, nil
}

// NewLogger builds the text logger. verbose forces debug; otherwise the level
// comes from the environment and defaults to info.
func NewLogger(verbose bool, output io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if value := strings.TrimSpace(os.Getenv(config.LOG_LEVEL_ENV)); value != "" {
		if err := level.UnmarshalText([]byte(value)); err != nil {
			level = slog.LevelInfo
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
	}))
}

func (app *App) Close() error {
	if app.Cache != nil {
		app.Cache.Close()
	}
	if app.portal != nil {
		app.portal.Close()
	}
	if app.DB != nil {
		return database.Close(app.DB)
	}
	return nil
}
