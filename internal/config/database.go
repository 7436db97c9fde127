package config

import (
	"os"
	"path/filepath"
)

const (
	DB_NAME       = "database.sqlite"
	DB_PATH_ENV   = "IOT_DASHBOARD_DB_PATH"
	API_URL_ENV   = "IOT_DASHBOARD_API_BASE_URL"
	LOG_LEVEL_ENV = "IOT_DASHBOARD_LOG_LEVEL"
)

func DBPath() string {
	if dbPath := os.Getenv(DB_PATH_ENV); dbPath != "" {
		return dbPath
	}

	return filepath.Join(DataDir(), DB_NAME)
}
