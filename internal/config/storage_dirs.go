package config

import (
	"os"
	"path/filepath"
)

const (
	APP_DIR_NAME = "iot-dashboard"
)

// DataDir is $XDG_DATA_HOME/iot-dashboard, falling back to ~/.local/share and
// then to a dot directory in the home directory.
func DataDir() string {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ConfigDir is $XDG_CONFIG_HOME/iot-dashboard with the same fallbacks as DataDir.
func ConfigDir() string {
	return appDir("XDG_CONFIG_HOME", ".config")
}

func appDir(xdgVariable string, homeRelative string) string {
	if xdgDir := os.Getenv(xdgVariable); xdgDir != "" {
		return filepath.Join(xdgDir, APP_DIR_NAME)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// No home directory, use the working directory
		if currentDir, err := os.Getwd(); err == nil {
			return filepath.Join(currentDir, "."+APP_DIR_NAME)
		}
		return "."
	}

	if _, err := os.Stat(filepath.Join(homeDir, homeRelative)); err == nil {
		return filepath.Join(homeDir, homeRelative, APP_DIR_NAME)
	}

	return filepath.Join(homeDir, "."+APP_DIR_NAME)
}
