package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DEFAULT_API_BASE_URL = "http://localhost:3000"

type Settings struct {
	APIBaseURL      string `json:"api_base_url,omitempty"`
	DiscoveryPrefix string `json:"discovery_prefix,omitempty"`
	MetricsAddr     string `json:"metrics_addr,omitempty"`
}

func DefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func LoadOrInitializeSettingsFromDefaultLocation() (bool, *Settings) {
	return LoadOrInitializeSettings(DefaultSettingsPath())
}

// LoadOrInitializeSettings reads the settings file, returning empty settings
// and true when it is missing or unreadable.
func LoadOrInitializeSettings(path string) (bool, *Settings) {
	if settings, err := LoadSettings(path); err == nil {
		return false, settings
	}

	return true, &Settings{}
}

func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	return &settings, nil
}

func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ResolveAPIBaseURL picks the API base URL: the flag value, then the
// environment, then the settings file, then the default.
func ResolveAPIBaseURL(flagValue string, settings *Settings) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(API_URL_ENV)); v != "" {
		return v
	}
	if settings != nil && strings.TrimSpace(settings.APIBaseURL) != "" {
		return strings.TrimSpace(settings.APIBaseURL)
	}
	return DEFAULT_API_BASE_URL
}
