// Package theme owns the light/dark/auto preference. The value is read once
// from local storage when the context is built and written back on every change.
package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/monorkin/iot-dashboard/internal/enums"
)

const STORAGE_KEY = "theme"

type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key string, value string) error
}

// SystemPreference reports whether the desktop prefers a dark color scheme.
type SystemPreference interface {
	PrefersDark(ctx context.Context) (bool, error)
}

type Context struct {
	mu      sync.RWMutex
	theme   enums.Theme
	storage Storage
	system  SystemPreference
	logger  *slog.Logger
}

// New builds the theme context. Missing, unreadable or unrecognized stored
// values start as light. storage and system may be nil.
func New(storage Storage, system SystemPreference, logger *slog.Logger) *Context {
	c := &Context{
		theme:   enums.ThemeLight,
		storage: storage,
		system:  system,
		logger:  logger,
	}

	if storage == nil {
		return c
	}

	value, ok, err := storage.GetItem(STORAGE_KEY)
	switch {
	case err != nil:
		c.log(slog.LevelWarn, "Failed to read stored theme", "error", err)
	case ok && enums.IsTheme(value):
		c.theme = enums.Theme(value)
	case ok:
		c.log(slog.LevelDebug, "Ignoring unrecognized stored theme", "value", value)
	}

	return c
}

func (c *Context) log(level slog.Level, msg string, args ...any) {
	if c.logger != nil {
		c.logger.Log(context.Background(), level, msg, args...)
	}
}

func (c *Context) Theme() enums.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// SetTheme validates value, updates the in-memory theme and persists it.
// The in-memory value changes even when persisting fails.
func (c *Context) SetTheme(value string) error {
	if !enums.IsTheme(value) {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, value)
	}

	c.mu.Lock()
	c.theme = enums.Theme(value)
	c.mu.Unlock()

	if c.storage == nil {
		return nil
	}
	if err := c.storage.SetItem(STORAGE_KEY, value); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}

	c.log(slog.LevelDebug, "Theme changed", "theme", value)
	return nil
}

// Toggle switches light to dark and anything else, auto included, to light.
func (c *Context) Toggle() (enums.Theme, error) {
	next := enums.ThemeLight
	if c.Theme() == enums.ThemeLight {
		next = enums.ThemeDark
	}
	return next, c.SetTheme(string(next))
}

// Actual resolves auto through the system preference. Without one, or when
// it fails, auto renders as light.
func (c *Context) Actual(ctx context.Context) enums.Theme {
	current := c.Theme()
	if current != enums.ThemeAuto {
		return current
	}
	if c.system == nil {
		return enums.ThemeLight
	}

	dark, err := c.system.PrefersDark(ctx)
	if err != nil {
		c.log(slog.LevelDebug, "Failed to read system color scheme", "error", err)
		return enums.ThemeLight
	}
	if dark {
		return enums.ThemeDark
	}
	return enums.ThemeLight
}
