package gui

import (
	"testing"

	adw "github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/monorkin/iot-dashboard/internal/enums"
)

func TestColorScheme(t *testing.T) {
	tests := []struct {
		theme enums.Theme
		want  adw.ColorScheme
	}{
		{enums.ThemeDark, adw.ColorSchemeForceDark},
		{enums.ThemeLight, adw.ColorSchemeForceLight},
		{enums.ThemeAuto, adw.ColorSchemeDefault},
		{enums.Theme("sepia"), adw.ColorSchemeDefault},
	}

	for _, tt := range tests {
		t.Run(string(tt.theme), func(t *testing.T) {
			if got := colorScheme(tt.theme); got != tt.want {
				t.Errorf("colorScheme(%q) = %v, want %v", tt.theme, got, tt.want)
			}
		})
	}
}
