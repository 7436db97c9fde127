// Package views renders the dashboard screens as terminal text: device
// tables, device details with sparkline charts, dashboard cards and the
// analytics overview.
package views

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/monorkin/iot-dashboard/internal/enums"
	"github.com/monorkin/iot-dashboard/internal/format"
)

var namedColors = map[string]lipgloss.Color{
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
}

var (
	mutedColor      = lipgloss.AdaptiveColor{Light: "8", Dark: "7"}
	foregroundColor = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
)

// Styler turns utility classes into lipgloss styles. A disabled Styler returns
// text untouched, which is what pipes and tests get.
type Styler struct {
	Enabled bool
	Theme   enums.Theme
}

func PlainStyler() Styler {
	return Styler{}
}

// Paint renders text with the style for classes. Later classes win over
// earlier ones of the same property, so "text-red text-green" is green.
func (styler Styler) Paint(text string, classes ...any) string {
	if !styler.Enabled || text == "" {
		return text
	}

	style, ok := styler.style(strings.Fields(format.ClassNames(classes...)))
	if !ok {
		return text
	}

	return style.Render(text)
}

// The renderer is pinned to true color and to the configured theme so output
// does not depend on querying the terminal.
func (styler Styler) renderer() *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(io.Discard)
	renderer.SetColorProfile(termenv.TrueColor)
	renderer.SetHasDarkBackground(styler.Theme == enums.ThemeDark)
	return renderer
}

func (styler Styler) style(classes []string) (lipgloss.Style, bool) {
	style := styler.renderer().NewStyle().TabWidth(lipgloss.NoTabConversion)
	styled := false

	for _, class := range classes {
		switch class {
		case "font-bold":
			style = style.Bold(true)
		case "font-light":
			style = style.Faint(true)
		case "underline":
			style = style.Underline(true)
		default:
			color, ok := textColor(class)
			if !ok {
				continue
			}
			style = style.Foreground(color)
		}
		styled = true
	}

	return style, styled
}

func textColor(class string) (lipgloss.TerminalColor, bool) {
	color, ok := strings.CutPrefix(class, "text-")
	if !ok {
		return nil, false
	}

	switch color {
	case "muted":
		return mutedColor, true
	case "foreground":
		return foregroundColor, true
	}
	if named, ok := namedColors[color]; ok {
		return named, true
	}
	if hex, ok := strings.CutPrefix(color, "[#"); ok {
		hex = strings.TrimSuffix(hex, "]")
		if _, _, _, ok := parseHex(hex); ok {
			return lipgloss.Color("#" + hex), true
		}
	}
	return nil, false
}

// HexClass is the text color class for a "#rrggbb" color.
func HexClass(color string) string {
	return "text-[" + color + "]"
}
