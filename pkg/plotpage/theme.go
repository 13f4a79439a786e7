package plotpage

import (
	"fmt"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// Theme represents a color theme for visualizations.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ParseTheme maps a configuration value to a Theme.
func ParseTheme(name string) (Theme, error) {
	switch Theme(name) {
	case ThemeLight, ThemeDark:
		return Theme(name), nil
	default:
		return "", fmt.Errorf("unknown theme %q", name)
	}
}

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	// Base colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	Accent string

	// Result colors.
	Pass    string
	Fail    string
	Skip    string
	Missing string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	switch theme {
	case ThemeDark:
		return darkTheme
	case ThemeLight:
		return lightTheme
	default:
		return lightTheme
	}
}

// ResultColor returns the color used for code in theme.
func (c ThemeConfig) ResultColor(code results.Code) string {
	switch code {
	case results.Passed:
		return c.Pass
	case results.Failed, results.TimedOut:
		return c.Fail
	case results.Skipped:
		return c.Skip
	default:
		return c.Missing
	}
}

// BrowserPalette returns series colors for the browsers of a chart, one per
// browser, cycling when there are more browsers than colors.
func BrowserPalette(theme Theme, n int) []string {
	base := lightBrowserColors
	if theme == ThemeDark {
		base = darkBrowserColors
	}

	colors := make([]string, n)
	for i := range colors {
		colors[i] = base[i%len(base)]
	}

	return colors
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary:   "#1c1917", // stone-900.
	TextSecondary: "#44403c", // stone-700.
	TextMuted:     "#78716c", // stone-500.

	Accent: "#a16207", // amber-700.

	Pass:    "#16a34a", // green-600.
	Fail:    "#dc2626", // red-600.
	Skip:    "#ca8a04", // yellow-600.
	Missing: "#d6d3d1", // stone-300.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary:   "#fafaf9",
	TextSecondary: "#d6d3d1",
	TextMuted:     "#a8a29e",

	Accent: "#d97706", // amber-600.

	Pass:    "#22c55e", // green-500.
	Fail:    "#ef4444", // red-500.
	Skip:    "#eab308", // yellow-500.
	Missing: "#57534e", // stone-600.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c",
	ChartAxis:       "#57534e",
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",
}

var lightBrowserColors = []string{
	"#c2410c", // orange-700.
	"#0369a1", // sky-700.
	"#7c3aed", // violet-600.
	"#4d7c0f", // lime-700.
	"#be185d", // pink-700.
}

var darkBrowserColors = []string{
	"#fb923c", // orange-400.
	"#38bdf8", // sky-400.
	"#a78bfa", // violet-400.
	"#a3e635", // lime-400.
	"#f472b6", // pink-400.
}
