package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the viewer. Sparse, Rest and Dense shade
// particles by density relative to the rest density.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color

	Sparse lipgloss.Color
	Rest   lipgloss.Color
	Dense  lipgloss.Color
}

// Density ratios separating the three particle shades.
const (
	sparseBelow = 0.9
	denseAbove  = 1.1
)

var (
	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Warning: lipgloss.Color("#ff4444"),
		Sparse:  lipgloss.Color("#7fd4ff"),
		Rest:    lipgloss.Color("#0077be"),
		Dense:   lipgloss.Color("#1a3cff"),
	}

	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#ff00ff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ff0000"),
		Sparse:  lipgloss.Color("#00ffff"),
		Rest:    lipgloss.Color("#ff00ff"),
		Dense:   lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
		Sparse:  lipgloss.Color("#005500"),
		Rest:    lipgloss.Color("#00cc00"),
		Dense:   lipgloss.Color("#88ff88"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ff4757"),
		Sparse:  lipgloss.Color("#feca57"),
		Rest:    lipgloss.Color("#ff9f43"),
		Dense:   lipgloss.Color("#ee5253"),
	}

	Themes = []Theme{ThemeOcean, ThemeCyberpunk, ThemeRetroGreen, ThemeSunset}
)

// GetTheme returns a theme by name, ocean when unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Next returns the theme after t in Themes.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// DensityColor picks the particle color for heat, the density divided by
// the rest density.
func (t Theme) DensityColor(heat float64) lipgloss.Color {
	switch {
	case heat < sparseBelow:
		return t.Sparse
	case heat > denseAbove:
		return t.Dense
	default:
		return t.Rest
	}
}

// Shade picks the style of a canvas cell.
func (t Theme) Shade(ink Ink, heat float64) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch ink {
	case InkFrame:
		return s.Foreground(t.Muted)
	case InkCursor:
		return s.Foreground(t.Accent).Bold(true)
	}
	return s.Foreground(t.DensityColor(heat))
}
