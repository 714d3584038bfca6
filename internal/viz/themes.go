package viz

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dotportrait/internal/paint"
)

// Theme pairs a drawing palette with the terminal colours around it.
type Theme struct {
	Name    string
	Style   paint.Style
	Primary lipgloss.Color
	Second  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

// Available themes
var (
	ThemeViolet = Theme{
		Name:    "violet",
		Style:   paint.StyleViolet,
		Primary: lipgloss.Color("#d06bff"),
		Second:  lipgloss.Color("#6bd0ff"),
		Text:    lipgloss.Color("#f4e8ff"),
		Muted:   lipgloss.Color("#6a4a7a"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Style:   paint.StyleRetro,
		Primary: lipgloss.Color("#00ff00"),
		Second:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Style:   paint.StyleOcean,
		Primary: lipgloss.Color("#00a8cc"),
		Second:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Warning: lipgloss.Color("#ffcc00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Style:   paint.StyleMinimal,
		Primary: lipgloss.Color("#ffffff"),
		Second:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	Themes = []Theme{
		ThemeViolet,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) (Theme, error) {
	for _, t := range Themes {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames())
}

// NextTheme cycles to the theme after name.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
