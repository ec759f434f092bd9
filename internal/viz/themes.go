package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live table view.
type Theme struct {
	Name    string
	Felt    lipgloss.Color
	Cushion lipgloss.Color
	Ball    lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeBaize = Theme{
		Name:    "baize",
		Felt:    lipgloss.Color("#1f8a4c"),
		Cushion: lipgloss.Color("#6b3e1f"),
		Ball:    lipgloss.Color("#f5f5f5"),
		Accent:  lipgloss.Color("#f2c14e"),
		Text:    lipgloss.Color("#e8f5e9"),
		Muted:   lipgloss.Color("#5f7f6a"),
		Warning: lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Felt:    lipgloss.Color("#00cc00"),
		Cushion: lipgloss.Color("#005500"),
		Ball:    lipgloss.Color("#00ff00"), // Green phosphor
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Felt:    lipgloss.Color("#cccccc"),
		Cushion: lipgloss.Color("#888888"),
		Ball:    lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemeMidnight = Theme{
		Name:    "midnight",
		Felt:    lipgloss.Color("#1d3557"),
		Cushion: lipgloss.Color("#457b9d"),
		Ball:    lipgloss.Color("#f1faee"),
		Accent:  lipgloss.Color("#e63946"),
		Text:    lipgloss.Color("#f1faee"),
		Muted:   lipgloss.Color("#4f6d8a"),
		Warning: lipgloss.Color("#ffcc00"),
	}

	CurrentTheme = ThemeBaize

	Themes = []Theme{
		ThemeBaize,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeMidnight,
	}
)

// GetTheme returns a theme by name, falling back to baize.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeBaize
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}
