package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme of the browser.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	High    lipgloss.Color
	Mid     lipgloss.Color
	Low     lipgloss.Color
}

var (
	ThemeTerminal = Theme{
		Name:    "terminal",
		Primary: lipgloss.Color("#00cccc"),
		Accent:  lipgloss.Color("#ff88ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Border:  lipgloss.Color("#444466"),
		High:    lipgloss.Color("#00ff88"),
		Mid:     lipgloss.Color("#ffcc00"),
		Low:     lipgloss.Color("#ff4444"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#888888"),
		Border:  lipgloss.Color("#555555"),
		High:    lipgloss.Color("#ffffff"),
		Mid:     lipgloss.Color("#aaaaaa"),
		Low:     lipgloss.Color("#666666"),
	}

	ThemeThermal = Theme{
		Name:    "thermal",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#feca57"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Border:  lipgloss.Color("#5a3b5c"),
		High:    lipgloss.Color("#ff4757"),
		Mid:     lipgloss.Color("#ffc048"),
		Low:     lipgloss.Color("#3d7eff"),
	}

	Themes = []Theme{ThemeTerminal, ThemeMinimal, ThemeThermal}
)

// GetTheme returns a theme by name, falling back to the terminal theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeTerminal
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
