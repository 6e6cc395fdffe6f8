package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the colour scheme of the terminal shell
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// ActiveLink highlights the sidebar entry for the current route
	ActiveLink lipgloss.Color
}

// Built-in TUI themes
var (
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),

		ActiveLink: lipgloss.Color("#3972F6"),
	}

	StudioTheme = TUITheme{
		Name:        "studio",
		Description: "Studio - neutral greys with the workflow blue",

		Background: lipgloss.Color("#0f1115"),
		Surface:    lipgloss.Color("#1b1e24"),
		Border:     lipgloss.Color("#2c313a"),

		Primary:   lipgloss.Color("#3972F6"),
		Secondary: lipgloss.Color("#39B54A"),
		Accent:    lipgloss.Color("#8139F6"),
		Warning:   lipgloss.Color("#F6B539"),
		Error:     lipgloss.Color("#F66839"),

		Text:     lipgloss.Color("#e6e6e6"),
		TextDim:  lipgloss.Color("#8a8f98"),
		TextMute: lipgloss.Color("#4a4f58"),

		ActiveLink: lipgloss.Color("#3972F6"),
	}

	DraculaTheme = TUITheme{
		Name:        "dracula",
		Description: "Dracula - dark with vibrant colors",

		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),

		Primary:   lipgloss.Color("#8be9fd"),
		Secondary: lipgloss.Color("#50fa7b"),
		Accent:    lipgloss.Color("#ff79c6"),
		Warning:   lipgloss.Color("#f1fa8c"),
		Error:     lipgloss.Color("#ff5555"),

		Text:     lipgloss.Color("#f8f8f2"),
		TextDim:  lipgloss.Color("#6272a4"),
		TextMute: lipgloss.Color("#44475a"),

		ActiveLink: lipgloss.Color("#bd93f9"),
	}
)

// GetTUIThemeByName returns a TUI theme by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// ResolveTUITheme returns the named theme, or Tokyo Night when unknown
func ResolveTUITheme(name string) TUITheme {
	if t, ok := GetTUIThemeByName(name); ok {
		return t
	}
	return TokyoNightTheme
}

// AvailableTUIThemes lists the built-in TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		StudioTheme,
		DraculaTheme,
	}
}

// TUIThemeNames returns the names from AvailableTUIThemes
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
