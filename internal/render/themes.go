package render

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"

	"github.com/diogo/simchat/internal/models"
)

// Markdown style names. Anything else is treated as a path to a glamour JSON theme.
const (
	ThemeSimchat = "simchat"
	ThemeDark    = styles.DarkStyle
	ThemeLight   = styles.LightStyle
	ThemeNoTTY   = styles.NoTTYStyle
	ThemeASCII   = styles.AsciiStyle
	ThemeDracula = styles.DraculaStyle
)

// simchatStyle is the dark glamour style with headings and links in the
// workflow accent colour.
func simchatStyle() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	accent := models.DefaultWorkflowColor
	bold := true
	var margin uint

	cfg.Document.Margin = &margin
	cfg.H1.StylePrimitive.Color = stringPtr("#FFFFFF")
	cfg.H1.StylePrimitive.BackgroundColor = &accent
	cfg.H1.StylePrimitive.Bold = &bold
	cfg.H2.StylePrimitive.Color = &accent
	cfg.H3.StylePrimitive.Color = &accent
	cfg.Link.Color = &accent
	cfg.LinkText.Color = &accent

	return cfg
}

func stringPtr(s string) *string {
	return &s
}

// IsBuiltinStyle reports whether style names a built-in style rather than a file
func IsBuiltinStyle(style string) bool {
	if style == ThemeSimchat {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == ThemeSimchat:
		return glamour.WithStyles(simchatStyle())
	case IsBuiltinStyle(style):
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}

// ThemeInfo describes a markdown style for listings
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes lists the built-in markdown styles
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeSimchat, Description: "Dark theme with accent headings (default)"},
		{Name: ThemeDark, Description: "Glamour dark theme"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns the names from AvailableThemes
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
