package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Settings is what the settings modal shows
type Settings struct {
	Profile  string
	Endpoint string
	Model    string
	Markdown string
	Theme    string
	Backend  string
	DataDir  string
	LogFile  string
}

var helpShortcuts = []struct {
	key  string
	desc string
}{
	{"Tab", "Switch between sidebar and chat"},
	{"↑/↓ j/k", "Move in the sidebar"},
	{"Enter", "Open link or send message"},
	{"Ctrl+Y", "Copy the last reply"},
	{"Ctrl+L", "Clear the transcript"},
	{"Ctrl+T", "Collapse the chat panel"},
	{"Esc", "Close dialog or quit"},
	{"Ctrl+C", "Quit"},
}

func renderHelpModal(width int) string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Help & Support"))
	b.WriteString("\n")
	for _, s := range helpShortcuts {
		b.WriteString(modalKeyStyle.Render(s.key) + modalValueStyle.Render(s.desc) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Start the backend with 'simchat serve'."))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Press Esc to close"))
	return modalStyle.Width(modalWidth(width)).Render(b.String())
}

func renderSettingsModal(s Settings, width int) string {
	rows := []struct {
		key   string
		value string
	}{
		{"Profile", s.Profile},
		{"Endpoint", s.Endpoint},
		{"Model", s.Model},
		{"Markdown", s.Markdown},
		{"Theme", s.Theme},
		{"Registry", s.Backend},
		{"Data dir", s.DataDir},
		{"Log file", s.LogFile},
	}

	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Settings"))
	b.WriteString("\n")
	for _, r := range rows {
		value := r.value
		if value == "" {
			value = "-"
		}
		b.WriteString(modalKeyStyle.Render(r.key) + modalValueStyle.Render(value) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Edit with 'simchat config' • Esc to close"))
	return modalStyle.Width(modalWidth(width)).Render(b.String())
}

func modalWidth(width int) int {
	w := width - 20
	if w > 72 {
		w = 72
	}
	if w < 40 {
		w = 40
	}
	return w
}

func placeModal(width, height int, modal string) string {
	if width <= 0 || height <= 0 {
		return modal
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
