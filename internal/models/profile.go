package models

import "strings"

// Profile configures one chat widget variant. The endpoint, payload shape and
// presentation flags are the only things that ever differed between widgets.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Title       string `json:"title"`
	Placeholder string `json:"placeholder,omitempty"`
	Endpoint    string `json:"endpoint"`
	// Model is sent with every request when non-empty
	Model string `json:"model,omitempty"`
	// Markdown renders bot replies through glamour instead of plain text
	Markdown bool `json:"markdown"`
	// Collapsible lets the panel fold down to its header
	Collapsible bool `json:"collapsible"`
}

// Request builds the outbound body for text under this profile
func (p Profile) Request(text string) ChatRequest {
	return ChatRequest{Message: text, Model: strings.TrimSpace(p.Model)}
}
