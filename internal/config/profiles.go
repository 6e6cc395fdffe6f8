package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/diogo/simchat/internal/models"
)

// Built-in profile names
const (
	ProfileAssistant = "assistant"
	ProfileBasic     = "basic"
	ProfilePanel     = "panel"
)

// ProfileConfig stores all widget profiles
type ProfileConfig struct {
	Profiles       []models.Profile `json:"profiles"`
	DefaultProfile string           `json:"default_profile,omitempty"`
}

// DefaultProfiles returns the built-in widget profiles
func DefaultProfiles() []models.Profile {
	return []models.Profile{
		{
			Name:        ProfileAssistant,
			Description: "AI assistant with model selection and markdown replies",
			Title:       "AI Assistant",
			Placeholder: "Ask me anything...",
			Endpoint:    models.DefaultChatEndpoint,
			Model:       models.DefaultModel,
			Markdown:    true,
		},
		{
			Name:        ProfileBasic,
			Description: "Plain chat without a model field",
			Title:       "Chatbot",
			Placeholder: "Type a message...",
			Endpoint:    models.DefaultChatEndpoint,
		},
		{
			Name:        ProfilePanel,
			Description: "Collapsible panel routed through the email agent",
			Title:       "Agent",
			Placeholder: "Ask the agent, e.g. send an email to ...",
			Endpoint:    models.DefaultAgentEndpoint,
			Model:       models.DefaultModel,
			Markdown:    true,
			Collapsible: true,
		},
	}
}

// GetProfilesPath returns the path to the profiles file
func GetProfilesPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "profiles.json"), nil
}

// LoadProfiles loads the profile configuration
func LoadProfiles() (*ProfileConfig, error) {
	path, err := GetProfilesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProfileConfig{
				Profiles:       DefaultProfiles(),
				DefaultProfile: ProfileAssistant,
			}, nil
		}
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var pc ProfileConfig
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	pc.Profiles = mergeProfiles(DefaultProfiles(), pc.Profiles)

	return &pc, nil
}

// SaveProfiles saves the profile configuration
func SaveProfiles(pc *ProfileConfig) error {
	path, err := GetProfilesPath()
	if err != nil {
		return err
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// GetProfile returns a profile by name
func GetProfile(name string) (*models.Profile, error) {
	pc, err := LoadProfiles()
	if err != nil {
		return nil, err
	}

	for _, p := range pc.Profiles {
		if p.Name == name {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("profile '%s' not found", name)
}

// ListProfileNames returns the names of all profiles
func ListProfileNames() ([]string, error) {
	pc, err := LoadProfiles()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(pc.Profiles))
	for i, p := range pc.Profiles {
		names[i] = p.Name
	}
	return names, nil
}

// AddProfile adds a new profile
func AddProfile(profile models.Profile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	pc, err := LoadProfiles()
	if err != nil {
		return err
	}

	for _, p := range pc.Profiles {
		if p.Name == profile.Name {
			return fmt.Errorf("profile '%s' already exists", profile.Name)
		}
	}

	pc.Profiles = append(pc.Profiles, profile)
	return SaveProfiles(pc)
}

// DeleteProfile removes a custom profile by name
func DeleteProfile(name string) error {
	for _, p := range DefaultProfiles() {
		if p.Name == name {
			return fmt.Errorf("cannot delete built-in profile '%s'", name)
		}
	}

	pc, err := LoadProfiles()
	if err != nil {
		return err
	}

	kept := make([]models.Profile, 0, len(pc.Profiles))
	found := false
	for _, p := range pc.Profiles {
		if p.Name == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}

	if !found {
		return fmt.Errorf("profile '%s' not found", name)
	}

	pc.Profiles = kept
	if pc.DefaultProfile == name {
		pc.DefaultProfile = ProfileAssistant
	}

	return SaveProfiles(pc)
}

// ResolveProfile picks the named profile (or the config default) and applies
// the config-level endpoint and model overrides to it.
func ResolveProfile(cfg Config, name string) (models.Profile, error) {
	if name == "" {
		name = cfg.DefaultProfile
	}
	if name == "" {
		name = ProfileAssistant
	}

	p, err := GetProfile(name)
	if err != nil {
		return models.Profile{}, err
	}

	profile := *p
	if cfg.Endpoint != "" {
		profile.Endpoint = cfg.Endpoint
	}
	// Only profiles that already carry a model get the override; basic stays model-less
	if profile.Model != "" && cfg.DefaultModel != "" {
		profile.Model = cfg.DefaultModel
	}
	return profile, nil
}

func mergeProfiles(defaults, custom []models.Profile) []models.Profile {
	result := make([]models.Profile, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.Name == cp.Name {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}

// Validation constants
const (
	MaxNameLength  = 50
	MaxTitleLength = 80
)

// ValidateProfile validates a profile's fields
func ValidateProfile(p models.Profile) error {
	fieldErrors := make(map[string]string)

	if p.Name == "" {
		fieldErrors["name"] = "name is required"
	} else if len(p.Name) > MaxNameLength {
		fieldErrors["name"] = fmt.Sprintf("name too long (max %d characters)", MaxNameLength)
	} else if !isValidProfileName(p.Name) {
		fieldErrors["name"] = "name must contain only alphanumeric characters, underscores, and hyphens"
	}

	if len(p.Title) > MaxTitleLength {
		fieldErrors["title"] = fmt.Sprintf("title too long (max %d characters)", MaxTitleLength)
	}

	if u, err := url.Parse(strings.TrimSpace(p.Endpoint)); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		fieldErrors["endpoint"] = "endpoint must be an absolute http(s) URL"
	}

	if len(fieldErrors) > 0 {
		return fmt.Errorf("validation failed: %v", fieldErrors)
	}

	return nil
}

func isValidProfileName(name string) bool {
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
