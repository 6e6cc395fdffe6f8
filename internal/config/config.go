// Package config handles configuration, widget profiles and data paths for simchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/simchat/internal/models"
)

// Environment variables that override the config file
const (
	EnvEndpoint   = "SIMCHAT_ENDPOINT"
	EnvModel      = "SIMCHAT_MODEL"
	EnvDataDir    = "SIMCHAT_DATA_DIR"
	EnvLogLevel   = "SIMCHAT_LOG_LEVEL"
	EnvMailerURL  = "SIMCHAT_MAILER_URL"
	EnvOpenRouter = "OPENROUTER_API_KEY"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "simchat", "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// ServerConfig configures the backend started by `simchat serve`
type ServerConfig struct {
	ListenAddr        string   `json:"listen_addr"`
	AllowedOrigins    []string `json:"allowed_origins"`
	OpenRouterBaseURL string   `json:"openrouter_base_url"`
	// UpstreamTimeout bounds a single completion call, in seconds
	UpstreamTimeout int `json:"upstream_timeout"`
	// MailerURL is the relay that actually delivers agent emails
	MailerURL string `json:"mailer_url,omitempty"`
	Tracing   bool   `json:"tracing"`
}

// RegistryConfig selects the workflow registry backend
type RegistryConfig struct {
	Backend string `json:"backend"` // "file" or "sqlite"
}

// Config represents the user configuration
type Config struct {
	// DefaultProfile names the widget profile used by `simchat chat` and one-shot queries
	DefaultProfile string `json:"default_profile"`
	// Endpoint overrides the endpoint of every profile when set
	Endpoint     string `json:"endpoint,omitempty"`
	DefaultModel string `json:"default_model"`
	// RequestTimeout bounds one chat exchange, in seconds. The widget itself
	// never cancels; this is the only way a hung request ends.
	RequestTimeout  int            `json:"request_timeout"`
	DataDir         string         `json:"data_dir,omitempty"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"` // "text" or "json"
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
	Server          ServerConfig   `json:"server"`
	Registry        RegistryConfig `json:"registry"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "simchat",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultServerConfig returns the default backend configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:        "localhost:8000",
		AllowedOrigins:    []string{"http://localhost:3000"},
		OpenRouterBaseURL: models.OpenRouterBaseURL,
		UpstreamTimeout:   120,
		Tracing:           false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultProfile:  ProfileAssistant,
		DefaultModel:    models.DefaultModel,
		RequestTimeout:  120,
		LogLevel:        "info",
		LogFormat:       "text",
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
		Server:          DefaultServerConfig(),
		Registry:        RegistryConfig{Backend: "file"},
	}
}

// Timeout returns the chat exchange timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// UpstreamTimeout returns the backend completion timeout as a duration
func (c Config) UpstreamTimeout() time.Duration {
	if c.Server.UpstreamTimeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Server.UpstreamTimeout) * time.Second
}

// OpenRouterAPIKey returns the upstream key. It is only ever read from the
// environment and never written to the config file.
func OpenRouterAPIKey() string {
	return strings.TrimSpace(os.Getenv(EnvOpenRouter))
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".simchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetDataDir returns the data directory from config, creating it if necessary
func GetDataDir(cfg Config) (string, error) {
	dir := cfg.DataDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "data")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dir, nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides config values from the environment
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.DefaultModel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailerURL)); v != "" {
		c.Server.MailerURL = v
	}
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// RegistryBackends returns the supported workflow registry backends
func RegistryBackends() []string {
	return []string{"file", "sqlite"}
}
