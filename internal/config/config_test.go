package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diogo/simchat/internal/models"
)

func withHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvMailerURL, "")
	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultProfile != ProfileAssistant {
		t.Errorf("DefaultProfile = %s, want %s", cfg.DefaultProfile, ProfileAssistant)
	}
	if cfg.DefaultModel != models.DefaultModel {
		t.Errorf("DefaultModel = %s, want %s", cfg.DefaultModel, models.DefaultModel)
	}
	if cfg.Server.ListenAddr != "localhost:8000" {
		t.Errorf("ListenAddr = %s", cfg.Server.ListenAddr)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Registry.Backend != "file" {
		t.Errorf("Registry.Backend = %s, want file", cfg.Registry.Backend)
	}
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
}

func TestTimeoutFallsBackWhenUnset(t *testing.T) {
	cfg := Config{}
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("Timeout() = %v, want 120s", cfg.Timeout())
	}
	cfg.RequestTimeout = 5
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
	if cfg.UpstreamTimeout() != 120*time.Second {
		t.Errorf("UpstreamTimeout() = %v", cfg.UpstreamTimeout())
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	withHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.DefaultModel != models.DefaultModel {
		t.Errorf("expected defaults, got model %s", cfg.DefaultModel)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := withHome(t)

	cfg := DefaultConfig()
	cfg.DefaultModel = "openai/gpt-4o-mini"
	cfg.Verbose = true
	cfg.Registry.Backend = "sqlite"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	configPath := filepath.Join(home, ".simchat", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var saved Config
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Failed to parse saved config: %v", err)
	}
	if saved.DefaultModel != cfg.DefaultModel {
		t.Errorf("DefaultModel = %s, want %s", saved.DefaultModel, cfg.DefaultModel)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("File permissions = %o, want 600", perm)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.Registry.Backend != "sqlite" || !loaded.Verbose {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	home := withHome(t)

	dir := filepath.Join(home, ".simchat")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.DefaultModel != models.DefaultModel {
		t.Error("expected defaults on parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	withHome(t)
	t.Setenv(EnvEndpoint, "http://backend:9000/api/chat")
	t.Setenv(EnvModel, "openai/gpt-4o")
	t.Setenv(EnvDataDir, "/tmp/simchat-data")
	t.Setenv(EnvMailerURL, "http://relay/mcp/gmail/send")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Endpoint != "http://backend:9000/api/chat" {
		t.Errorf("Endpoint = %s", cfg.Endpoint)
	}
	if cfg.DefaultModel != "openai/gpt-4o" {
		t.Errorf("DefaultModel = %s", cfg.DefaultModel)
	}
	if cfg.DataDir != "/tmp/simchat-data" {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.Server.MailerURL != "http://relay/mcp/gmail/send" {
		t.Errorf("MailerURL = %s", cfg.Server.MailerURL)
	}
}

func TestOpenRouterAPIKeyFromEnvOnly(t *testing.T) {
	t.Setenv(EnvOpenRouter, "  sk-or-test  ")
	if got := OpenRouterAPIKey(); got != "sk-or-test" {
		t.Errorf("OpenRouterAPIKey() = %q", got)
	}
}

func TestGetDataDir(t *testing.T) {
	home := withHome(t)

	dir, err := GetDataDir(DefaultConfig())
	if err != nil {
		t.Fatalf("GetDataDir() returned error: %v", err)
	}
	if dir != filepath.Join(home, ".simchat", "data") {
		t.Errorf("GetDataDir() = %s", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}

	custom := filepath.Join(t.TempDir(), "custom")
	dir, err = GetDataDir(Config{DataDir: custom})
	if err != nil || dir != custom {
		t.Errorf("GetDataDir(custom) = %s, %v", dir, err)
	}
}
