package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/simchat/internal/api"
	"github.com/diogo/simchat/internal/config"
)

func TestConfigShow(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantKey string
	}{
		{"key unset", "", config.EnvOpenRouter + ": unset"},
		{"key set", "sk-or-test", config.EnvOpenRouter + ": set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t)
			t.Setenv(config.EnvOpenRouter, tt.key)
			env := newTestEnv(t, &api.MockExchanger{})

			if err := env.run("config", "show"); err != nil {
				t.Fatalf("run() returned error: %v", err)
			}

			out := env.stdout.String()
			if !strings.Contains(out, tt.wantKey) {
				t.Errorf("stdout missing %q: %s", tt.wantKey, out)
			}
			if tt.key != "" && strings.Contains(out, tt.key) {
				t.Error("config show leaked the API key")
			}

			jsonPart := out[:strings.LastIndex(out, config.EnvOpenRouter)]
			var cfg config.Config
			if err := json.Unmarshal([]byte(jsonPart), &cfg); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if cfg.DefaultProfile != config.ProfileAssistant {
				t.Errorf("default_profile = %q", cfg.DefaultProfile)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	home := setupHome(t)
	env := newTestEnv(t, &api.MockExchanger{})

	if err := env.run("config", "path"); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, filepath.Join(home, ".simchat", "config.json")) {
		t.Errorf("stdout missing config path: %s", out)
	}
	if !strings.Contains(out, filepath.Join(home, ".simchat", "data")) {
		t.Errorf("stdout missing data dir: %s", out)
	}
}

func TestConfigProfiles(t *testing.T) {
	setupHome(t)
	env := newTestEnv(t, &api.MockExchanger{})

	if err := env.run("config", "profiles"); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}

	out := env.stdout.String()
	for _, name := range []string{config.ProfileAssistant, config.ProfileBasic, config.ProfilePanel} {
		if !strings.Contains(out, name) {
			t.Errorf("stdout missing profile %q: %s", name, out)
		}
	}
}

func TestConfigThemes(t *testing.T) {
	setupHome(t)
	env := newTestEnv(t, &api.MockExchanger{})

	if err := env.run("config", "themes"); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{"Markdown styles:", "Shell themes:", "tokyonight"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q", want)
		}
	}
}
