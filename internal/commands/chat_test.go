package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/diogo/simchat/internal/api"
	"github.com/diogo/simchat/internal/config"
	"github.com/diogo/simchat/internal/models"
)

func TestChatStartsShell(t *testing.T) {
	home := setupHome(t)
	env := newTestEnv(t, &api.MockExchanger{Reply: "ok"})

	if err := env.run("chat", "-p", "panel"); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}

	if env.tui.calls != 1 {
		t.Fatalf("RunApp called %d times, want 1", env.tui.calls)
	}

	opts := env.tui.opts
	if opts.Widget == nil {
		t.Fatal("widget not passed to the shell")
	}
	if got := opts.Widget.Profile().Name; got != config.ProfilePanel {
		t.Errorf("profile = %q, want panel", got)
	}
	if !opts.Widget.Profile().Collapsible {
		t.Error("panel profile should be collapsible")
	}
	if opts.Registry == nil {
		t.Error("registry not passed to the shell")
	}
	if opts.Theme.Name != "tokyonight" {
		t.Errorf("theme = %q", opts.Theme.Name)
	}

	dataDir := filepath.Join(home, ".simchat", "data")
	wantLog := filepath.Join(dataDir, LogFileName)
	if opts.Settings.LogFile != wantLog {
		t.Errorf("log file = %q, want %q", opts.Settings.LogFile, wantLog)
	}
	if opts.Settings.DataDir != dataDir {
		t.Errorf("data dir = %q", opts.Settings.DataDir)
	}
	if opts.Settings.Model != models.DefaultModel {
		t.Errorf("model = %q", opts.Settings.Model)
	}
	if _, err := os.Stat(wantLog); err != nil {
		t.Errorf("log file not created: %v", err)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("chat wrote to stdout: %q", env.stdout.String())
	}
}

func TestChatModelOverride(t *testing.T) {
	setupHome(t)
	env := newTestEnv(t, &api.MockExchanger{})

	if err := env.run("chat", "-m", "openai/gpt-4o"); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}
	if got := env.tui.opts.Widget.Profile().Model; got != "openai/gpt-4o" {
		t.Errorf("model = %q", got)
	}
}

func TestChatReturnsShellError(t *testing.T) {
	setupHome(t)
	env := newTestEnv(t, &api.MockExchanger{})
	env.tui.err = errors.New("no tty")

	if err := env.run("chat"); err == nil || err.Error() != "no tty" {
		t.Errorf("run() error = %v, want no tty", err)
	}
}

func TestChatUnknownBackend(t *testing.T) {
	setupHome(t)

	cfg := config.DefaultConfig()
	cfg.Registry.Backend = "redis"
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}
	env := newTestEnv(t, &api.MockExchanger{})
	if err := env.run("chat"); err == nil {
		t.Fatal("run() returned nil error for unknown backend")
	}
	if env.tui.calls != 0 {
		t.Error("shell started despite the registry error")
	}
}
