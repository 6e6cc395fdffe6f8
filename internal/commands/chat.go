package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diogo/simchat/internal/chat"
	"github.com/diogo/simchat/internal/config"
	"github.com/diogo/simchat/internal/observability"
	"github.com/diogo/simchat/internal/render"
	"github.com/diogo/simchat/internal/tui"
	"github.com/diogo/simchat/internal/workflows"
)

// LogFileName is the TUI log file inside the data directory
const LogFileName = "simchat.log"

func newChatCmd(deps *Dependencies, global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive shell",
		Long: `Start the terminal shell: a navigation sidebar with the workflow list and
a chat widget bound to the selected profile.

Logs go to <data dir>/simchat.log so they never draw over the screen.
Press Esc or Ctrl+C to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps, global)
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies, global *globalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	profile, err := config.ResolveProfile(cfg, global.profile)
	if err != nil {
		return err
	}
	if global.model != "" && profile.Model != "" {
		profile.Model = global.model
	}

	dataDir, err := config.GetDataDir(cfg)
	if err != nil {
		return err
	}

	logPath := filepath.Join(dataDir, LogFileName)
	logger, closer, err := observability.NewFileLogger("tui", observability.ParseLevel(cfg.LogLevel), cfg.LogFormat, logPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	exchanger, err := deps.NewExchanger(profile, cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	store, err := workflows.Open(cfg.Registry.Backend, dataDir)
	if err != nil {
		return err
	}
	registry := workflows.NewRegistry(store)
	defer registry.Close()

	ctx, cancel := context.WithCancel(ctx)
	loaded := make(chan struct{})
	defer func() {
		cancel()
		<-loaded
	}()

	// The sidebar refuses Add Workflow until this first sync completes
	go func() {
		defer close(loaded)
		if err := registry.Load(ctx); err != nil {
			logger.Error("failed to load workflows", "error", err)
			return
		}
		logger.Info("workflows loaded", "count", registry.Len())
	}()

	widget := chat.NewWidget(profile, exchanger,
		chat.WithLogger(logger))

	logger.Info("starting shell", "profile", profile.Name, "endpoint", profile.Endpoint)

	return deps.TUI.RunApp(tui.AppOptions{
		Widget:   widget,
		Registry: registry,
		Render:   render.FromConfig(cfg.Markdown, 80),
		Theme:    render.ResolveTUITheme(cfg.TUITheme),
		Logger:   logger,
		Settings: tui.Settings{
			Profile:  profile.Name,
			Endpoint: profile.Endpoint,
			Model:    profile.Model,
			Markdown: cfg.Markdown.Style,
			Theme:    cfg.TUITheme,
			Backend:  cfg.Registry.Backend,
			DataDir:  dataDir,
			LogFile:  logPath,
		},
	})
}
