package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/simchat/internal/agent"
	"github.com/diogo/simchat/internal/config"
	"github.com/diogo/simchat/internal/llm"
	"github.com/diogo/simchat/internal/observability"
	"github.com/diogo/simchat/internal/server"
)

type serveOptions struct {
	addr    string
	tracing bool
}

func newServeCmd(deps *Dependencies) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend",
		Long: `Run the HTTP backend the chat widget posts to.

Routes:
  POST /api/chat    {message, model?} -> {reply}
  POST /api/agent   same shape; can send email through the mail relay
  GET  /healthz     liveness
  GET  /metrics     Prometheus metrics

The OpenRouter key is read from OPENROUTER_API_KEY only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), deps, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, localhost:8000)")
	cmd.Flags().BoolVar(&opts.tracing, "tracing", false, "Print OpenTelemetry spans to stderr")

	return cmd
}

// newBackend wires the completer, mailer and server from cfg
func newBackend(cfg config.Config, addr string, logger *observability.Logger) (*server.Server, error) {
	if addr == "" {
		addr = cfg.Server.ListenAddr
	}

	var completer llm.Completer
	if key := config.OpenRouterAPIKey(); key != "" {
		provider, err := llm.NewOpenRouter(cfg.Server.OpenRouterBaseURL, key,
			llm.WithTimeout(cfg.UpstreamTimeout()),
			llm.WithDefaultModel(cfg.DefaultModel),
		)
		if err != nil {
			return nil, err
		}
		completer = provider
	} else {
		logger.Warn("OPENROUTER_API_KEY is not set, every reply will ask for it")
	}

	var mailer agent.Mailer
	if cfg.Server.MailerURL != "" {
		m, err := agent.NewHTTPMailer(cfg.Server.MailerURL, nil, cfg.UpstreamTimeout())
		if err != nil {
			return nil, err
		}
		mailer = m
	}

	return server.New(server.Config{
		ListenAddr:      addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		DefaultModel:    cfg.DefaultModel,
		UpstreamTimeout: cfg.UpstreamTimeout(),
	}, completer, mailer, logger), nil
}

func runServe(ctx context.Context, deps *Dependencies, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger("server", observability.ParseLevel(cfg.LogLevel), cfg.LogFormat, deps.Stderr)

	srv, err := newBackend(cfg, opts.addr, logger)
	if err != nil {
		return err
	}

	var tp *observability.TracerProvider
	if opts.tracing || cfg.Server.Tracing {
		tp, err = observability.NewTracerProvider("simchat", Version, deps.Stderr)
		if err != nil {
			return fmt.Errorf("failed to start tracing: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return tp.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("backend stopped")
	return nil
}
