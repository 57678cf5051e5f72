package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"invite-reviewer/internal/config"
	providerfactory "invite-reviewer/internal/provider/factory"
	"invite-reviewer/internal/render"
	"invite-reviewer/internal/review"
	"invite-reviewer/internal/server"
)

const serveUsage = `Usage:
  invite-reviewer serve [--config <path>] [--port <port>] [--env-file <path>]

Flags:
  --config   string   Path to YAML configuration file (optional)
  --port     int      Override server port from configuration
  --env-file string   Path to a .env file loaded before reading the environment (default ".env")`

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var cfgPath, envFile string
	var overridePort int
	fs.StringVar(&cfgPath, "config", "", "path to configuration file")
	fs.IntVar(&overridePort, "port", 0, "override server port")
	fs.StringVar(&envFile, "env-file", ".env", "path to .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if overridePort != 0 {
		if overridePort <= 0 || overridePort > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
		}
		cfg.Server.Port = overridePort
	}

	if !cfg.Completion.HasAPIKey() {
		slog.Warn("ANTHROPIC_API_KEY environment variable is not set; reviews will fail until it is configured")
	}

	p, err := providerfactory.NewClaudeProvider(cfg.Completion)
	if err != nil {
		return err
	}

	reviewer, err := review.New(p, cfg.Completion, render.NewMarkdown(), slog.Default())
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, reviewer)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
