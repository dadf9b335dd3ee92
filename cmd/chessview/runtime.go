package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dicklesworthstone/chess_viewer/pkg/client"
	"github.com/Dicklesworthstone/chess_viewer/pkg/config"
	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
	"github.com/Dicklesworthstone/chess_viewer/pkg/metrics"
	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
)

// loadConfig reads the config file and applies command-line overrides. An
// overridden server without an explicit socket gets its socket re-derived.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server = strings.TrimRight(serverURL, "/")
		if socketURL == "" {
			cfg.Socket = config.SocketFor(cfg.Server)
		}
	}
	if socketURL != "" {
		cfg.Socket = socketURL
	}
	if journalPath != "" {
		cfg.Journal = journalPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// headlessLogger logs text to stderr (and the configured file, if any) for
// subcommands that do not take over the terminal.
func headlessLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	return logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File, Stderr: true})
}

func newClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*client.Client, error) {
	c, err := client.New(cfg.Server,
		client.WithTimeout(cfg.FetchTimeout),
		client.WithLogger(logger),
		client.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("server %q: %w", cfg.Server, err)
	}
	return c, nil
}

func newSession(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *session.Session {
	return session.New(cfg.Socket,
		session.WithConnectTimeout(cfg.ConnectTimeout),
		session.WithLogger(logger),
		session.WithMetrics(m))
}
