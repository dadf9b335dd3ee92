package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/chess_viewer/pkg/config"
	"github.com/Dicklesworthstone/chess_viewer/pkg/journal"
	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
	"github.com/Dicklesworthstone/chess_viewer/pkg/metrics"
	"github.com/Dicklesworthstone/chess_viewer/pkg/store"
	"github.com/Dicklesworthstone/chess_viewer/pkg/ui"
	"github.com/Dicklesworthstone/chess_viewer/pkg/watcher"
)

// runTUI wires the client, stream, journal and store into the bubbletea
// model and runs it on the alternate screen.
func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the viewer needs a terminal; use `chessview fen` or `chessview move` when scripting")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	orientation, err := layout.ParseOrientation(cfg.Tree.Orientation)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to a file.
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = config.DefaultLogFile()
	}
	logger, closeLog, err := logging.New(logging.Config{Level: cfg.Log.Level, File: logFile})
	if err != nil {
		return err
	}
	defer closeLog()

	m := metrics.New()
	backend, err := newClient(cfg, logger, m)
	if err != nil {
		return err
	}
	stream := newSession(cfg, logger, m)

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()
	if _, err := j.StartSession(stream.ClientID(), cfg.Server); err != nil {
		return err
	}
	defer func() {
		if err := j.EndSession(); err != nil {
			logger.Warn("end journal session", "error", err)
			return
		}
		if s, err := j.GetSession(j.CurrentSession()); err == nil {
			logger.Info("session ended", "session", s.ID, "positions", s.Positions,
				"evaluations", s.Evaluations, "moves", s.Moves, "errors", s.Errors)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	st := store.New(store.WithRecorder(j), store.WithLogger(logger))
	model := ui.New(ui.Options{
		Backend:         backend,
		Stream:          stream,
		Store:           st,
		Journal:         j,
		Logger:          logger,
		Theme:           ui.DefaultTheme(lipgloss.DefaultRenderer()),
		FetchTimeout:    cfg.FetchTimeout,
		TreeAnimation:   cfg.Tree.Animation,
		TreeOrientation: orientation,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return m.Serve(gctx, cfg.MetricsAddr)
		})
	}

	if watchPath != "" {
		w, err := watcher.New(watchPath, func(path string) {
			program.Send(ui.PGNFileChangedMsg{Path: path})
		}, watcher.WithDebounce(cfg.Watch.Debounce), watcher.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := w.Start(gctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	g.Go(func() error {
		// Quitting the viewer stops everything else.
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run viewer: %w", err)
		}
		return nil
	})

	return g.Wait()
}
