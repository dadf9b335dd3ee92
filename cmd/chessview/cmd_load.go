package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/chess_viewer/pkg/loader"
	"github.com/Dicklesworthstone/chess_viewer/pkg/watcher"
)

// pgnUploader is the one client call load needs
type pgnUploader interface {
	UploadPGN(ctx context.Context, pgn string) error
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := headlessLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg, logger, nil)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := uploadFile(cmd.Context(), c, path, loadGame, out); err != nil {
		return err
	}
	if !loadWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	w, err := watcher.New(path, func(p string) {
		if err := uploadFile(ctx, c, p, loadGame, out); err != nil {
			logger.Error("re-upload failed", slog.String("path", p), slog.Any("error", err))
		}
	}, watcher.WithDebounce(cfg.Watch.Debounce), watcher.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)
	<-ctx.Done()
	return nil
}

// uploadFile posts path to the server. game is 1-based; 0 sends the file
// as it is.
func uploadFile(ctx context.Context, c pgnUploader, path string, game int, out io.Writer) error {
	var pgn string
	if game > 0 {
		games, err := loader.LoadGames(path)
		if err != nil {
			return err
		}
		if game > len(games) {
			return fmt.Errorf("game %d not found: %s holds %d game(s)", game, path, len(games))
		}
		pgn = games[game-1].PGN()
	} else {
		var err error
		if pgn, err = loader.LoadPGN(path); err != nil {
			return err
		}
	}
	if err := c.UploadPGN(ctx, pgn); err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %s\n", path)
	return nil
}
