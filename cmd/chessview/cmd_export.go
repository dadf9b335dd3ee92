package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/chess_viewer/pkg/export"
	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/loader"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/store"
)

// treeWait bounds how long export waits for the server to push a tree.
const treeWait = 10 * time.Second

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := headlessLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	o := exportOrientation
	if o == "" {
		o = cfg.Tree.Orientation
	}
	orientation, err := layout.ParseOrientation(o)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()

	var latest atomic.Pointer[model.MoveNode]
	title := ""
	follow := func(context.Context) error { return nil }

	if exportPGN != "" {
		tree, game, err := loader.LoadTree(exportPGN, exportGame-1)
		if err != nil {
			return err
		}
		latest.Store(tree)
		title = game.Title()
	} else {
		s := newSession(cfg, logger, nil)
		defer s.Close()
		if err := s.Open(ctx); err != nil {
			return err
		}
		st := store.New(store.WithLogger(logger))
		// Record every tree the server pushes; a one-shot export stops at
		// the first.
		follow = func(ctx context.Context) error {
			return followStream(ctx, s, st, func(ev store.Event, c store.Change) bool {
				if !c.Tree {
					return false
				}
				latest.Store(st.State().MoveTree)
				return !exportServe && latest.Load() != nil
			})
		}
		if !exportServe {
			waitCtx, cancel := context.WithTimeout(ctx, treeWait)
			defer cancel()
			if err := follow(waitCtx); err != nil {
				return err
			}
			if latest.Load() == nil {
				return fmt.Errorf("server sent no game tree within %s", treeWait)
			}
		}
	}

	if !exportServe {
		err := export.SaveTreeSnapshot(export.TreeSnapshotOptions{
			Path:        exportOut,
			Tree:        latest.Load(),
			Title:       title,
			Width:       exportWidth,
			Height:      exportHeight,
			Orientation: orientation,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", exportOut)
		return nil
	}

	port := exportPort
	if port == 0 {
		if port, err = export.FindAvailablePort(export.PreviewPortRangeStart, export.PreviewPortRangeEnd); err != nil {
			return err
		}
	}
	pc := export.DefaultPreviewConfig()
	pc.Port = port
	pc.Orientation = orientation
	if title != "" {
		pc.Title = title
	}
	if exportWidth > 0 {
		pc.Width = exportWidth
	}
	if exportHeight > 0 {
		pc.Height = exportHeight
	}
	preview := export.NewPreviewServer(latest.Load, pc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return follow(gctx) })
	g.Go(func() error {
		err := preview.Serve(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	fmt.Fprintf(out, "Serving the move tree at %s (Ctrl+C to stop)\n", preview.URL())
	return g.Wait()
}
